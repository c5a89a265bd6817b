package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"vismay-core/internal/model"
)

type RoleRepository struct {
	pool *pgxpool.Pool
}

func NewRoleRepository(pool *pgxpool.Pool) *RoleRepository {
	return &RoleRepository{pool: pool}
}

func (r *RoleRepository) scanRole(ctx context.Context, row pgx.Row) (model.Role, error) {
	var role model.Role
	err := row.Scan(&role.ID, &role.TenantID, &role.ParentID, &role.Name,
		&role.Description, &role.IsActive, &role.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Role{}, model.ErrRoleNotFound
	}
	if err != nil {
		return model.Role{}, fmt.Errorf("scan role: %w", err)
	}

	role.Permissions, err = r.grantedCodes(ctx, role.ID)
	if err != nil {
		return model.Role{}, err
	}
	return role, nil
}

const roleColumns = `id, tenant_id, parent_id, name, COALESCE(description, ''), is_active, created_at`

func (r *RoleRepository) FindByID(ctx context.Context, id string) (model.Role, error) {
	return r.scanRole(ctx, r.pool.QueryRow(ctx,
		`SELECT `+roleColumns+` FROM roles WHERE id = $1`, id))
}

func (r *RoleRepository) FindByName(ctx context.Context, name string) (model.Role, error) {
	return r.scanRole(ctx, r.pool.QueryRow(ctx,
		`SELECT `+roleColumns+` FROM roles WHERE name = $1 AND is_active ORDER BY tenant_id NULLS FIRST LIMIT 1`, name))
}

func (r *RoleRepository) grantedCodes(ctx context.Context, roleID string) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT p.code FROM role_permissions rp
		 JOIN permissions p ON p.id = rp.permission_id
		 WHERE rp.role_id = $1 ORDER BY p.code`, roleID)
	if err != nil {
		return nil, fmt.Errorf("list role grants: %w", err)
	}
	defer rows.Close()

	codes := make([]string, 0)
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("scan grant: %w", err)
		}
		codes = append(codes, code)
	}
	return codes, rows.Err()
}

func (r *RoleRepository) List(ctx context.Context, page int, limit int) ([]model.Role, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM roles`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count roles: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+roleColumns+` FROM roles ORDER BY name LIMIT $1 OFFSET $2`,
		limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list roles: %w", err)
	}
	defer rows.Close()

	roles := make([]model.Role, 0)
	for rows.Next() {
		var role model.Role
		if err := rows.Scan(&role.ID, &role.TenantID, &role.ParentID, &role.Name,
			&role.Description, &role.IsActive, &role.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan role: %w", err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for i := range roles {
		codes, err := r.grantedCodes(ctx, roles[i].ID)
		if err != nil {
			return nil, 0, err
		}
		roles[i].Permissions = codes
	}
	return roles, total, nil
}

func (r *RoleRepository) Create(ctx context.Context, role model.Role) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO roles (id, tenant_id, parent_id, name, description, is_active, created_at)
		 VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7)`,
		role.ID, role.TenantID, role.ParentID, role.Name, role.Description, role.IsActive, role.CreatedAt)
	if isUniqueViolation(err) {
		return model.ErrDuplicateName
	}
	if err != nil {
		return fmt.Errorf("create role: %w", err)
	}
	return nil
}

func (r *RoleRepository) Update(ctx context.Context, role model.Role) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE roles SET name = $2, description = NULLIF($3, ''), parent_id = $4, is_active = $5
		 WHERE id = $1`,
		role.ID, role.Name, role.Description, role.ParentID, role.IsActive)
	if isUniqueViolation(err) {
		return model.ErrDuplicateName
	}
	if err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrRoleNotFound
	}
	return nil
}

func (r *RoleRepository) Delete(ctx context.Context, id string) error {
	var assigned int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE role_id = $1`, id).Scan(&assigned); err != nil {
		return fmt.Errorf("count role users: %w", err)
	}
	if assigned > 0 {
		return model.ErrRoleInUse
	}

	tag, err := r.pool.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrRoleNotFound
	}
	return nil
}

// ReplaceGrants swaps the role's permission set in one transaction so a
// concurrent resolution never observes a half-updated set.
func (r *RoleRepository) ReplaceGrants(ctx context.Context, roleID string, permissionIDs []string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin grant update: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM role_permissions WHERE role_id = $1`, roleID); err != nil {
		return fmt.Errorf("clear role grants: %w", err)
	}

	for _, pid := range permissionIDs {
		_, err := tx.Exec(ctx,
			`INSERT INTO role_permissions (role_id, permission_id) VALUES ($1, $2)
			 ON CONFLICT DO NOTHING`,
			roleID, pid)
		if isForeignKeyViolation(err) {
			return model.ErrPermissionNotFound
		}
		if err != nil {
			return fmt.Errorf("grant permission: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (r *RoleRepository) ListPermissions(ctx context.Context, page int, limit int) ([]model.Permission, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM permissions`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count permissions: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, name, code, COALESCE(description, ''), created_at
		 FROM permissions ORDER BY code LIMIT $1 OFFSET $2`,
		limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list permissions: %w", err)
	}
	defer rows.Close()

	perms := make([]model.Permission, 0)
	for rows.Next() {
		var p model.Permission
		if err := rows.Scan(&p.ID, &p.Name, &p.Code, &p.Description, &p.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan permission: %w", err)
		}
		perms = append(perms, p)
	}
	return perms, total, rows.Err()
}

func (r *RoleRepository) FindPermissionByID(ctx context.Context, id string) (model.Permission, error) {
	var p model.Permission
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, code, COALESCE(description, ''), created_at FROM permissions WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.Code, &p.Description, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Permission{}, model.ErrPermissionNotFound
	}
	if err != nil {
		return model.Permission{}, fmt.Errorf("find permission: %w", err)
	}
	return p, nil
}

func (r *RoleRepository) CreatePermission(ctx context.Context, p model.Permission) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO permissions (id, name, code, description, created_at)
		 VALUES ($1, $2, $3, NULLIF($4, ''), $5)`,
		p.ID, p.Name, p.Code, p.Description, p.CreatedAt)
	if isUniqueViolation(err) {
		return model.ErrDuplicateCode
	}
	if err != nil {
		return fmt.Errorf("create permission: %w", err)
	}
	return nil
}

func (r *RoleRepository) UpdatePermission(ctx context.Context, p model.Permission) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE permissions SET name = $2, code = $3, description = NULLIF($4, '') WHERE id = $1`,
		p.ID, p.Name, p.Code, p.Description)
	if isUniqueViolation(err) {
		return model.ErrDuplicateCode
	}
	if err != nil {
		return fmt.Errorf("update permission: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrPermissionNotFound
	}
	return nil
}

// DeletePermission refuses to remove a permission any role still grants.
func (r *RoleRepository) DeletePermission(ctx context.Context, id string) error {
	var granted int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM role_permissions WHERE permission_id = $1`, id).Scan(&granted); err != nil {
		return fmt.Errorf("count permission grants: %w", err)
	}
	if granted > 0 {
		return model.ErrPermissionInUse
	}

	tag, err := r.pool.Exec(ctx, `DELETE FROM permissions WHERE id = $1`, id)
	if isForeignKeyViolation(err) {
		return model.ErrPermissionInUse
	}
	if err != nil {
		return fmt.Errorf("delete permission: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrPermissionNotFound
	}
	return nil
}
