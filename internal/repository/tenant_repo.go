package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"vismay-core/internal/model"
)

type TenantRepository struct {
	pool *pgxpool.Pool
}

func NewTenantRepository(pool *pgxpool.Pool) *TenantRepository {
	return &TenantRepository{pool: pool}
}

func (r *TenantRepository) FindByID(ctx context.Context, id string) (model.Tenant, error) {
	var t model.Tenant
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, code, is_active, created_at, updated_at FROM tenants WHERE id = $1`, id).
		Scan(&t.ID, &t.Name, &t.Code, &t.IsActive, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Tenant{}, model.ErrTenantNotFound
	}
	if err != nil {
		return model.Tenant{}, fmt.Errorf("find tenant: %w", err)
	}
	return t, nil
}

func (r *TenantRepository) List(ctx context.Context, page int, limit int) ([]model.Tenant, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tenants`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count tenants: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, name, code, is_active, created_at, updated_at
		 FROM tenants ORDER BY name LIMIT $1 OFFSET $2`, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list tenants: %w", err)
	}
	defer rows.Close()

	tenants := make([]model.Tenant, 0)
	for rows.Next() {
		var t model.Tenant
		if err := rows.Scan(&t.ID, &t.Name, &t.Code, &t.IsActive, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan tenant: %w", err)
		}
		tenants = append(tenants, t)
	}
	return tenants, total, rows.Err()
}

func (r *TenantRepository) Create(ctx context.Context, t model.Tenant) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO tenants (id, name, code, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		t.ID, t.Name, t.Code, t.IsActive, t.CreatedAt, t.UpdatedAt)
	if isUniqueViolation(err) {
		return model.ErrDuplicateCode
	}
	if err != nil {
		return fmt.Errorf("create tenant: %w", err)
	}
	return nil
}

func (r *TenantRepository) Update(ctx context.Context, t model.Tenant) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE tenants SET name = $2, code = $3, is_active = $4, updated_at = $5 WHERE id = $1`,
		t.ID, t.Name, t.Code, t.IsActive, time.Now().UTC())
	if isUniqueViolation(err) {
		return model.ErrDuplicateCode
	}
	if err != nil {
		return fmt.Errorf("update tenant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrTenantNotFound
	}
	return nil
}

func (r *TenantRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tenants WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete tenant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrTenantNotFound
	}
	return nil
}
