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

type CategoryRepository struct {
	pool *pgxpool.Pool
}

func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

func (r *CategoryRepository) FindByID(ctx context.Context, id string) (model.Category, error) {
	var c model.Category
	err := r.pool.QueryRow(ctx,
		`SELECT id, tenant_id, name, is_active, created_at, updated_at FROM categories WHERE id = $1`, id).
		Scan(&c.ID, &c.TenantID, &c.Name, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Category{}, model.ErrCategoryNotFound
	}
	if err != nil {
		return model.Category{}, fmt.Errorf("find category: %w", err)
	}
	return c, nil
}

// List is tenant-scoped; tenantID == "" lists across all tenants.
func (r *CategoryRepository) List(ctx context.Context, tenantID string, page int, limit int) ([]model.Category, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM categories WHERE ($1 = '' OR tenant_id = $1::uuid)`, tenantID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count categories: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, tenant_id, name, is_active, created_at, updated_at
		 FROM categories WHERE ($1 = '' OR tenant_id = $1::uuid)
		 ORDER BY name LIMIT $2 OFFSET $3`, tenantID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := make([]model.Category, 0)
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.TenantID, &c.Name, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, total, rows.Err()
}

func (r *CategoryRepository) Create(ctx context.Context, c model.Category) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO categories (id, tenant_id, name, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.TenantID, c.Name, c.IsActive, c.CreatedAt, c.UpdatedAt)
	if isUniqueViolation(err) {
		return model.ErrDuplicateName
	}
	if isForeignKeyViolation(err) {
		return model.ErrTenantNotFound
	}
	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

func (r *CategoryRepository) Update(ctx context.Context, c model.Category) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE categories SET name = $2, is_active = $3, updated_at = $4 WHERE id = $1`,
		c.ID, c.Name, c.IsActive, time.Now().UTC())
	if isUniqueViolation(err) {
		return model.ErrDuplicateName
	}
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCategoryNotFound
	}
	return nil
}

func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCategoryNotFound
	}
	return nil
}
