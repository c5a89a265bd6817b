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

type ProductRepository struct {
	pool *pgxpool.Pool
}

func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

const productColumns = `id, tenant_id, category_id, name, sku, price_cents, is_active, created_at, updated_at`

func (r *ProductRepository) FindByID(ctx context.Context, id string) (model.Product, error) {
	var p model.Product
	err := r.pool.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id).
		Scan(&p.ID, &p.TenantID, &p.CategoryID, &p.Name, &p.SKU, &p.PriceCents,
			&p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Product{}, model.ErrProductNotFound
	}
	if err != nil {
		return model.Product{}, fmt.Errorf("find product: %w", err)
	}
	return p, nil
}

func (r *ProductRepository) List(ctx context.Context, tenantID string, page int, limit int) ([]model.Product, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM products WHERE ($1 = '' OR tenant_id = $1::uuid)`, tenantID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+productColumns+` FROM products WHERE ($1 = '' OR tenant_id = $1::uuid)
		 ORDER BY name LIMIT $2 OFFSET $3`, tenantID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := make([]model.Product, 0)
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.TenantID, &p.CategoryID, &p.Name, &p.SKU, &p.PriceCents,
			&p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, total, rows.Err()
}

func (r *ProductRepository) Create(ctx context.Context, p model.Product) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO products (id, tenant_id, category_id, name, sku, price_cents, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.ID, p.TenantID, p.CategoryID, p.Name, p.SKU, p.PriceCents, p.IsActive, p.CreatedAt, p.UpdatedAt)
	if isUniqueViolation(err) {
		return model.ErrDuplicateCode
	}
	if isForeignKeyViolation(err) {
		return model.ErrCategoryNotFound
	}
	if err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

func (r *ProductRepository) Update(ctx context.Context, p model.Product) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE products SET category_id = $2, name = $3, sku = $4, price_cents = $5, is_active = $6, updated_at = $7
		 WHERE id = $1`,
		p.ID, p.CategoryID, p.Name, p.SKU, p.PriceCents, p.IsActive, time.Now().UTC())
	if isUniqueViolation(err) {
		return model.ErrDuplicateCode
	}
	if isForeignKeyViolation(err) {
		return model.ErrCategoryNotFound
	}
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrProductNotFound
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrProductNotFound
	}
	return nil
}
