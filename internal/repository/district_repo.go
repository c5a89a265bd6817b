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

type DistrictRepository struct {
	pool *pgxpool.Pool
}

func NewDistrictRepository(pool *pgxpool.Pool) *DistrictRepository {
	return &DistrictRepository{pool: pool}
}

func (r *DistrictRepository) FindByID(ctx context.Context, id string) (model.District, error) {
	var d model.District
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, state, is_active, created_at, updated_at FROM districts WHERE id = $1`, id).
		Scan(&d.ID, &d.Name, &d.State, &d.IsActive, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.District{}, model.ErrDistrictNotFound
	}
	if err != nil {
		return model.District{}, fmt.Errorf("find district: %w", err)
	}
	return d, nil
}

func (r *DistrictRepository) List(ctx context.Context, page int, limit int) ([]model.District, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM districts`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count districts: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, name, state, is_active, created_at, updated_at
		 FROM districts ORDER BY name LIMIT $1 OFFSET $2`, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list districts: %w", err)
	}
	defer rows.Close()

	districts := make([]model.District, 0)
	for rows.Next() {
		var d model.District
		if err := rows.Scan(&d.ID, &d.Name, &d.State, &d.IsActive, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan district: %w", err)
		}
		districts = append(districts, d)
	}
	return districts, total, rows.Err()
}

func (r *DistrictRepository) Create(ctx context.Context, d model.District) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO districts (id, name, state, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		d.ID, d.Name, d.State, d.IsActive, d.CreatedAt, d.UpdatedAt)
	if isUniqueViolation(err) {
		return model.ErrDuplicateName
	}
	if err != nil {
		return fmt.Errorf("create district: %w", err)
	}
	return nil
}

func (r *DistrictRepository) Update(ctx context.Context, d model.District) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE districts SET name = $2, state = $3, is_active = $4, updated_at = $5 WHERE id = $1`,
		d.ID, d.Name, d.State, d.IsActive, time.Now().UTC())
	if isUniqueViolation(err) {
		return model.ErrDuplicateName
	}
	if err != nil {
		return fmt.Errorf("update district: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrDistrictNotFound
	}
	return nil
}

func (r *DistrictRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM districts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete district: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrDistrictNotFound
	}
	return nil
}
