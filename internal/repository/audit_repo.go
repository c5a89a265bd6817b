package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"vismay-core/internal/model"
)

// AuditRepository appends auth and admin events to an append-only table.
// Entries are never updated or deleted.
type AuditRepository struct {
	pool *pgxpool.Pool
}

func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

func (r *AuditRepository) Insert(ctx context.Context, e model.AuditEntry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO audit_entries (id, action, actor_id, actor_name, resource, status, detail, client_ip, occurred_at)
		 VALUES ($1, $2, NULLIF($3, '')::uuid, NULLIF($4, ''), NULLIF($5, ''), $6, NULLIF($7, ''), NULLIF($8, ''), $9)`,
		e.ID, e.Action, e.ActorID, e.ActorName, e.Resource, e.Status, e.Detail, e.ClientIP, e.OccurredAt)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

func (r *AuditRepository) List(ctx context.Context, page int, limit int) ([]model.AuditEntry, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM audit_entries`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count audit entries: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, action, COALESCE(actor_id::text, ''), COALESCE(actor_name, ''), COALESCE(resource, ''),
		        status, COALESCE(detail, ''), COALESCE(client_ip, ''), occurred_at
		 FROM audit_entries ORDER BY occurred_at DESC LIMIT $1 OFFSET $2`,
		limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	entries := make([]model.AuditEntry, 0)
	for rows.Next() {
		var e model.AuditEntry
		if err := rows.Scan(&e.ID, &e.Action, &e.ActorID, &e.ActorName, &e.Resource,
			&e.Status, &e.Detail, &e.ClientIP, &e.OccurredAt); err != nil {
			return nil, 0, fmt.Errorf("scan audit entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, total, rows.Err()
}
