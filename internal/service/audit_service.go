package service

import (
	"context"
	"log/slog"
	"time"

	"vismay-core/internal/model"
)

type auditStore interface {
	Insert(ctx context.Context, e model.AuditEntry) error
	List(ctx context.Context, page int, limit int) ([]model.AuditEntry, int, error)
}

type AuditService struct {
	store auditStore
}

func NewAuditService(store auditStore) *AuditService {
	return &AuditService{store: store}
}

// Record appends an audit entry. Failures are logged, never propagated: an
// audit write must not fail the request it describes.
func (s *AuditService) Record(ctx context.Context, e model.AuditEntry) {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}

	if err := s.store.Insert(ctx, e); err != nil {
		slog.Error("audit record failed", "action", e.Action, "error", err)
	}
}

func (s *AuditService) List(ctx context.Context, page int, limit int) ([]model.AuditEntry, int, error) {
	return s.store.List(ctx, page, limit)
}
