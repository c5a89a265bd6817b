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

// TokenRepository holds the only server-side token state: the set of live
// refresh JTIs (rotation allowlist) and the denylist of explicitly revoked
// JTIs. Both sets are keyed by expiry so PurgeExpired keeps them bounded.
type TokenRepository struct {
	pool *pgxpool.Pool
}

func NewTokenRepository(pool *pgxpool.Pool) *TokenRepository {
	return &TokenRepository{pool: pool}
}

func (r *TokenRepository) StoreRefresh(ctx context.Context, jti string, userID string, issuedAt time.Time, expiresAt time.Time) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO refresh_tokens (jti, user_id, issued_at, expires_at)
		 VALUES ($1, $2, $3, $4)`,
		jti, userID, issuedAt, expiresAt)
	if err != nil {
		return fmt.Errorf("store refresh token: %w", err)
	}
	return nil
}

// ConsumeRefresh atomically invalidates a refresh JTI and returns its owner.
// The single DELETE closes the check-then-invalidate race: two concurrent
// refreshes with the same token cannot both succeed.
func (r *TokenRepository) ConsumeRefresh(ctx context.Context, jti string) (string, error) {
	var userID string
	err := r.pool.QueryRow(ctx,
		`DELETE FROM refresh_tokens WHERE jti = $1 AND expires_at > now() RETURNING user_id`,
		jti).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", model.ErrTokenRevoked
	}
	if err != nil {
		return "", fmt.Errorf("consume refresh token: %w", err)
	}
	return userID, nil
}

func (r *TokenRepository) DeleteRefresh(ctx context.Context, jti string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE jti = $1`, jti)
	if err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}
	return nil
}

func (r *TokenRepository) DeleteAllForUser(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete refresh tokens for user: %w", err)
	}
	return nil
}

// Revoke adds a JTI to the denylist. Idempotent: revoking an already revoked
// token is not an error.
func (r *TokenRepository) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO revoked_tokens (jti, expires_at) VALUES ($1, $2)
		 ON CONFLICT (jti) DO NOTHING`,
		jti, expiresAt)
	if err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (r *TokenRepository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var revoked bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM revoked_tokens WHERE jti = $1)`, jti).Scan(&revoked)
	if err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return revoked, nil
}

// PurgeExpired drops rows past their natural expiry from both sets.
func (r *TokenRepository) PurgeExpired(ctx context.Context) (int64, error) {
	tagRefresh, err := r.pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE expires_at <= now()`)
	if err != nil {
		return 0, fmt.Errorf("purge expired refresh tokens: %w", err)
	}

	tagRevoked, err := r.pool.Exec(ctx, `DELETE FROM revoked_tokens WHERE expires_at <= now()`)
	if err != nil {
		return 0, fmt.Errorf("purge expired revoked tokens: %w", err)
	}

	return tagRefresh.RowsAffected() + tagRevoked.RowsAffected(), nil
}
