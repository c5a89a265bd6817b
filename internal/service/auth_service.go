package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"vismay-core/internal/auth"
	"vismay-core/internal/model"
)

type userStore interface {
	FindByID(ctx context.Context, id string) (model.User, error)
	FindByEmail(ctx context.Context, email string) (model.User, error)
	UpdatePassword(ctx context.Context, userID string, passwordHash string) error
}

type tokenStore interface {
	StoreRefresh(ctx context.Context, jti string, userID string, issuedAt time.Time, expiresAt time.Time) error
	ConsumeRefresh(ctx context.Context, jti string) (string, error)
	DeleteRefresh(ctx context.Context, jti string) error
	DeleteAllForUser(ctx context.Context, userID string) error
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
	PurgeExpired(ctx context.Context) (int64, error)
}

// AuthService owns the token lifecycle: credential verification, issuance of
// access/refresh pairs, validation, single-use refresh rotation and logout
// revocation.
type AuthService struct {
	signer     auth.Signer
	hasher     auth.Hasher
	users      userStore
	tokens     tokenStore
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewAuthService(signer auth.Signer, hasher auth.Hasher, users userStore, tokens tokenStore, accessTTL time.Duration, refreshTTL time.Duration) *AuthService {
	return &AuthService{
		signer:     signer,
		hasher:     hasher,
		users:      users,
		tokens:     tokens,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// Login verifies credentials and issues a token pair. A missing user, a
// disabled user and a wrong password all return ErrInvalidCredentials so the
// response cannot be used to enumerate accounts.
func (s *AuthService) Login(ctx context.Context, email string, password string) (model.TokenPair, error) {
	user, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return model.TokenPair{}, model.ErrInvalidCredentials
		}
		return model.TokenPair{}, err
	}

	if !user.IsActive || !s.hasher.Verify(user.PasswordHash, password) {
		return model.TokenPair{}, model.ErrInvalidCredentials
	}

	return s.issuePair(ctx, user)
}

// Validate verifies signature, expiry, kind and the revocation denylist, in
// that order.
func (s *AuthService) Validate(ctx context.Context, tokenString string, expectedKind string) (*auth.Claims, error) {
	claims, err := s.signer.Parse(tokenString)
	if err != nil {
		return nil, err
	}

	if claims.Kind != expectedKind {
		return nil, model.ErrTokenWrongKind
	}

	revoked, err := s.tokens.IsRevoked(ctx, claims.TokenID())
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, model.ErrTokenRevoked
	}

	return claims, nil
}

// Refresh rotates a refresh token. The presented JTI is consumed atomically
// before the new pair exists, so a replay of the old token can never race a
// concurrent refresh into two live sessions. Role and tenant are re-read
// from the user record, not taken from the stale claims.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (model.TokenPair, error) {
	claims, err := s.Validate(ctx, refreshToken, auth.KindRefresh)
	if err != nil {
		return model.TokenPair{}, err
	}

	userID, err := s.tokens.ConsumeRefresh(ctx, claims.TokenID())
	if err != nil {
		return model.TokenPair{}, err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return model.TokenPair{}, model.ErrInvalidCredentials
		}
		return model.TokenPair{}, err
	}
	if !user.IsActive {
		return model.TokenPair{}, model.ErrInvalidCredentials
	}

	return s.issuePair(ctx, user)
}

// Logout invalidates whichever token kind is presented by denylisting its
// JTI until natural expiry. Idempotent: an unparseable or already revoked
// token still acknowledges success.
func (s *AuthService) Logout(ctx context.Context, tokenString string) error {
	claims, err := s.signer.Parse(tokenString)
	if err != nil {
		return nil
	}

	expiresAt := time.Now().UTC().Add(s.refreshTTL)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	if err := s.tokens.Revoke(ctx, claims.TokenID(), expiresAt); err != nil {
		return err
	}

	if claims.Kind == auth.KindRefresh {
		if err := s.tokens.DeleteRefresh(ctx, claims.TokenID()); err != nil {
			return err
		}
	}

	return nil
}

func (s *AuthService) GetUserByID(ctx context.Context, userID string) (model.AuthUser, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return model.AuthUser{}, err
	}
	return user.Public(), nil
}

// ChangePassword re-hashes the credential and drops every live refresh token
// so stolen sessions die with the old password.
func (s *AuthService) ChangePassword(ctx context.Context, userID string, currentPassword string, newPassword string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if !s.hasher.Verify(user.PasswordHash, currentPassword) {
		return model.ErrInvalidCredentials
	}

	if len(newPassword) < 8 {
		return model.ErrInvalidInput
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}

	return s.tokens.DeleteAllForUser(ctx, userID)
}

func (s *AuthService) issuePair(ctx context.Context, user model.User) (model.TokenPair, error) {
	now := time.Now().UTC()
	tenantID := ""
	if user.TenantID != nil {
		tenantID = *user.TenantID
	}

	accessToken, err := s.signer.Sign(auth.NewClaims(
		user.ID, tenantID, user.RoleName, auth.KindAccess, uuid.NewString(), now, s.accessTTL))
	if err != nil {
		return model.TokenPair{}, err
	}

	refreshJTI := uuid.NewString()
	refreshToken, err := s.signer.Sign(auth.NewClaims(
		user.ID, tenantID, user.RoleName, auth.KindRefresh, refreshJTI, now, s.refreshTTL))
	if err != nil {
		return model.TokenPair{}, err
	}

	if err := s.tokens.StoreRefresh(ctx, refreshJTI, user.ID, now, now.Add(s.refreshTTL)); err != nil {
		return model.TokenPair{}, err
	}

	return model.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    int64(s.accessTTL.Seconds()),
		User:         user.Public(),
	}, nil
}

// StartPurgeTicker periodically drops expired rows from the refresh
// allowlist and the revocation denylist so both stay bounded.
func (s *AuthService) StartPurgeTicker(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purged, err := s.tokens.PurgeExpired(ctx)
			if err != nil {
				slog.Error("token purge failed", "error", err)
				continue
			}
			if purged > 0 {
				slog.Info("purged expired tokens", "count", purged)
			}
		}
	}
}
