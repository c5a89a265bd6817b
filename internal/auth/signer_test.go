package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"vismay-core/internal/model"
)

func TestHS256Signer(t *testing.T) {
	t.Parallel()

	signer := NewHS256Signer("test-secret-at-least-32-bytes-long")
	now := time.Now().UTC()

	t.Run("round trips access claims", func(t *testing.T) {
		claims := NewClaims("user-1", "tenant-1", "admin", KindAccess, "jti-1", now, time.Minute)

		token, err := signer.Sign(claims)
		require.NoError(t, err)

		parsed, err := signer.Parse(token)
		require.NoError(t, err)
		require.Equal(t, "user-1", parsed.UserID())
		require.Equal(t, "tenant-1", parsed.TenantID)
		require.Equal(t, "admin", parsed.Role)
		require.Equal(t, KindAccess, parsed.Kind)
		require.Equal(t, "jti-1", parsed.TokenID())
	})

	t.Run("expired token fails with expiry error", func(t *testing.T) {
		claims := NewClaims("user-1", "", "admin", KindAccess, "jti-2", now.Add(-2*time.Minute), time.Minute)

		token, err := signer.Sign(claims)
		require.NoError(t, err)

		_, err = signer.Parse(token)
		require.ErrorIs(t, err, model.ErrTokenExpired)
	})

	t.Run("garbage input is malformed", func(t *testing.T) {
		_, err := signer.Parse("not.a.jwt")
		require.ErrorIs(t, err, model.ErrTokenMalformed)
	})

	t.Run("wrong secret is malformed, not expired", func(t *testing.T) {
		claims := NewClaims("user-1", "", "admin", KindAccess, "jti-3", now, time.Minute)

		token, err := signer.Sign(claims)
		require.NoError(t, err)

		other := NewHS256Signer("a-completely-different-signing-key")
		_, err = other.Parse(token)
		require.ErrorIs(t, err, model.ErrTokenMalformed)
	})

	t.Run("tampered payload is malformed", func(t *testing.T) {
		claims := NewClaims("user-1", "", "admin", KindAccess, "jti-4", now, time.Minute)

		token, err := signer.Sign(claims)
		require.NoError(t, err)

		tampered := token[:len(token)-4] + "AAAA"
		_, err = signer.Parse(tampered)
		require.ErrorIs(t, err, model.ErrTokenMalformed)
	})

	t.Run("missing subject is malformed", func(t *testing.T) {
		claims := NewClaims("", "", "admin", KindAccess, "jti-5", now, time.Minute)

		token, err := signer.Sign(claims)
		require.NoError(t, err)

		_, err = signer.Parse(token)
		require.ErrorIs(t, err, model.ErrTokenMalformed)
	})

	t.Run("refresh kind survives the round trip", func(t *testing.T) {
		claims := NewClaims("user-1", "", "admin", KindRefresh, "jti-6", now, time.Hour)

		token, err := signer.Sign(claims)
		require.NoError(t, err)

		parsed, err := signer.Parse(token)
		require.NoError(t, err)
		require.Equal(t, KindRefresh, parsed.Kind)
	})
}
