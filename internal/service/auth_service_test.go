package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"vismay-core/internal/auth"
	"vismay-core/internal/model"
)

type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]model.User
}

func newFakeUserStore(users ...model.User) *fakeUserStore {
	s := &fakeUserStore{users: make(map[string]model.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *fakeUserStore) FindByID(_ context.Context, id string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return u, nil
}

func (s *fakeUserStore) FindByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, model.ErrUserNotFound
}

func (s *fakeUserStore) UpdatePassword(_ context.Context, userID string, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return model.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	s.users[userID] = u
	return nil
}

type refreshRecord struct {
	userID    string
	expiresAt time.Time
}

type fakeTokenStore struct {
	mu       sync.Mutex
	refresh  map[string]refreshRecord
	revoked  map[string]time.Time
	purgeErr error
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{
		refresh: make(map[string]refreshRecord),
		revoked: make(map[string]time.Time),
	}
}

func (s *fakeTokenStore) StoreRefresh(_ context.Context, jti string, userID string, _ time.Time, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh[jti] = refreshRecord{userID: userID, expiresAt: expiresAt}
	return nil
}

func (s *fakeTokenStore) ConsumeRefresh(_ context.Context, jti string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.refresh[jti]
	if !ok || !rec.expiresAt.After(time.Now()) {
		return "", model.ErrTokenRevoked
	}
	delete(s.refresh, jti)
	return rec.userID, nil
}

func (s *fakeTokenStore) DeleteRefresh(_ context.Context, jti string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.refresh, jti)
	return nil
}

func (s *fakeTokenStore) DeleteAllForUser(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for jti, rec := range s.refresh {
		if rec.userID == userID {
			delete(s.refresh, jti)
		}
	}
	return nil
}

func (s *fakeTokenStore) Revoke(_ context.Context, jti string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.revoked[jti]; !ok {
		s.revoked[jti] = expiresAt
	}
	return nil
}

func (s *fakeTokenStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.revoked[jti]
	return ok, nil
}

func (s *fakeTokenStore) PurgeExpired(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var purged int64
	now := time.Now()
	for jti, rec := range s.refresh {
		if !rec.expiresAt.After(now) {
			delete(s.refresh, jti)
			purged++
		}
	}
	for jti, exp := range s.revoked {
		if !exp.After(now) {
			delete(s.revoked, jti)
			purged++
		}
	}
	return purged, s.purgeErr
}

type plainHasher struct{}

func (plainHasher) Hash(plaintext string) (string, error) { return "h:" + plaintext, nil }
func (plainHasher) Verify(hash string, plaintext string) bool {
	return hash == "h:"+plaintext
}

func newTestAuthService(users *fakeUserStore, tokens *fakeTokenStore) *AuthService {
	signer := auth.NewHS256Signer("test-secret-at-least-32-bytes-long")
	return NewAuthService(signer, plainHasher{}, users, tokens, 30*time.Minute, 7*24*time.Hour)
}

func activeUser() model.User {
	tenant := "tenant-1"
	return model.User{
		ID:           "user-1",
		TenantID:     &tenant,
		RoleID:       "role-1",
		RoleName:     "admin",
		Username:     "jdoe",
		Email:        "jdoe@example.com",
		PasswordHash: "h:Admin@1234",
		IsActive:     true,
	}
}

func TestAuthServiceLogin(t *testing.T) {
	t.Parallel()

	t.Run("issues a token pair for valid credentials", func(t *testing.T) {
		users := newFakeUserStore(activeUser())
		tokens := newFakeTokenStore()
		svc := newTestAuthService(users, tokens)

		pair, err := svc.Login(context.Background(), "jdoe@example.com", "Admin@1234")
		require.NoError(t, err)
		require.NotEmpty(t, pair.AccessToken)
		require.NotEmpty(t, pair.RefreshToken)
		require.NotEqual(t, pair.AccessToken, pair.RefreshToken)
		require.Equal(t, "bearer", pair.TokenType)
		require.Equal(t, int64(1800), pair.ExpiresIn)
		require.Equal(t, "jdoe@example.com", pair.User.Email)
		require.Len(t, tokens.refresh, 1)
	})

	t.Run("trims the email before lookup", func(t *testing.T) {
		svc := newTestAuthService(newFakeUserStore(activeUser()), newFakeTokenStore())

		_, err := svc.Login(context.Background(), "  jdoe@example.com  ", "Admin@1234")
		require.NoError(t, err)
	})

	t.Run("wrong password, unknown user and disabled user are indistinguishable", func(t *testing.T) {
		disabled := activeUser()
		disabled.ID = "user-2"
		disabled.Email = "off@example.com"
		disabled.IsActive = false
		svc := newTestAuthService(newFakeUserStore(activeUser(), disabled), newFakeTokenStore())

		_, wrongPassword := svc.Login(context.Background(), "jdoe@example.com", "nope")
		_, unknownUser := svc.Login(context.Background(), "ghost@example.com", "Admin@1234")
		_, disabledUser := svc.Login(context.Background(), "off@example.com", "Admin@1234")

		require.ErrorIs(t, wrongPassword, model.ErrInvalidCredentials)
		require.Equal(t, wrongPassword, unknownUser)
		require.Equal(t, wrongPassword, disabledUser)
	})
}

func TestAuthServiceValidate(t *testing.T) {
	t.Parallel()

	users := newFakeUserStore(activeUser())
	tokens := newFakeTokenStore()
	svc := newTestAuthService(users, tokens)

	pair, err := svc.Login(context.Background(), "jdoe@example.com", "Admin@1234")
	require.NoError(t, err)

	t.Run("accepts an access token as access", func(t *testing.T) {
		claims, err := svc.Validate(context.Background(), pair.AccessToken, auth.KindAccess)
		require.NoError(t, err)
		require.Equal(t, "user-1", claims.UserID())
		require.Equal(t, "admin", claims.Role)
		require.Equal(t, "tenant-1", claims.TenantID)
	})

	t.Run("rejects an access token where a refresh token is expected", func(t *testing.T) {
		_, err := svc.Validate(context.Background(), pair.AccessToken, auth.KindRefresh)
		require.ErrorIs(t, err, model.ErrTokenWrongKind)
	})

	t.Run("rejects a refresh token where an access token is expected", func(t *testing.T) {
		_, err := svc.Validate(context.Background(), pair.RefreshToken, auth.KindAccess)
		require.ErrorIs(t, err, model.ErrTokenWrongKind)
	})
}

func TestAuthServiceRefresh(t *testing.T) {
	t.Parallel()

	t.Run("rotates the pair and kills the presented token", func(t *testing.T) {
		users := newFakeUserStore(activeUser())
		tokens := newFakeTokenStore()
		svc := newTestAuthService(users, tokens)

		pair, err := svc.Login(context.Background(), "jdoe@example.com", "Admin@1234")
		require.NoError(t, err)

		rotated, err := svc.Refresh(context.Background(), pair.RefreshToken)
		require.NoError(t, err)
		require.NotEmpty(t, rotated.AccessToken)
		require.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

		// Replay of the consumed token must fail.
		_, err = svc.Refresh(context.Background(), pair.RefreshToken)
		require.ErrorIs(t, err, model.ErrTokenRevoked)

		// The freshly issued token still works.
		_, err = svc.Refresh(context.Background(), rotated.RefreshToken)
		require.NoError(t, err)
	})

	t.Run("rejects an access token", func(t *testing.T) {
		users := newFakeUserStore(activeUser())
		svc := newTestAuthService(users, newFakeTokenStore())

		pair, err := svc.Login(context.Background(), "jdoe@example.com", "Admin@1234")
		require.NoError(t, err)

		_, err = svc.Refresh(context.Background(), pair.AccessToken)
		require.ErrorIs(t, err, model.ErrTokenWrongKind)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		svc := newTestAuthService(newFakeUserStore(), newFakeTokenStore())

		_, err := svc.Refresh(context.Background(), "garbage")
		require.ErrorIs(t, err, model.ErrTokenMalformed)
	})

	t.Run("fails when the user was disabled after login", func(t *testing.T) {
		users := newFakeUserStore(activeUser())
		tokens := newFakeTokenStore()
		svc := newTestAuthService(users, tokens)

		pair, err := svc.Login(context.Background(), "jdoe@example.com", "Admin@1234")
		require.NoError(t, err)

		u := users.users["user-1"]
		u.IsActive = false
		users.users["user-1"] = u

		_, err = svc.Refresh(context.Background(), pair.RefreshToken)
		require.ErrorIs(t, err, model.ErrInvalidCredentials)
	})

	t.Run("picks up a role change on rotation", func(t *testing.T) {
		users := newFakeUserStore(activeUser())
		tokens := newFakeTokenStore()
		svc := newTestAuthService(users, tokens)

		pair, err := svc.Login(context.Background(), "jdoe@example.com", "Admin@1234")
		require.NoError(t, err)

		u := users.users["user-1"]
		u.RoleName = "executive"
		users.users["user-1"] = u

		rotated, err := svc.Refresh(context.Background(), pair.RefreshToken)
		require.NoError(t, err)

		claims, err := svc.Validate(context.Background(), rotated.AccessToken, auth.KindAccess)
		require.NoError(t, err)
		require.Equal(t, "executive", claims.Role)
	})
}

func TestAuthServiceLogout(t *testing.T) {
	t.Parallel()

	t.Run("revoked access token no longer validates", func(t *testing.T) {
		users := newFakeUserStore(activeUser())
		tokens := newFakeTokenStore()
		svc := newTestAuthService(users, tokens)

		pair, err := svc.Login(context.Background(), "jdoe@example.com", "Admin@1234")
		require.NoError(t, err)

		require.NoError(t, svc.Logout(context.Background(), pair.AccessToken))

		_, err = svc.Validate(context.Background(), pair.AccessToken, auth.KindAccess)
		require.ErrorIs(t, err, model.ErrTokenRevoked)
	})

	t.Run("revoked refresh token cannot rotate", func(t *testing.T) {
		users := newFakeUserStore(activeUser())
		tokens := newFakeTokenStore()
		svc := newTestAuthService(users, tokens)

		pair, err := svc.Login(context.Background(), "jdoe@example.com", "Admin@1234")
		require.NoError(t, err)

		require.NoError(t, svc.Logout(context.Background(), pair.RefreshToken))
		require.Empty(t, tokens.refresh)

		_, err = svc.Refresh(context.Background(), pair.RefreshToken)
		require.ErrorIs(t, err, model.ErrTokenRevoked)
	})

	t.Run("is idempotent and tolerates garbage", func(t *testing.T) {
		users := newFakeUserStore(activeUser())
		svc := newTestAuthService(users, newFakeTokenStore())

		pair, err := svc.Login(context.Background(), "jdoe@example.com", "Admin@1234")
		require.NoError(t, err)

		require.NoError(t, svc.Logout(context.Background(), pair.AccessToken))
		require.NoError(t, svc.Logout(context.Background(), pair.AccessToken))
		require.NoError(t, svc.Logout(context.Background(), "not-a-token"))
	})
}

func TestAuthServiceChangePassword(t *testing.T) {
	t.Parallel()

	t.Run("rehashes and drops live refresh tokens", func(t *testing.T) {
		users := newFakeUserStore(activeUser())
		tokens := newFakeTokenStore()
		svc := newTestAuthService(users, tokens)

		pair, err := svc.Login(context.Background(), "jdoe@example.com", "Admin@1234")
		require.NoError(t, err)

		require.NoError(t, svc.ChangePassword(context.Background(), "user-1", "Admin@1234", "NewSecret1"))
		require.Empty(t, tokens.refresh)

		_, err = svc.Refresh(context.Background(), pair.RefreshToken)
		require.ErrorIs(t, err, model.ErrTokenRevoked)

		_, err = svc.Login(context.Background(), "jdoe@example.com", "NewSecret1")
		require.NoError(t, err)
	})

	t.Run("rejects a wrong current password", func(t *testing.T) {
		svc := newTestAuthService(newFakeUserStore(activeUser()), newFakeTokenStore())

		err := svc.ChangePassword(context.Background(), "user-1", "nope", "NewSecret1")
		require.ErrorIs(t, err, model.ErrInvalidCredentials)
	})

	t.Run("rejects a short new password", func(t *testing.T) {
		svc := newTestAuthService(newFakeUserStore(activeUser()), newFakeTokenStore())

		err := svc.ChangePassword(context.Background(), "user-1", "Admin@1234", "short")
		require.ErrorIs(t, err, model.ErrInvalidInput)
	})
}
