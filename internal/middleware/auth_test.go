package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"vismay-core/internal/auth"
	"vismay-core/internal/model"
)

type fakeValidator struct {
	tokens map[string]*auth.Claims
	errs   map[string]error
}

func (v *fakeValidator) Validate(_ context.Context, token string, _ string) (*auth.Claims, error) {
	if err, ok := v.errs[token]; ok {
		return nil, err
	}
	if claims, ok := v.tokens[token]; ok {
		return claims, nil
	}
	return nil, model.ErrTokenMalformed
}

type fakeAuthorizer struct {
	allowed map[string]map[string]bool
	err     error
}

func (a *fakeAuthorizer) Authorize(_ context.Context, roleName string, required string) (bool, error) {
	if a.err != nil {
		return false, a.err
	}
	return a.allowed[roleName][required], nil
}

type capturingAudit struct {
	entries []model.AuditEntry
}

func (a *capturingAudit) Record(_ context.Context, e model.AuditEntry) {
	a.entries = append(a.entries, e)
}

func adminClaims() *auth.Claims {
	return auth.NewClaims("user-1", "tenant-1", "admin", auth.KindAccess, "jti-1", time.Now(), time.Minute)
}

func okHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) model.APIResponse {
	t.Helper()
	var resp model.APIResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestRequireAuth(t *testing.T) {
	t.Parallel()

	validator := &fakeValidator{
		tokens: map[string]*auth.Claims{"good-token": adminClaims()},
		errs: map[string]error{
			"expired-token": model.ErrTokenExpired,
			"refresh-token": model.ErrTokenWrongKind,
			"revoked-token": model.ErrTokenRevoked,
		},
	}
	guard := NewAuthMiddleware(validator, &fakeAuthorizer{}, nil)

	t.Run("missing header is a 401", func(t *testing.T) {
		var called bool
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)

		guard.RequireAuth(okHandler(&called)).ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.False(t, called)
		resp := decodeEnvelope(t, rec)
		require.False(t, resp.Success)
		require.Equal(t, "UNAUTHORIZED", resp.Error.Code)
	})

	t.Run("non bearer scheme is a 401", func(t *testing.T) {
		var called bool
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")

		guard.RequireAuth(okHandler(&called)).ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.False(t, called)
	})

	t.Run("every token failure produces the same body", func(t *testing.T) {
		bodies := map[string]string{}
		for _, token := range []string{"expired-token", "refresh-token", "revoked-token", "garbage"} {
			var called bool
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
			req.Header.Set("Authorization", "Bearer "+token)

			guard.RequireAuth(okHandler(&called)).ServeHTTP(rec, req)

			require.Equal(t, http.StatusUnauthorized, rec.Code, token)
			require.False(t, called, token)
			bodies[rec.Body.String()] = token
		}
		require.Len(t, bodies, 1)
	})

	t.Run("valid token attaches claims and passes through", func(t *testing.T) {
		var gotClaims *auth.Claims
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
		req.Header.Set("Authorization", "Bearer good-token")

		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotClaims, _ = ClaimsFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		})
		guard.RequireAuth(next).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, gotClaims)
		require.Equal(t, "user-1", gotClaims.UserID())
		require.Equal(t, "admin", gotClaims.Role)
	})

	t.Run("bearer scheme is case insensitive", func(t *testing.T) {
		var called bool
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
		req.Header.Set("Authorization", "BEARER good-token")

		guard.RequireAuth(okHandler(&called)).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.True(t, called)
	})
}

func TestRequirePermission(t *testing.T) {
	t.Parallel()

	resolver := &fakeAuthorizer{allowed: map[string]map[string]bool{
		"admin": {"users:view": true},
	}}

	t.Run("passes through when the permission is granted", func(t *testing.T) {
		var called bool
		guard := NewAuthMiddleware(&fakeValidator{}, resolver, nil)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
		req = req.WithContext(ContextWithClaims(req.Context(), adminClaims()))

		guard.RequirePermission("users:view")(okHandler(&called)).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.True(t, called)
	})

	t.Run("denies and audits a missing permission", func(t *testing.T) {
		var called bool
		audit := &capturingAudit{}
		guard := NewAuthMiddleware(&fakeValidator{}, resolver, audit)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/tenants/t-1", nil)
		req = req.WithContext(ContextWithClaims(req.Context(), adminClaims()))

		guard.RequirePermission("tenants:delete")(okHandler(&called)).ServeHTTP(rec, req)

		require.Equal(t, http.StatusForbidden, rec.Code)
		require.False(t, called)
		resp := decodeEnvelope(t, rec)
		require.Equal(t, "FORBIDDEN", resp.Error.Code)

		require.Len(t, audit.entries, 1)
		require.Equal(t, "access.denied", audit.entries[0].Action)
		require.Equal(t, "user-1", audit.entries[0].ActorID)
		require.Equal(t, "tenants:delete", audit.entries[0].Detail)
	})

	t.Run("missing claims is a 401, not a 403", func(t *testing.T) {
		var called bool
		guard := NewAuthMiddleware(&fakeValidator{}, resolver, nil)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)

		guard.RequirePermission("users:view")(okHandler(&called)).ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.False(t, called)
	})

	t.Run("resolution failure denies without leaking the cause", func(t *testing.T) {
		var called bool
		broken := &fakeAuthorizer{err: model.ErrCyclicRoleGrant}
		guard := NewAuthMiddleware(&fakeValidator{}, broken, nil)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
		req = req.WithContext(ContextWithClaims(req.Context(), adminClaims()))

		guard.RequirePermission("users:view")(okHandler(&called)).ServeHTTP(rec, req)

		require.Equal(t, http.StatusForbidden, rec.Code)
		require.False(t, called)
		resp := decodeEnvelope(t, rec)
		require.Equal(t, "access denied", resp.Error.Message)
	})
}
