package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"vismay-core/internal/model"
	"vismay-core/pkg/apierror"
)

var errTestOpaque = errors.New("pgconn: connection refused")

func recordError(t *testing.T, err error) (int, model.APIResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	writeError(rec, err)

	var resp model.APIResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return rec.Code, resp
}

func TestWriteError(t *testing.T) {
	t.Parallel()

	t.Run("invalid credentials is a generic 401", func(t *testing.T) {
		status, resp := recordError(t, model.ErrInvalidCredentials)
		require.Equal(t, http.StatusUnauthorized, status)
		require.False(t, resp.Success)
		require.Equal(t, "UNAUTHORIZED", resp.Error.Code)
		require.Equal(t, "Invalid credentials", resp.Error.Message)
	})

	t.Run("every token failure shares one 401 body", func(t *testing.T) {
		bodies := map[string]struct{}{}
		for _, err := range []error{
			model.ErrTokenExpired,
			model.ErrTokenMalformed,
			model.ErrTokenWrongKind,
			model.ErrTokenRevoked,
		} {
			status, resp := recordError(t, err)
			require.Equal(t, http.StatusUnauthorized, status)
			require.Equal(t, "UNAUTHORIZED", resp.Error.Code)
			bodies[resp.Error.Message] = struct{}{}
		}
		require.Len(t, bodies, 1)
	})

	t.Run("cyclic role grant is a 422 with its own code", func(t *testing.T) {
		status, resp := recordError(t, model.ErrCyclicRoleGrant)
		require.Equal(t, http.StatusUnprocessableEntity, status)
		require.Equal(t, "CYCLIC_ROLE_GRANT", resp.Error.Code)
	})

	t.Run("in-use conflicts map to 409", func(t *testing.T) {
		for _, err := range []error{model.ErrRoleInUse, model.ErrPermissionInUse} {
			status, resp := recordError(t, err)
			require.Equal(t, http.StatusConflict, status)
			require.Equal(t, "CONFLICT", resp.Error.Code)
		}
	})

	t.Run("missing records map to 404", func(t *testing.T) {
		for _, err := range []error{
			model.ErrUserNotFound,
			model.ErrRoleNotFound,
			model.ErrTenantNotFound,
			model.ErrProductNotFound,
		} {
			status, resp := recordError(t, err)
			require.Equal(t, http.StatusNotFound, status)
			require.Equal(t, "NOT_FOUND", resp.Error.Code)
		}
	})

	t.Run("an explicit api error passes through untouched", func(t *testing.T) {
		status, resp := recordError(t, apierror.New("TEAPOT", "short and stout", "", http.StatusTeapot))
		require.Equal(t, http.StatusTeapot, status)
		require.Equal(t, "TEAPOT", resp.Error.Code)
		require.Equal(t, "short and stout", resp.Error.Message)
	})

	t.Run("unknown errors collapse to a 500", func(t *testing.T) {
		status, resp := recordError(t, errTestOpaque)
		require.Equal(t, http.StatusInternalServerError, status)
		require.Equal(t, "INTERNAL_ERROR", resp.Error.Code)
		require.NotContains(t, resp.Error.Message, errTestOpaque.Error())
	})
}

func TestPagination(t *testing.T) {
	t.Parallel()

	t.Run("defaults apply", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
		page, limit := pagination(req)
		require.Equal(t, 1, page)
		require.Equal(t, 20, limit)
	})

	t.Run("explicit values win", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/users?page=3&limit=50", nil)
		page, limit := pagination(req)
		require.Equal(t, 3, page)
		require.Equal(t, 50, limit)
	})

	t.Run("out of range values fall back", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/users?page=0&limit=9999", nil)
		page, limit := pagination(req)
		require.Equal(t, 1, page)
		require.Equal(t, 20, limit)
	})
}
