package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"vismay-core/internal/auth"
	"vismay-core/internal/middleware"
	"vismay-core/internal/model"
	"vismay-core/pkg/apierror"
)

func writeSuccess(w http.ResponseWriter, status int, data any, meta *model.Meta) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: true,
		Data:    data,
		Meta:    meta,
	})
}

// writeError maps internal error kinds to the external envelope. Every
// authentication failure collapses to the same 401 body; the concrete kind
// is logged, never echoed.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	body := &model.APIError{
		Code:    "INTERNAL_ERROR",
		Message: "Unexpected server error",
	}

	var apiErr *apierror.APIError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatus
		body.Code = apiErr.Code
		body.Message = apiErr.Message
		body.Details = apiErr.Details
	case errors.Is(err, model.ErrInvalidCredentials):
		status = http.StatusUnauthorized
		body.Code = "UNAUTHORIZED"
		body.Message = "Invalid credentials"
	case errors.Is(err, model.ErrTokenExpired),
		errors.Is(err, model.ErrTokenMalformed),
		errors.Is(err, model.ErrTokenWrongKind),
		errors.Is(err, model.ErrTokenRevoked):
		status = http.StatusUnauthorized
		body.Code = "UNAUTHORIZED"
		body.Message = "Invalid or expired token"
		slog.Debug("token error", "reason", err)
	case errors.Is(err, model.ErrInsufficientPermission):
		status = http.StatusForbidden
		body.Code = "FORBIDDEN"
		body.Message = "Access denied"
	case errors.Is(err, model.ErrCyclicRoleGrant):
		status = http.StatusUnprocessableEntity
		body.Code = "CYCLIC_ROLE_GRANT"
		body.Message = "Role hierarchy contains a cycle"
	case errors.Is(err, model.ErrUserNotFound):
		status = http.StatusNotFound
		body.Code = "NOT_FOUND"
		body.Message = "User not found"
	case errors.Is(err, model.ErrUserAlreadyExists):
		status = http.StatusConflict
		body.Code = "ALREADY_EXISTS"
		body.Message = "User already exists"
	case errors.Is(err, model.ErrRoleNotFound):
		status = http.StatusNotFound
		body.Code = "NOT_FOUND"
		body.Message = "Role not found"
	case errors.Is(err, model.ErrRoleInUse):
		status = http.StatusConflict
		body.Code = "CONFLICT"
		body.Message = "Role is still assigned to users"
	case errors.Is(err, model.ErrPermissionNotFound):
		status = http.StatusNotFound
		body.Code = "NOT_FOUND"
		body.Message = "Permission not found"
	case errors.Is(err, model.ErrPermissionInUse):
		status = http.StatusConflict
		body.Code = "CONFLICT"
		body.Message = "Permission is still granted to roles"
	case errors.Is(err, model.ErrTenantNotFound):
		status = http.StatusNotFound
		body.Code = "NOT_FOUND"
		body.Message = "Tenant not found"
	case errors.Is(err, model.ErrDistrictNotFound):
		status = http.StatusNotFound
		body.Code = "NOT_FOUND"
		body.Message = "District not found"
	case errors.Is(err, model.ErrCategoryNotFound):
		status = http.StatusNotFound
		body.Code = "NOT_FOUND"
		body.Message = "Category not found"
	case errors.Is(err, model.ErrProductNotFound):
		status = http.StatusNotFound
		body.Code = "NOT_FOUND"
		body.Message = "Product not found"
	case errors.Is(err, model.ErrDuplicateCode):
		status = http.StatusConflict
		body.Code = "DUPLICATE_CODE"
		body.Message = "Code already exists"
	case errors.Is(err, model.ErrDuplicateName):
		status = http.StatusConflict
		body.Code = "DUPLICATE_NAME"
		body.Message = "Name already exists"
	case errors.Is(err, model.ErrInvalidInput):
		status = http.StatusBadRequest
		body.Code = "BAD_REQUEST"
		body.Message = "Invalid input"
	default:
		slog.Error("unhandled error in writeError", "error", err.Error())
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: false,
		Error:   body,
	})
}

// pagination reads page/limit query parameters with the defaults and bounds
// the list endpoints share.
func pagination(r *http.Request) (page int, limit int) {
	page = 1
	limit = 20

	if raw := r.URL.Query().Get("page"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 1 {
			page = v
		}
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 1 && v <= 100 {
			limit = v
		}
	}

	return page, limit
}

func claimsFrom(r *http.Request) (*auth.Claims, bool) {
	return middleware.ClaimsFromContext(r.Context())
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return false
	}
	return true
}
