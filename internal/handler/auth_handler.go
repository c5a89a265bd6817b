package handler

import (
	"net/http"
	"strings"

	"vismay-core/internal/middleware"
	"vismay-core/internal/model"
	"vismay-core/internal/service"
	"vismay-core/pkg/apierror"
)

type AuthHandler struct {
	service *service.AuthService
	audit   *service.AuditService
}

func NewAuthHandler(authService *service.AuthService, audit *service.AuditService) *AuthHandler {
	return &AuthHandler{service: authService, audit: audit}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload model.LoginRequest
	if !decodeBody(w, r, &payload) {
		return
	}

	tokens, err := h.service.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		h.audit.Record(r.Context(), model.AuditEntry{
			Action:   "auth.login",
			Status:   "failure",
			Resource: strings.TrimSpace(payload.Email),
			ClientIP: r.RemoteAddr,
		})
		writeError(w, err)
		return
	}

	h.audit.Record(r.Context(), model.AuditEntry{
		Action:    "auth.login",
		Status:    "success",
		ActorID:   tokens.User.ID,
		ActorName: tokens.User.Username,
		ClientIP:  r.RemoteAddr,
	})
	writeSuccess(w, http.StatusOK, tokens, nil)
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var payload model.RefreshRequest
	if !decodeBody(w, r, &payload) {
		return
	}

	payload.RefreshToken = strings.TrimSpace(payload.RefreshToken)
	if payload.RefreshToken == "" {
		writeError(w, apierror.New("BAD_REQUEST", "refresh_token is required", "refresh_token", http.StatusBadRequest))
		return
	}

	tokens, err := h.service.Refresh(r.Context(), payload.RefreshToken)
	if err != nil {
		writeError(w, err)
		return
	}

	h.audit.Record(r.Context(), model.AuditEntry{
		Action:    "auth.refresh",
		Status:    "success",
		ActorID:   tokens.User.ID,
		ActorName: tokens.User.Username,
		ClientIP:  r.RemoteAddr,
	})
	writeSuccess(w, http.StatusOK, tokens, nil)
}

// Logout acknowledges success regardless of whether the token was already
// invalid.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var payload model.LogoutRequest
	if !decodeBody(w, r, &payload) {
		return
	}

	if err := h.service.Logout(r.Context(), strings.TrimSpace(payload.Token)); err != nil {
		writeError(w, err)
		return
	}

	if claims, ok := middleware.ClaimsFromContext(r.Context()); ok {
		h.audit.Record(r.Context(), model.AuditEntry{
			Action:   "auth.logout",
			Status:   "success",
			ActorID:  claims.UserID(),
			ClientIP: r.RemoteAddr,
		})
	}
	writeSuccess(w, http.StatusOK, map[string]any{"logged_out": true}, nil)
}

// Me answers from the validated claims plus one user read; no permission
// resolution is involved.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apierror.New("UNAUTHORIZED", "authentication required", "", http.StatusUnauthorized))
		return
	}

	user, err := h.service.GetUserByID(r.Context(), claims.UserID())
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, user, nil)
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apierror.New("UNAUTHORIZED", "authentication required", "", http.StatusUnauthorized))
		return
	}

	var payload model.ChangePasswordRequest
	if !decodeBody(w, r, &payload) {
		return
	}

	if err := h.service.ChangePassword(r.Context(), claims.UserID(), payload.CurrentPassword, payload.NewPassword); err != nil {
		writeError(w, err)
		return
	}

	h.audit.Record(r.Context(), model.AuditEntry{
		Action:   "auth.password_change",
		Status:   "success",
		ActorID:  claims.UserID(),
		ClientIP: r.RemoteAddr,
	})
	writeSuccess(w, http.StatusOK, map[string]any{"changed": true}, nil)
}
