package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"vismay-core/internal/model"
	"vismay-core/internal/service"
)

type UserHandler struct {
	service *service.UserService
	audit   *service.AuditService
}

func NewUserHandler(userService *service.UserService, audit *service.AuditService) *UserHandler {
	return &UserHandler{service: userService, audit: audit}
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit := pagination(r)
	users, total, err := h.service.List(r.Context(), page, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, users, model.NewMeta(page, limit, total))
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.Get(r.Context(), chi.URLParam(r, "user_id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, user, nil)
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload model.CreateUserRequest
	if !decodeBody(w, r, &payload) {
		return
	}

	user, err := h.service.Create(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	h.recordAdmin(r, "user.create", user.ID)
	writeSuccess(w, http.StatusCreated, user, nil)
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var payload model.UpdateUserRequest
	if !decodeBody(w, r, &payload) {
		return
	}

	user, err := h.service.Update(r.Context(), chi.URLParam(r, "user_id"), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	h.recordAdmin(r, "user.update", user.ID)
	writeSuccess(w, http.StatusOK, user, nil)
}

func (h *UserHandler) Disable(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "user_id")
	if err := h.service.Disable(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	h.recordAdmin(r, "user.disable", id)
	writeSuccess(w, http.StatusOK, map[string]any{"disabled": true}, nil)
}

func (h *UserHandler) recordAdmin(r *http.Request, action string, resource string) {
	entry := model.AuditEntry{Action: action, Status: "success", Resource: resource, ClientIP: r.RemoteAddr}
	if claims, ok := claimsFrom(r); ok {
		entry.ActorID = claims.UserID()
	}
	h.audit.Record(r.Context(), entry)
}
