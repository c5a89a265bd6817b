package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"vismay-core/internal/model"
	"vismay-core/internal/repository"
)

type TenantHandler struct {
	tenants *repository.TenantRepository
}

func NewTenantHandler(tenants *repository.TenantRepository) *TenantHandler {
	return &TenantHandler{tenants: tenants}
}

func (h *TenantHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit := pagination(r)
	tenants, total, err := h.tenants.List(r.Context(), page, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, tenants, model.NewMeta(page, limit, total))
}

func (h *TenantHandler) Get(w http.ResponseWriter, r *http.Request) {
	tenant, err := h.tenants.FindByID(r.Context(), chi.URLParam(r, "tenant_id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, tenant, nil)
}

func (h *TenantHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload model.CreateTenantRequest
	if !decodeBody(w, r, &payload) {
		return
	}

	payload.Name = strings.TrimSpace(payload.Name)
	payload.Code = strings.TrimSpace(payload.Code)
	if payload.Name == "" || payload.Code == "" {
		writeError(w, model.ErrInvalidInput)
		return
	}

	now := time.Now().UTC()
	tenant := model.Tenant{
		ID:        uuid.NewString(),
		Name:      payload.Name,
		Code:      payload.Code,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.tenants.Create(r.Context(), tenant); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, tenant, nil)
}

func (h *TenantHandler) Update(w http.ResponseWriter, r *http.Request) {
	var payload model.UpdateTenantRequest
	if !decodeBody(w, r, &payload) {
		return
	}

	tenant, err := h.tenants.FindByID(r.Context(), chi.URLParam(r, "tenant_id"))
	if err != nil {
		writeError(w, err)
		return
	}

	if payload.Name != nil {
		tenant.Name = strings.TrimSpace(*payload.Name)
	}
	if payload.Code != nil {
		tenant.Code = strings.TrimSpace(*payload.Code)
	}
	if payload.IsActive != nil {
		tenant.IsActive = *payload.IsActive
	}

	if err := h.tenants.Update(r.Context(), tenant); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, tenant, nil)
}

func (h *TenantHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.tenants.Delete(r.Context(), chi.URLParam(r, "tenant_id")); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"deleted": true}, nil)
}
