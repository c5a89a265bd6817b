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

type CategoryHandler struct {
	categories *repository.CategoryRepository
}

func NewCategoryHandler(categories *repository.CategoryRepository) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit := pagination(r)
	tenantID := strings.TrimSpace(r.URL.Query().Get("tenant_id"))

	categories, total, err := h.categories.List(r.Context(), tenantID, page, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, categories, model.NewMeta(page, limit, total))
}

func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	category, err := h.categories.FindByID(r.Context(), chi.URLParam(r, "category_id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, category, nil)
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload model.CreateCategoryRequest
	if !decodeBody(w, r, &payload) {
		return
	}

	payload.Name = strings.TrimSpace(payload.Name)
	if payload.Name == "" || strings.TrimSpace(payload.TenantID) == "" {
		writeError(w, model.ErrInvalidInput)
		return
	}

	now := time.Now().UTC()
	category := model.Category{
		ID:        uuid.NewString(),
		TenantID:  payload.TenantID,
		Name:      payload.Name,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.categories.Create(r.Context(), category); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, category, nil)
}

func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	var payload model.UpdateCategoryRequest
	if !decodeBody(w, r, &payload) {
		return
	}

	category, err := h.categories.FindByID(r.Context(), chi.URLParam(r, "category_id"))
	if err != nil {
		writeError(w, err)
		return
	}

	if payload.Name != nil {
		category.Name = strings.TrimSpace(*payload.Name)
	}
	if payload.IsActive != nil {
		category.IsActive = *payload.IsActive
	}

	if err := h.categories.Update(r.Context(), category); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, category, nil)
}

func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.categories.Delete(r.Context(), chi.URLParam(r, "category_id")); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"deleted": true}, nil)
}
