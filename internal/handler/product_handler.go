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

type ProductHandler struct {
	products *repository.ProductRepository
}

func NewProductHandler(products *repository.ProductRepository) *ProductHandler {
	return &ProductHandler{products: products}
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit := pagination(r)
	tenantID := strings.TrimSpace(r.URL.Query().Get("tenant_id"))

	products, total, err := h.products.List(r.Context(), tenantID, page, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, products, model.NewMeta(page, limit, total))
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	product, err := h.products.FindByID(r.Context(), chi.URLParam(r, "product_id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, product, nil)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload model.CreateProductRequest
	if !decodeBody(w, r, &payload) {
		return
	}

	payload.Name = strings.TrimSpace(payload.Name)
	payload.SKU = strings.TrimSpace(payload.SKU)
	if payload.Name == "" || payload.SKU == "" ||
		strings.TrimSpace(payload.TenantID) == "" || strings.TrimSpace(payload.CategoryID) == "" {
		writeError(w, model.ErrInvalidInput)
		return
	}
	if payload.PriceCents < 0 {
		writeError(w, model.ErrInvalidInput)
		return
	}

	now := time.Now().UTC()
	product := model.Product{
		ID:         uuid.NewString(),
		TenantID:   payload.TenantID,
		CategoryID: payload.CategoryID,
		Name:       payload.Name,
		SKU:        payload.SKU,
		PriceCents: payload.PriceCents,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := h.products.Create(r.Context(), product); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, product, nil)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	var payload model.UpdateProductRequest
	if !decodeBody(w, r, &payload) {
		return
	}

	product, err := h.products.FindByID(r.Context(), chi.URLParam(r, "product_id"))
	if err != nil {
		writeError(w, err)
		return
	}

	if payload.CategoryID != nil {
		product.CategoryID = *payload.CategoryID
	}
	if payload.Name != nil {
		product.Name = strings.TrimSpace(*payload.Name)
	}
	if payload.SKU != nil {
		product.SKU = strings.TrimSpace(*payload.SKU)
	}
	if payload.PriceCents != nil {
		if *payload.PriceCents < 0 {
			writeError(w, model.ErrInvalidInput)
			return
		}
		product.PriceCents = *payload.PriceCents
	}
	if payload.IsActive != nil {
		product.IsActive = *payload.IsActive
	}

	if err := h.products.Update(r.Context(), product); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, product, nil)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.products.Delete(r.Context(), chi.URLParam(r, "product_id")); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"deleted": true}, nil)
}
