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

type DistrictHandler struct {
	districts *repository.DistrictRepository
}

func NewDistrictHandler(districts *repository.DistrictRepository) *DistrictHandler {
	return &DistrictHandler{districts: districts}
}

func (h *DistrictHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit := pagination(r)
	districts, total, err := h.districts.List(r.Context(), page, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, districts, model.NewMeta(page, limit, total))
}

func (h *DistrictHandler) Get(w http.ResponseWriter, r *http.Request) {
	district, err := h.districts.FindByID(r.Context(), chi.URLParam(r, "district_id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, district, nil)
}

func (h *DistrictHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload model.CreateDistrictRequest
	if !decodeBody(w, r, &payload) {
		return
	}

	payload.Name = strings.TrimSpace(payload.Name)
	payload.State = strings.TrimSpace(payload.State)
	if payload.Name == "" || payload.State == "" {
		writeError(w, model.ErrInvalidInput)
		return
	}

	now := time.Now().UTC()
	district := model.District{
		ID:        uuid.NewString(),
		Name:      payload.Name,
		State:     payload.State,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.districts.Create(r.Context(), district); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, district, nil)
}

func (h *DistrictHandler) Update(w http.ResponseWriter, r *http.Request) {
	var payload model.UpdateDistrictRequest
	if !decodeBody(w, r, &payload) {
		return
	}

	district, err := h.districts.FindByID(r.Context(), chi.URLParam(r, "district_id"))
	if err != nil {
		writeError(w, err)
		return
	}

	if payload.Name != nil {
		district.Name = strings.TrimSpace(*payload.Name)
	}
	if payload.State != nil {
		district.State = strings.TrimSpace(*payload.State)
	}
	if payload.IsActive != nil {
		district.IsActive = *payload.IsActive
	}

	if err := h.districts.Update(r.Context(), district); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, district, nil)
}

func (h *DistrictHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.districts.Delete(r.Context(), chi.URLParam(r, "district_id")); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"deleted": true}, nil)
}
