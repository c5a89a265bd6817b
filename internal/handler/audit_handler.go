package handler

import (
	"net/http"

	"vismay-core/internal/model"
	"vismay-core/internal/service"
)

type AuditHandler struct {
	service *service.AuditService
}

func NewAuditHandler(auditService *service.AuditService) *AuditHandler {
	return &AuditHandler{service: auditService}
}

func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit := pagination(r)
	entries, total, err := h.service.List(r.Context(), page, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, entries, model.NewMeta(page, limit, total))
}
