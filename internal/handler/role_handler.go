package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"vismay-core/internal/model"
	"vismay-core/internal/repository"
	"vismay-core/internal/service"
)

// RoleHandler manages roles, permissions and grant assignment. Hierarchy
// edits pass through the permission service's cycle check before they are
// persisted.
type RoleHandler struct {
	roles       *repository.RoleRepository
	permissions *service.PermissionService
	audit       *service.AuditService
}

func NewRoleHandler(roles *repository.RoleRepository, permissions *service.PermissionService, audit *service.AuditService) *RoleHandler {
	return &RoleHandler{roles: roles, permissions: permissions, audit: audit}
}

func (h *RoleHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit := pagination(r)
	roles, total, err := h.roles.List(r.Context(), page, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, roles, model.NewMeta(page, limit, total))
}

func (h *RoleHandler) Get(w http.ResponseWriter, r *http.Request) {
	role, err := h.roles.FindByID(r.Context(), chi.URLParam(r, "role_id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, role, nil)
}

func (h *RoleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload model.CreateRoleRequest
	if !decodeBody(w, r, &payload) {
		return
	}

	payload.Name = strings.TrimSpace(payload.Name)
	if payload.Name == "" {
		writeError(w, model.ErrInvalidInput)
		return
	}

	if err := h.permissions.CheckHierarchy(r.Context(), "", payload.ParentID); err != nil {
		writeError(w, err)
		return
	}

	role := model.Role{
		ID:          uuid.NewString(),
		TenantID:    payload.TenantID,
		ParentID:    payload.ParentID,
		Name:        payload.Name,
		Description: payload.Description,
		IsActive:    true,
		CreatedAt:   time.Now().UTC(),
	}

	if err := h.roles.Create(r.Context(), role); err != nil {
		writeError(w, err)
		return
	}

	h.recordAdmin(r, "role.create", role.Name)
	writeSuccess(w, http.StatusCreated, role, nil)
}

func (h *RoleHandler) Update(w http.ResponseWriter, r *http.Request) {
	var payload model.UpdateRoleRequest
	if !decodeBody(w, r, &payload) {
		return
	}

	role, err := h.roles.FindByID(r.Context(), chi.URLParam(r, "role_id"))
	if err != nil {
		writeError(w, err)
		return
	}

	if payload.Name != nil {
		role.Name = strings.TrimSpace(*payload.Name)
	}
	if payload.Description != nil {
		role.Description = *payload.Description
	}
	if payload.ParentID != nil {
		role.ParentID = payload.ParentID
	}
	if payload.IsActive != nil {
		role.IsActive = *payload.IsActive
	}

	if err := h.permissions.CheckHierarchy(r.Context(), role.ID, role.ParentID); err != nil {
		writeError(w, err)
		return
	}

	if err := h.roles.Update(r.Context(), role); err != nil {
		writeError(w, err)
		return
	}

	h.recordAdmin(r, "role.update", role.Name)
	writeSuccess(w, http.StatusOK, role, nil)
}

func (h *RoleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "role_id")
	if err := h.roles.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	h.recordAdmin(r, "role.delete", id)
	writeSuccess(w, http.StatusOK, map[string]any{"deleted": true}, nil)
}

func (h *RoleHandler) AssignPermissions(w http.ResponseWriter, r *http.Request) {
	var payload model.AssignPermissionsRequest
	if !decodeBody(w, r, &payload) {
		return
	}

	role, err := h.roles.FindByID(r.Context(), chi.URLParam(r, "role_id"))
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.roles.ReplaceGrants(r.Context(), role.ID, payload.PermissionIDs); err != nil {
		writeError(w, err)
		return
	}

	role, err = h.roles.FindByID(r.Context(), role.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	h.recordAdmin(r, "role.assign_permissions", role.Name)
	writeSuccess(w, http.StatusOK, role, nil)
}

func (h *RoleHandler) ListPermissions(w http.ResponseWriter, r *http.Request) {
	page, limit := pagination(r)
	perms, total, err := h.roles.ListPermissions(r.Context(), page, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, perms, model.NewMeta(page, limit, total))
}

func (h *RoleHandler) GetPermission(w http.ResponseWriter, r *http.Request) {
	perm, err := h.roles.FindPermissionByID(r.Context(), chi.URLParam(r, "permission_id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, perm, nil)
}

func (h *RoleHandler) CreatePermission(w http.ResponseWriter, r *http.Request) {
	var payload model.CreatePermissionRequest
	if !decodeBody(w, r, &payload) {
		return
	}

	payload.Name = strings.TrimSpace(payload.Name)
	payload.Code = strings.TrimSpace(payload.Code)
	if payload.Name == "" || payload.Code == "" {
		writeError(w, model.ErrInvalidInput)
		return
	}

	perm := model.Permission{
		ID:          uuid.NewString(),
		Name:        payload.Name,
		Code:        payload.Code,
		Description: payload.Description,
		CreatedAt:   time.Now().UTC(),
	}

	if err := h.roles.CreatePermission(r.Context(), perm); err != nil {
		writeError(w, err)
		return
	}

	h.recordAdmin(r, "permission.create", perm.Code)
	writeSuccess(w, http.StatusCreated, perm, nil)
}

func (h *RoleHandler) UpdatePermission(w http.ResponseWriter, r *http.Request) {
	var payload model.UpdatePermissionRequest
	if !decodeBody(w, r, &payload) {
		return
	}

	perm, err := h.roles.FindPermissionByID(r.Context(), chi.URLParam(r, "permission_id"))
	if err != nil {
		writeError(w, err)
		return
	}

	if payload.Name != nil {
		perm.Name = strings.TrimSpace(*payload.Name)
	}
	if payload.Code != nil {
		perm.Code = strings.TrimSpace(*payload.Code)
	}
	if payload.Description != nil {
		perm.Description = *payload.Description
	}

	if err := h.roles.UpdatePermission(r.Context(), perm); err != nil {
		writeError(w, err)
		return
	}

	h.recordAdmin(r, "permission.update", perm.Code)
	writeSuccess(w, http.StatusOK, perm, nil)
}

func (h *RoleHandler) DeletePermission(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "permission_id")
	if err := h.roles.DeletePermission(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	h.recordAdmin(r, "permission.delete", id)
	writeSuccess(w, http.StatusOK, map[string]any{"deleted": true}, nil)
}

func (h *RoleHandler) recordAdmin(r *http.Request, action string, resource string) {
	entry := model.AuditEntry{Action: action, Status: "success", Resource: resource, ClientIP: r.RemoteAddr}
	if claims, ok := claimsFrom(r); ok {
		entry.ActorID = claims.UserID()
	}
	h.audit.Record(r.Context(), entry)
}
