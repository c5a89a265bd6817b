package service

import (
	"context"

	"vismay-core/internal/model"
)

type roleStore interface {
	FindByID(ctx context.Context, id string) (model.Role, error)
	FindByName(ctx context.Context, name string) (model.Role, error)
}

// PermissionService computes the effective permission set of a role,
// expanding inherited grants through the parent chain.
type PermissionService struct {
	roles roleStore
}

func NewPermissionService(roles roleStore) *PermissionService {
	return &PermissionService{roles: roles}
}

// Resolve returns the deduplicated set of permission codes granted to the
// named role, directly or through inheritance. A cycle in the parent chain
// fails with ErrCyclicRoleGrant.
func (s *PermissionService) Resolve(ctx context.Context, roleName string) (map[string]struct{}, error) {
	role, err := s.roles.FindByName(ctx, roleName)
	if err != nil {
		return nil, err
	}

	granted := make(map[string]struct{})
	visited := map[string]struct{}{role.ID: {}}

	current := role
	for {
		for _, code := range current.Permissions {
			granted[code] = struct{}{}
		}

		if current.ParentID == nil {
			return granted, nil
		}

		parentID := *current.ParentID
		if _, seen := visited[parentID]; seen {
			return nil, model.ErrCyclicRoleGrant
		}
		visited[parentID] = struct{}{}

		current, err = s.roles.FindByID(ctx, parentID)
		if err != nil {
			return nil, err
		}
	}
}

// Authorize reports whether the role grants the required permission. The
// super-admin role bypasses the explicit listing entirely.
func (s *PermissionService) Authorize(ctx context.Context, roleName string, required string) (bool, error) {
	if roleName == model.SuperAdminRole {
		return true, nil
	}

	granted, err := s.Resolve(ctx, roleName)
	if err != nil {
		return false, err
	}

	_, ok := granted[required]
	return ok, nil
}

// CheckHierarchy rejects a parent assignment that would close a cycle. Must
// be called before a role create or update reaches the database; a cyclic
// graph on disk would make every resolution of the affected roles fail.
func (s *PermissionService) CheckHierarchy(ctx context.Context, roleID string, parentID *string) error {
	visited := map[string]struct{}{}
	if roleID != "" {
		visited[roleID] = struct{}{}
	}

	for parentID != nil {
		id := *parentID
		if _, seen := visited[id]; seen {
			return model.ErrCyclicRoleGrant
		}
		visited[id] = struct{}{}

		parent, err := s.roles.FindByID(ctx, id)
		if err != nil {
			return err
		}
		parentID = parent.ParentID
	}

	return nil
}
