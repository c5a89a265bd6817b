package model

import "errors"

var (
	// Credential errors. Missing user, disabled user and wrong password all
	// collapse to this one value so the external response cannot be used for
	// user enumeration.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Token related errors
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenMalformed = errors.New("token malformed")
	ErrTokenWrongKind = errors.New("token kind mismatch")
	ErrTokenRevoked   = errors.New("token revoked")

	// Authorization related errors
	ErrInsufficientPermission = errors.New("insufficient permission")

	// Role/permission configuration errors. ErrCyclicRoleGrant must be
	// caught at save time: a role graph with a cycle never reaches the
	// database.
	ErrCyclicRoleGrant    = errors.New("cyclic role grant")
	ErrRoleNotFound       = errors.New("role not found")
	ErrRoleInUse          = errors.New("role still assigned to users")
	ErrPermissionNotFound = errors.New("permission not found")
	ErrPermissionInUse    = errors.New("permission still granted to roles")

	// User related errors
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")

	// Entity related errors
	ErrTenantNotFound   = errors.New("tenant not found")
	ErrDistrictNotFound = errors.New("district not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrProductNotFound  = errors.New("product not found")
	ErrDuplicateCode    = errors.New("code already exists")
	ErrDuplicateName    = errors.New("name already exists")

	// Generic errors
	ErrInvalidInput = errors.New("invalid input")
)
