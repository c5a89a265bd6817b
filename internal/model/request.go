package model

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type LogoutRequest struct {
	Token string `json:"token"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type CreateUserRequest struct {
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Phone     string  `json:"phone"`
	Password  string  `json:"password"`
	RoleID    string  `json:"role_id"`
	TenantID  *string `json:"tenant_id"`
}

type UpdateUserRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
	RoleID    *string `json:"role_id"`
	IsActive  *bool   `json:"is_active"`
}

type CreateRoleRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	ParentID    *string `json:"parent_id"`
	TenantID    *string `json:"tenant_id"`
}

type UpdateRoleRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	ParentID    *string `json:"parent_id"`
	IsActive    *bool   `json:"is_active"`
}

type AssignPermissionsRequest struct {
	PermissionIDs []string `json:"permission_ids"`
}

type CreatePermissionRequest struct {
	Name        string `json:"name"`
	Code        string `json:"code"`
	Description string `json:"description"`
}

type UpdatePermissionRequest struct {
	Name        *string `json:"name"`
	Code        *string `json:"code"`
	Description *string `json:"description"`
}

type CreateTenantRequest struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

type UpdateTenantRequest struct {
	Name     *string `json:"name"`
	Code     *string `json:"code"`
	IsActive *bool   `json:"is_active"`
}

type CreateDistrictRequest struct {
	Name  string `json:"name"`
	State string `json:"state"`
}

type UpdateDistrictRequest struct {
	Name     *string `json:"name"`
	State    *string `json:"state"`
	IsActive *bool   `json:"is_active"`
}

type CreateCategoryRequest struct {
	TenantID string `json:"tenant_id"`
	Name     string `json:"name"`
}

type UpdateCategoryRequest struct {
	Name     *string `json:"name"`
	IsActive *bool   `json:"is_active"`
}

type CreateProductRequest struct {
	TenantID   string `json:"tenant_id"`
	CategoryID string `json:"category_id"`
	Name       string `json:"name"`
	SKU        string `json:"sku"`
	PriceCents int64  `json:"price_cents"`
}

type UpdateProductRequest struct {
	CategoryID *string `json:"category_id"`
	Name       *string `json:"name"`
	SKU        *string `json:"sku"`
	PriceCents *int64  `json:"price_cents"`
	IsActive   *bool   `json:"is_active"`
}
