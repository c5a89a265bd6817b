package model

import "time"

type User struct {
	ID           string     `json:"id"`
	TenantID     *string    `json:"tenant_id,omitempty"`
	RoleID       string     `json:"role_id"`
	RoleName     string     `json:"role"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name,omitempty"`
	Phone        string     `json:"phone,omitempty"`
	PasswordHash string     `json:"-"`
	IsActive     bool       `json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// AuthUser is the public projection of a User returned by the API.
type AuthUser struct {
	ID        string  `json:"id"`
	TenantID  *string `json:"tenant_id,omitempty"`
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name,omitempty"`
	Role      string  `json:"role"`
	IsActive  bool    `json:"is_active"`
}

func (u User) Public() AuthUser {
	return AuthUser{
		ID:        u.ID,
		TenantID:  u.TenantID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.RoleName,
		IsActive:  u.IsActive,
	}
}

type TokenPair struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	TokenType    string   `json:"token_type"`
	ExpiresIn    int64    `json:"expires_in"`
	User         AuthUser `json:"user"`
}
