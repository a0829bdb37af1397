package handler

import (
	"time"

	"github.com/acme-erp/admin-console/internal/core/domain"
	"github.com/acme-erp/admin-console/internal/core/ports"
)

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Access string          `json:"access"`
	User   profileResponse `json:"user"`
}

type registerRequest struct {
	Username        string `json:"username"         validate:"required,max=150"`
	Email           string `json:"email"            validate:"required,email"`
	FirstName       string `json:"first_name"       validate:"max=150"`
	LastName        string `json:"last_name"        validate:"max=150"`
	RoleName        string `json:"role_name"        validate:"required,oneof=admin manager employee"`
	Password        string `json:"password"         validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

// updateRequest keeps the current password when both password fields are absent.
type updateRequest struct {
	Username        string `json:"username"         validate:"required,max=150"`
	Email           string `json:"email"            validate:"required,email"`
	FirstName       string `json:"first_name"       validate:"max=150"`
	LastName        string `json:"last_name"        validate:"max=150"`
	RoleName        string `json:"role_name"        validate:"required,oneof=admin manager employee"`
	Password        string `json:"password"         validate:"omitempty,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"eqfield=Password"`
}

func (r registerRequest) input() ports.AccountInput {
	return ports.AccountInput{
		Username:  r.Username,
		Email:     r.Email,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Role:      domain.Role(r.RoleName),
		Password:  r.Password,
	}
}

func (r updateRequest) input() ports.AccountInput {
	return ports.AccountInput{
		Username:  r.Username,
		Email:     r.Email,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Role:      domain.Role(r.RoleName),
		Password:  r.Password,
	}
}

type roleObject struct {
	Name string `json:"name"`
}

// profileResponse renders the role as {"name": ...}, like the profile endpoint.
type profileResponse struct {
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Role      roleObject `json:"role"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// userResponse renders the role as a flat tag, like the list endpoint.
type userResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type userPage struct {
	Count   int            `json:"count"`
	Results []userResponse `json:"results"`
}

type statsResponse struct {
	TotalUsers   int    `json:"total_users"`
	ActiveUsers  int    `json:"active_users"`
	SystemStatus string `json:"system_status"`
}

func toProfile(a *domain.Account) profileResponse {
	return profileResponse{
		ID:        a.ID,
		Username:  a.Username,
		Email:     a.Email,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Role:      roleObject{Name: string(a.Role)},
		IsActive:  a.IsActive,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func toUser(a *domain.Account) userResponse {
	return userResponse{
		ID:        a.ID,
		Username:  a.Username,
		Email:     a.Email,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Role:      string(a.Role),
		IsActive:  a.IsActive,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}
