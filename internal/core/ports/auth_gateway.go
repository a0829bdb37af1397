package ports

import (
	"context"

	"github.com/acme-erp/admin-console/internal/core/domain"
)

// LoginResult is the outcome of a credential exchange. User is the record
// embedded in the login response and may be partial.
type LoginResult struct {
	Credential string
	User       *domain.User
}

// AuthGateway talks to the backend's authentication endpoints.
// Failures are returned as *domain.AuthError.
type AuthGateway interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Profile(ctx context.Context, credential string) (*domain.User, error)
}
