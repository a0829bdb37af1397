package ports

import (
	"context"

	"github.com/acme-erp/admin-console/internal/core/domain"
)

// AccountInput carries the attributes of an account to create or update.
// An empty Password on update keeps the current one.
type AccountInput struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Role      domain.Role
	Password  string
}

// AccountStats summarises the account table for the dashboard.
type AccountStats struct {
	Total  int
	Active int
}

// AccountService is the development backend's use-case layer.
type AccountService interface {
	Login(ctx context.Context, email, password string) (string, *domain.Account, error)
	Register(ctx context.Context, input AccountInput) (*domain.Account, error)
	Update(ctx context.Context, id string, input AccountInput) (*domain.Account, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*domain.Account, error)
	List(ctx context.Context) ([]*domain.Account, error)
	Stats(ctx context.Context) (*AccountStats, error)
}
