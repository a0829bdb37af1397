package ports

import (
	"context"

	"github.com/acme-erp/admin-console/internal/core/domain"
)

// AccountRepository persists accounts for the development backend.
// Lookups return domain.ErrUserNotFound; duplicate email or username on
// Create or Update returns domain.ErrUserExists.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	Update(ctx context.Context, account *domain.Account) (*domain.Account, error)
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	List(ctx context.Context) ([]*domain.Account, error)
	Ping(ctx context.Context) error
}
