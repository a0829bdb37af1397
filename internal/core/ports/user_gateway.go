package ports

import (
	"context"

	"github.com/acme-erp/admin-console/internal/core/domain"
)

// UserGateway performs the user-management round trips. Failures are
// returned as *domain.DirectoryError; a 403 wraps domain.ErrForbidden.
type UserGateway interface {
	ListUsers(ctx context.Context, credential string) ([]domain.User, error)
	CreateUser(ctx context.Context, credential string, fields domain.UserFields) (*domain.User, error)
	UpdateUser(ctx context.Context, credential string, id domain.UserID, fields domain.UserFields) (*domain.User, error)
	DeleteUser(ctx context.Context, credential string, id domain.UserID) error
	DashboardStats(ctx context.Context, credential string) (*domain.DashboardStats, error)
}
