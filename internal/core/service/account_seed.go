package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/acme-erp/admin-console/internal/core/domain"
	"github.com/acme-erp/admin-console/internal/core/ports"
)

// SeedAccounts lists the accounts created on an empty development backend.
var SeedAccounts = []ports.AccountInput{
	{Username: "admin", Email: "admin@erp.local", FirstName: "Ada", LastName: "Admin", Role: domain.RoleAdmin},
	{Username: "manager", Email: "manager@erp.local", FirstName: "Max", LastName: "Manager", Role: domain.RoleManager},
	{Username: "employee", Email: "employee@erp.local", FirstName: "Eli", LastName: "Employee", Role: domain.RoleEmployee},
}

// Seed registers every seed account that does not exist yet, all sharing
// password. It returns the number of accounts created.
func (s *AccountService) Seed(ctx context.Context, password string, log zerolog.Logger) (int, error) {
	created := 0
	for _, input := range SeedAccounts {
		_, err := s.repo.FindByEmail(ctx, normalizeEmail(input.Email))
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrUserNotFound) {
			return created, fmt.Errorf("seed %s: %w", input.Email, err)
		}

		input.Password = password
		if _, err := s.Register(ctx, input); err != nil {
			return created, fmt.Errorf("seed %s: %w", input.Email, err)
		}
		created++
		log.Info().Str("email", input.Email).Str("role", string(input.Role)).Msg("seeded account")
	}
	return created, nil
}
