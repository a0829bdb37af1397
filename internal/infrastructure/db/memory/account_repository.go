// Package memory is an in-process AccountRepository for the development
// backend and tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/acme-erp/admin-console/internal/core/domain"
)

type AccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]domain.Account
}

func NewAccountRepository() *AccountRepository {
	return &AccountRepository{accounts: map[string]domain.Account{}}
}

func (r *AccountRepository) Create(_ context.Context, account *domain.Account) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[account.ID]; ok {
		return nil, domain.ErrUserExists
	}
	if r.conflictLocked(account) {
		return nil, domain.ErrUserExists
	}
	r.accounts[account.ID] = *account
	out := *account
	return &out, nil
}

func (r *AccountRepository) Update(_ context.Context, account *domain.Account) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[account.ID]; !ok {
		return nil, domain.ErrUserNotFound
	}
	if r.conflictLocked(account) {
		return nil, domain.ErrUserExists
	}
	r.accounts[account.ID] = *account
	out := *account
	return &out, nil
}

func (r *AccountRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.accounts, id)
	return nil
}

func (r *AccountRepository) FindByID(_ context.Context, id string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.accounts[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &a, nil
}

func (r *AccountRepository) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.accounts {
		if strings.EqualFold(a.Email, email) {
			return &a, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// List returns accounts ordered by creation time, then ID.
func (r *AccountRepository) List(_ context.Context) ([]*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Account, 0, len(r.accounts))
	for _, a := range r.accounts {
		a := a
		out = append(out, &a)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *AccountRepository) Ping(context.Context) error { return nil }

// conflictLocked reports whether another account already uses the email or username.
func (r *AccountRepository) conflictLocked(account *domain.Account) bool {
	for id, a := range r.accounts {
		if id == account.ID {
			continue
		}
		if strings.EqualFold(a.Email, account.Email) || a.Username == account.Username {
			return true
		}
	}
	return false
}
