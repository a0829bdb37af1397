package ports

import "context"

// CredentialStore persists the bearer credential under a single fixed key.
// Load returns domain.ErrNoCredential when nothing is stored. Clear is
// idempotent.
type CredentialStore interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, credential string) error
	Clear(ctx context.Context) error
}
