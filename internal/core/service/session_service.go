package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/acme-erp/admin-console/internal/core/domain"
	"github.com/acme-erp/admin-console/internal/core/ports"
	"github.com/acme-erp/admin-console/internal/metrics"
)

// SessionStore owns the console's authentication state. State only changes
// through Login, Logout, Restore and SetLoading; after each of them the
// store is either Anonymous or Authenticated.
type SessionStore struct {
	auth  ports.AuthGateway
	store ports.CredentialStore
	log   zerolog.Logger
	now   func() time.Time

	mu         sync.RWMutex
	state      domain.SessionState
	user       *domain.User
	credential string
	loading    bool
	// epoch changes on every begin and reset, so an attempt can tell
	// whether a Logout ran while it was in flight.
	epoch uint64
}

func NewSessionStore(auth ports.AuthGateway, store ports.CredentialStore, log zerolog.Logger) *SessionStore {
	return &SessionStore{
		auth:  auth,
		store: store,
		log:   log,
		now:   time.Now,
		state: domain.StateAnonymous,
	}
}

// Login exchanges email and password for a credential, loads the full
// profile and persists the credential. Any failure leaves the store
// Anonymous with durable storage cleared and is returned as *domain.AuthError.
func (s *SessionStore) Login(ctx context.Context, email, password string) error {
	epoch, err := s.begin()
	if err != nil {
		return err
	}

	user, credential, err := s.exchange(ctx, email, password)
	if err != nil {
		s.fail(ctx, err)
		return err
	}
	if err := s.commit(ctx, epoch, user, credential); err != nil {
		return err
	}

	s.log.Info().Str("user_id", user.ID.String()).Str("role", user.Role.String()).Msg("login succeeded")
	return nil
}

// Logout resets the store to Anonymous and clears durable storage. It is
// idempotent; the in-memory reset happens even when clearing fails.
func (s *SessionStore) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.resetLocked()
	s.mu.Unlock()

	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("logout: clear credential: %w", err)
	}
	return nil
}

// Restore re-authenticates from a persisted credential. Without one it is a
// no-op. A credential the backend no longer accepts (or whose JWT exp has
// passed) is cleared and reported as *domain.AuthError.
func (s *SessionStore) Restore(ctx context.Context) error {
	credential, err := s.store.Load(ctx)
	if errors.Is(err, domain.ErrNoCredential) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("restore session: load credential: %w", err)
	}

	if s.State() == domain.StateAuthenticated {
		return nil
	}

	s.SetLoading(true)
	defer s.SetLoading(false)

	epoch, err := s.begin()
	if err != nil {
		return err
	}

	if credentialExpired(credential, s.now()) {
		authErr := &domain.AuthError{Reason: domain.AuthReasonExpired, Message: "stored credential has expired"}
		s.fail(ctx, authErr)
		return authErr
	}

	user, err := s.auth.Profile(ctx, credential)
	if err != nil {
		authErr := asAuthError(err, "Session restore failed")
		s.fail(ctx, authErr)
		return authErr
	}
	if err := s.commit(ctx, epoch, user, credential); err != nil {
		return err
	}

	s.log.Info().Str("user_id", user.ID.String()).Msg("session restored")
	return nil
}

// SetLoading toggles the loading flag without touching authentication.
func (s *SessionStore) SetLoading(loading bool) {
	s.mu.Lock()
	s.loading = loading
	s.mu.Unlock()
}

// Snapshot returns a copy of the current session.
func (s *SessionStore) Snapshot() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess := domain.Session{
		State:     s.state,
		IsLoading: s.loading,
	}
	if s.state == domain.StateAuthenticated {
		u := *s.user
		sess.User = &u
		sess.Credential = s.credential
		sess.IsAuthenticated = true
	}
	return sess
}

func (s *SessionStore) State() domain.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Credential returns the active credential, empty when not authenticated.
func (s *SessionStore) Credential() string {
	return s.Snapshot().Credential
}

// CurrentUser returns the signed-in user, or nil.
func (s *SessionStore) CurrentUser() *domain.User {
	return s.Snapshot().User
}

// Role returns the signed-in user's role, RoleEmployee when anonymous.
func (s *SessionStore) Role() domain.Role {
	return s.Snapshot().Role()
}

func (s *SessionStore) begin() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == domain.StateAuthenticating {
		return 0, &domain.AuthError{Reason: domain.AuthReasonBusy, Message: "authentication already in progress"}
	}
	s.epoch++
	s.state = domain.StateAuthenticating
	s.loading = true
	metrics.SessionTransitionsTotal.WithLabelValues(string(domain.StateAuthenticating)).Inc()
	return s.epoch, nil
}

func (s *SessionStore) exchange(ctx context.Context, email, password string) (*domain.User, string, error) {
	res, err := s.auth.Login(ctx, email, password)
	if err != nil {
		return nil, "", asAuthError(err, "Login failed")
	}
	if res == nil || res.Credential == "" {
		return nil, "", &domain.AuthError{Reason: domain.AuthReasonNoCredential, Message: "No token found in login response"}
	}

	user, err := s.auth.Profile(ctx, res.Credential)
	if err != nil {
		s.log.Warn().Err(err).Msg("profile fetch failed after login, using embedded user")
		user = res.User
	}
	if user == nil {
		user = &domain.User{Email: email, Role: domain.RoleEmployee}
	}
	return user, res.Credential, nil
}

// commit persists the credential and then publishes the session. If the
// attempt was reset while saving, the saved credential is withdrawn so
// storage never outlives a logout.
func (s *SessionStore) commit(ctx context.Context, epoch uint64, user *domain.User, credential string) error {
	if err := s.store.Save(ctx, credential); err != nil {
		authErr := &domain.AuthError{Reason: domain.AuthReasonStorage, Message: "could not persist credential", Err: err}
		s.fail(ctx, authErr)
		return authErr
	}

	s.mu.Lock()
	if s.epoch != epoch || s.state != domain.StateAuthenticating {
		anonymous := s.state == domain.StateAnonymous
		s.mu.Unlock()
		if anonymous {
			if err := s.store.Clear(context.WithoutCancel(ctx)); err != nil {
				s.log.Error().Err(err).Msg("failed to clear credential of abandoned session")
			}
		}
		return &domain.AuthError{Reason: domain.AuthReasonSuperseded, Message: "session was signed out during authentication"}
	}
	defer s.mu.Unlock()
	u := *user
	s.user = &u
	s.credential = credential
	s.state = domain.StateAuthenticated
	s.loading = false
	metrics.SessionTransitionsTotal.WithLabelValues(string(domain.StateAuthenticated)).Inc()
	return nil
}

// fail collapses the session back to Anonymous and removes the durable
// credential. Storage is cleared even if ctx was cancelled.
func (s *SessionStore) fail(ctx context.Context, cause error) {
	s.mu.Lock()
	s.resetLocked()
	s.mu.Unlock()

	s.log.Warn().Err(cause).Msg("authentication failed")
	if err := s.store.Clear(context.WithoutCancel(ctx)); err != nil {
		s.log.Error().Err(err).Msg("failed to clear stored credential")
	}
}

func (s *SessionStore) resetLocked() {
	s.epoch++
	s.state = domain.StateAnonymous
	s.user = nil
	s.credential = ""
	s.loading = false
	metrics.SessionTransitionsTotal.WithLabelValues(string(domain.StateAnonymous)).Inc()
}

func asAuthError(err error, fallback string) *domain.AuthError {
	var authErr *domain.AuthError
	if errors.As(err, &authErr) {
		return authErr
	}
	return &domain.AuthError{Reason: domain.AuthReasonTransport, Message: fallback, Err: err}
}
