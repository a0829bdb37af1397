package service

import (
	"context"
	"net/http"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/acme-erp/admin-console/internal/core/domain"
	"github.com/acme-erp/admin-console/internal/core/ports"
	"github.com/acme-erp/admin-console/internal/metrics"
	"github.com/acme-erp/admin-console/internal/pkg/validation"
)

// SessionReader is the part of SessionStore the directory depends on.
type SessionReader interface {
	Snapshot() domain.Session
}

// Listing is the result of a directory fetch. Forbidden is set when the
// backend (or the caller's role) does not allow listing; Users is then empty.
type Listing struct {
	Users     []domain.User
	Forbidden bool
}

// Overview is everything the dashboard shows for the signed-in user.
type Overview struct {
	User          domain.User
	Role          domain.Role
	Description   string
	Permissions   []string
	Stats         domain.DashboardStats
	StatsFallback bool
	Users         []domain.User
	// UsersErr is the listing failure, if any. The rest of the overview
	// is still valid when it is set.
	UsersErr error
}

// Directory is the role-aware user-management client. Mutations refresh the
// cached listing with a full re-fetch.
type Directory struct {
	gateway  ports.UserGateway
	session  SessionReader
	validate *validator.Validate
	log      zerolog.Logger

	mu    sync.RWMutex
	users []domain.User
}

func NewDirectory(gateway ports.UserGateway, session SessionReader, log zerolog.Logger) *Directory {
	return &Directory{
		gateway:  gateway,
		session:  session,
		validate: validation.New(),
		log:      log,
	}
}

// List returns the users visible to the signed-in user. A 403 from the
// backend yields an empty list and no error.
func (d *Directory) List(ctx context.Context) ([]domain.User, error) {
	listing, err := d.Fetch(ctx)
	return listing.Users, err
}

// Fetch is List with the forbidden outcome kept distinguishable.
func (d *Directory) Fetch(ctx context.Context) (Listing, error) {
	sess, err := d.signedIn("list")
	if err != nil {
		return Listing{Users: []domain.User{}}, err
	}

	if !sess.Role().CanViewDirectory() {
		d.setUsers(nil)
		return Listing{Users: []domain.User{}, Forbidden: true}, nil
	}

	users, err := d.gateway.ListUsers(ctx, sess.Credential)
	switch {
	case domain.IsForbidden(err):
		metrics.DirectoryForbiddenTotal.Inc()
		d.log.Debug().Msg("directory listing forbidden, showing nothing")
		d.setUsers(nil)
		return Listing{Users: []domain.User{}, Forbidden: true}, nil
	case err != nil:
		d.setUsers(nil)
		return Listing{Users: []domain.User{}}, err
	}

	if users == nil {
		users = []domain.User{}
	}
	d.setUsers(users)
	return Listing{Users: users}, nil
}

// Create registers a new user. A password is mandatory.
func (d *Directory) Create(ctx context.Context, fields domain.UserFields) (*domain.User, error) {
	sess, err := d.editor("create")
	if err != nil {
		return nil, err
	}
	if err := d.check("create", fields); err != nil {
		return nil, err
	}
	if !fields.HasPassword() {
		return nil, &domain.DirectoryError{Op: "create", Message: "password: This field is required."}
	}

	user, err := d.gateway.CreateUser(ctx, sess.Credential, fields)
	if err != nil {
		return nil, err
	}
	d.log.Info().Str("user_id", user.ID.String()).Msg("user created")
	d.refresh(ctx)
	return user, nil
}

// Update replaces the user's attributes. Leaving Password empty keeps the
// user's current password.
func (d *Directory) Update(ctx context.Context, id domain.UserID, fields domain.UserFields) (*domain.User, error) {
	sess, err := d.editor("update")
	if err != nil {
		return nil, err
	}
	if err := d.check("update", fields); err != nil {
		return nil, err
	}

	user, err := d.gateway.UpdateUser(ctx, sess.Credential, id, fields)
	if err != nil {
		return nil, err
	}
	d.log.Info().Str("user_id", id.String()).Msg("user updated")
	d.refresh(ctx)
	return user, nil
}

// Remove deletes the user and refreshes the listing.
func (d *Directory) Remove(ctx context.Context, id domain.UserID) error {
	sess, err := d.editor("delete")
	if err != nil {
		return err
	}
	if err := d.gateway.DeleteUser(ctx, sess.Credential, id); err != nil {
		return err
	}
	d.log.Info().Str("user_id", id.String()).Msg("user deleted")
	d.refresh(ctx)
	return nil
}

// Users returns the last fetched listing.
func (d *Directory) Users() []domain.User {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]domain.User, len(d.users))
	copy(out, d.users)
	return out
}

// Search filters the cached listing.
func (d *Directory) Search(term string) []domain.User {
	return domain.FilterUsers(d.Users(), term)
}

// Overview gathers the dashboard. Statistics and (when the role may view
// the directory) the listing are fetched concurrently and fail
// independently: unavailable statistics are replaced by role-dependent
// fallbacks and a failed listing is reported in Overview.UsersErr.
func (d *Directory) Overview(ctx context.Context) (*Overview, error) {
	sess, err := d.signedIn("overview")
	if err != nil {
		return nil, err
	}
	role := sess.Role()
	ov := &Overview{
		User:        *sess.User,
		Role:        role,
		Description: role.Description(),
		Permissions: role.Permissions(),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		stats, err := d.gateway.DashboardStats(gctx, sess.Credential)
		if err != nil || stats == nil {
			d.log.Debug().Err(err).Msg("dashboard stats unavailable, using fallback")
			ov.Stats = domain.FallbackStats(role)
			ov.StatsFallback = true
			return nil
		}
		ov.Stats = *stats
		return nil
	})
	if role.CanViewDirectory() {
		g.Go(func() error {
			users, err := d.List(gctx)
			if err != nil {
				d.log.Warn().Err(err).Msg("directory listing failed, overview shows no users")
				ov.UsersErr = err
			}
			ov.Users = users
			return nil
		})
	}
	_ = g.Wait()
	return ov, nil
}

func (d *Directory) signedIn(op string) (domain.Session, error) {
	sess := d.session.Snapshot()
	if !sess.IsAuthenticated {
		return sess, &domain.DirectoryError{Op: op, Message: "not signed in", Err: domain.ErrNotAuthenticated}
	}
	return sess, nil
}

func (d *Directory) editor(op string) (domain.Session, error) {
	sess, err := d.signedIn(op)
	if err != nil {
		return sess, err
	}
	if !sess.Role().CanEditDirectory() {
		return sess, &domain.DirectoryError{
			Op:      op,
			Status:  http.StatusForbidden,
			Message: "only administrators can " + op + " users",
			Err:     domain.ErrForbidden,
		}
	}
	return sess, nil
}

func (d *Directory) check(op string, fields domain.UserFields) error {
	if err := d.validate.Struct(fields); err != nil {
		return &domain.DirectoryError{Op: op, Message: validation.Summary(err), Err: err}
	}
	return nil
}

func (d *Directory) refresh(ctx context.Context) {
	if _, err := d.Fetch(ctx); err != nil {
		d.log.Warn().Err(err).Msg("directory refresh after mutation failed")
	}
}

func (d *Directory) setUsers(users []domain.User) {
	d.mu.Lock()
	d.users = users
	d.mu.Unlock()
}
