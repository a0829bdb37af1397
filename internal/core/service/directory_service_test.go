package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acme-erp/admin-console/internal/core/domain"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type fixedSession struct {
	sess domain.Session
}

func (f fixedSession) Snapshot() domain.Session { return f.sess }

func signedInAs(role domain.Role) fixedSession {
	return fixedSession{sess: domain.Session{
		State:           domain.StateAuthenticated,
		User:            &domain.User{ID: "1", Username: "me", Role: role},
		Credential:      "tok",
		IsAuthenticated: true,
	}}
}

type stubUserGateway struct {
	listFn   func() ([]domain.User, error)
	createFn func(fields domain.UserFields) (*domain.User, error)
	updateFn func(id domain.UserID, fields domain.UserFields) (*domain.User, error)
	deleteFn func(id domain.UserID) error
	statsFn  func() (*domain.DashboardStats, error)

	listCalls   int
	createCalls int
	credentials []string
}

func (g *stubUserGateway) ListUsers(_ context.Context, credential string) ([]domain.User, error) {
	g.listCalls++
	g.credentials = append(g.credentials, credential)
	if g.listFn == nil {
		return nil, nil
	}
	return g.listFn()
}

func (g *stubUserGateway) CreateUser(_ context.Context, credential string, fields domain.UserFields) (*domain.User, error) {
	g.createCalls++
	g.credentials = append(g.credentials, credential)
	return g.createFn(fields)
}

func (g *stubUserGateway) UpdateUser(_ context.Context, _ string, id domain.UserID, fields domain.UserFields) (*domain.User, error) {
	return g.updateFn(id, fields)
}

func (g *stubUserGateway) DeleteUser(_ context.Context, _ string, id domain.UserID) error {
	return g.deleteFn(id)
}

func (g *stubUserGateway) DashboardStats(_ context.Context, _ string) (*domain.DashboardStats, error) {
	if g.statsFn == nil {
		return nil, errors.New("not implemented")
	}
	return g.statsFn()
}

var (
	u1 = domain.User{ID: "1", Username: "ana", FirstName: "Ana", LastName: "Diaz", Email: "ana@erp.local", Role: domain.RoleAdmin}
	u2 = domain.User{ID: "2", Username: "bo", FirstName: "Bo", LastName: "Li", Email: "bo@erp.local", Role: domain.RoleEmployee}
)

func validFields() domain.UserFields {
	return domain.UserFields{
		Username:        "cy",
		Email:           "cy@erp.local",
		FirstName:       "Cy",
		LastName:        "Young",
		Role:            domain.RoleEmployee,
		Password:        "changeme123",
		PasswordConfirm: "changeme123",
	}
}

func forbiddenErr() error {
	return &domain.DirectoryError{Op: "list", Status: http.StatusForbidden, Message: "You do not have permission to perform this action.", Err: domain.ErrForbidden}
}

// ---------------------------------------------------------------------------
// List / Fetch
// ---------------------------------------------------------------------------

func TestDirectory_List_ReturnsUsersAndCaches(t *testing.T) {
	gw := &stubUserGateway{listFn: func() ([]domain.User, error) { return []domain.User{u1, u2}, nil }}
	d := NewDirectory(gw, signedInAs(domain.RoleManager), zerolog.Nop())

	users, err := d.List(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []domain.User{u1, u2}, users)
	assert.Equal(t, []domain.User{u1, u2}, d.Users())
	assert.Equal(t, []string{"tok"}, gw.credentials)
}

func TestDirectory_List_ForbiddenIsEmptyNotError(t *testing.T) {
	gw := &stubUserGateway{listFn: func() ([]domain.User, error) { return nil, forbiddenErr() }}
	d := NewDirectory(gw, signedInAs(domain.RoleManager), zerolog.Nop())

	users, err := d.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, users)
	assert.NotNil(t, users)

	listing, err := d.Fetch(context.Background())
	require.NoError(t, err)
	assert.True(t, listing.Forbidden)
}

func TestDirectory_List_EmployeeDoesNotCallBackend(t *testing.T) {
	gw := &stubUserGateway{}
	d := NewDirectory(gw, signedInAs(domain.RoleEmployee), zerolog.Nop())

	listing, err := d.Fetch(context.Background())

	require.NoError(t, err)
	assert.True(t, listing.Forbidden)
	assert.Empty(t, listing.Users)
	assert.Equal(t, 0, gw.listCalls)
}

func TestDirectory_List_ErrorPropagatesAndClearsCache(t *testing.T) {
	calls := 0
	gw := &stubUserGateway{listFn: func() ([]domain.User, error) {
		calls++
		if calls == 1 {
			return []domain.User{u1}, nil
		}
		return nil, &domain.DirectoryError{Op: "list", Status: 500, Message: "Failed to fetch users"}
	}}
	d := NewDirectory(gw, signedInAs(domain.RoleAdmin), zerolog.Nop())
	_, err := d.List(context.Background())
	require.NoError(t, err)

	_, err = d.List(context.Background())

	var dirErr *domain.DirectoryError
	require.ErrorAs(t, err, &dirErr)
	assert.Equal(t, "Failed to fetch users", dirErr.Error())
	assert.Empty(t, d.Users())
}

func TestDirectory_List_NotSignedIn(t *testing.T) {
	d := NewDirectory(&stubUserGateway{}, fixedSession{}, zerolog.Nop())

	_, err := d.List(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
}

// ---------------------------------------------------------------------------
// Mutations
// ---------------------------------------------------------------------------

func TestDirectory_Create_RefreshesListing(t *testing.T) {
	created := domain.User{ID: "3", Username: "cy", Role: domain.RoleEmployee}
	gw := &stubUserGateway{
		listFn: func() ([]domain.User, error) { return []domain.User{u1, u2, created}, nil },
		createFn: func(fields domain.UserFields) (*domain.User, error) {
			assert.Equal(t, "cy@erp.local", fields.Email)
			return &created, nil
		},
	}
	d := NewDirectory(gw, signedInAs(domain.RoleAdmin), zerolog.Nop())

	user, err := d.Create(context.Background(), validFields())

	require.NoError(t, err)
	assert.Equal(t, domain.UserID("3"), user.ID)
	assert.Equal(t, 1, gw.listCalls)
	assert.Len(t, d.Users(), 3)
}

func TestDirectory_Create_RequiresAdmin(t *testing.T) {
	gw := &stubUserGateway{}
	d := NewDirectory(gw, signedInAs(domain.RoleManager), zerolog.Nop())

	_, err := d.Create(context.Background(), validFields())

	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Equal(t, 0, gw.createCalls)
}

func TestDirectory_Create_ValidatesBeforeRequest(t *testing.T) {
	gw := &stubUserGateway{}
	d := NewDirectory(gw, signedInAs(domain.RoleAdmin), zerolog.Nop())

	fields := validFields()
	fields.Email = "not-an-email"
	fields.PasswordConfirm = "different"
	_, err := d.Create(context.Background(), fields)

	var dirErr *domain.DirectoryError
	require.ErrorAs(t, err, &dirErr)
	assert.Equal(t, "email: Enter a valid email address.; password_confirm: Password fields didn't match.", dirErr.Message)
	assert.Equal(t, 0, gw.createCalls)

	fields = validFields()
	fields.Password, fields.PasswordConfirm = "", ""
	_, err = d.Create(context.Background(), fields)
	require.ErrorAs(t, err, &dirErr)
	assert.Equal(t, "password: This field is required.", dirErr.Message)
	assert.Equal(t, 0, gw.createCalls)
}

func TestDirectory_Create_BackendErrorNoRefresh(t *testing.T) {
	gw := &stubUserGateway{createFn: func(domain.UserFields) (*domain.User, error) {
		return nil, &domain.DirectoryError{Op: "create", Status: 400, Message: "email: user with this email already exists."}
	}}
	d := NewDirectory(gw, signedInAs(domain.RoleAdmin), zerolog.Nop())

	_, err := d.Create(context.Background(), validFields())

	assert.EqualError(t, err, "email: user with this email already exists.")
	assert.Equal(t, 0, gw.listCalls)
}

func TestDirectory_Update_WithoutPassword(t *testing.T) {
	var got domain.UserFields
	gw := &stubUserGateway{updateFn: func(id domain.UserID, fields domain.UserFields) (*domain.User, error) {
		assert.Equal(t, domain.UserID("2"), id)
		got = fields
		u := u2
		u.Role = fields.Role
		return &u, nil
	}}
	d := NewDirectory(gw, signedInAs(domain.RoleAdmin), zerolog.Nop())

	fields := domain.FieldsFromUser(u2)
	fields.Role = domain.RoleManager
	user, err := d.Update(context.Background(), "2", fields)

	require.NoError(t, err)
	assert.Equal(t, domain.RoleManager, user.Role)
	assert.False(t, got.HasPassword())
	assert.Equal(t, 1, gw.listCalls)
}

func TestDirectory_Remove(t *testing.T) {
	var deleted domain.UserID
	gw := &stubUserGateway{
		deleteFn: func(id domain.UserID) error { deleted = id; return nil },
		listFn:   func() ([]domain.User, error) { return []domain.User{u1}, nil },
	}
	d := NewDirectory(gw, signedInAs(domain.RoleAdmin), zerolog.Nop())

	require.NoError(t, d.Remove(context.Background(), "2"))
	assert.Equal(t, domain.UserID("2"), deleted)
	assert.Equal(t, []domain.User{u1}, d.Users())
}

func TestDirectory_Remove_RefreshFailureIsNotReturned(t *testing.T) {
	gw := &stubUserGateway{
		deleteFn: func(domain.UserID) error { return nil },
		listFn:   func() ([]domain.User, error) { return nil, errors.New("boom") },
	}
	d := NewDirectory(gw, signedInAs(domain.RoleAdmin), zerolog.Nop())

	assert.NoError(t, d.Remove(context.Background(), "2"))
}

func TestDirectory_Search(t *testing.T) {
	gw := &stubUserGateway{listFn: func() ([]domain.User, error) { return []domain.User{u1, u2}, nil }}
	d := NewDirectory(gw, signedInAs(domain.RoleAdmin), zerolog.Nop())
	_, err := d.List(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []domain.User{u2}, d.Search("employee"))
	assert.Equal(t, []domain.User{u1}, d.Search("DIAZ"))
}

// ---------------------------------------------------------------------------
// Overview
// ---------------------------------------------------------------------------

func TestDirectory_Overview_UsesBackendStats(t *testing.T) {
	gw := &stubUserGateway{
		listFn:  func() ([]domain.User, error) { return []domain.User{u1, u2}, nil },
		statsFn: func() (*domain.DashboardStats, error) { return &domain.DashboardStats{TotalUsers: 2, ActiveUsers: 2, SystemStatus: "Online"}, nil },
	}
	d := NewDirectory(gw, signedInAs(domain.RoleAdmin), zerolog.Nop())

	ov, err := d.Overview(context.Background())

	require.NoError(t, err)
	assert.False(t, ov.StatsFallback)
	assert.Equal(t, 2, ov.Stats.TotalUsers)
	assert.Len(t, ov.Users, 2)
	assert.Equal(t, domain.RoleAdmin.Permissions(), ov.Permissions)
}

func TestDirectory_Overview_FallbackStatsForEmployee(t *testing.T) {
	gw := &stubUserGateway{}
	d := NewDirectory(gw, signedInAs(domain.RoleEmployee), zerolog.Nop())

	ov, err := d.Overview(context.Background())

	require.NoError(t, err)
	assert.True(t, ov.StatsFallback)
	assert.Equal(t, domain.FallbackStats(domain.RoleEmployee), ov.Stats)
	assert.Nil(t, ov.Users)
	assert.Equal(t, 0, gw.listCalls)
}

func TestDirectory_Overview_ListingFailureKeepsStats(t *testing.T) {
	gw := &stubUserGateway{
		listFn: func() ([]domain.User, error) {
			return nil, &domain.DirectoryError{Op: "list", Status: http.StatusInternalServerError, Message: "Failed to fetch users"}
		},
		statsFn: func() (*domain.DashboardStats, error) { return &domain.DashboardStats{TotalUsers: 5, ActiveUsers: 4, SystemStatus: "Online"}, nil },
	}
	d := NewDirectory(gw, signedInAs(domain.RoleAdmin), zerolog.Nop())

	ov, err := d.Overview(context.Background())

	require.NoError(t, err)
	require.NotNil(t, ov)
	assert.False(t, ov.StatsFallback)
	assert.Equal(t, 5, ov.Stats.TotalUsers)
	assert.Empty(t, ov.Users)
	require.Error(t, ov.UsersErr)
	assert.Equal(t, "Failed to fetch users", ov.UsersErr.Error())
}

func TestDirectory_Overview_ListingAndStatsBothFail(t *testing.T) {
	gw := &stubUserGateway{
		listFn: func() ([]domain.User, error) { return nil, errors.New("connection refused") },
	}
	d := NewDirectory(gw, signedInAs(domain.RoleManager), zerolog.Nop())

	ov, err := d.Overview(context.Background())

	require.NoError(t, err)
	assert.True(t, ov.StatsFallback)
	assert.Equal(t, domain.FallbackStats(domain.RoleManager), ov.Stats)
	assert.Error(t, ov.UsersErr)
}
