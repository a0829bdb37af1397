package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/acme-erp/admin-console/internal/core/domain"
)

// userPayload is the wire shape for register and update. The role travels
// as role_name; password fields are omitted when nil.
type userPayload struct {
	Username        string      `json:"username"`
	Email           string      `json:"email"`
	FirstName       string      `json:"first_name"`
	LastName        string      `json:"last_name"`
	RoleName        domain.Role `json:"role_name"`
	Password        *string     `json:"password,omitempty"`
	PasswordConfirm *string     `json:"password_confirm,omitempty"`
}

func newUserPayload(fields domain.UserFields, withSecret bool) userPayload {
	p := userPayload{
		Username:  fields.Username,
		Email:     fields.Email,
		FirstName: fields.FirstName,
		LastName:  fields.LastName,
		RoleName:  fields.Role,
	}
	if withSecret {
		password, confirm := fields.Password, fields.PasswordConfirm
		p.Password = &password
		p.PasswordConfirm = &confirm
	}
	return p
}

// ListUsers fetches the directory and normalizes the response envelope.
// A 403 is returned as a *domain.DirectoryError wrapping domain.ErrForbidden.
func (c *Client) ListUsers(ctx context.Context, credential string) ([]domain.User, error) {
	const op = "list_users"
	res, err := c.do(ctx, op, http.MethodGet, usersPath, credential, nil)
	if err != nil {
		return nil, &domain.DirectoryError{Op: "list", Message: "Failed to fetch users", Err: err}
	}
	if res.status == http.StatusForbidden {
		return nil, &domain.DirectoryError{
			Op:      "list",
			Status:  res.status,
			Message: errorMessage(res.body, "Failed to fetch users"),
			Err:     domain.ErrForbidden,
		}
	}
	if !res.ok() {
		return nil, &domain.DirectoryError{Op: "list", Status: res.status, Message: errorMessage(res.body, "Failed to fetch users")}
	}

	users, err := decodeUserList(res.body)
	if err != nil {
		return nil, &domain.DirectoryError{Op: "list", Status: res.status, Message: "Failed to fetch users", Err: err}
	}
	return users, nil
}

// CreateUser registers a user. Both password fields are always sent.
func (c *Client) CreateUser(ctx context.Context, credential string, fields domain.UserFields) (*domain.User, error) {
	return c.writeUser(ctx, "create", http.MethodPost, registerPath, credential, newUserPayload(fields, true))
}

// UpdateUser replaces a user's attributes. Without a new password the
// password fields are left out of the request so the backend keeps the
// current one.
func (c *Client) UpdateUser(ctx context.Context, credential string, id domain.UserID, fields domain.UserFields) (*domain.User, error) {
	return c.writeUser(ctx, "update", http.MethodPut, userPath(id), credential, newUserPayload(fields, fields.Password != ""))
}

// DeleteUser removes a user. Any 2xx is success; the body is ignored.
func (c *Client) DeleteUser(ctx context.Context, credential string, id domain.UserID) error {
	res, err := c.do(ctx, "delete_user", http.MethodDelete, userPath(id), credential, nil)
	if err != nil {
		return &domain.DirectoryError{Op: "delete", Message: "Failed to delete user", Err: err}
	}
	if !res.ok() {
		return statusError("delete", res, "Failed to delete user")
	}
	return nil
}

// DashboardStats fetches the dashboard counters.
func (c *Client) DashboardStats(ctx context.Context, credential string) (*domain.DashboardStats, error) {
	res, err := c.do(ctx, "dashboard_stats", http.MethodGet, statsPath, credential, nil)
	if err != nil {
		return nil, &domain.DirectoryError{Op: "stats", Message: "Failed to fetch statistics", Err: err}
	}
	if !res.ok() {
		return nil, statusError("stats", res, "Failed to fetch statistics")
	}

	var stats domain.DashboardStats
	if err := json.Unmarshal(res.body, &stats); err != nil {
		return nil, &domain.DirectoryError{Op: "stats", Status: res.status, Message: "Failed to fetch statistics", Err: err}
	}
	return &stats, nil
}

func (c *Client) writeUser(ctx context.Context, op, method, path, credential string, payload userPayload) (*domain.User, error) {
	fallback := "Failed to " + op + " user"
	res, err := c.do(ctx, op+"_user", method, path, credential, payload)
	if err != nil {
		return nil, &domain.DirectoryError{Op: op, Message: fallback, Err: err}
	}
	if !res.ok() {
		return nil, statusError(op, res, fallback)
	}

	var user domain.User
	if len(bytes.TrimSpace(res.body)) > 0 {
		if err := json.Unmarshal(res.body, &user); err != nil {
			c.log.Debug().Err(err).Str("op", op).Msg("unreadable user in response")
		}
	}
	return &user, nil
}

func statusError(op string, res response, fallback string) error {
	e := &domain.DirectoryError{Op: op, Status: res.status, Message: errorMessage(res.body, fallback)}
	if res.status == http.StatusForbidden {
		e.Err = domain.ErrForbidden
	}
	return e
}

func userPath(id domain.UserID) string {
	return usersPath + url.PathEscape(id.String()) + "/"
}
