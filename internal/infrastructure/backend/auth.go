package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/acme-erp/admin-console/internal/core/domain"
	"github.com/acme-erp/admin-console/internal/core/ports"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Access string          `json:"access"`
	User   json.RawMessage `json:"user"`
}

// Login exchanges email and password for an access credential. When the
// response embeds no "user" object the response itself is read as the user.
func (c *Client) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	res, err := c.do(ctx, "login", http.MethodPost, loginPath, "", loginRequest{Email: email, Password: password})
	if err != nil {
		return nil, &domain.AuthError{Reason: domain.AuthReasonTransport, Message: "Login failed", Err: err}
	}
	if !res.ok() {
		return nil, &domain.AuthError{
			Reason:  domain.AuthReasonRejected,
			Status:  res.status,
			Message: errorMessage(res.body, "Login failed"),
		}
	}

	var payload loginResponse
	if err := json.Unmarshal(res.body, &payload); err != nil {
		return nil, &domain.AuthError{Reason: domain.AuthReasonInvalidResponse, Status: res.status, Message: "Login failed", Err: err}
	}

	userJSON := payload.User
	if len(bytes.TrimSpace(userJSON)) == 0 || bytes.Equal(bytes.TrimSpace(userJSON), []byte("null")) {
		userJSON = res.body
	}
	var user domain.User
	if err := json.Unmarshal(userJSON, &user); err != nil {
		c.log.Debug().Err(err).Msg("login response carries no usable user record")
		return &ports.LoginResult{Credential: payload.Access}, nil
	}
	return &ports.LoginResult{Credential: payload.Access, User: &user}, nil
}

// Profile fetches the full record of the user owning credential.
func (c *Client) Profile(ctx context.Context, credential string) (*domain.User, error) {
	res, err := c.do(ctx, "profile", http.MethodGet, profilePath, credential, nil)
	if err != nil {
		return nil, &domain.AuthError{Reason: domain.AuthReasonTransport, Message: "Profile request failed", Err: err}
	}
	if !res.ok() {
		return nil, &domain.AuthError{
			Reason:  domain.AuthReasonRejected,
			Status:  res.status,
			Message: errorMessage(res.body, "Profile request failed"),
		}
	}

	var user domain.User
	if err := json.Unmarshal(res.body, &user); err != nil {
		return nil, &domain.AuthError{Reason: domain.AuthReasonInvalidResponse, Status: res.status, Message: "Profile request failed", Err: err}
	}
	return &user, nil
}
