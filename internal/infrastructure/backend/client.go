// Package backend is the HTTP+JSON adapter for the ERP backend's
// authentication and user-management endpoints.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/acme-erp/admin-console/internal/metrics"
)

const (
	loginPath     = "/api/auth/login/"
	profilePath   = "/api/auth/profile/"
	usersPath     = "/api/auth/users/"
	registerPath  = "/api/auth/register/"
	statsPath     = "/api/auth/dashboard/stats/"
	requestIDHdr  = "X-Request-ID"
	maxBodyLength = 4 << 20
)

// Config captures the settings for reaching the backend.
type Config struct {
	BaseURL string
	// Timeout bounds each round trip. Zero means no timeout.
	Timeout time.Duration
	// HTTPClient overrides the default client, e.g. in tests.
	HTTPClient *http.Client
}

// Client implements ports.AuthGateway and ports.UserGateway.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

func New(cfg Config, log zerolog.Logger) (*Client, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("backend: invalid base url %q", cfg.BaseURL)
	}

	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		baseURL: strings.TrimRight(u.String(), "/"),
		http:    hc,
		log:     log,
	}, nil
}

// response is a fully read backend reply.
type response struct {
	status int
	body   []byte
}

func (r response) ok() bool { return r.status >= 200 && r.status < 300 }

// do performs one round trip. A non-nil error means the request never
// produced an HTTP response (or its body could not be read).
func (c *Client) do(ctx context.Context, op, method, path, credential string, payload any) (response, error) {
	started := time.Now()

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return response{}, fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return response{}, fmt.Errorf("%s: build request: %w", op, err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHdr, requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if credential != "" {
		req.Header.Set("Authorization", "Bearer "+credential)
	}

	log := c.log.With().Str("op", op).Str("request_id", requestID).Logger()

	res, err := c.http.Do(req)
	if err != nil {
		metrics.ObserveBackendRequest(op, "transport_error", started)
		log.Warn().Err(err).Msg("backend request failed")
		return response{}, fmt.Errorf("%s: %w", op, err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, maxBodyLength))
	if err != nil {
		metrics.ObserveBackendRequest(op, "transport_error", started)
		return response{}, fmt.Errorf("%s: read response: %w", op, err)
	}

	out := response{status: res.StatusCode, body: raw}
	metrics.ObserveBackendRequest(op, outcome(out), started)
	log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", res.StatusCode).
		Dur("elapsed", time.Since(started)).
		Msg("backend request")
	return out, nil
}

func outcome(r response) string {
	switch {
	case r.ok():
		return "ok"
	case r.status == http.StatusForbidden:
		return "forbidden"
	default:
		return "rejected"
	}
}
