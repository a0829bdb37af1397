package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/acme-erp/admin-console/internal/core/domain"
	"github.com/acme-erp/admin-console/internal/core/ports"
	"github.com/acme-erp/admin-console/internal/pkg/validation"
)

func TestUserHandler_List(t *testing.T) {
	e := newEcho()
	manager := sampleAccount()
	manager.ID, manager.Role = "u-2", domain.RoleManager
	stub := &stubAccountService{
		listFn: func(ctx context.Context) ([]*domain.Account, error) {
			return []*domain.Account{sampleAccount(), manager}, nil
		},
	}
	handler := NewUserHandler(stub)

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/auth/users/", nil), rec)
	if err := handler.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp struct {
		Count   int              `json:"count"`
		Results []map[string]any `json:"results"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Count != 2 || len(resp.Results) != 2 {
		t.Fatalf("unexpected page: %+v", resp)
	}
	if resp.Results[1]["role"] != "manager" {
		t.Fatalf("expected flat role, got %v", resp.Results[1]["role"])
	}
}

func TestUserHandler_Register_Success(t *testing.T) {
	e := newEcho()
	stub := &stubAccountService{
		registerFn: func(ctx context.Context, input ports.AccountInput) (*domain.Account, error) {
			if input.Username != "bob" || input.Role != domain.RoleEmployee || input.Password != "longenough" {
				t.Fatalf("unexpected input: %+v", input)
			}
			return &domain.Account{ID: "u-9", Username: input.Username, Role: input.Role}, nil
		},
	}
	handler := NewUserHandler(stub)

	body := `{"username":"bob","email":"bob@erp.local","first_name":"Bob","last_name":"B","role_name":"employee","password":"longenough","password_confirm":"longenough"}`
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/api/auth/register/", body), rec)

	if err := handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
}

func TestUserHandler_Register_FieldErrors(t *testing.T) {
	e := newEcho()
	stub := &stubAccountService{
		registerFn: func(ctx context.Context, input ports.AccountInput) (*domain.Account, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	handler := NewUserHandler(stub)

	body := `{"username":"bob","email":"bob@erp.local","role_name":"owner","password":"short","password_confirm":"other"}`
	c := e.NewContext(jsonRequest(http.MethodPost, "/api/auth/register/", body), httptest.NewRecorder())

	fields, ok := validation.FieldErrors(handler.Register(c))
	if !ok {
		t.Fatalf("expected validation errors")
	}
	for _, field := range []string{"role_name", "password", "password_confirm"} {
		if len(fields[field]) == 0 {
			t.Fatalf("expected error for %s, got %v", field, fields)
		}
	}
}

func TestUserHandler_Update_KeepsPassword(t *testing.T) {
	e := newEcho()
	stub := &stubAccountService{
		updateFn: func(ctx context.Context, id string, input ports.AccountInput) (*domain.Account, error) {
			if id != "u-2" {
				t.Fatalf("unexpected id %s", id)
			}
			if input.Password != "" {
				t.Fatalf("expected no password, got %q", input.Password)
			}
			return &domain.Account{ID: id, Role: input.Role}, nil
		},
	}
	handler := NewUserHandler(stub)

	body := `{"username":"bo","email":"bo@erp.local","role_name":"manager"}`
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPut, "/", body), rec)
	c.SetParamNames("id")
	c.SetParamValues("u-2")

	if err := handler.Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestUserHandler_Update_NotFound(t *testing.T) {
	e := newEcho()
	stub := &stubAccountService{
		updateFn: func(ctx context.Context, id string, input ports.AccountInput) (*domain.Account, error) {
			return nil, domain.ErrUserNotFound
		},
	}
	handler := NewUserHandler(stub)

	c := e.NewContext(jsonRequest(http.MethodPut, "/", `{"username":"x","email":"x@erp.local","role_name":"employee"}`), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("missing")

	if err := handler.Update(c); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserHandler_Delete(t *testing.T) {
	e := newEcho()
	deleted := ""
	stub := &stubAccountService{
		deleteFn: func(ctx context.Context, id string) error {
			deleted = id
			return nil
		},
	}
	handler := NewUserHandler(stub)

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodDelete, "/", nil), rec)
	c.Set(CtxUserID, "u-1")
	c.SetParamNames("id")
	c.SetParamValues("u-7")

	if err := handler.Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent || deleted != "u-7" {
		t.Fatalf("expected 204 deleting u-7, got %d %q", rec.Code, deleted)
	}
}

func TestUserHandler_Delete_Self(t *testing.T) {
	e := newEcho()
	stub := &stubAccountService{
		deleteFn: func(ctx context.Context, id string) error {
			t.Fatalf("should not be called")
			return nil
		},
	}
	handler := NewUserHandler(stub)

	c := e.NewContext(httptest.NewRequest(http.MethodDelete, "/", nil), httptest.NewRecorder())
	c.Set(CtxUserID, "u-1")
	c.SetParamNames("id")
	c.SetParamValues("u-1")

	var he *echo.HTTPError
	if err := handler.Delete(c); !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestUserHandler_Stats(t *testing.T) {
	e := newEcho()
	stub := &stubAccountService{
		statsFn: func(ctx context.Context) (*ports.AccountStats, error) {
			return &ports.AccountStats{Total: 3, Active: 2}, nil
		},
	}
	handler := NewUserHandler(stub)

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	if err := handler.Stats(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["total_users"] != float64(3) || resp["active_users"] != float64(2) || resp["system_status"] != "Online" {
		t.Fatalf("unexpected stats: %+v", resp)
	}
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func TestReadiness(t *testing.T) {
	e := newEcho()

	rec := httptest.NewRecorder()
	ok := NewReadinessHandler(map[string]Pinger{"accounts": stubPinger{}})
	if err := ok.Readiness(e.NewContext(httptest.NewRequest(http.MethodGet, "/health/ready", nil), rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	down := NewReadinessHandler(map[string]Pinger{"accounts": stubPinger{err: errors.New("down")}})
	if err := down.Readiness(e.NewContext(httptest.NewRequest(http.MethodGet, "/health/ready", nil), rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}
