package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acme-erp/admin-console/internal/api/handler"
	"github.com/acme-erp/admin-console/internal/core/service"
	"github.com/acme-erp/admin-console/internal/infrastructure/db/memory"
)

const testSecret = "router-test-secret"

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	repo := memory.NewAccountRepository()
	accounts := service.NewAccountService(repo, testSecret, time.Hour)
	_, err := accounts.Seed(context.Background(), "changeme123", zerolog.Nop())
	require.NoError(t, err)

	return NewRouter(Dependencies{
		Accounts:  accounts,
		Readiness: map[string]handler.Pinger{"accounts": repo},
		JWTSecret: testSecret,
		Log:       zerolog.Nop(),
	})
}

func do(t *testing.T, h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, h http.Handler, email string) string {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/auth/login/", "", `{"email":"`+email+`","password":"changeme123"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Access string `json:"access"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Access)
	return resp.Access
}

func TestRouter_LoginRejected(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/auth/login/", "", `{"email":"admin@erp.local","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"detail":"Invalid credentials"}`, rec.Body.String())
}

func TestRouter_LoginValidation(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/auth/login/", "", `{"email":"nope"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"email":["Enter a valid email address."],"password":["This field is required."]}`, rec.Body.String())
}

func TestRouter_ProfileRoleObject(t *testing.T) {
	h := newTestRouter(t)
	token := login(t, h, "manager@erp.local")

	rec := do(t, h, http.MethodGet, "/api/auth/profile/", token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, map[string]any{"name": "manager"}, resp["role"])
}

func TestRouter_ProfileRequiresToken(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/api/auth/profile/", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"detail"`)
}

func TestRouter_ListByRole(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/api/auth/users/", login(t, h, "employee@erp.local"), "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/auth/users/", login(t, h, "manager@erp.local"), "")
	require.Equal(t, http.StatusOK, rec.Code)

	var page struct {
		Count   int              `json:"count"`
		Results []map[string]any `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 3, page.Count)
	assert.Equal(t, "admin", page.Results[0]["role"])
}

func TestRouter_ManagerCannotRegister(t *testing.T) {
	h := newTestRouter(t)

	body := `{"username":"x","email":"x@erp.local","role_name":"employee","password":"longenough","password_confirm":"longenough"}`
	rec := do(t, h, http.MethodPost, "/api/auth/register/", login(t, h, "manager@erp.local"), body)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRouter_AdminLifecycle(t *testing.T) {
	h := newTestRouter(t)
	token := login(t, h, "admin@erp.local")

	body := `{"username":"neo","email":"neo@erp.local","first_name":"Neo","last_name":"A","role_name":"employee","password":"longenough","password_confirm":"longenough"}`
	rec := do(t, h, http.MethodPost, "/api/auth/register/", token, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	id, _ := created["id"].(string)
	require.NotEmpty(t, id)

	rec = do(t, h, http.MethodPost, "/api/auth/register/", token, body)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "duplicate")

	rec = do(t, h, http.MethodPut, "/api/auth/users/"+id+"/", token,
		`{"username":"neo","email":"neo@erp.local","role_name":"manager"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"role":"manager"`)

	rec = do(t, h, http.MethodDelete, "/api/auth/users/"+id+"/", token, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = do(t, h, http.MethodDelete, "/api/auth/users/"+id+"/", token, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_StatsAndProbes(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/api/auth/dashboard/stats/", login(t, h, "admin@erp.local"), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"total_users":3,"active_users":3,"system_status":"Online"}`, rec.Body.String())

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/health", "", "").Code)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/health/ready", "", "").Code)

	rec = do(t, h, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "erp_devserver_logins_total")
}
