package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/acme-erp/admin-console/internal/core/domain"
)

const (
	CtxUserID = "user_id"
	CtxRole   = "role"
)

// ctxClaims extracts the claims injected by the Auth middleware. A missing
// user id means the middleware did not run.
func ctxClaims(c echo.Context) (userID string, role domain.Role, err error) {
	userID, _ = c.Get(CtxUserID).(string)
	if userID == "" {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "Authentication credentials were not provided.")
	}
	role, _ = c.Get(CtxRole).(domain.Role)
	return userID, role, nil
}

// bindAndValidate decodes the JSON body into req and validates it.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "JSON parse error.")
	}
	return c.Validate(req)
}
