package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/acme-erp/admin-console/internal/core/ports"
)

type UserHandler struct {
	accounts ports.AccountService
}

func NewUserHandler(accounts ports.AccountService) *UserHandler {
	return &UserHandler{accounts: accounts}
}

// List returns every account as a {count, results} page with flat roles.
func (h *UserHandler) List(c echo.Context) error {
	accounts, err := h.accounts.List(c.Request().Context())
	if err != nil {
		return err
	}

	page := userPage{Count: len(accounts), Results: make([]userResponse, 0, len(accounts))}
	for _, a := range accounts {
		page.Results = append(page.Results, toUser(a))
	}
	return c.JSON(http.StatusOK, page)
}

func (h *UserHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	account, err := h.accounts.Register(c.Request().Context(), req.input())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toUser(account))
}

func (h *UserHandler) Update(c echo.Context) error {
	var req updateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	account, err := h.accounts.Update(c.Request().Context(), c.Param("id"), req.input())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUser(account))
}

func (h *UserHandler) Delete(c echo.Context) error {
	userID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	id := c.Param("id")
	if id == userID {
		return echo.NewHTTPError(http.StatusBadRequest, "You cannot delete your own account.")
	}
	if err := h.accounts.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *UserHandler) Stats(c echo.Context) error {
	stats, err := h.accounts.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, statsResponse{
		TotalUsers:   stats.Total,
		ActiveUsers:  stats.Active,
		SystemStatus: "Online",
	})
}
