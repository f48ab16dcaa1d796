package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/literaryvoice/literary-voice/internal/core/domain"
)

// ctxAccount extracts the account injected by the Auth middleware.
// A missing account means the route was wired without the middleware.
func ctxAccount(c echo.Context) (*domain.Account, error) {
	account, _ := c.Get("account").(*domain.Account)
	if account == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
	}
	return account, nil
}
