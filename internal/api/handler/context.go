package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Context keys set by the Auth middleware.
const (
	CtxUserID       = "user_id"
	CtxRole         = "role"
	CtxUnrestricted = "unrestricted"
)

// identity is the authenticated caller.
type identity struct {
	UserID       string
	Role         string
	Unrestricted bool
}

// ctxIdentity extracts the claims injected by the Auth middleware and fails
// fast with 401 when they are missing.
func ctxIdentity(c echo.Context) (identity, error) {
	id := identity{}
	id.UserID, _ = c.Get(CtxUserID).(string)
	if id.UserID == "" {
		return identity{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	id.Role, _ = c.Get(CtxRole).(string)
	id.Unrestricted, _ = c.Get(CtxUnrestricted).(bool)
	return id, nil
}

// bindAndValidate decodes the request body into req and runs the struct validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return c.Validate(req)
}
