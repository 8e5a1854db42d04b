package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/wordlab/study-api/internal/core/domain"
)

// Context keys written by the Auth middleware.
const (
	CtxUserID   = "user_id"
	CtxUsername = "username"
	CtxRole     = "role"
)

// ctxIdentity rebuilds the caller from the values the Auth middleware set.
// A missing user id or role means the middleware did not run.
func ctxIdentity(c echo.Context) (domain.Identity, error) {
	id := domain.Identity{}
	id.UserID, _ = c.Get(CtxUserID).(string)
	id.Username, _ = c.Get(CtxUsername).(string)
	id.Role, _ = c.Get(CtxRole).(string)
	if id.UserID == "" || id.Role == "" {
		return domain.Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return id, nil
}

// bindJSON decodes the body into req and runs the registered validator.
func bindJSON(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return domain.NewValidationError("invalid payload")
	}
	if c.Echo().Validator == nil {
		return nil
	}
	if err := c.Validate(req); err != nil {
		return domain.NewValidationError(err.Error())
	}
	return nil
}
