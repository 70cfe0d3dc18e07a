package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// ownerOrAdminMiddleware lets through admins, and the holder of a role-token whose subject is the :id path param.
func ownerOrAdminMiddleware(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.IsAdmin() || (claims.Role == role && claims.Subject == ctx.Param("id")) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}
