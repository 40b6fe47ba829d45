package handlers

import (
	"github.com/labstack/echo/v4"

	"github.com/ripplehq/ripple/backend/internal/models"
	"github.com/ripplehq/ripple/backend/pkg/apperrors"
)

// getUserIDFromContext extracts the authenticated user ID stored by the JWT
// middleware; 0 means unauthenticated.
func getUserIDFromContext(c echo.Context) uint {
	claims, ok := c.Get("user").(*models.JwtCustomClaims)
	if !ok || claims == nil {
		return 0
	}
	return claims.UserID
}

// httpError converts an application error into an echo HTTP error using the
// taxonomy's status codes.
func httpError(err error) *echo.HTTPError {
	appErr := apperrors.FromError(err)
	return echo.NewHTTPError(appErr.StatusCode, appErr.Message)
}
