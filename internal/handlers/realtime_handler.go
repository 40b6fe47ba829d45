package handlers

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/ripplehq/ripple/backend/internal/models"
	"github.com/ripplehq/ripple/backend/internal/realtime"
)

// RealtimeHandler upgrades authenticated clients to the notification socket
type RealtimeHandler struct {
	hub       *realtime.Hub
	jwtSecret string
}

// NewRealtimeHandler creates a new RealtimeHandler
func NewRealtimeHandler(hub *realtime.Hub, jwtSecret string) *RealtimeHandler {
	return &RealtimeHandler{hub: hub, jwtSecret: jwtSecret}
}

// RegisterRealtimeRoutes registers the websocket endpoint. The route does its
// own token check because browsers cannot set headers on websocket upgrades,
// so the token may arrive as a query parameter instead.
func (h *RealtimeHandler) RegisterRealtimeRoutes(e *echo.Echo) {
	e.GET("/api/ws", h.ServeWS)
}

// ServeWS authenticates the upgrade request and hands the connection to the hub
func (h *RealtimeHandler) ServeWS(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		authHeader := c.Request().Header.Get("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			token = strings.TrimPrefix(authHeader, "Bearer ")
		}
	}
	if token == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing token")
	}

	userID, err := h.authenticate(token)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
	}

	h.hub.Serve(userID, c.Response(), c.Request())
	return nil
}

func (h *RealtimeHandler) authenticate(token string) (uint, error) {
	claims := &models.JwtCustomClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(h.jwtSecret), nil
	})
	if err != nil {
		return 0, err
	}
	if !parsed.Valid {
		return 0, jwt.ErrTokenInvalidClaims
	}
	return claims.UserID, nil
}
