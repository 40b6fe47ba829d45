package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ripplehq/ripple/backend/internal/models"
	"github.com/ripplehq/ripple/backend/internal/realtime"
)

const realtimeTestSecret = "realtime-test-secret"

func newRealtimeServer(t *testing.T) (*httptest.Server, *realtime.Hub) {
	t.Helper()
	e := echo.New()
	hub := realtime.NewHub(nil)
	NewRealtimeHandler(hub, realtimeTestSecret).RegisterRealtimeRoutes(e)
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv, hub
}

func signedToken(t *testing.T, userID uint) string {
	t.Helper()
	claims := &models.JwtCustomClaims{
		UserID: userID,
		Email:  "socket@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(realtimeTestSecret))
	require.NoError(t, err)
	return token
}

func TestRealtimeUpgradeWithTokenQueryParam(t *testing.T) {
	srv, hub := newRealtimeServer(t)

	wsURL := strings.Replace(srv.URL, "http", "ws", 1) + "/api/ws?token=" + signedToken(t, 7)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool {
		return hub.ConnectionCount(7) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestRealtimeUpgradeWithBearerHeader(t *testing.T) {
	srv, hub := newRealtimeServer(t)

	header := http.Header{"Authorization": {"Bearer " + signedToken(t, 12)}}
	wsURL := strings.Replace(srv.URL, "http", "ws", 1) + "/api/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool {
		return hub.ConnectionCount(12) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestRealtimeUpgradeRejectsMissingAndBadTokens(t *testing.T) {
	srv, _ := newRealtimeServer(t)
	wsURL := strings.Replace(srv.URL, "http", "ws", 1) + "/api/ws"

	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(wsURL+"?token=not-a-jwt", nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
