package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/ripplehq/ripple/backend/internal/models"
	"github.com/ripplehq/ripple/backend/internal/realtime"
)

// serveEvents upgrades one connection, pushes the given events, then keeps
// the socket open until the test ends.
func serveEvents(t *testing.T, events []realtime.Event) (*httptest.Server, chan string) {
	t.Helper()
	tokens := make(chan string, 1)
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokens <- r.URL.Query().Get("token")
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		for _, ev := range events {
			require.NoError(t, conn.WriteJSON(ev))
		}
		<-r.Context().Done()
	}))
	t.Cleanup(srv.Close)
	return srv, tokens
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition never met")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestListenerAppliesServerEvents(t *testing.T) {
	pushed := enriched(models.KindLike, false)
	deleted := enriched(models.KindComment, false)
	readAt := time.Now()
	readRecord := pushed.Notification
	readRecord.IsRead = true
	readRecord.ReadAt = &readAt

	events := []realtime.Event{
		realtime.NewEvent("notifications", []models.EnrichedNotification{deleted}),
		realtime.NewEvent("notification", pushed),
		realtime.NewEvent("notification-read", readRecord),
		realtime.NewEvent("notification-deleted", map[string]string{"id": deleted.ID.Hex()}),
	}
	srv, tokens := serveEvents(t, events)

	cache := NewCache()
	listener := NewListener(cache)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
		done <- listener.Listen(ctx, wsURL, "secret-token")
	}()

	require.Equal(t, "secret-token", <-tokens)

	waitFor(t, func() bool {
		snapshot := cache.Snapshot()
		return len(snapshot) == 1 && snapshot[0].ID == pushed.ID && snapshot[0].IsRead
	})
	require.Equal(t, 0, cache.UnreadCount())

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("listener did not stop on cancel")
	}
}

func TestListenerRejectsBadURL(t *testing.T) {
	listener := NewListener(NewCache())
	err := listener.Listen(context.Background(), "://not-a-url", "token")
	require.Error(t, err)
}

func TestListenerIgnoresUnknownEvents(t *testing.T) {
	events := []realtime.Event{
		realtime.NewEvent("presence", map[string]string{"status": "online"}),
		realtime.NewEvent("notification", enriched(models.KindFollow, false)),
	}
	srv, _ := serveEvents(t, events)

	cache := NewCache()
	listener := NewListener(cache)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
		_ = listener.Listen(ctx, wsURL, "token")
	}()

	waitFor(t, func() bool { return cache.Len() == 1 })
	require.Equal(t, models.KindFollow, cache.Snapshot()[0].Kind)
	require.False(t, cache.Snapshot()[0].ID.IsZero())
}
