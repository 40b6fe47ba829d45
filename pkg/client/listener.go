package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ripplehq/ripple/backend/internal/models"
	"github.com/ripplehq/ripple/backend/internal/realtime"
	"github.com/ripplehq/ripple/backend/pkg/logger"
)

// Listener consumes the realtime notification events for one authenticated
// user and applies them to a Cache.
type Listener struct {
	cache  *Cache
	dialer *websocket.Dialer
	log    *zap.Logger
}

// NewListener creates a Listener feeding the given cache.
func NewListener(cache *Cache) *Listener {
	return &Listener{
		cache:  cache,
		dialer: websocket.DefaultDialer,
		log:    logger.WithModule("client"),
	}
}

// Listen connects to the server's websocket endpoint with the bearer token
// and applies events until the connection drops or ctx is cancelled. The
// caller owns reconnection policy.
func (l *Listener) Listen(ctx context.Context, wsURL, token string) error {
	u, err := url.Parse(wsURL)
	if err != nil {
		return err
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()

	conn, resp, err := l.dialer.DialContext(ctx, u.String(), http.Header{})
	if err != nil {
		return err
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	for {
		var ev realtime.Event
		if err := conn.ReadJSON(&ev); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		l.apply(ev)
	}
}

func (l *Listener) apply(ev realtime.Event) {
	switch ev.Event {
	case "notification":
		var n models.EnrichedNotification
		if err := json.Unmarshal(ev.Data, &n); err != nil {
			l.log.Warn("decode notification event", zap.Error(err))
			return
		}
		l.cache.Push(n)

	case "notification-read":
		var n models.Notification
		if err := json.Unmarshal(ev.Data, &n); err != nil {
			l.log.Warn("decode notification-read event", zap.Error(err))
			return
		}
		l.cache.ApplyRead(n.ID.Hex(), n.ReadAt)

	case "notification-deleted":
		var payload struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(ev.Data, &payload); err != nil || payload.ID == "" {
			return
		}
		l.cache.Remove(payload.ID)

	case "notifications":
		var backlog []models.EnrichedNotification
		if err := json.Unmarshal(ev.Data, &backlog); err != nil {
			l.log.Warn("decode notifications backlog", zap.Error(err))
			return
		}
		l.cache.Replace(backlog)
	}
}
