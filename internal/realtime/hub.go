package realtime

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ripplehq/ripple/backend/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 << 10

	sendBufferSize = 16
)

// Event is a JSON payload delivered to or received from a connected client.
type Event struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// NewEvent marshals payload into an outbound event. A payload that fails to
// marshal yields an event with empty data; callers only pass JSON-able types.
func NewEvent(name string, payload any) Event {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Error("realtime: marshal event payload", zap.String("event", name), zap.Error(err))
		data = nil
	}
	return Event{Event: name, Data: data}
}

// ClientEventHandler receives events sent by a connected client.
type ClientEventHandler interface {
	HandleClientEvent(userID uint, event string, data json.RawMessage)
}

type connection struct {
	hub    *Hub
	conn   *websocket.Conn
	userID uint
	send   chan Event
}

// Hub maps authenticated user identities to their live WebSocket connections
// and fans events out to them. One hub per process, injected where needed.
type Hub struct {
	mu      sync.RWMutex
	clients map[uint]map[*connection]struct{}

	handler   ClientEventHandler
	onConnect func(userID uint)
	upgrader  websocket.Upgrader
}

// NewHub constructs a hub. The handler may be nil when inbound client events
// are not consumed (tests, tooling).
func NewHub(handler ClientEventHandler) *Hub {
	return &Hub{
		clients: make(map[uint]map[*connection]struct{}),
		handler: handler,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// SetHandler installs the inbound event handler. The handler usually depends
// on components that themselves emit through the hub, so it is attached after
// construction, before the hub serves traffic.
func (h *Hub) SetHandler(handler ClientEventHandler) {
	h.handler = handler
}

// OnConnect installs a hook invoked on its own goroutine each time a
// connection registers. Set it during wiring, before the hub serves traffic.
func (h *Hub) OnConnect(fn func(userID uint)) {
	h.onConnect = fn
}

// Serve upgrades the HTTP connection to a WebSocket and registers it for the
// given user. The caller must have authenticated the user already; the hub
// never sees unauthenticated identities.
func (h *Hub) Serve(userID uint, w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("realtime: upgrade failed", zap.Error(err))
		return
	}

	cl := &connection{
		hub:    h,
		conn:   conn,
		userID: userID,
		send:   make(chan Event, sendBufferSize),
	}

	h.register(cl)
	defer h.unregister(cl)

	if h.onConnect != nil {
		go h.onConnect(userID)
	}

	go cl.writeLoop()
	cl.readLoop()
}

// Emit delivers an event to every live connection for the user. With zero
// connections the event is dropped; the store remains the durable source of
// truth and clients re-pull on reconnect.
func (h *Hub) Emit(userID uint, event string, payload any) {
	ev := NewEvent(event, payload)

	h.mu.RLock()
	defer h.mu.RUnlock()

	for cl := range h.clients[userID] {
		select {
		case cl.send <- ev:
		default:
			// Drop rather than block other clients on a full buffer.
		}
	}
}

// ConnectionCount reports the number of live connections for a user.
func (h *Hub) ConnectionCount(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

func (h *Hub) register(cl *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[cl.userID] == nil {
		h.clients[cl.userID] = make(map[*connection]struct{})
	}
	h.clients[cl.userID][cl] = struct{}{}
}

// unregister is idempotent: a connection that never fully registered, or was
// already removed, is a no-op.
func (h *Hub) unregister(cl *connection) {
	h.mu.Lock()
	if clients := h.clients[cl.userID]; clients != nil {
		if _, ok := clients[cl]; ok {
			delete(clients, cl)
			close(cl.send)
		}
		if len(clients) == 0 {
			delete(h.clients, cl.userID)
		}
	}
	h.mu.Unlock()

	_ = cl.conn.Close()
}

func (cl *connection) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = cl.conn.Close()
	}()

	for {
		select {
		case ev, ok := <-cl.send:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = cl.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := cl.conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (cl *connection) readLoop() {
	cl.conn.SetReadLimit(maxMessageSize)
	_ = cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	cl.conn.SetPongHandler(func(string) error {
		return cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var ev Event
		if err := cl.conn.ReadJSON(&ev); err != nil {
			return
		}
		if ev.Event == "" {
			continue
		}
		if cl.hub.handler != nil {
			cl.hub.handler.HandleClientEvent(cl.userID, ev.Event, ev.Data)
		}
	}
}
