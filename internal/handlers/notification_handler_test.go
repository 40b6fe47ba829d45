package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ripplehq/ripple/backend/internal/models"
	"github.com/ripplehq/ripple/backend/internal/notifications"
	"github.com/ripplehq/ripple/backend/pkg/apperrors"
)

type memoryNotificationStore struct {
	mu      sync.Mutex
	records map[string]*models.Notification
}

func newMemoryNotificationStore() *memoryNotificationStore {
	return &memoryNotificationStore{records: make(map[string]*models.Notification)}
}

func (s *memoryNotificationStore) Create(_ context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n.ID = primitive.NewObjectID()
	n.CreatedAt = time.Now()
	cpy := *n
	s.records[n.ID.Hex()] = &cpy
	return nil
}

func (s *memoryNotificationStore) GetByID(_ context.Context, id string) (*models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.records[id]
	if !ok {
		return nil, apperrors.ErrNotFound.WithMessage("Notification not found")
	}
	cpy := *n
	return &cpy, nil
}

func (s *memoryNotificationStore) GetByReceiver(_ context.Context, receiverID uint) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Notification{}
	for _, n := range s.records {
		if n.Receiver == receiverID {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (s *memoryNotificationStore) MarkRead(_ context.Context, id string) (*models.Notification, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.records[id]
	if !ok {
		return nil, false, apperrors.ErrNotFound.WithMessage("Notification not found")
	}
	if n.IsRead {
		cpy := *n
		return &cpy, false, nil
	}
	now := time.Now()
	n.IsRead = true
	n.ReadAt = &now
	cpy := *n
	return &cpy, true, nil
}

func (s *memoryNotificationStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return apperrors.ErrNotFound.WithMessage("Notification not found")
	}
	delete(s.records, id)
	return nil
}

func (s *memoryNotificationStore) DeleteMatching(_ context.Context, sender, receiver uint, kind, postID string) (*models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, n := range s.records {
		if n.Sender == sender && n.Receiver == receiver && n.Kind == kind && (postID == "" || n.PostID == postID) {
			cpy := *n
			delete(s.records, id)
			return &cpy, nil
		}
	}
	return nil, nil
}

func (s *memoryNotificationStore) DeleteReadBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var deleted int64
	for id, n := range s.records {
		if n.IsRead && n.ReadAt != nil && n.ReadAt.Before(cutoff) {
			delete(s.records, id)
			deleted++
		}
	}
	return deleted, nil
}

func (s *memoryNotificationStore) CountUnread(_ context.Context, receiverID uint) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, n := range s.records {
		if n.Receiver == receiverID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

type memoryUserStore struct {
	users map[uint]*models.User
}

func (s *memoryUserStore) CreateUser(u *models.User) error { s.users[u.ID] = u; return nil }

func (s *memoryUserStore) GetUserByID(id uint) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, apperrors.ErrNotFound.WithMessage("User not found")
	}
	return u, nil
}

func (s *memoryUserStore) GetUserByEmail(string) (*models.User, error) {
	return nil, apperrors.ErrNotFound.WithMessage("User not found")
}

func (s *memoryUserStore) GetUserByUsername(string) (*models.User, error) {
	return nil, apperrors.ErrNotFound.WithMessage("User not found")
}

func (s *memoryUserStore) GetUserByFirebaseUID(string) (*models.User, error) {
	return nil, apperrors.ErrNotFound.WithMessage("User not found")
}

func (s *memoryUserStore) UpdateUser(*models.User) error { return nil }

type nopEmitter struct{}

func (nopEmitter) Emit(uint, string, any) {}

type notificationHandlerFixture struct {
	handler *NotificationHandler
	store   *memoryNotificationStore
	manager *notifications.Manager
}

func newNotificationFixture(testEnabled bool) *notificationHandlerFixture {
	store := newMemoryNotificationStore()
	users := &memoryUserStore{users: map[uint]*models.User{
		1: {ID: 1, Name: "Alice", Username: "alice", NotificationsEnabled: true},
		2: {ID: 2, Name: "Bob", Username: "bob", NotificationsEnabled: true},
	}}
	enricher := notifications.NewEnricher(users, nil)
	manager := notifications.NewManager(store, users, nopEmitter{}, enricher)
	reconciler := notifications.NewReconciler(store, nopEmitter{})

	return &notificationHandlerFixture{
		handler: NewNotificationHandler(store, manager, reconciler, enricher, testEnabled),
		store:   store,
		manager: manager,
	}
}

func (f *notificationHandlerFixture) seed(t *testing.T, sender, receiver uint, kind string) *models.Notification {
	t.Helper()
	n, err := f.manager.SendNotification(context.Background(), notifications.SendInput{
		Sender:   sender,
		Receiver: receiver,
		Kind:     kind,
	})
	require.NoError(t, err)
	return n
}

func newAuthedContext(t *testing.T, method, path string, userID uint) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != 0 {
		c.Set("user", &models.JwtCustomClaims{UserID: userID})
	}
	return c, rec
}

func TestGetNotificationsEnriched(t *testing.T) {
	f := newNotificationFixture(false)
	f.seed(t, 1, 2, models.KindLike)
	f.seed(t, 1, 2, models.KindComment)

	c, rec := newAuthedContext(t, http.MethodGet, "/api/v1/notifications", 2)
	require.NoError(t, f.handler.GetNotifications(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			Notifications []models.EnrichedNotification `json:"notifications"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.True(t, body.Success)
	require.Len(t, body.Data.Notifications, 2)
	for _, n := range body.Data.Notifications {
		require.Equal(t, "alice", n.SenderInfo.Username)
	}
}

func TestGetNotificationsRequiresAuth(t *testing.T) {
	f := newNotificationFixture(false)

	c, _ := newAuthedContext(t, http.MethodGet, "/api/v1/notifications", 0)
	err := f.handler.GetNotifications(c)
	require.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestGetUnreadCount(t *testing.T) {
	f := newNotificationFixture(false)
	n := f.seed(t, 1, 2, models.KindLike)
	f.seed(t, 1, 2, models.KindFollow)

	_, _, err := f.store.MarkRead(context.Background(), n.ID.Hex())
	require.NoError(t, err)

	c, rec := newAuthedContext(t, http.MethodGet, "/api/v1/notifications/unread-count", 2)
	require.NoError(t, f.handler.GetUnreadCount(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data struct {
			Count int64 `json:"count"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, int64(1), body.Data.Count)
}

func TestMarkAsReadEndpoint(t *testing.T) {
	f := newNotificationFixture(false)
	n := f.seed(t, 1, 2, models.KindLike)

	c, rec := newAuthedContext(t, http.MethodPut, "/", 2)
	c.SetParamNames("id")
	c.SetParamValues(n.ID.Hex())
	require.NoError(t, f.handler.MarkAsRead(c))
	require.Equal(t, http.StatusOK, rec.Code)

	stored, err := f.store.GetByID(context.Background(), n.ID.Hex())
	require.NoError(t, err)
	require.True(t, stored.IsRead)
}

func TestMarkAsReadWrongUser(t *testing.T) {
	f := newNotificationFixture(false)
	n := f.seed(t, 1, 2, models.KindLike)

	c, _ := newAuthedContext(t, http.MethodPut, "/", 1)
	c.SetParamNames("id")
	c.SetParamValues(n.ID.Hex())
	err := f.handler.MarkAsRead(c)
	require.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusForbidden, httpErr.Code)
}

func TestDeleteNotificationEndpoint(t *testing.T) {
	f := newNotificationFixture(false)
	n := f.seed(t, 1, 2, models.KindRetweet)

	c, rec := newAuthedContext(t, http.MethodDelete, "/", 2)
	c.SetParamNames("id")
	c.SetParamValues(n.ID.Hex())
	require.NoError(t, f.handler.DeleteNotification(c))
	require.Equal(t, http.StatusNoContent, rec.Code)

	_, err := f.store.GetByID(context.Background(), n.ID.Hex())
	require.Error(t, err)
}

func TestDeleteNotificationMissing(t *testing.T) {
	f := newNotificationFixture(false)

	c, _ := newAuthedContext(t, http.MethodDelete, "/", 2)
	c.SetParamNames("id")
	c.SetParamValues(primitive.NewObjectID().Hex())
	err := f.handler.DeleteNotification(c)
	require.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusNotFound, httpErr.Code)
}

func TestSendTestNotificationGatedByEnv(t *testing.T) {
	disabled := newNotificationFixture(false)
	c, _ := newAuthedContext(t, http.MethodPost, "/api/v1/notifications/test", 1)
	err := disabled.handler.SendTestNotification(c)
	require.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusNotFound, httpErr.Code)

	enabled := newNotificationFixture(true)
	c, rec := newAuthedContext(t, http.MethodPost, "/api/v1/notifications/test", 1)
	require.NoError(t, enabled.handler.SendTestNotification(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	ns, err := enabled.store.GetByReceiver(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, ns, 1)
	require.Equal(t, models.KindTest, ns[0].Kind)
}
