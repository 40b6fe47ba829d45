package notifications

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ripplehq/ripple/backend/internal/models"
	"github.com/ripplehq/ripple/backend/pkg/apperrors"
)

type fakeStore struct {
	mu        sync.Mutex
	records   map[string]*models.Notification
	createErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[string]*models.Notification)}
}

func (s *fakeStore) Create(_ context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	n.ID = primitive.NewObjectID()
	n.IsRead = false
	n.ReadAt = nil
	n.CreatedAt = time.Now()
	cpy := *n
	s.records[n.ID.Hex()] = &cpy
	return nil
}

func (s *fakeStore) GetByID(_ context.Context, id string) (*models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.records[id]
	if !ok {
		return nil, apperrors.ErrNotFound.WithMessage("Notification not found")
	}
	cpy := *n
	return &cpy, nil
}

func (s *fakeStore) GetByReceiver(_ context.Context, receiverID uint) ([]models.Notification, error) {
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

func (s *fakeStore) MarkRead(_ context.Context, id string) (*models.Notification, bool, error) {
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

func (s *fakeStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return apperrors.ErrNotFound.WithMessage("Notification not found")
	}
	delete(s.records, id)
	return nil
}

func (s *fakeStore) DeleteMatching(_ context.Context, sender, receiver uint, kind, postID string) (*models.Notification, error) {
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

func (s *fakeStore) DeleteReadBefore(_ context.Context, cutoff time.Time) (int64, error) {
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

func (s *fakeStore) CountUnread(_ context.Context, receiverID uint) (int64, error) {
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

func (s *fakeStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

type fakeUsers struct {
	mu      sync.Mutex
	users   map[uint]*models.User
	lookups int
}

func newFakeUsers(users ...*models.User) *fakeUsers {
	f := &fakeUsers{users: make(map[uint]*models.User)}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUsers) CreateUser(u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[u.ID] = u
	return nil
}

func (f *fakeUsers) GetUserByID(id uint) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	u, ok := f.users[id]
	if !ok {
		return nil, apperrors.ErrNotFound.WithMessage("User not found")
	}
	return u, nil
}

func (f *fakeUsers) GetUserByEmail(string) (*models.User, error) {
	return nil, apperrors.ErrNotFound.WithMessage("User not found")
}

func (f *fakeUsers) GetUserByUsername(string) (*models.User, error) {
	return nil, apperrors.ErrNotFound.WithMessage("User not found")
}

func (f *fakeUsers) GetUserByFirebaseUID(string) (*models.User, error) {
	return nil, apperrors.ErrNotFound.WithMessage("User not found")
}

func (f *fakeUsers) UpdateUser(*models.User) error { return nil }

type emission struct {
	userID  uint
	event   string
	payload any
}

type fakeEmitter struct {
	mu        sync.Mutex
	emissions []emission
}

func (f *fakeEmitter) Emit(userID uint, event string, payload any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.emissions = append(f.emissions, emission{userID: userID, event: event, payload: payload})
}

func (f *fakeEmitter) all() []emission {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]emission, len(f.emissions))
	copy(out, f.emissions)
	return out
}

func newTestManager(store *fakeStore, users *fakeUsers, emitter *fakeEmitter) *Manager {
	return NewManager(store, users, emitter, NewEnricher(users, nil))
}

func TestSendNotificationPersistsAndEmits(t *testing.T) {
	store := newFakeStore()
	users := newFakeUsers(
		&models.User{ID: 1, Name: "Alice", Username: "alice", NotificationsEnabled: true},
		&models.User{ID: 2, Name: "Bob", Username: "bob", NotificationsEnabled: true},
	)
	emitter := &fakeEmitter{}
	manager := newTestManager(store, users, emitter)

	n, err := manager.SendNotification(context.Background(), SendInput{
		Sender:   1,
		Receiver: 2,
		Kind:     models.KindLike,
		PostID:   "post-1",
	})
	require.NoError(t, err)
	require.NotNil(t, n)
	require.False(t, n.ID.IsZero())
	require.Equal(t, "Alice liked your post", n.Message)
	require.False(t, n.IsRead)
	require.Equal(t, 1, store.len())

	emissions := emitter.all()
	require.Len(t, emissions, 1)
	require.Equal(t, uint(2), emissions[0].userID)
	require.Equal(t, EventNotification, emissions[0].event)

	enriched, ok := emissions[0].payload.(models.EnrichedNotification)
	require.True(t, ok)
	require.Equal(t, "alice", enriched.SenderInfo.Username)
	require.Equal(t, n.ID, enriched.ID)
}

func TestSendNotificationRequiresParticipants(t *testing.T) {
	manager := newTestManager(newFakeStore(), newFakeUsers(), &fakeEmitter{})

	for _, in := range []SendInput{
		{Receiver: 2, Kind: models.KindLike},
		{Sender: 1, Kind: models.KindLike},
		{Sender: 1, Receiver: 2},
	} {
		_, err := manager.SendNotification(context.Background(), in)
		require.Error(t, err)
		require.Equal(t, apperrors.ErrValidation.Code, apperrors.FromError(err).Code)
	}
}

func TestSendNotificationUnknownReceiver(t *testing.T) {
	users := newFakeUsers(&models.User{ID: 1, Username: "alice", NotificationsEnabled: true})
	store := newFakeStore()
	emitter := &fakeEmitter{}
	manager := newTestManager(store, users, emitter)

	_, err := manager.SendNotification(context.Background(), SendInput{
		Sender:   1,
		Receiver: 99,
		Kind:     models.KindFollow,
	})
	require.Error(t, err)
	require.Equal(t, apperrors.ErrNotFound.Code, apperrors.FromError(err).Code)
	require.Equal(t, 0, store.len())
	require.Empty(t, emitter.all())
}

func TestSendNotificationPreferenceDisabled(t *testing.T) {
	users := newFakeUsers(
		&models.User{ID: 1, Username: "alice", NotificationsEnabled: true},
		&models.User{ID: 2, Username: "bob", NotificationsEnabled: false},
	)
	store := newFakeStore()
	emitter := &fakeEmitter{}
	manager := newTestManager(store, users, emitter)

	n, err := manager.SendNotification(context.Background(), SendInput{
		Sender:   1,
		Receiver: 2,
		Kind:     models.KindFollow,
	})
	require.NoError(t, err)
	require.Nil(t, n)
	require.Equal(t, 0, store.len())
	require.Empty(t, emitter.all())
}

func TestSendNotificationCustomMessage(t *testing.T) {
	users := newFakeUsers(
		&models.User{ID: 1, Username: "alice", NotificationsEnabled: true},
		&models.User{ID: 2, Username: "bob", NotificationsEnabled: true},
	)
	manager := newTestManager(newFakeStore(), users, &fakeEmitter{})

	n, err := manager.SendNotification(context.Background(), SendInput{
		Sender:   1,
		Receiver: 2,
		Kind:     models.KindTest,
		Message:  "hello from a test",
	})
	require.NoError(t, err)
	require.Equal(t, "hello from a test", n.Message)
}

func TestSendNotificationStoreFailure(t *testing.T) {
	users := newFakeUsers(
		&models.User{ID: 1, Username: "alice", NotificationsEnabled: true},
		&models.User{ID: 2, Username: "bob", NotificationsEnabled: true},
	)
	store := newFakeStore()
	store.createErr = errors.New("mongo down")
	emitter := &fakeEmitter{}
	manager := newTestManager(store, users, emitter)

	_, err := manager.SendNotification(context.Background(), SendInput{
		Sender:   1,
		Receiver: 2,
		Kind:     models.KindLike,
	})
	require.Error(t, err)
	require.Equal(t, apperrors.ErrDelivery.Code, apperrors.FromError(err).Code)
	require.Empty(t, emitter.all())
}

func TestDeleteNotificationRemovesMatchAndEmits(t *testing.T) {
	users := newFakeUsers(
		&models.User{ID: 1, Username: "alice", NotificationsEnabled: true},
		&models.User{ID: 2, Username: "bob", NotificationsEnabled: true},
	)
	store := newFakeStore()
	emitter := &fakeEmitter{}
	manager := newTestManager(store, users, emitter)

	n, err := manager.SendNotification(context.Background(), SendInput{
		Sender:   1,
		Receiver: 2,
		Kind:     models.KindLike,
		PostID:   "post-1",
	})
	require.NoError(t, err)

	err = manager.DeleteNotification(context.Background(), 1, 2, models.KindLike, "post-1")
	require.NoError(t, err)
	require.Equal(t, 0, store.len())

	emissions := emitter.all()
	require.Len(t, emissions, 2)
	require.Equal(t, EventNotificationDeleted, emissions[1].event)
	require.Equal(t, uint(2), emissions[1].userID)
	require.Equal(t, map[string]string{"id": n.ID.Hex()}, emissions[1].payload)
}

func TestDeleteNotificationMissingMatchIsSuccess(t *testing.T) {
	emitter := &fakeEmitter{}
	manager := newTestManager(newFakeStore(), newFakeUsers(), emitter)

	err := manager.DeleteNotification(context.Background(), 1, 2, models.KindLike, "post-1")
	require.NoError(t, err)
	require.Empty(t, emitter.all())
}

func TestSendBacklogEmitsStoredNotifications(t *testing.T) {
	users := newFakeUsers(
		&models.User{ID: 1, Username: "alice", NotificationsEnabled: true},
		&models.User{ID: 2, Username: "bob", NotificationsEnabled: true},
	)
	store := newFakeStore()
	emitter := &fakeEmitter{}
	manager := newTestManager(store, users, emitter)

	for i := 0; i < 3; i++ {
		_, err := manager.SendNotification(context.Background(), SendInput{
			Sender:   1,
			Receiver: 2,
			Kind:     models.KindLike,
		})
		require.NoError(t, err)
	}

	require.NoError(t, manager.SendBacklog(context.Background(), 2))

	emissions := emitter.all()
	require.Len(t, emissions, 4)
	require.Equal(t, EventNotifications, emissions[3].event)

	backlog, ok := emissions[3].payload.([]models.EnrichedNotification)
	require.True(t, ok)
	require.Len(t, backlog, 3)
	for _, n := range backlog {
		require.Equal(t, "alice", n.SenderInfo.Username)
	}
}
