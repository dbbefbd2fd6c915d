package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/metrics"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/models"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/realtime"
)

func newTestNotificationService(t *testing.T, notifRepo *MockNotificationRepository) (*NotificationService, *realtime.Hub) {
	t.Helper()
	hub := realtime.NewHub(8)
	t.Cleanup(hub.Close)
	return &NotificationService{
		notifRepo: notifRepo,
		hub:       hub,
		tracker:   realtime.NewUnreadTracker(),
		metrics:   metrics.NewMetrics(),
	}, hub
}

func TestNotifyPersistsAndPushes(t *testing.T) {
	userID := uuid.New()

	notifRepo := new(MockNotificationRepository)
	notifRepo.On("Create", mock.Anything, mock.MatchedBy(func(n *models.Notification) bool {
		return n.UserID == userID && n.Kind == models.NotifySupport && !n.Read
	})).Return(nil)

	service, hub := newTestNotificationService(t, notifRepo)

	ch := hub.Subscribe(userID)
	t.Cleanup(func() { hub.Unsubscribe(ch) })
	other := hub.Subscribe(uuid.New())
	t.Cleanup(func() { hub.Unsubscribe(other) })

	err := service.Notify(context.Background(), userID, models.NotifySupport, "Novo chamado", nil)
	require.NoError(t, err)

	select {
	case raw := <-ch:
		var event realtime.NotificationEvent
		require.NoError(t, json.Unmarshal(extractSSEData(t, raw), &event))
		require.Equal(t, "Novo chamado", event.Message)
	case <-time.After(time.Second):
		t.Fatal("expected a notification event for the target user")
	}

	select {
	case raw := <-other:
		t.Fatalf("unexpected delivery to another user: %q", raw)
	case <-time.After(50 * time.Millisecond):
	}

	notifRepo.AssertExpectations(t)
}

func TestPollSoundCueOnlyOnIncrease(t *testing.T) {
	userID := uuid.New()
	counts := []int64{3, 3, 5, 5, 2}
	wantSound := []bool{false, false, true, false, false}

	notifRepo := new(MockNotificationRepository)
	notifRepo.On("ListPending", mock.Anything, userID, 10).Return([]models.Notification{}, nil)
	for _, c := range counts {
		notifRepo.On("CountUnread", mock.Anything, userID).Return(c, nil).Once()
	}

	service, _ := newTestNotificationService(t, notifRepo)

	for i := range counts {
		result, err := service.Poll(context.Background(), userID, 10)
		require.NoError(t, err)
		require.Equal(t, counts[i], result.Unread, "poll %d", i)
		require.Equal(t, wantSound[i], result.PlaySound, "poll %d", i)
	}
}

func TestPollBaselineResetsAfterForget(t *testing.T) {
	userID := uuid.New()

	notifRepo := new(MockNotificationRepository)
	notifRepo.On("ListPending", mock.Anything, userID, 10).Return([]models.Notification{}, nil)
	notifRepo.On("CountUnread", mock.Anything, userID).Return(int64(4), nil)

	service, _ := newTestNotificationService(t, notifRepo)

	first, err := service.Poll(context.Background(), userID, 10)
	require.NoError(t, err)
	require.False(t, first.PlaySound)

	service.ForgetSession(userID)

	// A fresh session observes the same backlog silently again.
	again, err := service.Poll(context.Background(), userID, 10)
	require.NoError(t, err)
	require.False(t, again.PlaySound)
}

func TestMarkReadScopedToOwner(t *testing.T) {
	userID := uuid.New()
	notifID := uuid.New()

	notifRepo := new(MockNotificationRepository)
	notifRepo.On("MarkRead", mock.Anything, notifID, userID).Return(nil)

	service, _ := newTestNotificationService(t, notifRepo)

	require.NoError(t, service.MarkRead(context.Background(), userID, notifID))
	notifRepo.AssertExpectations(t)
}
