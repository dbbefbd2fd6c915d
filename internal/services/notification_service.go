package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/metrics"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/models"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/realtime"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/repositories"
)

// PollResult is what the notification bell polls for. PlaySound is true
// only when the unread count grew since the user's previous poll, so a
// reconnect or an unchanged count never re-triggers the cue.
type PollResult struct {
	Items     []models.Notification `json:"items"`
	Unread    int64                 `json:"unread"`
	PlaySound bool                  `json:"play_sound"`
}

// NotificationService stores per-user notifications and pushes them over
// the realtime hub.
type NotificationService struct {
	notifRepo repositories.NotificationRepository
	hub       *realtime.Hub
	tracker   *realtime.UnreadTracker
	metrics   *metrics.Metrics
}

// NewNotificationService creates a new notification service
func NewNotificationService(
	db *gorm.DB,
	readOnlyDB *gorm.DB,
	hub *realtime.Hub,
	m *metrics.Metrics,
) *NotificationService {
	return &NotificationService{
		notifRepo: repositories.NewNotificationRepository(db, readOnlyDB),
		hub:       hub,
		tracker:   realtime.NewUnreadTracker(),
		metrics:   m,
	}
}

// Notify persists a notification and pushes it to the target user's
// open connections.
func (s *NotificationService) Notify(ctx context.Context, userID uuid.UUID, kind, message string, linkID *uuid.UUID) error {
	notification := &models.Notification{
		ID:      uuid.New(),
		UserID:  userID,
		Kind:    kind,
		Message: message,
		LinkID:  linkID,
	}
	if err := s.notifRepo.Create(ctx, notification); err != nil {
		return errors.Wrap(err, "failed to create notification")
	}

	s.metrics.IncrementCounter(metrics.CounterNotifications)

	if s.hub != nil {
		s.hub.Publish(realtime.Event{
			Kind:   realtime.KindNotification,
			UserID: &userID,
			Data: realtime.NotificationEvent{
				NotificationID: notification.ID,
				NotifyKind:     kind,
				Message:        message,
				LinkID:         linkID,
			},
		})
	}
	return nil
}

// Poll returns the user's pending notifications plus the sound cue
// decision for this poll cycle.
func (s *NotificationService) Poll(ctx context.Context, userID uuid.UUID, limit int) (*PollResult, error) {
	items, err := s.notifRepo.ListPending(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	unread, err := s.notifRepo.CountUnread(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &PollResult{
		Items:     items,
		Unread:    unread,
		PlaySound: s.tracker.Observe(userID, int(unread)),
	}, nil
}

// MarkRead marks one of the user's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	return s.notifRepo.MarkRead(ctx, id, userID)
}

// MarkAllRead clears the user's pending notifications.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	if err := s.notifRepo.MarkAllRead(ctx, userID); err != nil {
		return errors.Wrap(err, "failed to mark notifications read")
	}
	return nil
}

// ForgetSession drops the unread baseline kept for the sound cue. Called
// when a user signs out so the next session starts silent.
func (s *NotificationService) ForgetSession(userID uuid.UUID) {
	s.tracker.Forget(userID)
	log.Debug().Str("user_id", userID.String()).Msg("Notification session baseline dropped")
}
