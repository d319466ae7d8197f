package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/charlesng35/peerfeed/internal/models"
	"github.com/charlesng35/peerfeed/internal/realtime"
	"github.com/charlesng35/peerfeed/internal/repository"
	apperrors "github.com/charlesng35/peerfeed/pkg/errors"
	"github.com/charlesng35/peerfeed/pkg/logger"
	"github.com/charlesng35/peerfeed/pkg/metrics"
)

// CreateNotificationInput defines attributes required to persist a notification.
type CreateNotificationInput struct {
	UserID  uint
	Title   string
	Message string
	Type    string
}

// ListNotificationsInput defines optional filters for the notification listing.
type ListNotificationsInput struct {
	UserID     *uint
	UnreadOnly bool
}

// NotificationService manages in-app notifications.
type NotificationService struct {
	store repository.Store
	hub   *realtime.Hub
	now   func() time.Time
	log   *zap.Logger
}

// NewNotificationService constructs a NotificationService. hub may be nil, in which
// case nothing is pushed to realtime subscribers.
func NewNotificationService(store repository.Store, hub *realtime.Hub) (*NotificationService, error) {
	if store == nil {
		return nil, errors.New("notification service: store is required")
	}
	return &NotificationService{
		store: store,
		hub:   hub,
		now:   func() time.Time { return time.Now().UTC() },
		log:   logger.WithModule("notifications"),
	}, nil
}

// List returns notifications newest first.
func (s *NotificationService) List(ctx context.Context, input ListNotificationsInput) ([]NotificationDTO, error) {
	ctx = ensureContext(ctx)

	rows, err := s.store.Notifications().List(ctx, repository.NotificationFilter{
		UserID:     input.UserID,
		UnreadOnly: input.UnreadOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("notification service: list notifications: %w", err)
	}
	return mapNotificationRows(rows), nil
}

// Create validates and persists a notification, then pushes it to the recipient.
func (s *NotificationService) Create(ctx context.Context, input CreateNotificationInput) (*NotificationDTO, error) {
	ctx = ensureContext(ctx)

	if input.UserID == 0 || strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.Message) == "" {
		return nil, apperrors.NewValidation("Missing required fields")
	}
	kind := strings.ToLower(strings.TrimSpace(defaultIfEmpty(input.Type, models.NotificationGeneral)))
	if !models.ValidNotificationType(kind) {
		return nil, apperrors.NewValidation("Invalid notification type")
	}

	if _, err := s.store.Users().FindByID(ctx, input.UserID); err != nil {
		if isNotFound(err) {
			return nil, apperrors.NewValidation("Unknown user")
		}
		return nil, fmt.Errorf("notification service: load user: %w", err)
	}

	notification, err := s.record(ctx, s.store, input.UserID, strings.TrimSpace(input.Title), strings.TrimSpace(input.Message), kind)
	if err != nil {
		return nil, err
	}

	s.Publish(notification)
	dto := mapNotification(*notification)
	return &dto, nil
}

// MarkRead flags the notification as read. Marking an already read notification keeps
// its original read timestamp.
func (s *NotificationService) MarkRead(ctx context.Context, id uint) (*NotificationDTO, error) {
	ctx = ensureContext(ctx)

	notification, err := s.store.Notifications().FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.NewNotFound("Notification not found")
		}
		return nil, fmt.Errorf("notification service: load notification: %w", err)
	}

	if notification.IsRead {
		dto := mapNotification(*notification)
		return &dto, nil
	}

	now := s.now()
	if err := s.store.Notifications().MarkRead(ctx, id, now); err != nil {
		if isNotFound(err) {
			return nil, apperrors.NewNotFound("Notification not found")
		}
		return nil, fmt.Errorf("notification service: mark read: %w", err)
	}
	notification.IsRead = true
	notification.ReadAt = &now

	dto := mapNotification(*notification)
	s.broadcast(notification.UserID, realtime.EventNotificationRead, &NotificationEventPayload{Notification: &dto})
	return &dto, nil
}

// PruneRead deletes read notifications older than retention.
func (s *NotificationService) PruneRead(ctx context.Context, retention time.Duration) (int64, error) {
	ctx = ensureContext(ctx)
	if retention <= 0 {
		return 0, errors.New("notification service: retention must be positive")
	}

	deleted, err := s.store.Notifications().DeleteReadBefore(ctx, s.now().Add(-retention))
	if err != nil {
		return 0, fmt.Errorf("notification service: prune notifications: %w", err)
	}
	return deleted, nil
}

// record inserts a notification through tx so callers can bundle it with the
// operation that triggered it.
func (s *NotificationService) record(ctx context.Context, tx repository.Store, userID uint, title, message, kind string) (*models.Notification, error) {
	notification := &models.Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
		Type:    kind,
	}
	if err := tx.Notifications().Create(ctx, notification); err != nil {
		return nil, fmt.Errorf("notification service: create notification: %w", err)
	}
	return notification, nil
}

// Publish pushes a committed notification to the recipient's realtime subscribers.
func (s *NotificationService) Publish(notification *models.Notification) {
	if notification == nil {
		return
	}
	metrics.NotificationsCreated.WithLabelValues(notification.Type).Inc()
	s.log.Debug("notification created", zap.Uint("id", notification.ID), zap.Uint("user_id", notification.UserID), zap.String("type", notification.Type))

	dto := mapNotification(*notification)
	s.broadcast(notification.UserID, realtime.EventNotificationCreated, &NotificationEventPayload{Notification: &dto})
}

func (s *NotificationService) broadcast(userID uint, event string, payload *NotificationEventPayload) {
	if s.hub == nil {
		return
	}
	message := realtime.Message{
		Stream: realtime.StreamNotifications,
		Event:  event,
	}
	if payload != nil {
		message.Data = payload
	}
	s.hub.BroadcastToUser(realtime.StreamNotifications, userID, message)
}
