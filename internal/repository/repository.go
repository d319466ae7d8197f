// Package repository hides gorm behind per-entity store interfaces so services can be
// exercised against any SQL dialect gorm supports.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/charlesng35/peerfeed/internal/models"
)

// ErrNotFound is returned when a lookup by identifier matches no row.
var ErrNotFound = errors.New("repository: record not found")

// UserRepository persists users.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	List(ctx context.Context) ([]models.User, error)
	ListByIDs(ctx context.Context, ids []uint) ([]models.User, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, id uint, updates map[string]any) error
}

// FeedbackRepository persists feedback entries.
type FeedbackRepository interface {
	Create(ctx context.Context, feedback *models.Feedback) error
	FindByID(ctx context.Context, id uint) (*models.Feedback, error)
	List(ctx context.Context) ([]models.Feedback, error)
	ListRecent(ctx context.Context, limit int) ([]models.Feedback, error)
	ListByReceivers(ctx context.Context, receiverIDs []uint) ([]models.Feedback, error)
	Count(ctx context.Context) (int64, error)
	CountBySentiment(ctx context.Context) (map[string]int64, error)
}

// CommentRepository persists comments on feedback entries.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	ListByFeedback(ctx context.Context, feedbackIDs ...uint) ([]models.Comment, error)
}

// FeedbackRequestRepository persists feedback requests.
type FeedbackRequestRepository interface {
	Create(ctx context.Context, request *models.FeedbackRequest) error
	List(ctx context.Context) ([]models.FeedbackRequest, error)
}

// NotificationFilter narrows a notification listing. Zero values match everything.
type NotificationFilter struct {
	UserID     *uint
	UnreadOnly bool
}

// NotificationRepository persists notifications.
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	FindByID(ctx context.Context, id uint) (*models.Notification, error)
	List(ctx context.Context, filter NotificationFilter) ([]models.Notification, error)
	MarkRead(ctx context.Context, id uint, at time.Time) error
	DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Store groups the entity repositories over a single connection or transaction.
type Store interface {
	Users() UserRepository
	Feedback() FeedbackRepository
	Comments() CommentRepository
	Requests() FeedbackRequestRepository
	Notifications() NotificationRepository

	// Transaction runs fn against a Store bound to one database transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	Transaction(ctx context.Context, fn func(tx Store) error) error
	Ping(ctx context.Context) error
}
