package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/charlesng35/peerfeed/internal/models"
)

// GormStore implements Store on top of gorm.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps db in a Store.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if db == nil {
		return nil, errors.New("repository: db is required")
	}
	return &GormStore{db: db}, nil
}

// DB exposes the underlying handle for infrastructure that needs raw access.
func (s *GormStore) DB() *gorm.DB {
	return s.db
}

func (s *GormStore) Users() UserRepository                 { return userRepo{db: s.db} }
func (s *GormStore) Feedback() FeedbackRepository          { return feedbackRepo{db: s.db} }
func (s *GormStore) Comments() CommentRepository           { return commentRepo{db: s.db} }
func (s *GormStore) Requests() FeedbackRequestRepository   { return requestRepo{db: s.db} }
func (s *GormStore) Notifications() NotificationRepository { return notificationRepo{db: s.db} }

// Transaction implements Store.
func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

// Ping checks connectivity of the underlying pool.
func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

type userRepo struct{ db *gorm.DB }

func (r userRepo) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r userRepo) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (r userRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (r userRepo) UsernameExists(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, "username = ?", username)
}

func (r userRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "email = ?", email)
}

func (r userRepo) exists(ctx context.Context, query string, arg any) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where(query, arg).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r userRepo) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).Order("id ASC").Find(&users).Error
	return users, err
}

func (r userRepo) ListByIDs(ctx context.Context, ids []uint) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []models.User
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id ASC").Find(&users).Error
	return users, err
}

func (r userRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error
	return count, err
}

func (r userRepo) Update(ctx context.Context, id uint, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	result := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	return nil
}

type feedbackRepo struct{ db *gorm.DB }

func (r feedbackRepo) Create(ctx context.Context, feedback *models.Feedback) error {
	return r.db.WithContext(ctx).Create(feedback).Error
}

func (r feedbackRepo) FindByID(ctx context.Context, id uint) (*models.Feedback, error) {
	var feedback models.Feedback
	if err := r.db.WithContext(ctx).First(&feedback, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &feedback, nil
}

func (r feedbackRepo) List(ctx context.Context) ([]models.Feedback, error) {
	var rows []models.Feedback
	err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error
	return rows, err
}

// ListRecent returns the last limit rows by insertion order, oldest first.
func (r feedbackRepo) ListRecent(ctx context.Context, limit int) ([]models.Feedback, error) {
	if limit <= 0 {
		return nil, nil
	}
	var rows []models.Feedback
	if err := r.db.WithContext(ctx).Order("id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	return rows, nil
}

func (r feedbackRepo) ListByReceivers(ctx context.Context, receiverIDs []uint) ([]models.Feedback, error) {
	if len(receiverIDs) == 0 {
		return nil, nil
	}
	var rows []models.Feedback
	err := r.db.WithContext(ctx).Where("receiver_id IN ?", receiverIDs).Order("id ASC").Find(&rows).Error
	return rows, err
}

func (r feedbackRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Feedback{}).Count(&count).Error
	return count, err
}

func (r feedbackRepo) CountBySentiment(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Sentiment string
		Total     int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Feedback{}).
		Select("sentiment, COUNT(*) AS total").
		Group("sentiment").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Sentiment] = row.Total
	}
	return counts, nil
}

type commentRepo struct{ db *gorm.DB }

func (r commentRepo) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r commentRepo) ListByFeedback(ctx context.Context, feedbackIDs ...uint) ([]models.Comment, error) {
	if len(feedbackIDs) == 0 {
		return nil, nil
	}
	var rows []models.Comment
	err := r.db.WithContext(ctx).Where("feedback_id IN ?", feedbackIDs).Order("id ASC").Find(&rows).Error
	return rows, err
}

type requestRepo struct{ db *gorm.DB }

func (r requestRepo) Create(ctx context.Context, request *models.FeedbackRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

func (r requestRepo) List(ctx context.Context) ([]models.FeedbackRequest, error) {
	var rows []models.FeedbackRequest
	err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error
	return rows, err
}

type notificationRepo struct{ db *gorm.DB }

func (r notificationRepo) Create(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r notificationRepo) FindByID(ctx context.Context, id uint) (*models.Notification, error) {
	var notification models.Notification
	if err := r.db.WithContext(ctx).First(&notification, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &notification, nil
}

func (r notificationRepo) List(ctx context.Context, filter NotificationFilter) ([]models.Notification, error) {
	query := r.db.WithContext(ctx).Model(&models.Notification{})
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.UnreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var rows []models.Notification
	err := query.Order("created_at DESC").Order("id DESC").Find(&rows).Error
	return rows, err
}

func (r notificationRepo) MarkRead(ctx context.Context, id uint, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"is_read": true,
			"read_at": at,
		})
	if result.Error != nil {
		return fmt.Errorf("mark notification read: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteReadBefore removes read notifications created before cutoff.
func (r notificationRepo) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("is_read = ? AND created_at < ?", true, cutoff).
		Delete(&models.Notification{})
	return result.RowsAffected, result.Error
}
