package database

import "github.com/charlesng35/peerfeed/internal/models"

// Models returns every persisted model in dependency order.
func Models() []any {
	return []any{
		&models.User{},
		&models.Feedback{},
		&models.Comment{},
		&models.FeedbackRequest{},
		&models.Notification{},
		&models.CacheEntry{},
	}
}
