package models

import (
	"time"

	"gorm.io/gorm"
)

// Notification types.
const (
	NotificationFeedback = "feedback"
	NotificationRequest  = "request"
	NotificationGeneral  = "general"
)

// Notification represents an in-app notification for a user.
type Notification struct {
	BaseModel

	UserID  uint   `gorm:"index;not null" json:"user_id"`
	User    *User  `gorm:"foreignKey:UserID" json:"-"`
	Title   string `gorm:"size:255;not null" json:"title"`
	Message string `gorm:"type:text;not null" json:"message"`
	Type    string `gorm:"size:20;not null;default:general" json:"type"`

	IsRead bool       `gorm:"default:false;index" json:"read"`
	ReadAt *time.Time `json:"read_at,omitempty"`
}

// BeforeCreate applies the default notification type.
func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.Type == "" {
		n.Type = NotificationGeneral
	}
	return nil
}

// ValidNotificationType reports whether t is a known notification type.
func ValidNotificationType(t string) bool {
	switch t {
	case NotificationFeedback, NotificationRequest, NotificationGeneral:
		return true
	default:
		return false
	}
}
