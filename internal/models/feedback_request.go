package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Priorities of a feedback request.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// FeedbackRequest is a solicitation from a requester asking a receiver for feedback.
type FeedbackRequest struct {
	BaseModel

	RequesterID uint  `gorm:"index;not null" json:"requester_id"`
	Requester   *User `gorm:"foreignKey:RequesterID" json:"-"`
	ReceiverID  uint  `gorm:"index;not null" json:"receiver_id"`
	Receiver    *User `gorm:"foreignKey:ReceiverID" json:"-"`

	Message  string                      `gorm:"type:text" json:"message"`
	Tags     datatypes.JSONSlice[string] `json:"tags"`
	Priority string                      `gorm:"size:10;not null;default:medium" json:"priority"`
	DueDate  *time.Time                  `json:"due_date"`
}

// BeforeCreate applies the default priority.
func (r *FeedbackRequest) BeforeCreate(tx *gorm.DB) error {
	if r.Priority == "" {
		r.Priority = PriorityMedium
	}
	if r.Tags == nil {
		r.Tags = datatypes.JSONSlice[string]{}
	}
	return nil
}

// ValidPriority reports whether p is a known priority.
func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}
