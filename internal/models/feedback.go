package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Sentiments attached to a feedback entry.
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// Sentiments lists the sentiments in reporting order.
var Sentiments = []string{SentimentPositive, SentimentNeutral, SentimentNegative}

// Feedback is a strengths / areas-to-improve record from a giver about a receiver.
type Feedback struct {
	BaseModel

	GiverID    uint  `gorm:"index;not null" json:"giver_id"`
	Giver      *User `gorm:"foreignKey:GiverID" json:"-"`
	ReceiverID uint  `gorm:"index;not null" json:"receiver_id"`
	Receiver   *User `gorm:"foreignKey:ReceiverID" json:"-"`

	Strengths      string                      `gorm:"type:text;not null" json:"strengths"`
	AreasToImprove string                      `gorm:"type:text;not null" json:"areas_to_improve"`
	Sentiment      string                      `gorm:"size:20;not null;default:neutral" json:"sentiment"`
	Tags           datatypes.JSONSlice[string] `json:"tags"`
}

// TableName keeps the singular table name used by existing deployments.
func (Feedback) TableName() string {
	return "feedback"
}

// BeforeCreate applies the default sentiment.
func (f *Feedback) BeforeCreate(tx *gorm.DB) error {
	if f.Sentiment == "" {
		f.Sentiment = SentimentNeutral
	}
	if f.Tags == nil {
		f.Tags = datatypes.JSONSlice[string]{}
	}
	return nil
}

// ValidSentiment reports whether s is one of the known sentiments.
func ValidSentiment(s string) bool {
	switch s {
	case SentimentPositive, SentimentNeutral, SentimentNegative:
		return true
	default:
		return false
	}
}
