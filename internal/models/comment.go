package models

// Comment is a remark left on a feedback entry.
type Comment struct {
	BaseModel

	FeedbackID uint      `gorm:"index;not null" json:"feedback_id"`
	Feedback   *Feedback `gorm:"foreignKey:FeedbackID" json:"-"`
	UserID     uint      `gorm:"index;not null" json:"user_id"`
	Author     *User     `gorm:"foreignKey:UserID" json:"-"`
	Content    string    `gorm:"type:text;not null" json:"content"`
}
