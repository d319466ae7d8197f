package models

import "time"

// BaseModel provides shared fields for all persistent models. Identifiers are
// database-assigned surrogate keys; insertion order follows ascending IDs.
type BaseModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
