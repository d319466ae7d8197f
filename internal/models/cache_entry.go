package models

import "time"

// CacheEntry holds a counter or blob for the database-backed cache used when Redis is
// not configured. Expired rows are ignored by readers and overwritten on the next write.
type CacheEntry struct {
	Key       string    `gorm:"column:cache_key;primaryKey;size:191"`
	Value     []byte    `gorm:"type:blob"`
	ExpiresAt time.Time `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName pins the table name independent of gorm's pluraliser.
func (CacheEntry) TableName() string {
	return "cache_entries"
}

// Expired reports whether the entry is no longer valid at now.
func (e CacheEntry) Expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && !now.Before(e.ExpiresAt)
}
