package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Roles a user can hold.
const (
	RoleEmployee = "employee"
	RoleManager  = "manager"
)

// User is a person who gives, receives and requests feedback.
type User struct {
	BaseModel

	Username     string `gorm:"uniqueIndex;size:80;not null" json:"username"`
	Email        string `gorm:"uniqueIndex;size:120;not null" json:"email"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
	Role         string `gorm:"size:20;not null;default:employee" json:"role"`

	ManagerID *uint `gorm:"index" json:"manager_id"`
	Manager   *User `gorm:"foreignKey:ManagerID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"-"`

	UpdatedAt time.Time `json:"-"`
}

// BeforeCreate applies the default role.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	u.Role = strings.ToLower(strings.TrimSpace(u.Role))
	if u.Role == "" {
		u.Role = RoleEmployee
	}
	return nil
}

// IsManager reports whether the user may be referenced as another user's manager.
func (u *User) IsManager() bool {
	return u != nil && u.Role == RoleManager
}

// ValidRole reports whether role names a known role.
func ValidRole(role string) bool {
	switch role {
	case RoleEmployee, RoleManager:
		return true
	default:
		return false
	}
}
