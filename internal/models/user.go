package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a platform account
type User struct {
	ID          uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	Email       string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	DisplayName string         `gorm:"size:80;not null" json:"display_name"`
	LastLogin   time.Time      `json:"last_login"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate hook is called before creating a new user
func (u *User) BeforeCreate(tx *gorm.DB) error {
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = now
	}
	if u.LastLogin.IsZero() {
		u.LastLogin = now
	}
	return nil
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "user"
}
