package models

import (
	"time"
)

// GroupStatus represents whether a group is still in use
type GroupStatus string

const (
	GroupActive   GroupStatus = "active"
	GroupInactive GroupStatus = "inactive"
)

// Group represents a food-sharing group
type Group struct {
	ID          uint        `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string      `gorm:"size:80;uniqueIndex;not null" json:"name"`
	Description string      `gorm:"type:text" json:"description"`
	Timezone    string      `gorm:"size:64;not null;default:'UTC'" json:"timezone"`
	Status      GroupStatus `gorm:"size:20;not null;default:'active';index" json:"status"`

	// SentSummaryUpTo is the end of the last processed summary window
	SentSummaryUpTo *time.Time `json:"-"`
	LastActiveAt    time.Time  `gorm:"not null" json:"last_active_at"`
	CreatedAt       time.Time  `gorm:"not null" json:"created_at"`

	Members []GroupMembership `gorm:"foreignKey:GroupID" json:"-"`
}

// IsActive reports whether notifications should go out for this group
func (g Group) IsActive() bool {
	return g.Status == GroupActive
}

// HasRecentActivity reports whether the group was active after since
func (g Group) HasRecentActivity(since time.Time) bool {
	return !g.LastActiveAt.Before(since)
}
