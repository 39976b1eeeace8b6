package models

import (
	"slices"
	"time"

	"gorm.io/datatypes"
)

// Notification types a member can opt into
const (
	NotificationWeeklySummary = "weekly_summary"
)

// MembershipState is derived from the lifecycle timestamps
type MembershipState string

const (
	MembershipActive            MembershipState = "active"
	MembershipFlaggedInactive   MembershipState = "flagged_inactive"
	MembershipFlaggedForRemoval MembershipState = "flagged_for_removal"
)

// GroupMembership relates a user to a group
type GroupMembership struct {
	ID      uint `gorm:"primaryKey;autoIncrement" json:"id"`
	GroupID uint `gorm:"not null;uniqueIndex:idx_membership_group_user" json:"group_id"`
	UserID  uint `gorm:"not null;uniqueIndex:idx_membership_group_user" json:"user_id"`

	CreatedAt             time.Time  `gorm:"not null;index" json:"created_at"`
	LastSeenAt            time.Time  `gorm:"column:lastseen_at;not null;index" json:"lastseen_at"`
	InactiveAt            *time.Time `gorm:"index" json:"inactive_at"`
	RemovalNotificationAt *time.Time `gorm:"index" json:"removal_notification_at"`

	NotificationTypes datatypes.JSONSlice[string] `json:"notification_types"`

	Group Group `gorm:"foreignKey:GroupID" json:"-"`
	User  User  `gorm:"foreignKey:UserID" json:"-"`
}

// State returns the lifecycle state implied by the timestamps
func (m GroupMembership) State() MembershipState {
	switch {
	case m.RemovalNotificationAt != nil:
		return MembershipFlaggedForRemoval
	case m.InactiveAt != nil:
		return MembershipFlaggedInactive
	default:
		return MembershipActive
	}
}

// WantsNotification reports whether the member opted into the given type
func (m GroupMembership) WantsNotification(kind string) bool {
	return slices.Contains(m.NotificationTypes, kind)
}

// DefaultNotificationTypes are set on join
func DefaultNotificationTypes() datatypes.JSONSlice[string] {
	return datatypes.JSONSlice[string]{NotificationWeeklySummary}
}
