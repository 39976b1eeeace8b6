package groups

import (
	"time"

	"foodshare/internal/models"
)

// Threshold is a calendar offset, in months and days, before a transition is due.
type Threshold struct {
	Months int
	Days   int
}

// Cutoff is the latest instant a prior-state timestamp may have for the transition to be due.
func (t Threshold) Cutoff(now time.Time) time.Time {
	return now.AddDate(0, -t.Months, -t.Days)
}

// Thresholds configures the membership lifecycle.
type Thresholds struct {
	Inactive       Threshold
	RemovalWarning Threshold
	Removal        Threshold
}

// DefaultThresholds: inactive after 30 days, warned after 6 inactive months,
// removed 7 days after the warning.
var DefaultThresholds = Thresholds{
	Inactive:       Threshold{Days: 30},
	RemovalWarning: Threshold{Months: 6},
	Removal:        Threshold{Days: 7},
}

// DueForInactive reports whether an active membership crossed the inactivity threshold.
func DueForInactive(m models.GroupMembership, now time.Time, t Threshold) bool {
	return m.InactiveAt == nil && !m.LastSeenAt.After(t.Cutoff(now))
}

// DueForRemovalWarning reports whether an inactive membership should be warned.
func DueForRemovalWarning(m models.GroupMembership, now time.Time, t Threshold) bool {
	return m.InactiveAt != nil && m.RemovalNotificationAt == nil && !m.InactiveAt.After(t.Cutoff(now))
}

// DueForRemoval reports whether a warned membership should be removed.
func DueForRemoval(m models.GroupMembership, now time.Time, t Threshold) bool {
	return m.RemovalNotificationAt != nil && !m.RemovalNotificationAt.After(t.Cutoff(now))
}

// FlagInactive returns m flagged inactive at now. Existing timestamps are kept.
func FlagInactive(m models.GroupMembership, now time.Time) models.GroupMembership {
	if m.InactiveAt == nil {
		m.InactiveAt = &now
	}
	return m
}

// FlagForRemoval returns m flagged for removal at now. Existing timestamps are kept.
func FlagForRemoval(m models.GroupMembership, now time.Time) models.GroupMembership {
	if m.RemovalNotificationAt == nil {
		m.RemovalNotificationAt = &now
	}
	return m
}
