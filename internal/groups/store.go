// Package groups holds the periodic housekeeping of groups: the membership
// lifecycle sweep, weekly summaries, group status and member stats.
//
// Persistence, email delivery and metrics are reached through the interfaces
// below so the sweeps stay free of storage specifics.
package groups

import (
	"context"
	"time"

	"foodshare/internal/models"

	"go.uber.org/zap"
)

// MembershipStore reads and writes group memberships. Finders preload the
// membership's Group and User.
type MembershipStore interface {
	// FindSeenBefore returns memberships with lastseen_at <= cutoff and no inactive_at.
	FindSeenBefore(ctx context.Context, cutoff time.Time) ([]models.GroupMembership, error)
	// FindInactiveBefore returns memberships with inactive_at <= cutoff and no removal_notification_at.
	FindInactiveBefore(ctx context.Context, cutoff time.Time) ([]models.GroupMembership, error)
	// FindNotifiedBefore returns memberships with removal_notification_at <= cutoff.
	FindNotifiedBefore(ctx context.Context, cutoff time.Time) ([]models.GroupMembership, error)
	FindByGroup(ctx context.Context, groupID uint) ([]models.GroupMembership, error)

	// SaveLifecycle writes inactive_at and removal_notification_at only.
	SaveLifecycle(ctx context.Context, m *models.GroupMembership) error
	// Remove deletes the membership and records a history event for its user
	// in one transaction. Nothing is deleted when the event cannot be written.
	Remove(ctx context.Context, m *models.GroupMembership, typus models.HistoryTypus, payload map[string]any) error
}

// GroupStore reads groups and updates their sweep-owned fields.
type GroupStore interface {
	// FindWithMembers returns groups with at least one member, members and users preloaded.
	FindWithMembers(ctx context.Context) ([]models.Group, error)
	FindAll(ctx context.Context) ([]models.Group, error)
	FindByStatus(ctx context.Context, status models.GroupStatus) ([]models.Group, error)
	UpdateStatus(ctx context.Context, groupID uint, status models.GroupStatus) error
	// AdvanceSummaryCursor moves sent_summary_up_to forward to upTo; it never moves it back.
	AdvanceSummaryCursor(ctx context.Context, groupID uint, upTo time.Time) error
}

// ReportStore counts group activity inside [from, to).
type ReportStore interface {
	CountMessages(ctx context.Context, groupID uint, from, to time.Time) (int64, error)
	CountFeedback(ctx context.Context, groupID uint, from, to time.Time) (int64, error)
	CountNewMembers(ctx context.Context, groupID uint, from, to time.Time) (int64, error)
	CountActivities(ctx context.Context, groupID uint, from, to time.Time) (done, missed int64, err error)
}

// Metrics receives per-group measurements. Implementations should not fail
// the caller; the sweeps recover if one does.
type Metrics interface {
	RecordGroup(measurement string, groupID uint, fields map[string]float64)
}

type nopMetrics struct{}

func (nopMetrics) RecordGroup(string, uint, map[string]float64) {}

// recordGroup hands a measurement to metrics. A panicking sink is logged and
// otherwise ignored so a sweep never stops over metrics.
func recordGroup(metrics Metrics, logger *zap.Logger, measurement string, groupID uint, fields map[string]float64) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("Failed to record metrics",
				zap.String("measurement", measurement),
				zap.Uint("group_id", groupID),
				zap.Any("panic", r))
		}
	}()
	metrics.RecordGroup(measurement, groupID, fields)
}

// Clock returns the current instant.
type Clock func() time.Time

// SystemClock is the wall clock in UTC.
func SystemClock() time.Time {
	return time.Now().UTC()
}
