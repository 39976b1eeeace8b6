package groups

import (
	"context"
	"fmt"

	"foodshare/internal/models"

	"go.uber.org/zap"
)

// SweepResult counts the transitions of one lifecycle sweep.
type SweepResult struct {
	FlaggedInactive   int
	FlaggedForRemoval int
	Removed           int
	Notifications     DispatchResult
}

// Fields returns the counters in the shape recorded by the metrics emitter.
func (r SweepResult) Fields() map[string]float64 {
	return map[string]float64{
		"count_users_flagged_inactive":    float64(r.FlaggedInactive),
		"count_users_flagged_for_removal": float64(r.FlaggedForRemoval),
		"count_users_removed":             float64(r.Removed),
		"count_notifications_sent":        float64(r.Notifications.Sent),
		"count_notifications_failed":      float64(r.Notifications.Failed),
	}
}

// Sweeper moves memberships through ACTIVE, FLAGGED_INACTIVE,
// FLAGGED_FOR_REMOVAL and finally removes them.
type Sweeper struct {
	memberships MembershipStore
	dispatcher  *Dispatcher
	thresholds  Thresholds
	clock       Clock
	logger      *zap.Logger
}

// NewSweeper creates a lifecycle sweeper.
func NewSweeper(memberships MembershipStore, dispatcher *Dispatcher,
	thresholds Thresholds, clock Clock, logger *zap.Logger,
) *Sweeper {
	return &Sweeper{
		memberships: memberships,
		dispatcher:  dispatcher,
		thresholds:  thresholds,
		clock:       clock,
		logger:      logger.Named("lifecycle"),
	}
}

// Run performs one sweep. Store errors abort the sweep; the next run picks up
// whatever was left since every step is re-evaluated from persisted state.
func (s *Sweeper) Run(ctx context.Context) (SweepResult, error) {
	now := s.clock()
	var result SweepResult

	// first, mark them as inactive
	candidates, err := s.memberships.FindSeenBefore(ctx, s.thresholds.Inactive.Cutoff(now))
	if err != nil {
		return result, fmt.Errorf("failed to find inactive memberships: %w", err)
	}
	for _, m := range candidates {
		if !DueForInactive(m, now, s.thresholds.Inactive) {
			continue
		}
		if m.Group.IsActive() {
			result.Notifications.Add(s.dispatcher.Dispatch(ctx, Notification{
				Kind:  KindUserInactive,
				To:    recipientOf(m.User),
				Group: m.Group,
			}))
		}
		updated := FlagInactive(m, now)
		if err := s.memberships.SaveLifecycle(ctx, &updated); err != nil {
			return result, fmt.Errorf("failed to flag membership %d inactive: %w", m.ID, err)
		}
		result.FlaggedInactive++
	}

	// then warn the ones that stayed inactive
	candidates, err = s.memberships.FindInactiveBefore(ctx, s.thresholds.RemovalWarning.Cutoff(now))
	if err != nil {
		return result, fmt.Errorf("failed to find memberships to warn: %w", err)
	}
	for _, m := range candidates {
		if !DueForRemovalWarning(m, now, s.thresholds.RemovalWarning) {
			continue
		}
		if m.Group.IsActive() {
			result.Notifications.Add(s.dispatcher.Dispatch(ctx, Notification{
				Kind:        KindRemovalWarning,
				To:          recipientOf(m.User),
				Group:       m.Group,
				RemovalDate: now.AddDate(0, s.thresholds.Removal.Months, s.thresholds.Removal.Days),
			}))
		}
		updated := FlagForRemoval(m, now)
		if err := s.memberships.SaveLifecycle(ctx, &updated); err != nil {
			return result, fmt.Errorf("failed to flag membership %d for removal: %w", m.ID, err)
		}
		result.FlaggedForRemoval++
	}

	// and finally remove them
	candidates, err = s.memberships.FindNotifiedBefore(ctx, s.thresholds.Removal.Cutoff(now))
	if err != nil {
		return result, fmt.Errorf("failed to find memberships to remove: %w", err)
	}
	for _, m := range candidates {
		if !DueForRemoval(m, now, s.thresholds.Removal) {
			continue
		}
		if err := s.remove(ctx, m); err != nil {
			return result, err
		}
		result.Removed++
	}

	s.logger.Info("Processed inactive members",
		zap.Int("flagged_inactive", result.FlaggedInactive),
		zap.Int("flagged_for_removal", result.FlaggedForRemoval),
		zap.Int("removed", result.Removed),
		zap.Int("notifications_failed", result.Notifications.Failed))

	return result, nil
}

func (s *Sweeper) remove(ctx context.Context, m models.GroupMembership) error {
	payload := map[string]any{"display_name": m.User.DisplayName}
	if err := s.memberships.Remove(ctx, &m, models.HistoryGroupLeaveInactive, payload); err != nil {
		return fmt.Errorf("failed to remove membership %d: %w", m.ID, err)
	}
	return nil
}
