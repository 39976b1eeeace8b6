package groups

import (
	"context"
	"fmt"

	"foodshare/internal/models"

	"go.uber.org/zap"
)

// StatusSweeper marks groups without recent activity as inactive. It never
// reactivates a group.
type StatusSweeper struct {
	groups        GroupStore
	inactiveAfter Threshold
	clock         Clock
	logger        *zap.Logger
}

// NewStatusSweeper creates a group status sweeper.
func NewStatusSweeper(groups GroupStore, inactiveAfter Threshold, clock Clock, logger *zap.Logger) *StatusSweeper {
	return &StatusSweeper{
		groups:        groups,
		inactiveAfter: inactiveAfter,
		clock:         clock,
		logger:        logger.Named("status"),
	}
}

// Run returns how many groups were marked inactive.
func (s *StatusSweeper) Run(ctx context.Context) (int, error) {
	since := s.inactiveAfter.Cutoff(s.clock())

	active, err := s.groups.FindByStatus(ctx, models.GroupActive)
	if err != nil {
		return 0, fmt.Errorf("failed to find active groups: %w", err)
	}

	marked := 0
	for _, g := range active {
		if g.HasRecentActivity(since) {
			continue
		}
		if err := s.groups.UpdateStatus(ctx, g.ID, models.GroupInactive); err != nil {
			return marked, fmt.Errorf("failed to mark group %d inactive: %w", g.ID, err)
		}
		marked++
		s.logger.Info("Marked group inactive", zap.Uint("group_id", g.ID), zap.Time("last_active_at", g.LastActiveAt))
	}
	return marked, nil
}
