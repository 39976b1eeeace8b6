package groups

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"foodshare/internal/models"

	"go.uber.org/zap"
)

var activeWindowsDays = []int{1, 7, 30, 60, 90}

// StatsCollector records member statistics for every group.
type StatsCollector struct {
	groups      GroupStore
	memberships MembershipStore
	metrics     Metrics
	clock       Clock
	logger      *zap.Logger
}

// NewStatsCollector creates a stats collector.
func NewStatsCollector(groups GroupStore, memberships MembershipStore, metrics Metrics, clock Clock, logger *zap.Logger) *StatsCollector {
	return &StatsCollector{
		groups:      groups,
		memberships: memberships,
		metrics:     metrics,
		clock:       clock,
		logger:      logger.Named("stats"),
	}
}

// Run records one point per group and returns how many groups were recorded.
func (c *StatsCollector) Run(ctx context.Context) (int, error) {
	now := c.clock()

	groups, err := c.groups.FindAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to find groups: %w", err)
	}

	for i, g := range groups {
		members, err := c.memberships.FindByGroup(ctx, g.ID)
		if err != nil {
			return i, fmt.Errorf("failed to find members of group %d: %w", g.ID, err)
		}
		recordGroup(c.metrics, c.logger, "group_members", g.ID, MemberStats(members, now))
	}
	return len(groups), nil
}

// MemberStats counts members overall, by recent activity and by lifecycle state.
func MemberStats(members []models.GroupMembership, now time.Time) map[string]float64 {
	fields := map[string]float64{
		"count_total":               float64(len(members)),
		"count_flagged_inactive":    0,
		"count_flagged_for_removal": 0,
	}
	for _, days := range activeWindowsDays {
		fields[activeKey(days)] = 0
	}

	for _, m := range members {
		switch m.State() {
		case models.MembershipFlaggedInactive:
			fields["count_flagged_inactive"]++
		case models.MembershipFlaggedForRemoval:
			fields["count_flagged_for_removal"]++
		}
		for _, days := range activeWindowsDays {
			if !m.LastSeenAt.Before(now.AddDate(0, 0, -days)) {
				fields[activeKey(days)]++
			}
		}
	}
	return fields
}

func activeKey(days int) string {
	return "count_active_" + strconv.Itoa(days) + "d"
}
