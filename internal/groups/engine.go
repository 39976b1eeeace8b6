package groups

import (
	"context"

	"go.uber.org/zap"
)

// Task names, as recorded in metrics and logs.
const (
	TaskRecordGroupStats     = "group__record_group_stats"
	TaskProcessInactiveUsers = "group__process_inactive_users"
	TaskSendSummaryEmails    = "group__send_summary_emails"
	TaskMarkInactiveGroups   = "group__mark_inactive_groups"
)

// Deps are the collaborators of the engine.
type Deps struct {
	Memberships MembershipStore
	Groups      GroupStore
	Reports     ReportStore
	Notifier    Notifier
	Metrics     Metrics
	Clock       Clock
	Logger      *zap.Logger
}

// Settings tune the engine's policies.
type Settings struct {
	Thresholds         Thresholds
	GroupInactiveAfter Threshold
	SummarySlot        SummarySlot
}

// DefaultSettings match the platform defaults.
var DefaultSettings = Settings{
	Thresholds:         DefaultThresholds,
	GroupInactiveAfter: Threshold{Days: 62},
	SummarySlot:        DefaultSummarySlot,
}

// Engine bundles the group sweeps.
type Engine struct {
	Sweeper   *Sweeper
	Summaries *SummaryBuilder
	Status    *StatusSweeper
	Stats     *StatsCollector
}

// NewEngine wires all sweeps around one dispatcher.
func NewEngine(deps Deps, settings Settings) *Engine {
	clock := deps.Clock
	if clock == nil {
		clock = SystemClock
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := deps.Metrics
	if metrics == nil {
		metrics = nopMetrics{}
	}
	dispatcher := NewDispatcher(deps.Notifier, logger)

	return &Engine{
		Sweeper:   NewSweeper(deps.Memberships, dispatcher, settings.Thresholds, clock, logger),
		Summaries: NewSummaryBuilder(deps.Groups, deps.Reports, dispatcher, metrics, settings.SummarySlot, clock, logger),
		Status:    NewStatusSweeper(deps.Groups, settings.GroupInactiveAfter, clock, logger),
		Stats:     NewStatsCollector(deps.Groups, deps.Memberships, metrics, clock, logger),
	}
}

// Task is a scheduled sweep returning its counters.
type Task struct {
	Name     string
	Schedule string
	Run      func(ctx context.Context) (map[string]float64, error)
}

// Tasks lists the sweeps with their UTC cron schedules. Summaries are checked
// hourly over the weekend, which covers every timezone offset of Sunday morning.
func (e *Engine) Tasks() []Task {
	return []Task{
		{
			Name:     TaskRecordGroupStats,
			Schedule: "0 * * * *",
			Run: func(ctx context.Context) (map[string]float64, error) {
				n, err := e.Stats.Run(ctx)
				return map[string]float64{"groups_recorded": float64(n)}, err
			},
		},
		{
			Name:     TaskProcessInactiveUsers,
			Schedule: "0 2 * * *",
			Run: func(ctx context.Context) (map[string]float64, error) {
				r, err := e.Sweeper.Run(ctx)
				return r.Fields(), err
			},
		},
		{
			Name:     TaskSendSummaryEmails,
			Schedule: "0 * * * 0,6",
			Run: func(ctx context.Context) (map[string]float64, error) {
				r, err := e.Summaries.Run(ctx)
				return r.Fields(), err
			},
		},
		{
			Name:     TaskMarkInactiveGroups,
			Schedule: "3 3 * * *",
			Run: func(ctx context.Context) (map[string]float64, error) {
				n, err := e.Status.Run(ctx)
				return map[string]float64{"count_groups_marked_inactive": float64(n)}, err
			},
		},
	}
}
