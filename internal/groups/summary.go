package groups

import (
	"context"
	"fmt"
	"time"

	"foodshare/internal/models"

	"go.uber.org/zap"
)

// Report aggregates a group's activity over one summary window.
type Report struct {
	From, To time.Time

	MessageCount     int64
	FeedbackCount    int64
	NewUserCount     int64
	ActivitiesDone   int64
	ActivitiesMissed int64

	Recipients []Recipient
}

// HasActivity reports whether anything happened in the window.
func (r Report) HasActivity() bool {
	return r.MessageCount > 0 || r.FeedbackCount > 0 || r.NewUserCount > 0 ||
		r.ActivitiesDone > 0 || r.ActivitiesMissed > 0
}

// SummaryResult counts what one summary run did.
type SummaryResult struct {
	GroupsProcessed int
	Emails          DispatchResult
}

// Fields returns the counters in the shape recorded by the metrics emitter.
func (r SummaryResult) Fields() map[string]float64 {
	return map[string]float64{
		"groups_processed": float64(r.GroupsProcessed),
		"email_count":      float64(r.Emails.Sent),
		"recipient_count":  float64(r.Emails.Sent),
		"failed_count":     float64(r.Emails.Failed),
	}
}

// SummaryBuilder emails weekly group summaries, once per window.
type SummaryBuilder struct {
	groups     GroupStore
	reports    ReportStore
	dispatcher *Dispatcher
	metrics    Metrics
	slot       SummarySlot
	clock      Clock
	logger     *zap.Logger
}

// NewSummaryBuilder creates a summary builder.
func NewSummaryBuilder(groups GroupStore, reports ReportStore, dispatcher *Dispatcher, metrics Metrics,
	slot SummarySlot, clock Clock, logger *zap.Logger,
) *SummaryBuilder {
	return &SummaryBuilder{
		groups:     groups,
		reports:    reports,
		dispatcher: dispatcher,
		metrics:    metrics,
		slot:       slot,
		clock:      clock,
		logger:     logger.Named("summary"),
	}
}

// Run sends summaries to every group whose local delivery slot is now.
//
// The cursor is advanced even when some emails fail or the window had no
// activity, so a window is attempted at most once.
func (b *SummaryBuilder) Run(ctx context.Context) (SummaryResult, error) {
	now := b.clock()
	var result SummaryResult

	groups, err := b.groups.FindWithMembers(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to find groups: %w", err)
	}

	for _, g := range groups {
		loc, err := LoadLocation(g.Timezone)
		if err != nil {
			b.logger.Warn("Falling back to UTC", zap.Uint("group_id", g.ID), zap.Error(err))
		}
		if !InSummarySlot(loc, now, b.slot) {
			continue
		}

		from, to := SummaryWindow(loc, now, g.SentSummaryUpTo)
		if g.SentSummaryUpTo != nil && !g.SentSummaryUpTo.Before(to) {
			continue
		}

		report, err := b.BuildReport(ctx, g, from, to)
		if err != nil {
			return result, err
		}

		var sent DispatchResult
		if report.HasActivity() {
			sent = b.dispatcher.Dispatch(ctx, summaryNotifications(g, report)...)
		}

		if err := b.groups.AdvanceSummaryCursor(ctx, g.ID, to); err != nil {
			return result, fmt.Errorf("failed to advance summary cursor of group %d: %w", g.ID, err)
		}

		recordGroup(b.metrics, b.logger, "group_summary_email", g.ID, summaryFields(report, sent))

		result.GroupsProcessed++
		result.Emails.Add(sent)
	}

	return result, nil
}

// BuildReport collects the counts and recipients for [from, to).
func (b *SummaryBuilder) BuildReport(ctx context.Context, g models.Group, from, to time.Time) (Report, error) {
	report := Report{From: from, To: to}
	var err error

	if report.MessageCount, err = b.reports.CountMessages(ctx, g.ID, from, to); err != nil {
		return report, fmt.Errorf("failed to count messages of group %d: %w", g.ID, err)
	}
	if report.FeedbackCount, err = b.reports.CountFeedback(ctx, g.ID, from, to); err != nil {
		return report, fmt.Errorf("failed to count feedback of group %d: %w", g.ID, err)
	}
	if report.NewUserCount, err = b.reports.CountNewMembers(ctx, g.ID, from, to); err != nil {
		return report, fmt.Errorf("failed to count new members of group %d: %w", g.ID, err)
	}
	if report.ActivitiesDone, report.ActivitiesMissed, err = b.reports.CountActivities(ctx, g.ID, from, to); err != nil {
		return report, fmt.Errorf("failed to count activities of group %d: %w", g.ID, err)
	}

	report.Recipients = summaryRecipients(g.Members)
	return report, nil
}

// summaryRecipients are members not flagged inactive who opted in and have an email.
func summaryRecipients(members []models.GroupMembership) []Recipient {
	var recipients []Recipient
	for _, m := range members {
		if m.InactiveAt != nil || m.User.Email == "" {
			continue
		}
		if !m.WantsNotification(models.NotificationWeeklySummary) {
			continue
		}
		recipients = append(recipients, recipientOf(m.User))
	}
	return recipients
}

func summaryNotifications(g models.Group, report Report) []Notification {
	notifications := make([]Notification, 0, len(report.Recipients))
	for _, r := range report.Recipients {
		notifications = append(notifications, Notification{
			Kind:   KindGroupSummary,
			To:     r,
			Group:  g,
			Report: &report,
		})
	}
	return notifications
}

func summaryFields(report Report, sent DispatchResult) map[string]float64 {
	hasActivity := 0.0
	if report.HasActivity() {
		hasActivity = 1
	}
	return map[string]float64{
		"email_recipient_count":   float64(sent.Sent),
		"feedback_count":          float64(report.FeedbackCount),
		"message_count":           float64(report.MessageCount),
		"new_user_count":          float64(report.NewUserCount),
		"activities_done_count":   float64(report.ActivitiesDone),
		"activities_missed_count": float64(report.ActivitiesMissed),
		"has_activity":            hasActivity,
	}
}
