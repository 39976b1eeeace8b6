package groups

import (
	"context"
	"fmt"
	"time"

	"foodshare/internal/models"

	"go.uber.org/zap"
)

// NotificationKind selects the email that is sent.
type NotificationKind string

const (
	KindUserInactive   NotificationKind = "user_inactive_in_group"
	KindRemovalWarning NotificationKind = "user_removal_from_group"
	KindGroupSummary   NotificationKind = "group_summary"
)

// Recipient is the addressee of a single notification.
type Recipient struct {
	UserID uint
	Email  string
	Name   string
}

// Notification is one message to one recipient.
type Notification struct {
	Kind  NotificationKind
	To    Recipient
	Group models.Group

	// RemovalDate is set for removal warnings.
	RemovalDate time.Time
	// Report is set for group summaries.
	Report *Report
}

// Notifier delivers a single notification.
type Notifier interface {
	Send(ctx context.Context, n Notification) error
}

// DispatchResult counts the outcome of a dispatch.
type DispatchResult struct {
	Sent   int
	Failed int
}

// Add accumulates another result.
func (r *DispatchResult) Add(other DispatchResult) {
	r.Sent += other.Sent
	r.Failed += other.Failed
}

// Dispatcher sends notifications one recipient at a time. A failing recipient
// is logged and counted and never stops the others.
type Dispatcher struct {
	notifier Notifier
	logger   *zap.Logger
}

// NewDispatcher creates a dispatcher around notifier.
func NewDispatcher(notifier Notifier, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		notifier: notifier,
		logger:   logger.Named("dispatcher"),
	}
}

// Dispatch sends every notification and reports how many went out.
func (d *Dispatcher) Dispatch(ctx context.Context, notifications ...Notification) DispatchResult {
	var result DispatchResult
	for _, n := range notifications {
		if err := d.send(ctx, n); err != nil {
			result.Failed++
			d.logger.Error("Failed to send notification",
				zap.String("kind", string(n.Kind)),
				zap.Uint("group_id", n.Group.ID),
				zap.Uint("user_id", n.To.UserID),
				zap.Error(err))
			continue
		}
		result.Sent++
	}
	return result
}

func (d *Dispatcher) send(ctx context.Context, n Notification) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("notifier panicked: %v", r)
		}
	}()
	return d.notifier.Send(ctx, n)
}

func recipientOf(u models.User) Recipient {
	return Recipient{UserID: u.ID, Email: u.Email, Name: u.DisplayName}
}
