// Package dispatch manages the undelivered-notification queue: it hands
// pending rows to the external delivery transport and marks them delivered
// only when the transport reported success, giving at-least-once delivery.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/eddiebe147/claude-automation-pipeline/internal/otel"
	"github.com/eddiebe147/claude-automation-pipeline/internal/store"
)

// Dispatcher drains pending notifications through a Notifier.
type Dispatcher struct {
	Store    store.Store
	Notifier Notifier
	Log      *slog.Logger
}

// Result summarizes one dispatcher pass.
type Result struct {
	Delivered int
	Failed    int
}

// Run performs one delivery pass over pending notifications, optionally
// filtered to one priority ("urgent" for the fast cadence, "" for all).
// A failed push leaves the notification pending for the next pass; it is
// logged, never escalated.
func (d *Dispatcher) Run(ctx context.Context, priority string) (Result, error) {
	log := d.logger()
	pending, err := d.Store.ListPendingNotifications(ctx, priority)
	if err != nil {
		return Result{}, err
	}

	var res Result
	for _, n := range pending {
		if err := d.Notifier.Push(ctx, n.AgentName, renderNotification(n)); err != nil {
			log.Warn("notification push failed, left pending",
				"notification_id", n.NotificationID, "agent", n.AgentName, "err", err)
			otel.RecordDispatch(ctx, "failed", n.Priority)
			res.Failed++
			continue
		}
		marked, err := d.Store.MarkNotificationDelivered(ctx, n.NotificationID)
		if err != nil {
			return res, err
		}
		if !marked {
			// Another pass delivered it between our list and the push.
			continue
		}
		otel.RecordDispatch(ctx, "delivered", n.Priority)
		res.Delivered++
	}
	return res, nil
}

// Deliver pushes an arbitrary rendered text (the standup digest) through the
// same transport.
func (d *Dispatcher) Deliver(ctx context.Context, target, text string) error {
	return d.Notifier.Push(ctx, target, text)
}

func (d *Dispatcher) logger() *slog.Logger {
	if d.Log != nil {
		return d.Log
	}
	return slog.Default()
}

func renderNotification(n store.Notification) string {
	prefix := ""
	if n.Priority == store.PriorityUrgent {
		prefix = "[urgent] "
	}
	return fmt.Sprintf("%s%s for @%s (%s %d)", prefix, n.Kind, n.AgentName, n.SourceKind, n.SourceID)
}
