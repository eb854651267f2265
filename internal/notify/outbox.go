// Package notify turns domain events into queued notifications and delivers
// the queue over Telegram. Writing the queue row and sending the message are
// separate steps so a delivery failure never loses a notification.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"reviso/internal/db"
	"reviso/internal/srs"
)

// Outbox implements service.Dispatcher by persisting notification events as
// outbox rows for the sender to pick up.
type Outbox struct {
	db     *db.Storage
	logger *slog.Logger
}

func NewOutbox(storage *db.Storage, logger *slog.Logger) *Outbox {
	return &Outbox{db: storage, logger: logger}
}

// Dispatch queues every notification event in the batch. A review batch first
// supersedes the schedule's pending reminders: the new review made their
// delivery times stale.
func (o *Outbox) Dispatch(ctx context.Context, events []srs.Event) error {
	for _, event := range events {
		switch e := event.(type) {
		case srs.ReviewCompletedEvent:
			if err := o.db.SupersedePendingNotifications(e.ScheduleID, e.ReviewedAt); err != nil {
				return fmt.Errorf("error superseding notifications: %w", err)
			}
		case srs.ReviewNotificationScheduledEvent:
			notification := db.Notification{
				ScheduleID: e.ScheduleID,
				StudentID:  e.StudentID,
				ProblemID:  e.ProblemID,
				Kind:       e.Kind,
				NotifyAt:   e.NotifyAt,
				CreatedAt:  e.ScheduledAt,
			}
			if err := o.db.InsertNotification(notification); err != nil {
				return fmt.Errorf("error queueing notification: %w", err)
			}
			o.logger.Debug("notification queued",
				slog.String("schedule_id", e.ScheduleID),
				slog.String("kind", string(e.Kind)),
				slog.Time("notify_at", e.NotifyAt))
		}
	}
	return nil
}
