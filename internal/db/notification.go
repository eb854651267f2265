package db

import (
	"fmt"
	"time"

	nanoid "github.com/matoous/go-nanoid/v2"

	"reviso/internal/srs"
)

// Notification is one outbox row awaiting delivery.
type Notification struct {
	ID         string               `db:"id" json:"id"`
	ScheduleID string               `db:"schedule_id" json:"schedule_id"`
	StudentID  string               `db:"student_id" json:"student_id"`
	ProblemID  string               `db:"problem_id" json:"problem_id"`
	Kind       srs.NotificationKind `db:"kind" json:"kind"`
	NotifyAt   time.Time            `db:"notify_at" json:"notify_at"`
	CreatedAt  time.Time            `db:"created_at" json:"created_at"`
	SentAt     *time.Time           `db:"sent_at" json:"sent_at,omitempty"`
}

// InsertNotification queues one notification for delivery.
func (s *Storage) InsertNotification(n Notification) error {
	if n.ID == "" {
		n.ID = nanoid.Must()
	}
	query := `
		INSERT INTO notifications
			(id, schedule_id, student_id, problem_id, kind, notify_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.Exec(query, n.ID, n.ScheduleID, n.StudentID, n.ProblemID, string(n.Kind), n.NotifyAt, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("error inserting notification: %w", err)
	}
	return nil
}

// PendingNotifications returns unsent notifications whose delivery time has
// arrived, oldest first.
func (s *Storage) PendingNotifications(asOf time.Time, limit int) ([]Notification, error) {
	query := `
		SELECT id, schedule_id, student_id, problem_id, kind, notify_at, created_at, sent_at
		FROM notifications
		WHERE sent_at IS NULL AND notify_at <= ?
		ORDER BY notify_at
		LIMIT ?
	`
	rows, err := s.db.Query(query, asOf, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying pending notifications: %w", err)
	}
	defer rows.Close()

	var notifications []Notification
	for rows.Next() {
		var n Notification
		var kind string
		if err := rows.Scan(&n.ID, &n.ScheduleID, &n.StudentID, &n.ProblemID, &kind, &n.NotifyAt, &n.CreatedAt, &n.SentAt); err != nil {
			return nil, fmt.Errorf("error scanning notification: %w", err)
		}
		n.Kind = srs.NotificationKind(kind)
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notifications: %w", err)
	}
	return notifications, nil
}

// MarkNotificationSent stamps the delivery time.
func (s *Storage) MarkNotificationSent(id string, sentAt time.Time) error {
	_, err := s.db.Exec(`UPDATE notifications SET sent_at = ? WHERE id = ?`, sentAt, id)
	if err != nil {
		return fmt.Errorf("error marking notification sent: %w", err)
	}
	return nil
}

// SupersedePendingNotifications cancels queued-but-unsent reminders for a
// schedule, used when a new review reschedules them.
func (s *Storage) SupersedePendingNotifications(scheduleID string, asOf time.Time) error {
	_, err := s.db.Exec(`UPDATE notifications SET sent_at = ? WHERE schedule_id = ? AND sent_at IS NULL`, asOf, scheduleID)
	if err != nil {
		return fmt.Errorf("error superseding notifications: %w", err)
	}
	return nil
}
