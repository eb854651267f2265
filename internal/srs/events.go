package srs

import "time"

// NotificationKind distinguishes the reminder flavors a schedule can request.
type NotificationKind string

const (
	// NotificationReminder is the base reminder at the next review time.
	NotificationReminder NotificationKind = "reminder"
	// NotificationEarlyReminder fires before the full interval elapses, for
	// items the learner keeps struggling with.
	NotificationEarlyReminder NotificationKind = "early_reminder"
	// NotificationOverdue marks an overdue escalation.
	NotificationOverdue NotificationKind = "overdue"
)

// Event is implemented by every domain event a Schedule emits. Events sit in
// the aggregate's queue until the persistence boundary drains them.
type Event interface {
	EventName() string
	OccurredAt() time.Time
}

// ReviewCompletedEvent is emitted once per processed feedback.
type ReviewCompletedEvent struct {
	ScheduleID      string    `json:"schedule_id"`
	StudentID       string    `json:"student_id"`
	ProblemID       string    `json:"problem_id"`
	Feedback        Feedback  `json:"feedback"`
	TimeSpentMs     int       `json:"time_spent_ms"`
	NewIntervalDays int       `json:"new_interval_days"`
	NewEase         float64   `json:"new_ease"`
	ReviewedAt      time.Time `json:"reviewed_at"`
}

func (e ReviewCompletedEvent) EventName() string     { return "review.completed" }
func (e ReviewCompletedEvent) OccurredAt() time.Time { return e.ReviewedAt }

// ReviewNotificationScheduledEvent asks the outside world to remind the learner
// at NotifyAt. A single feedback can emit more than one (base reminder plus an
// early warning for difficult items).
type ReviewNotificationScheduledEvent struct {
	ScheduleID  string           `json:"schedule_id"`
	StudentID   string           `json:"student_id"`
	ProblemID   string           `json:"problem_id"`
	Kind        NotificationKind `json:"kind"`
	NotifyAt    time.Time        `json:"notify_at"`
	ScheduledAt time.Time        `json:"scheduled_at"`
}

func (e ReviewNotificationScheduledEvent) EventName() string     { return "review.notification_scheduled" }
func (e ReviewNotificationScheduledEvent) OccurredAt() time.Time { return e.ScheduledAt }
