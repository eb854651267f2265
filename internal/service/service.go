// Package service holds the application-level use cases built on the scheduling
// core: feedback submission, overdue triage and retention reporting. Use cases
// orchestrate load → mutate → save against the repository and hand drained
// domain events to a dispatcher.
package service

import (
	"context"
	"time"

	"reviso/internal/srs"
)

// Dispatcher delivers drained domain events to the outside world (notification
// outbox, message bus). Delivery is best effort from the use case's point of
// view: failures are logged, never rolled back into the aggregate.
type Dispatcher interface {
	Dispatch(ctx context.Context, events []srs.Event) error
}

// ReviewHistory records one row per processed feedback for statistics.
type ReviewHistory interface {
	AppendReview(entry ReviewLogEntry) error
}

// ReviewLogEntry captures the before/after numbers of a single review.
type ReviewLogEntry struct {
	ScheduleID       string
	StudentID        string
	ProblemID        string
	Rating           int
	ReviewedAt       time.Time
	TimeSpentMs      int
	PrevIntervalDays int
	NewIntervalDays  int
	PrevEase         float64
	NewEase          float64
}
