package srs

import (
	"fmt"
	"time"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// ScheduleStatus is derived from the review state and the clock; it is never
// stored, which keeps it impossible to go stale.
type ScheduleStatus string

const (
	StatusScheduled ScheduleStatus = "scheduled"
	StatusDue       ScheduleStatus = "due"
	StatusOverdue   ScheduleStatus = "overdue"
)

// DifficultyLevel classifies an item by its ease factor. Higher ease means the
// learner has found it easier.
type DifficultyLevel string

const (
	DifficultyBeginner     DifficultyLevel = "beginner"
	DifficultyIntermediate DifficultyLevel = "intermediate"
	DifficultyAdvanced     DifficultyLevel = "advanced"
)

// Schedule is the aggregate root owning the review state for one
// (student, problem) pair. It is not internally synchronized: callers must
// serialize writes per pair.
type Schedule struct {
	ID                  string
	StudentID           string
	ProblemID           string
	State               ReviewState
	ConsecutiveFailures int
	// LastOverdueNotifiedAt marks the current overdue episode as notified so
	// repeated triggers stay idempotent.
	LastOverdueNotifiedAt *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time

	events []Event
}

// NewSchedule creates the schedule for the first encounter of a
// (student, problem) pair, seeded with the calculator's initial state.
func NewSchedule(studentID, problemID string, calc Calculator, clock Clock) (*Schedule, error) {
	if studentID == "" || problemID == "" {
		return nil, fmt.Errorf("%w: student and problem ids are required", ErrValidation)
	}
	now := clock.Now()
	return &Schedule{
		ID:        nanoid.Must(),
		StudentID: studentID,
		ProblemID: problemID,
		State:     calc.InitialState(now),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// RehydrateSchedule restores an aggregate from persistence.
func RehydrateSchedule(id, studentID, problemID string, state ReviewState, consecutiveFailures int, lastOverdueNotifiedAt *time.Time, createdAt, updatedAt time.Time) *Schedule {
	return &Schedule{
		ID:                    id,
		StudentID:             studentID,
		ProblemID:             problemID,
		State:                 state,
		ConsecutiveFailures:   consecutiveFailures,
		LastOverdueNotifiedAt: lastOverdueNotifiedAt,
		CreatedAt:             createdAt,
		UpdatedAt:             updatedAt,
	}
}

// ProcessReviewFeedback runs one review through the calculator and advances the
// aggregate: late-review penalty, interval/ease recalculation, failure
// bookkeeping and event emission. Once the feedback validates, the transition
// cannot fail.
func (s *Schedule) ProcessReviewFeedback(feedback Feedback, calc Calculator, clock Clock, timeSpentMs int) error {
	if !feedback.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidFeedback, int(feedback))
	}
	now := clock.Now()
	current := calc.AdjustForLateReview(s.State, now)

	interval, ease, err := calc.NextInterval(current, feedback)
	if err != nil {
		return err
	}

	// A long failure streak restarts growth from the initial interval on the
	// next successful review instead of multiplying a stale interval.
	if feedback != FeedbackAgain && calc.ShouldResetInterval(current, s.ConsecutiveFailures) {
		interval = ImmediateInterval(calc.Policy())
	}

	s.State = current.WithNewReview(interval, ease, now)

	if feedback == FeedbackAgain {
		s.ConsecutiveFailures++
	} else {
		s.ConsecutiveFailures = 0
	}
	s.LastOverdueNotifiedAt = nil
	s.UpdatedAt = now

	s.record(ReviewCompletedEvent{
		ScheduleID:      s.ID,
		StudentID:       s.StudentID,
		ProblemID:       s.ProblemID,
		Feedback:        feedback,
		TimeSpentMs:     timeSpentMs,
		NewIntervalDays: s.State.Interval().Days(),
		NewEase:         s.State.Ease().Value(),
		ReviewedAt:      now,
	})
	s.record(ReviewNotificationScheduledEvent{
		ScheduleID:  s.ID,
		StudentID:   s.StudentID,
		ProblemID:   s.ProblemID,
		Kind:        NotificationReminder,
		NotifyAt:    s.State.NextReviewAt(),
		ScheduledAt: now,
	})

	// Difficult items the learner keeps failing get an extra reminder partway
	// through the interval.
	policy := calc.Policy()
	if s.State.Ease().Value() <= policy.HardEaseThreshold && s.ConsecutiveFailures >= 2 {
		early := now.Add(time.Duration(float64(s.State.Interval().Duration()) * policy.EarlyReminderFraction))
		s.record(ReviewNotificationScheduledEvent{
			ScheduleID:  s.ID,
			StudentID:   s.StudentID,
			ProblemID:   s.ProblemID,
			Kind:        NotificationEarlyReminder,
			NotifyAt:    early,
			ScheduledAt: now,
		})
	}

	return nil
}

func (s *Schedule) IsDue(clock Clock) bool {
	return s.State.IsDue(clock.Now())
}

func (s *Schedule) IsOverdue(clock Clock) bool {
	return s.State.IsOverdue(clock.Now())
}

// Status derives the schedule's conceptual state from timestamps alone.
func (s *Schedule) Status(clock Clock) ScheduleStatus {
	now := clock.Now()
	switch {
	case s.State.IsOverdue(now):
		return StatusOverdue
	case s.State.IsDue(now):
		return StatusDue
	default:
		return StatusScheduled
	}
}

// TriggerOverdueNotification emits one overdue notification per overdue
// episode. It reports whether an event was emitted: not overdue, or already
// notified since the current nextReviewAt, means a no-op.
func (s *Schedule) TriggerOverdueNotification(clock Clock) bool {
	now := clock.Now()
	if !s.State.IsOverdue(now) {
		return false
	}
	if s.LastOverdueNotifiedAt != nil && !s.LastOverdueNotifiedAt.Before(s.State.NextReviewAt()) {
		return false
	}
	notifiedAt := now
	s.LastOverdueNotifiedAt = &notifiedAt
	s.UpdatedAt = now
	s.record(ReviewNotificationScheduledEvent{
		ScheduleID:  s.ID,
		StudentID:   s.StudentID,
		ProblemID:   s.ProblemID,
		Kind:        NotificationOverdue,
		NotifyAt:    now,
		ScheduledAt: now,
	})
	return true
}

// DifficultyLevel is a stateless classification of the current ease factor.
func (s *Schedule) DifficultyLevel(policy Policy) DifficultyLevel {
	ease := s.State.Ease().Value()
	switch {
	case ease >= policy.BeginnerMinEase:
		return DifficultyBeginner
	case ease >= policy.IntermediateMinEase:
		return DifficultyIntermediate
	default:
		return DifficultyAdvanced
	}
}

// RetentionProbability estimates current recall likelihood, see
// ReviewState.RetentionProbability.
func (s *Schedule) RetentionProbability(clock Clock, policy Policy) float64 {
	return s.State.RetentionProbability(clock.Now(), policy)
}

// OverdueDays is the whole number of days the schedule is past due.
func (s *Schedule) OverdueDays(clock Clock) int {
	return s.State.OverdueDays(clock.Now())
}

// CollectEvents drains the pending event queue. The persistence boundary calls
// this once per save and hands the batch to the dispatcher.
func (s *Schedule) CollectEvents() []Event {
	events := s.events
	s.events = nil
	return events
}

func (s *Schedule) record(e Event) {
	s.events = append(s.events, e)
}
