package contract

import (
	"time"

	"reviso/internal/srs"
)

type SubmitReviewRequest struct {
	ProblemID   string `json:"problem_id" validate:"required"`
	Rating      int    `json:"rating" validate:"required,min=1,max=4"`
	TimeSpentMs int    `json:"time_spent_ms" validate:"min=0"`
}

// ScheduleResponse is the API view of one review schedule. Status, difficulty
// and retention are derived at response time, never stored.
type ScheduleResponse struct {
	ID                   string              `json:"id"`
	StudentID            string              `json:"student_id"`
	ProblemID            string              `json:"problem_id"`
	IntervalDays         int                 `json:"interval_days"`
	Ease                 float64             `json:"ease"`
	ReviewCount          int                 `json:"review_count"`
	ConsecutiveFailures  int                 `json:"consecutive_failures"`
	LastReviewedAt       *time.Time          `json:"last_reviewed_at,omitempty"`
	NextReviewAt         time.Time           `json:"next_review_at"`
	Status               srs.ScheduleStatus  `json:"status"`
	Difficulty           srs.DifficultyLevel `json:"difficulty"`
	RetentionProbability float64             `json:"retention_probability"`
	OverdueDays          int                 `json:"overdue_days,omitempty"`
	CreatedAt            time.Time           `json:"created_at"`
	UpdatedAt            time.Time           `json:"updated_at"`
}

// NewScheduleResponse projects the aggregate into its API shape as of now.
func NewScheduleResponse(schedule *srs.Schedule, policy srs.Policy, now time.Time) ScheduleResponse {
	return ScheduleResponse{
		ID:                   schedule.ID,
		StudentID:            schedule.StudentID,
		ProblemID:            schedule.ProblemID,
		IntervalDays:         schedule.State.Interval().Days(),
		Ease:                 schedule.State.Ease().Value(),
		ReviewCount:          schedule.State.ReviewCount(),
		ConsecutiveFailures:  schedule.ConsecutiveFailures,
		LastReviewedAt:       schedule.State.LastReviewedAt(),
		NextReviewAt:         schedule.State.NextReviewAt(),
		Status:               scheduleStatus(schedule, now),
		Difficulty:           schedule.DifficultyLevel(policy),
		RetentionProbability: schedule.State.RetentionProbability(now, policy),
		OverdueDays:          schedule.State.OverdueDays(now),
		CreatedAt:            schedule.CreatedAt,
		UpdatedAt:            schedule.UpdatedAt,
	}
}

func scheduleStatus(schedule *srs.Schedule, now time.Time) srs.ScheduleStatus {
	switch {
	case schedule.State.IsOverdue(now):
		return srs.StatusOverdue
	case schedule.State.IsDue(now):
		return srs.StatusDue
	default:
		return srs.StatusScheduled
	}
}
