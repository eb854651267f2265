package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"reviso/internal/srs"
)

// ReviewService processes feedback submissions: it loads (or creates) the
// schedule for the (student, problem) pair, runs the feedback through the
// aggregate and persists the result.
type ReviewService struct {
	repo       srs.ScheduleRepository
	history    ReviewHistory
	dispatcher Dispatcher
	calc       srs.Calculator
	clock      srs.Clock
	logger     *slog.Logger
}

func NewReviewService(repo srs.ScheduleRepository, history ReviewHistory, dispatcher Dispatcher, calc srs.Calculator, clock srs.Clock, logger *slog.Logger) *ReviewService {
	return &ReviewService{
		repo:       repo,
		history:    history,
		dispatcher: dispatcher,
		calc:       calc,
		clock:      clock,
		logger:     logger,
	}
}

// SubmitReviewInput is the application-level command for one review.
type SubmitReviewInput struct {
	StudentID   string
	ProblemID   string
	Rating      int
	TimeSpentMs int
}

// SubmitReview runs one review end to end and returns the updated schedule.
func (s *ReviewService) SubmitReview(ctx context.Context, in SubmitReviewInput) (*srs.Schedule, error) {
	feedback, err := srs.FeedbackFromRating(in.Rating)
	if err != nil {
		return nil, err
	}

	schedule, err := s.repo.FindByStudentAndProblem(in.StudentID, in.ProblemID)
	if err != nil {
		if !errors.Is(err, srs.ErrNotFound) {
			return nil, fmt.Errorf("error loading schedule: %w", err)
		}
		// First encounter of this pair: the repository's uniqueness constraint
		// keeps concurrent creations down to one winner.
		schedule, err = srs.NewSchedule(in.StudentID, in.ProblemID, s.calc, s.clock)
		if err != nil {
			return nil, err
		}
	}

	prevInterval := schedule.State.Interval().Days()
	prevEase := schedule.State.Ease().Value()

	if err := schedule.ProcessReviewFeedback(feedback, s.calc, s.clock, in.TimeSpentMs); err != nil {
		return nil, err
	}

	if err := s.repo.Save(schedule); err != nil {
		return nil, fmt.Errorf("error saving schedule: %w", err)
	}

	if s.history != nil {
		entry := ReviewLogEntry{
			ScheduleID:       schedule.ID,
			StudentID:        schedule.StudentID,
			ProblemID:        schedule.ProblemID,
			Rating:           in.Rating,
			ReviewedAt:       *schedule.State.LastReviewedAt(),
			TimeSpentMs:      in.TimeSpentMs,
			PrevIntervalDays: prevInterval,
			NewIntervalDays:  schedule.State.Interval().Days(),
			PrevEase:         prevEase,
			NewEase:          schedule.State.Ease().Value(),
		}
		if err := s.history.AppendReview(entry); err != nil {
			s.logger.Warn("failed to append review history",
				slog.String("schedule_id", schedule.ID),
				slog.String("error", err.Error()))
		}
	}

	events := schedule.CollectEvents()
	if s.dispatcher != nil && len(events) > 0 {
		if err := s.dispatcher.Dispatch(ctx, events); err != nil {
			s.logger.Warn("failed to dispatch review events",
				slog.String("schedule_id", schedule.ID),
				slog.Int("event_count", len(events)),
				slog.String("error", err.Error()))
		}
	}

	s.logger.Debug("review processed",
		slog.String("schedule_id", schedule.ID),
		slog.String("feedback", feedback.String()),
		slog.Int("interval_days", schedule.State.Interval().Days()),
		slog.Float64("ease", schedule.State.Ease().Value()))

	return schedule, nil
}

// DueSchedules lists the student's schedules whose review time has arrived.
func (s *ReviewService) DueSchedules(studentID string) ([]*srs.Schedule, error) {
	schedules, err := s.repo.FindDueByStudentID(studentID, s.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("error listing due schedules: %w", err)
	}
	return schedules, nil
}

// ScheduleByID loads one schedule.
func (s *ReviewService) ScheduleByID(id string) (*srs.Schedule, error) {
	return s.repo.FindByID(id)
}
