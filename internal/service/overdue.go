package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"reviso/internal/srs"
)

// Priority is the triage band assigned to an overdue schedule. It orders the
// review queue for presentation and never feeds back into the scheduling math.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

func (p Priority) rank() int {
	switch p {
	case PriorityCritical:
		return 3
	case PriorityHigh:
		return 2
	case PriorityMedium:
		return 1
	default:
		return 0
	}
}

// OverdueItem is one entry of the prioritized overdue queue.
type OverdueItem struct {
	ScheduleID           string              `json:"schedule_id"`
	StudentID            string              `json:"student_id"`
	ProblemID            string              `json:"problem_id"`
	OverdueDays          int                 `json:"overdue_days"`
	ConsecutiveFailures  int                 `json:"consecutive_failures"`
	Difficulty           srs.DifficultyLevel `json:"difficulty"`
	RetentionProbability float64             `json:"retention_probability"`
	Priority             Priority            `json:"priority"`
	NextReviewAt         time.Time           `json:"next_review_at"`
}

// OverdueService ranks overdue schedules and drives overdue notifications.
type OverdueService struct {
	repo       srs.ScheduleRepository
	dispatcher Dispatcher
	calc       srs.Calculator
	clock      srs.Clock
	logger     *slog.Logger
}

func NewOverdueService(repo srs.ScheduleRepository, dispatcher Dispatcher, calc srs.Calculator, clock srs.Clock, logger *slog.Logger) *OverdueService {
	return &OverdueService{
		repo:       repo,
		dispatcher: dispatcher,
		calc:       calc,
		clock:      clock,
		logger:     logger,
	}
}

// CalculatePriority scores an overdue schedule additively: longer overdue, more
// consecutive failures and higher difficulty each add points, and the total
// maps to one of four bands.
func CalculatePriority(overdueDays, consecutiveFailures int, difficulty srs.DifficultyLevel) Priority {
	score := 0

	switch {
	case overdueDays >= 14:
		score += 4
	case overdueDays >= 7:
		score += 3
	case overdueDays >= 3:
		score += 2
	case overdueDays >= 1:
		score += 1
	}

	failures := consecutiveFailures
	if failures > 4 {
		failures = 4
	}
	score += failures

	switch difficulty {
	case srs.DifficultyAdvanced:
		score += 2
	case srs.DifficultyIntermediate:
		score++
	}

	switch {
	case score >= 8:
		return PriorityCritical
	case score >= 5:
		return PriorityHigh
	case score >= 3:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// OverdueQueue returns the student's overdue schedules ranked critical-first,
// most-overdue-first within a band.
func (s *OverdueService) OverdueQueue(studentID string) ([]OverdueItem, error) {
	asOf := s.clock.Now()
	schedules, err := s.repo.FindOverdueByStudentID(studentID, asOf)
	if err != nil {
		return nil, fmt.Errorf("error listing overdue schedules: %w", err)
	}

	policy := s.calc.Policy()
	items := make([]OverdueItem, 0, len(schedules))
	for _, schedule := range schedules {
		item := OverdueItem{
			ScheduleID:           schedule.ID,
			StudentID:            schedule.StudentID,
			ProblemID:            schedule.ProblemID,
			OverdueDays:          schedule.State.OverdueDays(asOf),
			ConsecutiveFailures:  schedule.ConsecutiveFailures,
			Difficulty:           schedule.DifficultyLevel(policy),
			RetentionProbability: schedule.State.RetentionProbability(asOf, policy),
			NextReviewAt:         schedule.State.NextReviewAt(),
		}
		item.Priority = CalculatePriority(item.OverdueDays, item.ConsecutiveFailures, item.Difficulty)
		items = append(items, item)
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Priority.rank() != items[j].Priority.rank() {
			return items[i].Priority.rank() > items[j].Priority.rank()
		}
		return items[i].OverdueDays > items[j].OverdueDays
	})

	return items, nil
}

// NotifyOverdue scans every overdue schedule and emits one overdue notification
// per overdue episode. Returns the number of schedules notified.
func (s *OverdueService) NotifyOverdue(ctx context.Context) (int, error) {
	schedules, err := s.repo.FindOverdueSchedules(s.clock.Now())
	if err != nil {
		return 0, fmt.Errorf("error scanning overdue schedules: %w", err)
	}

	notified := 0
	for _, schedule := range schedules {
		if !schedule.TriggerOverdueNotification(s.clock) {
			continue
		}
		if err := s.repo.Save(schedule); err != nil {
			s.logger.Error("failed to save overdue notification marker",
				slog.String("schedule_id", schedule.ID),
				slog.String("error", err.Error()))
			continue
		}
		events := schedule.CollectEvents()
		if s.dispatcher != nil && len(events) > 0 {
			if err := s.dispatcher.Dispatch(ctx, events); err != nil {
				s.logger.Warn("failed to dispatch overdue events",
					slog.String("schedule_id", schedule.ID),
					slog.String("error", err.Error()))
			}
		}
		notified++
	}

	if notified > 0 {
		s.logger.Info("overdue schedules notified", slog.Int("count", notified))
	}
	return notified, nil
}
