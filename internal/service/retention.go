package service

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"reviso/internal/srs"
)

// RiskLevel classifies how likely a studied item is to slip away if it is not
// reviewed soon.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

func (r RiskLevel) rank() int {
	switch r {
	case RiskCritical:
		return 3
	case RiskHigh:
		return 2
	case RiskMedium:
		return 1
	default:
		return 0
	}
}

// RetentionItem is the per-schedule slice of a retention report.
type RetentionItem struct {
	ScheduleID           string              `json:"schedule_id"`
	ProblemID            string              `json:"problem_id"`
	RetentionProbability float64             `json:"retention_probability"`
	ReviewProgress       float64             `json:"review_progress"`
	Risk                 RiskLevel           `json:"risk"`
	Difficulty           srs.DifficultyLevel `json:"difficulty"`
	NextReviewAt         time.Time           `json:"next_review_at"`
}

// RetentionReport aggregates a student's retention picture.
type RetentionReport struct {
	Items          []RetentionItem `json:"items"`
	LowCount       int             `json:"low_count"`
	MediumCount    int             `json:"medium_count"`
	HighCount      int             `json:"high_count"`
	CriticalCount  int             `json:"critical_count"`
	Recommendation string          `json:"recommendation"`
}

// RiskFromRetention combines retention probability with review progress
// (elapsed/interval). Both lower probability and higher overrun escalate risk,
// so the classification is monotone in each input.
func RiskFromRetention(probability, progress float64) RiskLevel {
	switch {
	case probability < 0.30 || progress > 2.0:
		return RiskCritical
	case probability < 0.50 || progress > 1.5:
		return RiskHigh
	case probability < 0.70 || progress > 1.0:
		return RiskMedium
	default:
		return RiskLow
	}
}

// RetentionService builds retention reports over a student's schedules.
type RetentionService struct {
	repo   srs.ScheduleRepository
	calc   srs.Calculator
	clock  srs.Clock
	logger *slog.Logger
}

func NewRetentionService(repo srs.ScheduleRepository, calc srs.Calculator, clock srs.Clock, logger *slog.Logger) *RetentionService {
	return &RetentionService{
		repo:   repo,
		calc:   calc,
		clock:  clock,
		logger: logger,
	}
}

// Report computes per-item retention and risk for everything the student has
// studied, riskiest first.
func (s *RetentionService) Report(studentID string) (*RetentionReport, error) {
	schedules, err := s.repo.FindByStudentID(studentID)
	if err != nil {
		return nil, fmt.Errorf("error loading schedules for retention report: %w", err)
	}

	now := s.clock.Now()
	policy := s.calc.Policy()
	report := &RetentionReport{Items: make([]RetentionItem, 0, len(schedules))}

	for _, schedule := range schedules {
		item := RetentionItem{
			ScheduleID:           schedule.ID,
			ProblemID:            schedule.ProblemID,
			RetentionProbability: schedule.State.RetentionProbability(now, policy),
			ReviewProgress:       schedule.State.ReviewProgress(now),
			Difficulty:           schedule.DifficultyLevel(policy),
			NextReviewAt:         schedule.State.NextReviewAt(),
		}
		item.Risk = RiskFromRetention(item.RetentionProbability, item.ReviewProgress)

		switch item.Risk {
		case RiskCritical:
			report.CriticalCount++
		case RiskHigh:
			report.HighCount++
		case RiskMedium:
			report.MediumCount++
		default:
			report.LowCount++
		}
		report.Items = append(report.Items, item)
	}

	sort.SliceStable(report.Items, func(i, j int) bool {
		if report.Items[i].Risk.rank() != report.Items[j].Risk.rank() {
			return report.Items[i].Risk.rank() > report.Items[j].Risk.rank()
		}
		return report.Items[i].RetentionProbability < report.Items[j].RetentionProbability
	})

	report.Recommendation = recommendation(report)
	return report, nil
}

func recommendation(report *RetentionReport) string {
	switch {
	case report.CriticalCount > 0:
		return fmt.Sprintf("%d items are at critical risk, review them now", report.CriticalCount)
	case report.HighCount > 0:
		return fmt.Sprintf("%d items are at high risk, schedule a session today", report.HighCount)
	case report.MediumCount > 0:
		return fmt.Sprintf("%d items are drifting, a short session will keep them fresh", report.MediumCount)
	case len(report.Items) == 0:
		return "nothing studied yet"
	default:
		return "retention looks healthy"
	}
}
