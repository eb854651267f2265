package db

import (
	"fmt"
	"time"

	nanoid "github.com/matoous/go-nanoid/v2"

	"reviso/internal/service"
)

// AppendReview writes one review history row. Implements service.ReviewHistory.
func (s *Storage) AppendReview(entry service.ReviewLogEntry) error {
	query := `
		INSERT INTO reviews
			(id, schedule_id, student_id, problem_id, rating, reviewed_at,
			 time_spent_ms, prev_interval, new_interval, prev_ease, new_ease)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.Exec(query,
		nanoid.Must(),
		entry.ScheduleID,
		entry.StudentID,
		entry.ProblemID,
		entry.Rating,
		entry.ReviewedAt,
		entry.TimeSpentMs,
		entry.PrevIntervalDays,
		entry.NewIntervalDays,
		entry.PrevEase,
		entry.NewEase,
	)
	if err != nil {
		return fmt.Errorf("error appending review: %w", err)
	}
	return nil
}

// StudyStats summarizes a student's review activity.
type StudyStats struct {
	ReviewsToday       int `json:"reviews_today"`
	AvgTimePerReviewMs int `json:"avg_time_per_review_ms"`
	TotalTimeTodayMs   int `json:"total_time_today_ms"`
	TotalReviews       int `json:"total_reviews"`
	TotalSchedules     int `json:"total_schedules"`
	StudyDays          int `json:"study_days"`
}

// GetStudyStats aggregates review history for a student, with "today" bounded
// in UTC.
func (s *Storage) GetStudyStats(studentID string, now time.Time) (StudyStats, error) {
	stats := StudyStats{}

	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	todayEnd := todayStart.Add(24 * time.Hour)

	todayQuery := `
		SELECT COUNT(*), IFNULL(SUM(time_spent_ms), 0), IFNULL(AVG(time_spent_ms), 0)
		FROM reviews
		WHERE student_id = ? AND reviewed_at >= ? AND reviewed_at < ?
	`
	var avgTime float64
	err := s.db.QueryRow(todayQuery, studentID, todayStart, todayEnd).
		Scan(&stats.ReviewsToday, &stats.TotalTimeTodayMs, &avgTime)
	if err != nil {
		return stats, fmt.Errorf("error getting today's review stats: %w", err)
	}
	stats.AvgTimePerReviewMs = int(avgTime)

	totalsQuery := `
		SELECT COUNT(*), COUNT(DISTINCT DATE(reviewed_at))
		FROM reviews
		WHERE student_id = ?
	`
	if err := s.db.QueryRow(totalsQuery, studentID).Scan(&stats.TotalReviews, &stats.StudyDays); err != nil {
		return stats, fmt.Errorf("error getting total review stats: %w", err)
	}

	schedulesQuery := `SELECT COUNT(*) FROM review_schedules WHERE student_id = ?`
	if err := s.db.QueryRow(schedulesQuery, studentID).Scan(&stats.TotalSchedules); err != nil {
		return stats, fmt.Errorf("error counting schedules: %w", err)
	}

	return stats, nil
}
