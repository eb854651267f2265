package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"reviso/internal/srs"
)

const scheduleColumns = `id, student_id, problem_id, interval_days, ease, review_count,
	consecutive_failures, last_reviewed_at, next_review_at, last_overdue_notified_at,
	created_at, updated_at`

func (s *Storage) scanSchedule(row interface{ Scan(...any) error }) (*srs.Schedule, error) {
	var (
		id, studentID, problemID string
		intervalDays             int
		ease                     float64
		reviewCount              int
		consecutiveFailures      int
		lastReviewedAt           *time.Time
		nextReviewAt             time.Time
		lastOverdueNotifiedAt    *time.Time
		createdAt, updatedAt     time.Time
	)

	err := row.Scan(
		&id,
		&studentID,
		&problemID,
		&intervalDays,
		&ease,
		&reviewCount,
		&consecutiveFailures,
		&lastReviewedAt,
		&nextReviewAt,
		&lastOverdueNotifiedAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, srs.ErrNotFound
		}
		return nil, fmt.Errorf("error scanning schedule: %w", err)
	}

	state, err := srs.RehydrateState(intervalDays, ease, reviewCount, lastReviewedAt, nextReviewAt, s.policy)
	if err != nil {
		return nil, fmt.Errorf("error rehydrating schedule %s: %w", id, err)
	}

	return srs.RehydrateSchedule(id, studentID, problemID, state, consecutiveFailures, lastOverdueNotifiedAt, createdAt, updatedAt), nil
}

func (s *Storage) querySchedules(query string, args ...any) ([]*srs.Schedule, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying schedules: %w", err)
	}
	defer rows.Close()

	var schedules []*srs.Schedule
	for rows.Next() {
		schedule, err := s.scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, schedule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating schedules: %w", err)
	}
	return schedules, nil
}

func (s *Storage) FindByID(id string) (*srs.Schedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM review_schedules WHERE id = ?`
	return s.scanSchedule(s.db.QueryRow(query, id))
}

func (s *Storage) FindByIDs(ids []string) ([]*srs.Schedule, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	query := `SELECT ` + scheduleColumns + ` FROM review_schedules WHERE id IN (` + placeholders + `)`

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return s.querySchedules(query, args...)
}

func (s *Storage) FindByStudentAndProblem(studentID, problemID string) (*srs.Schedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM review_schedules WHERE student_id = ? AND problem_id = ?`
	return s.scanSchedule(s.db.QueryRow(query, studentID, problemID))
}

func (s *Storage) FindByStudentID(studentID string) ([]*srs.Schedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM review_schedules WHERE student_id = ? ORDER BY next_review_at`
	return s.querySchedules(query, studentID)
}

func (s *Storage) FindDueByStudentID(studentID string, asOf time.Time) ([]*srs.Schedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM review_schedules
		WHERE student_id = ? AND next_review_at <= ?
		ORDER BY next_review_at`
	return s.querySchedules(query, studentID, asOf)
}

func (s *Storage) FindOverdueByStudentID(studentID string, asOf time.Time) ([]*srs.Schedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM review_schedules
		WHERE student_id = ? AND next_review_at < ?
		ORDER BY next_review_at`
	return s.querySchedules(query, studentID, asOf)
}

func (s *Storage) FindOverdueSchedules(asOf time.Time) ([]*srs.Schedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM review_schedules
		WHERE next_review_at < ?
		ORDER BY next_review_at`
	return s.querySchedules(query, asOf)
}

// Save upserts the schedule. The UNIQUE(student_id, problem_id) constraint
// rejects a second schedule for the same pair.
func (s *Storage) Save(schedule *srs.Schedule) error {
	query := `
		INSERT INTO review_schedules
			(id, student_id, problem_id, interval_days, ease, review_count,
			 consecutive_failures, last_reviewed_at, next_review_at,
			 last_overdue_notified_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			interval_days = excluded.interval_days,
			ease = excluded.ease,
			review_count = excluded.review_count,
			consecutive_failures = excluded.consecutive_failures,
			last_reviewed_at = excluded.last_reviewed_at,
			next_review_at = excluded.next_review_at,
			last_overdue_notified_at = excluded.last_overdue_notified_at,
			updated_at = excluded.updated_at
	`

	_, err := s.db.Exec(query,
		schedule.ID,
		schedule.StudentID,
		schedule.ProblemID,
		schedule.State.Interval().Days(),
		schedule.State.Ease().Value(),
		schedule.State.ReviewCount(),
		schedule.ConsecutiveFailures,
		schedule.State.LastReviewedAt(),
		schedule.State.NextReviewAt(),
		schedule.LastOverdueNotifiedAt,
		schedule.CreatedAt,
		schedule.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("error saving schedule: %w", err)
	}
	return nil
}
