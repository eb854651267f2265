package db

import "fmt"

// UpdateSchema creates the scheduling tables if they do not exist yet.
func (s *Storage) UpdateSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		telegram_id INTEGER UNIQUE,
		username TEXT,
		name TEXT,
		language_code TEXT DEFAULT 'en',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		deleted_at TIMESTAMP
	);
	-- One active schedule per (student, problem) pair; the uniqueness
	-- constraint enforces the invariant the in-memory aggregate cannot.
	CREATE TABLE IF NOT EXISTS review_schedules (
		id TEXT PRIMARY KEY,
		student_id TEXT NOT NULL,
		problem_id TEXT NOT NULL,
		interval_days INTEGER NOT NULL DEFAULT 1,
		ease REAL NOT NULL DEFAULT 2.5,
		review_count INTEGER NOT NULL DEFAULT 0,
		consecutive_failures INTEGER NOT NULL DEFAULT 0,
		last_reviewed_at TIMESTAMP,
		next_review_at TIMESTAMP NOT NULL,
		last_overdue_notified_at TIMESTAMP,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		UNIQUE (student_id, problem_id),
		FOREIGN KEY (student_id) REFERENCES users(id)
	);
	CREATE INDEX IF NOT EXISTS idx_review_schedules_next_review
		ON review_schedules (next_review_at);
	-- Review history: one row per processed feedback.
	CREATE TABLE IF NOT EXISTS reviews (
		id TEXT PRIMARY KEY,
		schedule_id TEXT NOT NULL,
		student_id TEXT NOT NULL,
		problem_id TEXT NOT NULL,
		rating INTEGER NOT NULL,
		reviewed_at TIMESTAMP NOT NULL,
		time_spent_ms INTEGER NOT NULL,
		prev_interval INTEGER NOT NULL,
		new_interval INTEGER NOT NULL,
		prev_ease REAL NOT NULL,
		new_ease REAL NOT NULL,
		FOREIGN KEY (schedule_id) REFERENCES review_schedules(id)
	);
	-- Notification outbox filled from domain events, drained by the sender job.
	CREATE TABLE IF NOT EXISTS notifications (
		id TEXT PRIMARY KEY,
		schedule_id TEXT NOT NULL,
		student_id TEXT NOT NULL,
		problem_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		notify_at TIMESTAMP NOT NULL,
		created_at TIMESTAMP NOT NULL,
		sent_at TIMESTAMP,
		FOREIGN KEY (schedule_id) REFERENCES review_schedules(id)
	);
	CREATE INDEX IF NOT EXISTS idx_notifications_pending
		ON notifications (notify_at) WHERE sent_at IS NULL;
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("error updating schema: %w", err)
	}

	return nil
}
