package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// User is a student account, keyed to a Telegram identity.
type User struct {
	ID           string     `db:"id" json:"id"`
	TelegramID   int64      `db:"telegram_id" json:"telegram_id"`
	Username     *string    `db:"username" json:"username"`
	Name         *string    `db:"name" json:"name"`
	LanguageCode string     `db:"language_code" json:"language_code"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt    *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
}

func (s *Storage) GetUser(telegramID int64) (*User, error) {
	query := `SELECT id, telegram_id, username, name, language_code, created_at, updated_at FROM users WHERE telegram_id = ?`
	return s.scanUser(s.db.QueryRow(query, telegramID))
}

func (s *Storage) GetUserByID(id string) (*User, error) {
	query := `SELECT id, telegram_id, username, name, language_code, created_at, updated_at FROM users WHERE id = ?`
	return s.scanUser(s.db.QueryRow(query, id))
}

func (s *Storage) scanUser(row *sql.Row) (*User, error) {
	var user User
	err := row.Scan(
		&user.ID,
		&user.TelegramID,
		&user.Username,
		&user.Name,
		&user.LanguageCode,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error getting user: %w", err)
	}
	return &user, nil
}

func (s *Storage) SaveUser(user *User) error {
	query := `
		INSERT INTO users
			(id, telegram_id, username, name, language_code)
		VALUES (?, ?, ?, ?, ?)`

	_, err := s.db.Exec(query, user.ID, user.TelegramID, user.Username, user.Name, user.LanguageCode)
	if err != nil {
		return fmt.Errorf("error saving user: %w", err)
	}
	return nil
}

// ChatIDForStudent resolves a student to their Telegram chat id for
// notification delivery.
func (s *Storage) ChatIDForStudent(studentID string) (int64, error) {
	user, err := s.GetUserByID(studentID)
	if err != nil {
		return 0, err
	}
	return user.TelegramID, nil
}
