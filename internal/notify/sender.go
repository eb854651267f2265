package notify

import (
	"context"
	"fmt"
	"log/slog"

	telegram "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"reviso/internal/db"
	"reviso/internal/srs"
)

// MessageSender is the slice of the Telegram bot API the sender needs.
type MessageSender interface {
	SendMessage(ctx context.Context, params *telegram.SendMessageParams) (*models.Message, error)
}

// Sender drains due outbox rows and delivers them as Telegram messages.
type Sender struct {
	db        *db.Storage
	bot       MessageSender
	clock     srs.Clock
	logger    *slog.Logger
	batchSize int
}

func NewSender(storage *db.Storage, bot MessageSender, clock srs.Clock, logger *slog.Logger) *Sender {
	return &Sender{
		db:        storage,
		bot:       bot,
		clock:     clock,
		logger:    logger,
		batchSize: 50,
	}
}

// SendPending delivers every notification whose time has arrived and marks it
// sent. A failed delivery leaves the row pending for the next run. Returns the
// number delivered.
func (s *Sender) SendPending(ctx context.Context) (int, error) {
	now := s.clock.Now()
	pending, err := s.db.PendingNotifications(now, s.batchSize)
	if err != nil {
		return 0, fmt.Errorf("error loading pending notifications: %w", err)
	}

	sent := 0
	for _, notification := range pending {
		chatID, err := s.db.ChatIDForStudent(notification.StudentID)
		if err != nil {
			s.logger.Error("failed to resolve chat for notification",
				slog.String("notification_id", notification.ID),
				slog.String("student_id", notification.StudentID),
				slog.String("error", err.Error()))
			continue
		}

		if s.bot != nil {
			_, err = s.bot.SendMessage(ctx, &telegram.SendMessageParams{
				ChatID: chatID,
				Text:   messageText(notification),
			})
			if err != nil {
				s.logger.Warn("failed to deliver notification",
					slog.String("notification_id", notification.ID),
					slog.String("error", err.Error()))
				continue
			}
		}

		if err := s.db.MarkNotificationSent(notification.ID, now); err != nil {
			s.logger.Error("failed to mark notification sent",
				slog.String("notification_id", notification.ID),
				slog.String("error", err.Error()))
			continue
		}
		sent++
	}

	if sent > 0 {
		s.logger.Info("notifications delivered", slog.Int("count", sent))
	}
	return sent, nil
}

func messageText(n db.Notification) string {
	switch n.Kind {
	case srs.NotificationOverdue:
		return fmt.Sprintf("Your review of %s is overdue. A quick session now will keep it from slipping.", n.ProblemID)
	case srs.NotificationEarlyReminder:
		return fmt.Sprintf("Early heads-up: %s has been giving you trouble. A short refresher today will help.", n.ProblemID)
	default:
		return fmt.Sprintf("Time to review %s.", n.ProblemID)
	}
}
