package db

import (
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reviso/internal/service"
	"reviso/internal/srs"
)

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func setupStorage(t *testing.T) *Storage {
	t.Helper()
	storage, err := ConnectDB(":memory:", srs.DefaultPolicy())
	require.NoError(t, err)
	require.NoError(t, storage.UpdateSchema())
	t.Cleanup(func() {
		_ = storage.Close()
	})
	return storage
}

func seedUser(t *testing.T, storage *Storage, id string, telegramID int64) {
	t.Helper()
	require.NoError(t, storage.SaveUser(&User{ID: id, TelegramID: telegramID, LanguageCode: "en"}))
}

func reviewLogEntry(schedule *srs.Schedule, reviewedAt time.Time, timeSpentMs int) service.ReviewLogEntry {
	return service.ReviewLogEntry{
		ScheduleID:       schedule.ID,
		StudentID:        schedule.StudentID,
		ProblemID:        schedule.ProblemID,
		Rating:           int(srs.FeedbackGood),
		ReviewedAt:       reviewedAt,
		TimeSpentMs:      timeSpentMs,
		PrevIntervalDays: 1,
		NewIntervalDays:  schedule.State.Interval().Days(),
		PrevEase:         2.5,
		NewEase:          schedule.State.Ease().Value(),
	}
}

func TestScheduleSaveAndFindRoundTrip(t *testing.T) {
	storage := setupStorage(t)
	seedUser(t, storage, "student-1", 1001)

	clock := &testClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	calc := srs.NewCalculator(srs.DefaultPolicy())

	schedule, err := srs.NewSchedule("student-1", "problem-1", calc, clock)
	require.NoError(t, err)
	require.NoError(t, schedule.ProcessReviewFeedback(srs.FeedbackGood, calc, clock, 2000))
	schedule.CollectEvents()
	require.NoError(t, storage.Save(schedule))

	loaded, err := storage.FindByID(schedule.ID)
	require.NoError(t, err)
	assert.Equal(t, schedule.StudentID, loaded.StudentID)
	assert.Equal(t, schedule.ProblemID, loaded.ProblemID)
	assert.Equal(t, schedule.State.Interval().Days(), loaded.State.Interval().Days())
	assert.InDelta(t, schedule.State.Ease().Value(), loaded.State.Ease().Value(), 1e-9)
	assert.Equal(t, schedule.State.ReviewCount(), loaded.State.ReviewCount())
	assert.True(t, schedule.State.NextReviewAt().Equal(loaded.State.NextReviewAt()))
	require.NotNil(t, loaded.State.LastReviewedAt())

	byPair, err := storage.FindByStudentAndProblem("student-1", "problem-1")
	require.NoError(t, err)
	assert.Equal(t, schedule.ID, byPair.ID)

	_, err = storage.FindByStudentAndProblem("student-1", "problem-unknown")
	assert.ErrorIs(t, err, srs.ErrNotFound)
	_, err = storage.FindByID("missing")
	assert.ErrorIs(t, err, srs.ErrNotFound)
}

func TestSaveUpdatesExistingRow(t *testing.T) {
	storage := setupStorage(t)
	seedUser(t, storage, "student-1", 1001)

	clock := &testClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	calc := srs.NewCalculator(srs.DefaultPolicy())

	schedule, err := srs.NewSchedule("student-1", "problem-1", calc, clock)
	require.NoError(t, err)
	require.NoError(t, storage.Save(schedule))

	clock.now = clock.now.Add(24 * time.Hour)
	require.NoError(t, schedule.ProcessReviewFeedback(srs.FeedbackGood, calc, clock, 2000))
	schedule.CollectEvents()
	require.NoError(t, storage.Save(schedule))

	loaded, err := storage.FindByID(schedule.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.State.ReviewCount())
	assert.Equal(t, 3, loaded.State.Interval().Days())
}

func TestUniqueStudentProblemConstraint(t *testing.T) {
	storage := setupStorage(t)
	seedUser(t, storage, "student-1", 1001)

	clock := &testClock{now: time.Now()}
	calc := srs.NewCalculator(srs.DefaultPolicy())

	first, err := srs.NewSchedule("student-1", "problem-1", calc, clock)
	require.NoError(t, err)
	require.NoError(t, storage.Save(first))

	// A second aggregate for the same pair must be rejected by the uniqueness
	// constraint.
	second, err := srs.NewSchedule("student-1", "problem-1", calc, clock)
	require.NoError(t, err)
	assert.Error(t, storage.Save(second))
}

func TestDueAndOverdueQueries(t *testing.T) {
	storage := setupStorage(t)
	seedUser(t, storage, "student-1", 1001)
	seedUser(t, storage, "student-2", 1002)

	clock := &testClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	calc := srs.NewCalculator(srs.DefaultPolicy())

	mkSchedule := func(studentID, problemID string) *srs.Schedule {
		schedule, err := srs.NewSchedule(studentID, problemID, calc, clock)
		require.NoError(t, err)
		require.NoError(t, storage.Save(schedule))
		return schedule
	}

	s1 := mkSchedule("student-1", "problem-1")
	mkSchedule("student-1", "problem-2")
	mkSchedule("student-2", "problem-1")

	// All schedules were just created with a one-day interval.
	due, err := storage.FindDueByStudentID("student-1", clock.now)
	require.NoError(t, err)
	assert.Empty(t, due)

	dueAt := s1.State.NextReviewAt()

	// Exactly on time: due but not overdue.
	due, err = storage.FindDueByStudentID("student-1", dueAt)
	require.NoError(t, err)
	assert.Len(t, due, 2)
	overdue, err := storage.FindOverdueByStudentID("student-1", dueAt)
	require.NoError(t, err)
	assert.Empty(t, overdue)

	// One second later: overdue, across both students for the batch scan.
	overdue, err = storage.FindOverdueByStudentID("student-1", dueAt.Add(time.Second))
	require.NoError(t, err)
	assert.Len(t, overdue, 2)
	all, err := storage.FindOverdueSchedules(dueAt.Add(time.Second))
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestFindByIDs(t *testing.T) {
	storage := setupStorage(t)
	seedUser(t, storage, "student-1", 1001)

	clock := &testClock{now: time.Now()}
	calc := srs.NewCalculator(srs.DefaultPolicy())

	var ids []string
	for _, problem := range []string{"a", "b", "c"} {
		schedule, err := srs.NewSchedule("student-1", problem, calc, clock)
		require.NoError(t, err)
		require.NoError(t, storage.Save(schedule))
		ids = append(ids, schedule.ID)
	}

	found, err := storage.FindByIDs(ids[:2])
	require.NoError(t, err)
	assert.Len(t, found, 2)

	none, err := storage.FindByIDs(nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestNotificationOutbox(t *testing.T) {
	storage := setupStorage(t)
	seedUser(t, storage, "student-1", 1001)

	clock := &testClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	calc := srs.NewCalculator(srs.DefaultPolicy())
	schedule, err := srs.NewSchedule("student-1", "problem-1", calc, clock)
	require.NoError(t, err)
	require.NoError(t, storage.Save(schedule))

	now := clock.now
	require.NoError(t, storage.InsertNotification(Notification{
		ScheduleID: schedule.ID,
		StudentID:  "student-1",
		ProblemID:  "problem-1",
		Kind:       srs.NotificationReminder,
		NotifyAt:   now.Add(24 * time.Hour),
		CreatedAt:  now,
	}))
	require.NoError(t, storage.InsertNotification(Notification{
		ScheduleID: schedule.ID,
		StudentID:  "student-1",
		ProblemID:  "problem-1",
		Kind:       srs.NotificationOverdue,
		NotifyAt:   now,
		CreatedAt:  now,
	}))

	pending, err := storage.PendingNotifications(now, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, srs.NotificationOverdue, pending[0].Kind)

	require.NoError(t, storage.MarkNotificationSent(pending[0].ID, now))
	pending, err = storage.PendingNotifications(now, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	// The future reminder is still pending until superseded.
	pending, err = storage.PendingNotifications(now.Add(48*time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.NoError(t, storage.SupersedePendingNotifications(schedule.ID, now))
	pending, err = storage.PendingNotifications(now.Add(48*time.Hour), 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestStudyStats(t *testing.T) {
	storage := setupStorage(t)
	seedUser(t, storage, "student-1", 1001)

	clock := &testClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	calc := srs.NewCalculator(srs.DefaultPolicy())
	schedule, err := srs.NewSchedule("student-1", "problem-1", calc, clock)
	require.NoError(t, err)
	require.NoError(t, storage.Save(schedule))

	appendReview := func(reviewedAt time.Time, timeSpentMs int) {
		require.NoError(t, storage.AppendReview(reviewLogEntry(schedule, reviewedAt, timeSpentMs)))
	}
	appendReview(clock.now.Add(-48*time.Hour), 4000)
	appendReview(clock.now, 2000)
	appendReview(clock.now.Add(time.Minute), 4000)

	stats, err := storage.GetStudyStats("student-1", clock.now)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.ReviewsToday)
	assert.Equal(t, 6000, stats.TotalTimeTodayMs)
	assert.Equal(t, 3000, stats.AvgTimePerReviewMs)
	assert.Equal(t, 3, stats.TotalReviews)
	assert.Equal(t, 2, stats.StudyDays)
	assert.Equal(t, 1, stats.TotalSchedules)
}
