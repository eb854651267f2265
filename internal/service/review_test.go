package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reviso/internal/srs"
)

func TestSubmitReviewCreatesScheduleOnFirstEncounter(t *testing.T) {
	repo := newFakeRepo()
	history := &fakeHistory{}
	dispatcher := &fakeDispatcher{}
	clock := &fakeClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	calc := srs.NewCalculator(srs.DefaultPolicy())
	svc := NewReviewService(repo, history, dispatcher, calc, clock, testLogger())

	schedule, err := svc.SubmitReview(context.Background(), SubmitReviewInput{
		StudentID:   "student-1",
		ProblemID:   "problem-1",
		Rating:      3,
		TimeSpentMs: 5000,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, schedule.State.ReviewCount())
	assert.Len(t, repo.schedules, 1)

	require.Len(t, history.entries, 1)
	entry := history.entries[0]
	assert.Equal(t, 3, entry.Rating)
	assert.Equal(t, 1, entry.PrevIntervalDays)
	assert.Equal(t, 5000, entry.TimeSpentMs)
	assert.Equal(t, schedule.State.Interval().Days(), entry.NewIntervalDays)

	// ReviewCompleted plus the base reminder were dispatched.
	require.Len(t, dispatcher.events, 2)
	_, ok := dispatcher.events[0].(srs.ReviewCompletedEvent)
	assert.True(t, ok)
}

func TestSubmitReviewReusesExistingSchedule(t *testing.T) {
	repo := newFakeRepo()
	clock := &fakeClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	calc := srs.NewCalculator(srs.DefaultPolicy())
	svc := NewReviewService(repo, nil, nil, calc, clock, testLogger())

	first, err := svc.SubmitReview(context.Background(), SubmitReviewInput{
		StudentID: "student-1", ProblemID: "problem-1", Rating: 3, TimeSpentMs: 1000,
	})
	require.NoError(t, err)

	clock.Advance(3 * 24 * time.Hour)
	second, err := svc.SubmitReview(context.Background(), SubmitReviewInput{
		StudentID: "student-1", ProblemID: "problem-1", Rating: 3, TimeSpentMs: 1000,
	})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 2, second.State.ReviewCount())
	assert.Len(t, repo.schedules, 1)
}

func TestSubmitReviewRejectsInvalidRating(t *testing.T) {
	repo := newFakeRepo()
	clock := &fakeClock{now: time.Now()}
	calc := srs.NewCalculator(srs.DefaultPolicy())
	svc := NewReviewService(repo, nil, nil, calc, clock, testLogger())

	_, err := svc.SubmitReview(context.Background(), SubmitReviewInput{
		StudentID: "student-1", ProblemID: "problem-1", Rating: 7,
	})
	assert.ErrorIs(t, err, srs.ErrInvalidFeedback)
	assert.Empty(t, repo.schedules)
}

func TestDueSchedules(t *testing.T) {
	repo := newFakeRepo()
	clock := &fakeClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	calc := srs.NewCalculator(srs.DefaultPolicy())
	svc := NewReviewService(repo, nil, nil, calc, clock, testLogger())

	_, err := svc.SubmitReview(context.Background(), SubmitReviewInput{
		StudentID: "student-1", ProblemID: "problem-1", Rating: 3, TimeSpentMs: 1000,
	})
	require.NoError(t, err)
	_, err = svc.SubmitReview(context.Background(), SubmitReviewInput{
		StudentID: "student-1", ProblemID: "problem-2", Rating: 1, TimeSpentMs: 1000,
	})
	require.NoError(t, err)

	due, err := svc.DueSchedules("student-1")
	require.NoError(t, err)
	assert.Empty(t, due)

	// One day on, the failed problem (interval 1) is due; the passed one
	// (interval 3) is not.
	clock.Advance(24 * time.Hour)
	due, err = svc.DueSchedules("student-1")
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "problem-2", due[0].ProblemID)
}
