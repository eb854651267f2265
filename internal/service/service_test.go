package service

import (
	"context"
	"log/slog"
	"os"
	"time"

	"reviso/internal/srs"
)

// fakeClock is a settable clock shared by the service tests.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

// fakeRepo is an in-memory ScheduleRepository.
type fakeRepo struct {
	schedules map[string]*srs.Schedule
	saveErr   error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{schedules: make(map[string]*srs.Schedule)}
}

func (r *fakeRepo) FindByID(id string) (*srs.Schedule, error) {
	if s, ok := r.schedules[id]; ok {
		return s, nil
	}
	return nil, srs.ErrNotFound
}

func (r *fakeRepo) FindByIDs(ids []string) ([]*srs.Schedule, error) {
	var out []*srs.Schedule
	for _, id := range ids {
		if s, ok := r.schedules[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeRepo) FindByStudentAndProblem(studentID, problemID string) (*srs.Schedule, error) {
	for _, s := range r.schedules {
		if s.StudentID == studentID && s.ProblemID == problemID {
			return s, nil
		}
	}
	return nil, srs.ErrNotFound
}

func (r *fakeRepo) FindByStudentID(studentID string) ([]*srs.Schedule, error) {
	var out []*srs.Schedule
	for _, s := range r.schedules {
		if s.StudentID == studentID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeRepo) FindDueByStudentID(studentID string, asOf time.Time) ([]*srs.Schedule, error) {
	var out []*srs.Schedule
	for _, s := range r.schedules {
		if s.StudentID == studentID && s.State.IsDue(asOf) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeRepo) FindOverdueByStudentID(studentID string, asOf time.Time) ([]*srs.Schedule, error) {
	var out []*srs.Schedule
	for _, s := range r.schedules {
		if s.StudentID == studentID && s.State.IsOverdue(asOf) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeRepo) FindOverdueSchedules(asOf time.Time) ([]*srs.Schedule, error) {
	var out []*srs.Schedule
	for _, s := range r.schedules {
		if s.State.IsOverdue(asOf) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeRepo) Save(schedule *srs.Schedule) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.schedules[schedule.ID] = schedule
	return nil
}

// fakeDispatcher collects dispatched events.
type fakeDispatcher struct {
	events []srs.Event
}

func (d *fakeDispatcher) Dispatch(_ context.Context, events []srs.Event) error {
	d.events = append(d.events, events...)
	return nil
}

// fakeHistory collects review log entries.
type fakeHistory struct {
	entries []ReviewLogEntry
}

func (h *fakeHistory) AppendReview(entry ReviewLogEntry) error {
	h.entries = append(h.entries, entry)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}
