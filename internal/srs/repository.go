package srs

import "time"

// ScheduleRepository is the persistence port consumed by the application layer.
// Implementations must return ErrNotFound for missing schedules and enforce the
// one-schedule-per-(student, problem) invariant, e.g. with a uniqueness
// constraint.
type ScheduleRepository interface {
	FindByID(id string) (*Schedule, error)
	FindByIDs(ids []string) ([]*Schedule, error)
	FindByStudentAndProblem(studentID, problemID string) (*Schedule, error)
	FindByStudentID(studentID string) ([]*Schedule, error)
	FindDueByStudentID(studentID string, asOf time.Time) ([]*Schedule, error)
	FindOverdueByStudentID(studentID string, asOf time.Time) ([]*Schedule, error)
	FindOverdueSchedules(asOf time.Time) ([]*Schedule, error)
	Save(schedule *Schedule) error
}
