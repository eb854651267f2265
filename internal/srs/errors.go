package srs

import "errors"

var (
	// ErrOutOfRange is returned by value-object constructors when input falls
	// outside the policy bounds.
	ErrOutOfRange = errors.New("value out of range")

	// ErrInvalidFeedback is returned when feedback is not one of the four ratings.
	ErrInvalidFeedback = errors.New("invalid feedback")

	// ErrValidation covers malformed aggregate input such as empty identifiers.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned by ScheduleRepository implementations when no
	// schedule matches the lookup.
	ErrNotFound = errors.New("schedule not found")
)
