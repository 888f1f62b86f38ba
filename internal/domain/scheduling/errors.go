package scheduling

import "errors"

var (
	// ErrInvalidFormat marks a user-supplied time that failed validation.
	ErrInvalidFormat = errors.New("invalid time format, expected YYYY-MM-DD HH:MM")

	// ErrTimeConflict marks a booking that falls inside another
	// appointment's conflict window on the same doctor's calendar.
	ErrTimeConflict = errors.New("doctor has another appointment within the conflict window")
)
