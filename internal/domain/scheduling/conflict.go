package scheduling

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	DefaultOverlapMinutes = 30
	MinOverlapMinutes     = 5
	MaxOverlapMinutes     = 240
)

// ConflictChecker decides whether a candidate time collides with a doctor's
// existing appointments. Two appointments conflict when their canonical
// times are strictly closer than the configured window; a gap exactly equal
// to the window is allowed, so back-to-back slots at window spacing book
// cleanly.
type ConflictChecker struct {
	appts    AppointmentRepository
	settings SettingsRepository
	doctors  DoctorDirectory
	logger   zerolog.Logger
}

func NewConflictChecker(appts AppointmentRepository, settings SettingsRepository, doctors DoctorDirectory, logger zerolog.Logger) *ConflictChecker {
	return &ConflictChecker{appts: appts, settings: settings, doctors: doctors, logger: logger}
}

// windowMinutes reads the conflict window, clamping out-of-range or missing
// values to the documented bounds.
func (cc *ConflictChecker) windowMinutes(ctx context.Context) (int64, error) {
	m, err := cc.settings.OverlapMinutes(ctx)
	if err != nil {
		return 0, err
	}
	if m < MinOverlapMinutes {
		m = MinOverlapMinutes
	}
	if m > MaxOverlapMinutes {
		m = MaxOverlapMinutes
	}
	return int64(m), nil
}

// HasConflict reports whether booking doctorName at candidateTime would
// collide with any of the doctor's calendar-blocking appointments.
// excludeID, when non-nil, skips that appointment so a reschedule never
// conflicts with itself. candidateTime must already be validated by the
// caller; stored rows with unparseable times are logged and skipped rather
// than failing the whole scan.
func (cc *ConflictChecker) HasConflict(ctx context.Context, doctorName, candidateTime string, excludeID uuid.UUID) (bool, error) {
	target, err := ParseTime(candidateTime)
	if err != nil {
		return false, ErrInvalidFormat
	}
	targetMin := EpochMinutes(target)

	window, err := cc.windowMinutes(ctx)
	if err != nil {
		return false, err
	}

	existing, err := cc.appts.ListByDoctor(ctx, doctorName)
	if err != nil {
		return false, err
	}

	for _, a := range existing {
		if !a.Status.BlocksCalendar() {
			continue
		}
		if excludeID != uuid.Nil && a.ID == excludeID {
			continue
		}
		t, err := ParseTime(a.Time)
		if err != nil {
			cc.logger.Warn().
				Str("appointment_id", a.ID.String()).
				Str("time", a.Time).
				Msg("skipping appointment with unparseable time")
			continue
		}
		d := EpochMinutes(t) - targetMin
		if d < 0 {
			d = -d
		}
		if d < window {
			return true, nil
		}
	}
	return false, nil
}

// AvailableDoctors returns every doctor free at candidateTime, sorted by
// username.
func (cc *ConflictChecker) AvailableDoctors(ctx context.Context, candidateTime string, excludeID uuid.UUID) ([]string, error) {
	names, err := cc.doctors.DoctorUsernames(ctx)
	if err != nil {
		return nil, err
	}

	available := make([]string, 0, len(names))
	for _, name := range names {
		conflict, err := cc.HasConflict(ctx, name, candidateTime, excludeID)
		if err != nil {
			return nil, err
		}
		if !conflict {
			available = append(available, name)
		}
	}
	sort.Strings(available)
	return available, nil
}
