package scheduling

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Notifier pushes events to users who are currently connected. Delivery is
// best-effort; offline recipients are silently skipped.
type Notifier interface {
	Notify(usernames []string, event interface{})
}

// NopNotifier satisfies Notifier when no realtime layer is wired.
type NopNotifier struct{}

func (NopNotifier) Notify([]string, interface{}) {}

type Service struct {
	repo     AppointmentRepository
	settings SettingsRepository
	checker  *ConflictChecker
	notifier Notifier
	staff    NurseDirectory
	logger   zerolog.Logger
}

func NewService(repo AppointmentRepository, settings SettingsRepository, checker *ConflictChecker, notifier Notifier, staff NurseDirectory, logger zerolog.Logger) *Service {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Service{repo: repo, settings: settings, checker: checker, notifier: notifier, staff: staff, logger: logger}
}

type BookRequest struct {
	PatientName string
	DoctorName  string
	Time        string
	Reason      *string
}

// Book creates a pending appointment after validating the time and, when a
// doctor is named, checking the conflict window. The check-then-insert pair
// is not atomic: two concurrent requests for the same slot can both pass the
// check and both land. Acceptable for clinic-scale write rates; a DB-level
// exclusion constraint would close it if that changes.
func (s *Service) Book(ctx context.Context, req BookRequest) (*Appointment, error) {
	if strings.TrimSpace(req.PatientName) == "" {
		return nil, fmt.Errorf("patient name is required")
	}
	if !ValidTimeString(req.Time) {
		return nil, ErrInvalidFormat
	}

	a := &Appointment{
		PatientName: strings.TrimSpace(req.PatientName),
		DoctorName:  strings.TrimSpace(req.DoctorName),
		Time:        NormalizeTime(req.Time),
		Status:      StatusPending,
		Reason:      req.Reason,
	}

	if a.DoctorName != "" {
		conflict, err := s.checker.HasConflict(ctx, a.DoctorName, a.Time, uuid.Nil)
		if err != nil {
			return nil, err
		}
		if conflict {
			return nil, ErrTimeConflict
		}
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}

	if a.DoctorName != "" {
		s.notifier.Notify([]string{a.DoctorName}, map[string]interface{}{
			"type":    "appointment",
			"id":      a.ID.String(),
			"patient": a.PatientName,
			"time":    a.Time,
			"status":  a.Status,
		})
	} else if s.staff != nil {
		// No doctor yet: the nurse pool triages unassigned requests.
		nurses, err := s.staff.NurseUsernames(ctx)
		if err != nil {
			s.logger.Warn().Err(err).Msg("could not resolve nurse pool for appointment request")
		} else {
			s.notifier.Notify(nurses, map[string]interface{}{
				"type":    "appointment_request",
				"id":      a.ID.String(),
				"patient": a.PatientName,
				"time":    a.Time,
				"status":  a.Status,
			})
		}
	}

	s.logger.Info().
		Str("appointment_id", a.ID.String()).
		Str("doctor", a.DoctorName).
		Str("time", a.Time).
		Msg("appointment booked")
	return a, nil
}

// Reschedule moves an appointment to a new time, excluding the appointment
// itself from the conflict check so it never collides with its own slot.
func (s *Service) Reschedule(ctx context.Context, id uuid.UUID, newTime string) (*Appointment, error) {
	if !ValidTimeString(newTime) {
		return nil, ErrInvalidFormat
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	canonical := NormalizeTime(newTime)
	if a.DoctorName != "" {
		conflict, err := s.checker.HasConflict(ctx, a.DoctorName, canonical, a.ID)
		if err != nil {
			return nil, err
		}
		if conflict {
			return nil, ErrTimeConflict
		}
	}
	a.Time = canonical
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Assign sets the doctor on an unassigned appointment and marks it
// scheduled, subject to the doctor's conflict window.
func (s *Service) Assign(ctx context.Context, id uuid.UUID, doctorName string) (*Appointment, error) {
	doctorName = strings.TrimSpace(doctorName)
	if doctorName == "" {
		return nil, fmt.Errorf("doctor name is required")
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	conflict, err := s.checker.HasConflict(ctx, doctorName, a.Time, a.ID)
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, ErrTimeConflict
	}
	a.DoctorName = doctorName
	a.Status = StatusScheduled
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	s.notifier.Notify([]string{doctorName}, map[string]interface{}{
		"type":    "appointment",
		"id":      a.ID.String(),
		"patient": a.PatientName,
		"time":    a.Time,
		"status":  a.Status,
	})
	return a, nil
}

// UpdateStatus transitions an appointment's lifecycle state. reason is
// stored as the decline or cancel reason when the target state carries one.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string, reason *string) (*Appointment, error) {
	st, ok := ParseStatus(status)
	if !ok {
		return nil, fmt.Errorf("unknown status %q", status)
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	a.Status = st
	switch st {
	case StatusDeclined:
		a.DeclineReason = reason
	case StatusCancelled:
		a.CancelReason = reason
	}
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Appointment, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) ListByPatient(ctx context.Context, patientName string, limit, offset int) ([]*Appointment, int, error) {
	return s.repo.ListByPatient(ctx, patientName, limit, offset)
}

func (s *Service) ListByDoctor(ctx context.Context, doctorName string) ([]*Appointment, error) {
	return s.repo.ListByDoctor(ctx, doctorName)
}

// CheckConflict answers a dry-run conflict query without writing anything.
func (s *Service) CheckConflict(ctx context.Context, doctorName, timeStr string, excludeID uuid.UUID) (bool, error) {
	if !ValidTimeString(timeStr) {
		return false, ErrInvalidFormat
	}
	return s.checker.HasConflict(ctx, doctorName, NormalizeTime(timeStr), excludeID)
}

func (s *Service) AvailableDoctors(ctx context.Context, timeStr string, excludeID uuid.UUID) ([]string, error) {
	if !ValidTimeString(timeStr) {
		return nil, ErrInvalidFormat
	}
	return s.checker.AvailableDoctors(ctx, NormalizeTime(timeStr), excludeID)
}

func (s *Service) OverlapMinutes(ctx context.Context) (int, error) {
	return s.settings.OverlapMinutes(ctx)
}

func (s *Service) SetOverlapMinutes(ctx context.Context, minutes int) error {
	return s.settings.SetOverlapMinutes(ctx, minutes)
}
