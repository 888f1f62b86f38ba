package scheduling

import (
	"context"

	"github.com/google/uuid"
)

type AppointmentRepository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	ListByDoctor(ctx context.Context, doctorName string) ([]*Appointment, error)
	ListByPatient(ctx context.Context, patientName string, limit, offset int) ([]*Appointment, int, error)
	List(ctx context.Context, limit, offset int) ([]*Appointment, int, error)
	DoctorNamesForPatient(ctx context.Context, patientName string) ([]string, error)
}

// SettingsRepository reads and writes clinic-level tunables. The conflict
// window is read fresh on every evaluation so settings changes take effect
// immediately.
type SettingsRepository interface {
	OverlapMinutes(ctx context.Context) (int, error)
	SetOverlapMinutes(ctx context.Context, minutes int) error
}

// DoctorDirectory lists the usernames of all doctor accounts.
type DoctorDirectory interface {
	DoctorUsernames(ctx context.Context) ([]string, error)
}

// NurseDirectory lists the usernames of all nurse accounts. Unassigned
// appointment requests are broadcast to this pool for triage.
type NurseDirectory interface {
	NurseUsernames(ctx context.Context) ([]string, error)
}
