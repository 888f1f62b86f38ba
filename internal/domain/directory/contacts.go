package directory

import (
	"context"
	"fmt"
	"sort"

	"github.com/clinicdesk/clinic-server/internal/domain/identity"
)

// UserSource supplies usernames by role. Satisfied by identity.UserRepository.
type UserSource interface {
	UsernamesByRole(ctx context.Context, roles ...identity.Role) ([]string, error)
	AllUsernames(ctx context.Context) ([]string, error)
}

// AppointmentSource supplies the doctors a patient has an appointment
// history with. Satisfied by scheduling.AppointmentRepository.
type AppointmentSource interface {
	DoctorNamesForPatient(ctx context.Context, patientName string) ([]string, error)
}

// Resolver computes who a user may exchange messages with. Results are
// recomputed on every call so role changes and new appointments take effect
// immediately, never cached.
type Resolver struct {
	users UserSource
	appts AppointmentSource
}

func NewResolver(users UserSource, appts AppointmentSource) *Resolver {
	return &Resolver{users: users, appts: appts}
}

// ContactsFor returns the sorted, de-duplicated contact list for username,
// always excluding the user themselves:
//
//	doctor, nurse  all doctors and nurses
//	patient        doctors they have appointment history with, plus all nurses
//	admin          everyone
func (r *Resolver) ContactsFor(ctx context.Context, username string, role identity.Role) ([]string, error) {
	var (
		names []string
		err   error
	)
	switch role {
	case identity.RoleDoctor, identity.RoleNurse:
		names, err = r.users.UsernamesByRole(ctx, identity.RoleDoctor, identity.RoleNurse)
	case identity.RolePatient:
		var doctors, nurses []string
		doctors, err = r.appts.DoctorNamesForPatient(ctx, username)
		if err != nil {
			return nil, err
		}
		nurses, err = r.users.UsernamesByRole(ctx, identity.RoleNurse)
		names = append(doctors, nurses...)
	case identity.RoleAdmin:
		names, err = r.users.AllUsernames(ctx)
	default:
		return nil, fmt.Errorf("unknown role %q", role)
	}
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n == username || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	sort.Strings(out)
	return out, nil
}

// CanMessage reports whether from may send a direct message to to.
func (r *Resolver) CanMessage(ctx context.Context, from string, role identity.Role, to string) (bool, error) {
	contacts, err := r.ContactsFor(ctx, from, role)
	if err != nil {
		return false, err
	}
	for _, c := range contacts {
		if c == to {
			return true, nil
		}
	}
	return false, nil
}
