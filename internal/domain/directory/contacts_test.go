package directory

import (
	"context"
	"fmt"
	"reflect"
	"testing"

	"github.com/clinicdesk/clinic-server/internal/domain/identity"
)

type mockUserSource struct {
	byRole map[identity.Role][]string
	all    []string
	err    error
}

func (m *mockUserSource) UsernamesByRole(_ context.Context, roles ...identity.Role) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	var names []string
	for _, r := range roles {
		names = append(names, m.byRole[r]...)
	}
	return names, nil
}

func (m *mockUserSource) AllUsernames(_ context.Context) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.all, nil
}

type mockAppointmentSource struct {
	doctorsByPatient map[string][]string
}

func (m *mockAppointmentSource) DoctorNamesForPatient(_ context.Context, patientName string) ([]string, error) {
	return m.doctorsByPatient[patientName], nil
}

func newTestResolver() *Resolver {
	users := &mockUserSource{
		byRole: map[identity.Role][]string{
			identity.RoleDoctor: {"drwho", "strange"},
			identity.RoleNurse:  {"joy", "ratched"},
		},
		all: []string{"alice", "bob", "drwho", "strange", "joy", "ratched", "root"},
	}
	appts := &mockAppointmentSource{
		doctorsByPatient: map[string][]string{
			"alice": {"strange"},
		},
	}
	return NewResolver(users, appts)
}

func TestContactsFor_DoctorSeesStaffExcludingSelf(t *testing.T) {
	r := newTestResolver()
	got, err := r.ContactsFor(context.Background(), "drwho", identity.RoleDoctor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"joy", "ratched", "strange"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestContactsFor_NurseSeesStaffExcludingSelf(t *testing.T) {
	r := newTestResolver()
	got, err := r.ContactsFor(context.Background(), "joy", identity.RoleNurse)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"drwho", "ratched", "strange"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestContactsFor_PatientSeesOwnDoctorsAndAllNurses(t *testing.T) {
	r := newTestResolver()
	got, err := r.ContactsFor(context.Background(), "alice", identity.RolePatient)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// strange has treated alice; drwho has not and stays invisible.
	want := []string{"joy", "ratched", "strange"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestContactsFor_PatientWithNoHistorySeesOnlyNurses(t *testing.T) {
	r := newTestResolver()
	got, err := r.ContactsFor(context.Background(), "bob", identity.RolePatient)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"joy", "ratched"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestContactsFor_AdminSeesEveryoneButSelf(t *testing.T) {
	r := newTestResolver()
	got, err := r.ContactsFor(context.Background(), "root", identity.RoleAdmin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"alice", "bob", "drwho", "joy", "ratched", "strange"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestContactsFor_UnknownRole(t *testing.T) {
	r := newTestResolver()
	if _, err := r.ContactsFor(context.Background(), "x", identity.Role("janitor")); err == nil {
		t.Fatal("expected error for unknown role")
	}
}

func TestContactsFor_SourceErrorPropagates(t *testing.T) {
	users := &mockUserSource{err: fmt.Errorf("db down")}
	r := NewResolver(users, &mockAppointmentSource{})
	if _, err := r.ContactsFor(context.Background(), "drwho", identity.RoleDoctor); err == nil {
		t.Fatal("expected source error to propagate")
	}
}

func TestCanMessage(t *testing.T) {
	r := newTestResolver()
	ok, err := r.CanMessage(context.Background(), "alice", identity.RolePatient, "strange")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("alice should reach her own doctor")
	}

	ok, err = r.CanMessage(context.Background(), "alice", identity.RolePatient, "drwho")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("alice should not reach a doctor she has no history with")
	}
}
