package main

import (
	"context"
	"reflect"
	"testing"

	"github.com/clinicdesk/clinic-server/internal/domain/directory"
	"github.com/clinicdesk/clinic-server/internal/domain/identity"
)

type stubUserSource struct {
	byRole map[identity.Role][]string
	all    []string
}

func (s *stubUserSource) UsernamesByRole(_ context.Context, roles ...identity.Role) ([]string, error) {
	var names []string
	for _, r := range roles {
		names = append(names, s.byRole[r]...)
	}
	return names, nil
}

func (s *stubUserSource) AllUsernames(_ context.Context) ([]string, error) {
	return s.all, nil
}

type stubAppointmentSource struct{}

func (stubAppointmentSource) DoctorNamesForPatient(_ context.Context, _ string) ([]string, error) {
	return nil, nil
}

func TestContactSourceAdapter_ParsesRole(t *testing.T) {
	resolver := directory.NewResolver(&stubUserSource{
		byRole: map[identity.Role][]string{
			identity.RoleDoctor: {"drwho"},
			identity.RoleNurse:  {"joy"},
		},
	}, stubAppointmentSource{})
	adapter := &contactSourceAdapter{resolver: resolver}

	got, err := adapter.ContactsFor(context.Background(), "joy", "nurse")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"drwho"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestContactSourceAdapter_RejectsUnknownRole(t *testing.T) {
	adapter := &contactSourceAdapter{resolver: directory.NewResolver(&stubUserSource{}, stubAppointmentSource{})}
	if _, err := adapter.ContactsFor(context.Background(), "x", "janitor"); err == nil {
		t.Fatal("expected error for unknown role")
	}
}
