package scheduling

import (
	"time"

	"github.com/google/uuid"
)

// Status is the appointment lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusScheduled Status = "scheduled"
	StatusAccepted  Status = "accepted"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusDeclined  Status = "declined"
)

var validStatuses = map[Status]bool{
	StatusPending: true, StatusScheduled: true, StatusAccepted: true,
	StatusCompleted: true, StatusCancelled: true, StatusDeclined: true,
}

// ParseStatus maps a wire string to a Status.
func ParseStatus(s string) (Status, bool) {
	if validStatuses[Status(s)] {
		return Status(s), true
	}
	return "", false
}

// BlocksCalendar reports whether an appointment in this status occupies the
// doctor's calendar for conflict purposes. Cancelled and declined slots are
// free to rebook.
func (s Status) BlocksCalendar() bool {
	return s != StatusCancelled && s != StatusDeclined
}

// Appointment maps to the appointments table. DoctorName is empty while the
// appointment is unassigned. Time holds the canonical minute-resolution
// string; never compare it without going through EpochMinutes.
type Appointment struct {
	ID            uuid.UUID `db:"id" json:"id"`
	PatientName   string    `db:"patient_name" json:"patient_name"`
	DoctorName    string    `db:"doctor_name" json:"doctor_name,omitempty"`
	Time          string    `db:"time" json:"time"`
	Status        Status    `db:"status" json:"status"`
	Reason        *string   `db:"reason" json:"reason,omitempty"`
	DeclineReason *string   `db:"decline_reason" json:"decline_reason,omitempty"`
	CancelReason  *string   `db:"cancel_reason" json:"cancel_reason,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}
