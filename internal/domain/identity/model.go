package identity

import (
	"time"

	"github.com/google/uuid"
)

// Role is the clinic role attached to every account. Contact visibility and
// route guards branch on this type rather than raw strings.
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
	RoleNurse   Role = "nurse"
	RoleAdmin   Role = "admin"
)

// ParseRole maps a wire string to a Role. The second return is false for
// anything outside the known set.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RolePatient, RoleDoctor, RoleNurse, RoleAdmin:
		return Role(s), true
	}
	return "", false
}

// IsStaff reports whether the role belongs to the internal staff mesh.
func (r Role) IsStaff() bool {
	return r == RoleDoctor || r == RoleNurse
}

// User maps to the users table. The username is the stable public identity;
// the UUID only keys the row.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Role         Role      `db:"role" json:"role"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FullName     *string   `db:"full_name" json:"full_name,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
