package user

import (
	"time"

	"github.com/google/uuid"
)

// Roles a user account can hold. Role is fixed at registration; update paths
// never touch it.
const (
	RolePatient = "patient"
	RoleDoctor  = "doctor"
	RoleAdmin   = "admin"
	RoleStaff   = "staff"
)

var validRoles = map[string]bool{
	RolePatient: true, RoleDoctor: true, RoleAdmin: true, RoleStaff: true,
}

// ValidRole reports whether the role discriminator is one of the known roles.
func ValidRole(role string) bool { return validRoles[role] }

// User maps to the users table. PasswordHash is never serialized; every read
// path returns User values produced by scans that include it, so the json
// tag is the single redaction point.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	Phone        *string   `db:"phone" json:"phone,omitempty"`
	Gender       *string   `db:"gender" json:"gender,omitempty"`
	DateOfBirth  *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`

	// Doctor attributes.
	Specialization  *string `db:"specialization" json:"specialization,omitempty"`
	LicenseNumber   *string `db:"license_number" json:"license_number,omitempty"`
	ExperienceYears *int    `db:"experience_years" json:"experience_years,omitempty"`

	// Patient attributes.
	BloodGroup       *string  `db:"blood_group" json:"blood_group,omitempty"`
	EmergencyContact *string  `db:"emergency_contact" json:"emergency_contact,omitempty"`
	Allergies        []string `db:"allergies" json:"allergies,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Update carries the mutable user fields. Identity, role, email, and
// credentials are deliberately absent; handlers cannot smuggle them in.
type Update struct {
	Name             *string    `json:"name"`
	Phone            *string    `json:"phone"`
	Gender           *string    `json:"gender"`
	DateOfBirth      *time.Time `json:"date_of_birth"`
	Specialization   *string    `json:"specialization"`
	LicenseNumber    *string    `json:"license_number"`
	ExperienceYears  *int       `json:"experience_years"`
	BloodGroup       *string    `json:"blood_group"`
	EmergencyContact *string    `json:"emergency_contact"`
	Allergies        []string   `json:"allergies"`
}

// Apply overlays the update onto an existing user.
func (u *Update) Apply(target *User) {
	if u.Name != nil {
		target.Name = *u.Name
	}
	if u.Phone != nil {
		target.Phone = u.Phone
	}
	if u.Gender != nil {
		target.Gender = u.Gender
	}
	if u.DateOfBirth != nil {
		target.DateOfBirth = u.DateOfBirth
	}
	if u.Specialization != nil {
		target.Specialization = u.Specialization
	}
	if u.LicenseNumber != nil {
		target.LicenseNumber = u.LicenseNumber
	}
	if u.ExperienceYears != nil {
		target.ExperienceYears = u.ExperienceYears
	}
	if u.BloodGroup != nil {
		target.BloodGroup = u.BloodGroup
	}
	if u.EmergencyContact != nil {
		target.EmergencyContact = u.EmergencyContact
	}
	if u.Allergies != nil {
		target.Allergies = u.Allergies
	}
}
