package appointment

import (
	"time"

	"github.com/google/uuid"
)

// Stored appointment statuses. StatusExpired is never written to the
// database; it exists only as a read-time projection.
const (
	StatusScheduled = "scheduled"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusExpired   = "expired"
)

const (
	TypeConsultation = "consultation"
	TypeFollowUp     = "follow-up"
	TypeEmergency    = "emergency"
)

var validStatuses = map[string]bool{
	StatusScheduled: true, StatusConfirmed: true,
	StatusCompleted: true, StatusCancelled: true,
}

var validTypes = map[string]bool{
	TypeConsultation: true, TypeFollowUp: true, TypeEmergency: true,
}

// ValidStatus reports whether the status is one a client may store.
func ValidStatus(s string) bool { return validStatuses[s] }

func ValidType(t string) bool { return validTypes[t] }

// Appointment maps to the appointments table. PatientName and DoctorName are
// filled by the read-side join and are never written back.
type Appointment struct {
	ID              uuid.UUID `db:"id" json:"id"`
	PatientID       uuid.UUID `db:"patient_id" json:"patient_id"`
	DoctorID        uuid.UUID `db:"doctor_id" json:"doctor_id"`
	PatientName     string    `json:"patient_name,omitempty"`
	DoctorName      string    `json:"doctor_name,omitempty"`
	AppointmentDate time.Time `db:"appointment_date" json:"appointment_date"`
	TimeSlot        string    `db:"time_slot" json:"time_slot"`
	Reason          string    `db:"reason" json:"reason"`
	Status          string    `db:"status" json:"status"`
	Type            string    `db:"appointment_type" json:"appointment_type"`
	Notes           *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// EffectiveStatus projects the status a reader should see at the given
// instant: a scheduled appointment whose date has passed reads as expired.
// The stored row is never mutated.
func (a *Appointment) EffectiveStatus(now time.Time) string {
	if a.Status == StatusScheduled && a.AppointmentDate.Before(startOfDay(now)) {
		return StatusExpired
	}
	return a.Status
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Update carries the mutable appointment fields. Patient identity is fixed;
// moving an appointment to another doctor, date, or slot re-checks slot
// availability on write.
type Update struct {
	DoctorID        *uuid.UUID `json:"doctor_id"`
	AppointmentDate *time.Time `json:"appointment_date"`
	TimeSlot        *string    `json:"time_slot"`
	Reason          *string    `json:"reason"`
	Status          *string    `json:"status"`
	Type            *string    `json:"appointment_type"`
	Notes           *string    `json:"notes"`
}

// Apply overlays the update onto an existing appointment.
func (u *Update) Apply(target *Appointment) {
	if u.DoctorID != nil {
		target.DoctorID = *u.DoctorID
	}
	if u.AppointmentDate != nil {
		target.AppointmentDate = *u.AppointmentDate
	}
	if u.TimeSlot != nil {
		target.TimeSlot = *u.TimeSlot
	}
	if u.Reason != nil {
		target.Reason = *u.Reason
	}
	if u.Status != nil {
		target.Status = *u.Status
	}
	if u.Type != nil {
		target.Type = *u.Type
	}
	if u.Notes != nil {
		target.Notes = u.Notes
	}
}
