package prescription

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

var validStatuses = map[string]bool{
	StatusActive: true, StatusCompleted: true, StatusCancelled: true,
}

func ValidStatus(s string) bool { return validStatuses[s] }

// Medication is one line item of a prescription; the list is stored as jsonb.
type Medication struct {
	Name         string `json:"name"`
	Dosage       string `json:"dosage"`
	Frequency    string `json:"frequency,omitempty"`
	Duration     string `json:"duration,omitempty"`
	Instructions string `json:"instructions,omitempty"`
}

// Prescription maps to the prescriptions table. PatientName and DoctorName
// come from the read-side join.
type Prescription struct {
	ID               uuid.UUID         `db:"id" json:"id"`
	PatientID        uuid.UUID         `db:"patient_id" json:"patient_id"`
	DoctorID         uuid.UUID         `db:"doctor_id" json:"doctor_id"`
	AppointmentID    *uuid.UUID        `db:"appointment_id" json:"appointment_id,omitempty"`
	PatientName      string            `json:"patient_name,omitempty"`
	DoctorName       string            `json:"doctor_name,omitempty"`
	Diagnosis        string            `db:"diagnosis" json:"diagnosis"`
	Symptoms         *string           `db:"symptoms" json:"symptoms,omitempty"`
	Medications      []Medication      `db:"medications" json:"medications"`
	Vitals           map[string]string `db:"vitals" json:"vitals,omitempty"`
	RecommendedTests []string          `db:"recommended_tests" json:"recommended_tests,omitempty"`
	FollowUpDate     *time.Time        `db:"follow_up_date" json:"follow_up_date,omitempty"`
	Status           string            `db:"status" json:"status"`
	CreatedAt        time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time         `db:"updated_at" json:"updated_at"`
}

type Update struct {
	Diagnosis        *string           `json:"diagnosis"`
	Symptoms         *string           `json:"symptoms"`
	Medications      []Medication      `json:"medications"`
	Vitals           map[string]string `json:"vitals"`
	RecommendedTests []string          `json:"recommended_tests"`
	FollowUpDate     *time.Time        `json:"follow_up_date"`
	Status           *string           `json:"status"`
}

func (u *Update) Apply(target *Prescription) {
	if u.Diagnosis != nil {
		target.Diagnosis = *u.Diagnosis
	}
	if u.Symptoms != nil {
		target.Symptoms = u.Symptoms
	}
	if u.Medications != nil {
		target.Medications = u.Medications
	}
	if u.Vitals != nil {
		target.Vitals = u.Vitals
	}
	if u.RecommendedTests != nil {
		target.RecommendedTests = u.RecommendedTests
	}
	if u.FollowUpDate != nil {
		target.FollowUpDate = u.FollowUpDate
	}
	if u.Status != nil {
		target.Status = *u.Status
	}
}
