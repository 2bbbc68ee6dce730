package labtest

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusOrdered   = "ordered"
	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
)

var validStatuses = map[string]bool{
	StatusOrdered: true, StatusScheduled: true, StatusCompleted: true,
}

func ValidStatus(s string) bool { return validStatuses[s] }

// LabTest maps to the lab_tests table.
type LabTest struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	PatientID     uuid.UUID  `db:"patient_id" json:"patient_id"`
	DoctorID      uuid.UUID  `db:"doctor_id" json:"doctor_id"`
	PatientName   string     `json:"patient_name,omitempty"`
	DoctorName    string     `json:"doctor_name,omitempty"`
	TestName      string     `db:"test_name" json:"test_name"`
	TestType      *string    `db:"test_type" json:"test_type,omitempty"`
	Status        string     `db:"status" json:"status"`
	ScheduledDate *time.Time `db:"scheduled_date" json:"scheduled_date,omitempty"`
	Cost          *float64   `db:"cost" json:"cost,omitempty"`
	Notes         *string    `db:"notes" json:"notes,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

type Update struct {
	TestName      *string    `json:"test_name"`
	TestType      *string    `json:"test_type"`
	Status        *string    `json:"status"`
	ScheduledDate *time.Time `json:"scheduled_date"`
	Cost          *float64   `json:"cost"`
	Notes         *string    `json:"notes"`
}

func (u *Update) Apply(target *LabTest) {
	if u.TestName != nil {
		target.TestName = *u.TestName
	}
	if u.TestType != nil {
		target.TestType = u.TestType
	}
	if u.Status != nil {
		target.Status = *u.Status
	}
	if u.ScheduledDate != nil {
		target.ScheduledDate = u.ScheduledDate
	}
	if u.Cost != nil {
		target.Cost = u.Cost
	}
	if u.Notes != nil {
		target.Notes = u.Notes
	}
}
