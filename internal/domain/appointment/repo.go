package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("appointment not found")

	// ErrSlotTaken surfaces the unique-index rejection of a second open
	// booking for the same (doctor, date, slot).
	ErrSlotTaken = errors.New("slot already booked")
)

type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	List(ctx context.Context, limit, offset int) ([]*Appointment, int, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Appointment, int, error)
	Update(ctx context.Context, a *Appointment) error
	Delete(ctx context.Context, id uuid.UUID) error

	// CountByPatient returns the patient's total bookings and how many are
	// still open and dated today or later.
	CountByPatient(ctx context.Context, patientID uuid.UUID) (total, upcoming int, err error)

	// ListOpenByDate returns every scheduled or confirmed booking on the
	// given day. Used by the reminder job.
	ListOpenByDate(ctx context.Context, date time.Time) ([]*Appointment, error)
}
