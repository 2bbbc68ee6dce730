package labtest

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/caresync/hms/pkg/response"
)

// Person is the slice of a user account this package needs for role checks.
type Person struct {
	ID   uuid.UUID
	Name string
	Role string
}

type PersonDirectory interface {
	Lookup(ctx context.Context, id uuid.UUID) (*Person, error)
}

type Service struct {
	tests  Repository
	people PersonDirectory
}

func NewService(tests Repository, people PersonDirectory) *Service {
	return &Service{tests: tests, people: people}
}

type BookInput struct {
	PatientID     uuid.UUID  `json:"patient_id"`
	DoctorID      uuid.UUID  `json:"doctor_id"`
	TestName      string     `json:"test_name"`
	TestType      *string    `json:"test_type"`
	ScheduledDate *time.Time `json:"scheduled_date"`
	Cost          *float64   `json:"cost"`
	Notes         *string    `json:"notes"`
}

// Book orders a lab test. A scheduled date moves it straight to scheduled.
func (s *Service) Book(ctx context.Context, in BookInput) (*LabTest, error) {
	if in.PatientID == uuid.Nil || in.DoctorID == uuid.Nil {
		return nil, response.Validationf("patient_id and doctor_id are required")
	}
	if strings.TrimSpace(in.TestName) == "" {
		return nil, response.Validationf("test_name is required")
	}

	patient, err := s.resolve(ctx, in.PatientID, "patient")
	if err != nil {
		return nil, err
	}
	doctor, err := s.resolve(ctx, in.DoctorID, "doctor")
	if err != nil {
		return nil, err
	}

	lt := &LabTest{
		PatientID:     in.PatientID,
		DoctorID:      in.DoctorID,
		TestName:      strings.TrimSpace(in.TestName),
		TestType:      in.TestType,
		Status:        StatusOrdered,
		ScheduledDate: in.ScheduledDate,
		Cost:          in.Cost,
		Notes:         in.Notes,
	}
	if in.ScheduledDate != nil {
		lt.Status = StatusScheduled
	}
	if err := s.tests.Create(ctx, lt); err != nil {
		return nil, response.Internalf(err)
	}

	lt.PatientName = patient.Name
	lt.DoctorName = doctor.Name
	return lt, nil
}

func (s *Service) resolve(ctx context.Context, id uuid.UUID, role string) (*Person, error) {
	p, err := s.people.Lookup(ctx, id)
	if err != nil || p.Role != role {
		return nil, response.NotFoundf(role + " not found")
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*LabTest, error) {
	lt, err := s.tests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, response.NotFoundf("lab test not found")
		}
		return nil, response.Internalf(err)
	}
	return lt, nil
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*LabTest, int, error) {
	items, total, err := s.tests.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, response.Internalf(err)
	}
	return items, total, nil
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*LabTest, int, error) {
	items, total, err := s.tests.ListByPatient(ctx, patientID, limit, offset)
	if err != nil {
		return nil, 0, response.Internalf(err)
	}
	return items, total, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, upd Update) (*LabTest, error) {
	lt, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	upd.Apply(lt)
	if !ValidStatus(lt.Status) {
		return nil, response.Validationf("invalid status: " + lt.Status)
	}
	if strings.TrimSpace(lt.TestName) == "" {
		return nil, response.Validationf("test_name cannot be empty")
	}

	if err := s.tests.Update(ctx, lt); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, response.NotFoundf("lab test not found")
		}
		return nil, response.Internalf(err)
	}
	return lt, nil
}
