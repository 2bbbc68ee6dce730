package prescription

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/caresync/hms/internal/platform/notify"
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

// Visit is an appointment as the health summary presents it. The appointment
// domain supplies these through an adapter wired in main.
type Visit struct {
	ID         uuid.UUID `json:"id"`
	DoctorName string    `json:"doctor_name"`
	Date       time.Time `json:"appointment_date"`
	TimeSlot   string    `json:"time_slot"`
	Reason     string    `json:"reason"`
	Status     string    `json:"status"`
}

// VisitSource exposes the appointment history a patient summary needs.
type VisitSource interface {
	Recent(ctx context.Context, patientID uuid.UUID, limit int) ([]Visit, error)
	Counts(ctx context.Context, patientID uuid.UUID) (total, upcoming int, err error)
}

type Service struct {
	rx       Repository
	people   PersonDirectory
	visits   VisitSource
	notifier notify.Notifier
}

func NewService(rx Repository, people PersonDirectory, visits VisitSource, notifier notify.Notifier) *Service {
	return &Service{rx: rx, people: people, visits: visits, notifier: notifier}
}

type CreateInput struct {
	PatientID        uuid.UUID         `json:"patient_id"`
	DoctorID         uuid.UUID         `json:"doctor_id"`
	AppointmentID    *uuid.UUID        `json:"appointment_id"`
	Diagnosis        string            `json:"diagnosis"`
	Symptoms         *string           `json:"symptoms"`
	Medications      []Medication      `json:"medications"`
	Vitals           map[string]string `json:"vitals"`
	RecommendedTests []string          `json:"recommended_tests"`
	FollowUpDate     *time.Time        `json:"follow_up_date"`
}

// Create issues a prescription and notifies the patient. At least one
// medication with a name and dosage is required.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Prescription, error) {
	if in.PatientID == uuid.Nil || in.DoctorID == uuid.Nil {
		return nil, response.Validationf("patient_id and doctor_id are required")
	}
	if strings.TrimSpace(in.Diagnosis) == "" {
		return nil, response.Validationf("diagnosis is required")
	}
	if err := validateMedications(in.Medications); err != nil {
		return nil, err
	}

	patient, err := s.resolve(ctx, in.PatientID, "patient")
	if err != nil {
		return nil, err
	}
	doctor, err := s.resolve(ctx, in.DoctorID, "doctor")
	if err != nil {
		return nil, err
	}

	p := &Prescription{
		PatientID:        in.PatientID,
		DoctorID:         in.DoctorID,
		AppointmentID:    in.AppointmentID,
		Diagnosis:        strings.TrimSpace(in.Diagnosis),
		Symptoms:         in.Symptoms,
		Medications:      in.Medications,
		Vitals:           in.Vitals,
		RecommendedTests: in.RecommendedTests,
		FollowUpDate:     in.FollowUpDate,
		Status:           StatusActive,
	}
	if err := s.rx.Create(ctx, p); err != nil {
		return nil, response.Internalf(err)
	}

	p.PatientName = patient.Name
	p.DoctorName = doctor.Name

	s.notifier.Notify(ctx, notify.NewEvent(notify.TypePrescription,
		fmt.Sprintf("%s issued you a new prescription", doctor.Name), p),
		p.PatientID.String())

	return p, nil
}

func validateMedications(meds []Medication) error {
	if len(meds) == 0 {
		return response.Validationf("at least one medication is required")
	}
	for _, m := range meds {
		if strings.TrimSpace(m.Name) == "" || strings.TrimSpace(m.Dosage) == "" {
			return response.Validationf("every medication needs a name and dosage")
		}
	}
	return nil
}

func (s *Service) resolve(ctx context.Context, id uuid.UUID, role string) (*Person, error) {
	p, err := s.people.Lookup(ctx, id)
	if err != nil || p.Role != role {
		return nil, response.NotFoundf(role + " not found")
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	p, err := s.rx.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, response.NotFoundf("prescription not found")
		}
		return nil, response.Internalf(err)
	}
	return p, nil
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Prescription, int, error) {
	items, total, err := s.rx.ListByPatient(ctx, patientID, limit, offset)
	if err != nil {
		return nil, 0, response.Internalf(err)
	}
	return items, total, nil
}

func (s *Service) ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Prescription, int, error) {
	items, total, err := s.rx.ListByDoctor(ctx, doctorID, limit, offset)
	if err != nil {
		return nil, 0, response.Internalf(err)
	}
	return items, total, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, upd Update) (*Prescription, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	upd.Apply(p)
	if !ValidStatus(p.Status) {
		return nil, response.Validationf("invalid status: " + p.Status)
	}
	if err := validateMedications(p.Medications); err != nil {
		return nil, err
	}

	if err := s.rx.Update(ctx, p); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, response.NotFoundf("prescription not found")
		}
		return nil, response.Internalf(err)
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.rx.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return response.NotFoundf("prescription not found")
		}
		return response.Internalf(err)
	}
	return nil
}

const summaryWindow = 5

// HealthSummary is a read-side join over a patient's recent care. It is
// recomputed per request, never stored.
type HealthSummary struct {
	PatientID           uuid.UUID       `json:"patient_id"`
	PatientName         string          `json:"patient_name"`
	RecentPrescriptions []*Prescription `json:"recent_prescriptions"`
	RecentAppointments  []Visit         `json:"recent_appointments"`
	Counts              SummaryCounts   `json:"counts"`
}

type SummaryCounts struct {
	TotalPrescriptions   int `json:"total_prescriptions"`
	ActivePrescriptions  int `json:"active_prescriptions"`
	TotalAppointments    int `json:"total_appointments"`
	UpcomingAppointments int `json:"upcoming_appointments"`
}

func (s *Service) HealthSummary(ctx context.Context, patientID uuid.UUID) (*HealthSummary, error) {
	patient, err := s.resolve(ctx, patientID, "patient")
	if err != nil {
		return nil, err
	}

	rx, _, err := s.rx.ListByPatient(ctx, patientID, summaryWindow, 0)
	if err != nil {
		return nil, response.Internalf(err)
	}
	rxTotal, rxActive, err := s.rx.CountByPatient(ctx, patientID)
	if err != nil {
		return nil, response.Internalf(err)
	}
	visits, err := s.visits.Recent(ctx, patientID, summaryWindow)
	if err != nil {
		return nil, response.Internalf(err)
	}
	apptTotal, apptUpcoming, err := s.visits.Counts(ctx, patientID)
	if err != nil {
		return nil, response.Internalf(err)
	}

	return &HealthSummary{
		PatientID:           patientID,
		PatientName:         patient.Name,
		RecentPrescriptions: rx,
		RecentAppointments:  visits,
		Counts: SummaryCounts{
			TotalPrescriptions:   rxTotal,
			ActivePrescriptions:  rxActive,
			TotalAppointments:    apptTotal,
			UpcomingAppointments: apptUpcoming,
		},
	}, nil
}
