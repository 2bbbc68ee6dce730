package appointment

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

// Person is the slice of a user account this package needs: enough to verify
// the referenced party holds the expected role.
type Person struct {
	ID   uuid.UUID
	Name string
	Role string
}

// PersonDirectory resolves user IDs to people. The user domain provides the
// implementation; wiring happens in main.
type PersonDirectory interface {
	Lookup(ctx context.Context, id uuid.UUID) (*Person, error)
}

type Service struct {
	appts    Repository
	people   PersonDirectory
	notifier notify.Notifier
	now      func() time.Time
}

func NewService(appts Repository, people PersonDirectory, notifier notify.Notifier) *Service {
	return &Service{appts: appts, people: people, notifier: notifier, now: time.Now}
}

type CreateInput struct {
	PatientID       uuid.UUID `json:"patient_id"`
	DoctorID        uuid.UUID `json:"doctor_id"`
	AppointmentDate time.Time `json:"appointment_date"`
	TimeSlot        string    `json:"time_slot"`
	Reason          string    `json:"reason"`
	Type            string    `json:"appointment_type"`
	Notes           *string   `json:"notes"`
}

// Create books a slot. Party resolution happens first so a wrong or
// role-mismatched ID reads as not-found rather than leaking whether the
// account exists; the insert itself settles slot contention.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Appointment, error) {
	if in.PatientID == uuid.Nil || in.DoctorID == uuid.Nil {
		return nil, response.Validationf("patient_id and doctor_id are required")
	}
	if in.AppointmentDate.IsZero() {
		return nil, response.Validationf("appointment_date is required")
	}
	if strings.TrimSpace(in.TimeSlot) == "" {
		return nil, response.Validationf("time_slot is required")
	}
	if strings.TrimSpace(in.Reason) == "" {
		return nil, response.Validationf("reason is required")
	}
	if in.Type == "" {
		in.Type = TypeConsultation
	}
	if !ValidType(in.Type) {
		return nil, response.Validationf("invalid appointment type: " + in.Type)
	}

	patient, err := s.resolve(ctx, in.PatientID, "patient")
	if err != nil {
		return nil, err
	}
	doctor, err := s.resolve(ctx, in.DoctorID, "doctor")
	if err != nil {
		return nil, err
	}

	a := &Appointment{
		PatientID:       in.PatientID,
		DoctorID:        in.DoctorID,
		AppointmentDate: in.AppointmentDate,
		TimeSlot:        strings.TrimSpace(in.TimeSlot),
		Reason:          strings.TrimSpace(in.Reason),
		Status:          StatusScheduled,
		Type:            in.Type,
		Notes:           in.Notes,
	}
	if err := s.appts.Create(ctx, a); err != nil {
		if errors.Is(err, ErrSlotTaken) {
			return nil, response.Conflictf("Doctor is not available at this time slot")
		}
		return nil, response.Internalf(err)
	}

	a.PatientName = patient.Name
	a.DoctorName = doctor.Name

	date := a.AppointmentDate.Format("2006-01-02")
	s.notifier.Notify(ctx, notify.NewEvent(notify.TypeAppointment,
		fmt.Sprintf("New appointment: %s with %s on %s at %s",
			patient.Name, doctor.Name, date, a.TimeSlot), a),
		a.PatientID.String(), a.DoctorID.String())

	return a, nil
}

func (s *Service) resolve(ctx context.Context, id uuid.UUID, role string) (*Person, error) {
	p, err := s.people.Lookup(ctx, id)
	if err != nil || p.Role != role {
		return nil, response.NotFoundf(role + " not found")
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	a, err := s.appts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, response.NotFoundf("appointment not found")
		}
		return nil, response.Internalf(err)
	}
	a.Status = a.EffectiveStatus(s.now())
	return a, nil
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Appointment, int, error) {
	return s.project(s.appts.List(ctx, limit, offset))
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.project(s.appts.ListByPatient(ctx, patientID, limit, offset))
}

func (s *Service) ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.project(s.appts.ListByDoctor(ctx, doctorID, limit, offset))
}

// ListForUser serves the "my appointments" view from the token identity.
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID, role string, limit, offset int) ([]*Appointment, int, error) {
	switch role {
	case "doctor":
		return s.ListByDoctor(ctx, userID, limit, offset)
	case "patient":
		return s.ListByPatient(ctx, userID, limit, offset)
	default:
		return s.List(ctx, limit, offset)
	}
}

func (s *Service) project(items []*Appointment, total int, err error) ([]*Appointment, int, error) {
	if err != nil {
		return nil, 0, response.Internalf(err)
	}
	now := s.now()
	for _, a := range items {
		a.Status = a.EffectiveStatus(now)
	}
	return items, total, nil
}

// RemindDay notifies patient and doctor for every open booking on the given
// day. It returns how many reminders went out.
func (s *Service) RemindDay(ctx context.Context, date time.Time) (int, error) {
	items, err := s.appts.ListOpenByDate(ctx, date)
	if err != nil {
		return 0, response.Internalf(err)
	}
	for _, a := range items {
		s.notifier.Notify(ctx, notify.NewEvent(notify.TypeAppointment,
			fmt.Sprintf("Reminder: appointment between %s and %s today at %s",
				a.PatientName, a.DoctorName, a.TimeSlot), a),
			a.PatientID.String(), a.DoctorID.String())
	}
	return len(items), nil
}

// Stats reports booking counts for a patient.
func (s *Service) Stats(ctx context.Context, patientID uuid.UUID) (total, upcoming int, err error) {
	total, upcoming, err = s.appts.CountByPatient(ctx, patientID)
	if err != nil {
		return 0, 0, response.Internalf(err)
	}
	return total, upcoming, nil
}

// Update applies field changes. A moved booking re-checks slot availability;
// a status change notifies both parties.
func (s *Service) Update(ctx context.Context, id uuid.UUID, upd Update) (*Appointment, error) {
	a, err := s.appts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, response.NotFoundf("appointment not found")
		}
		return nil, response.Internalf(err)
	}

	prevStatus := a.Status
	upd.Apply(a)
	if !ValidStatus(a.Status) {
		return nil, response.Validationf("invalid status: " + a.Status)
	}
	if !ValidType(a.Type) {
		return nil, response.Validationf("invalid appointment type: " + a.Type)
	}
	if upd.DoctorID != nil {
		if _, err := s.resolve(ctx, *upd.DoctorID, "doctor"); err != nil {
			return nil, err
		}
	}

	if err := s.appts.Update(ctx, a); err != nil {
		switch {
		case errors.Is(err, ErrSlotTaken):
			return nil, response.Conflictf("Doctor is not available at this time slot")
		case errors.Is(err, ErrNotFound):
			return nil, response.NotFoundf("appointment not found")
		default:
			return nil, response.Internalf(err)
		}
	}

	if a.Status != prevStatus {
		s.notifier.Notify(ctx, notify.NewEvent(notify.TypeAppointmentUpdate,
			fmt.Sprintf("Appointment on %s at %s is now %s",
				a.AppointmentDate.Format("2006-01-02"), a.TimeSlot, a.Status), a),
			a.PatientID.String(), a.DoctorID.String())
	}

	a.Status = a.EffectiveStatus(s.now())
	return a, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.appts.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return response.NotFoundf("appointment not found")
		}
		return response.Internalf(err)
	}
	return nil
}
