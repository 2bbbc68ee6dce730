package prescription

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/caresync/hms/internal/platform/notify"
	"github.com/caresync/hms/pkg/response"
)

// -- Mocks --

type mockRepo struct {
	rx map[uuid.UUID]*Prescription
}

func newMockRepo() *mockRepo {
	return &mockRepo{rx: make(map[uuid.UUID]*Prescription)}
}

func (m *mockRepo) Create(_ context.Context, p *Prescription) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = time.Now()
	p.UpdatedAt = time.Now()
	stored := *p
	m.rx[p.ID] = &stored
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Prescription, error) {
	p, ok := m.rx[id]
	if !ok {
		return nil, ErrNotFound
	}
	copy := *p
	return &copy, nil
}

func (m *mockRepo) ListByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]*Prescription, int, error) {
	var result []*Prescription
	for _, p := range m.rx {
		if p.PatientID == patientID {
			copy := *p
			result = append(result, &copy)
		}
	}
	total := len(result)
	if len(result) > limit {
		result = result[:limit]
	}
	return result, total, nil
}

func (m *mockRepo) ListByDoctor(_ context.Context, doctorID uuid.UUID, limit, offset int) ([]*Prescription, int, error) {
	var result []*Prescription
	for _, p := range m.rx {
		if p.DoctorID == doctorID {
			copy := *p
			result = append(result, &copy)
		}
	}
	return result, len(result), nil
}

func (m *mockRepo) Update(_ context.Context, p *Prescription) error {
	if _, ok := m.rx[p.ID]; !ok {
		return ErrNotFound
	}
	stored := *p
	m.rx[p.ID] = &stored
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.rx[id]; !ok {
		return ErrNotFound
	}
	delete(m.rx, id)
	return nil
}

func (m *mockRepo) CountByPatient(_ context.Context, patientID uuid.UUID) (int, int, error) {
	total, active := 0, 0
	for _, p := range m.rx {
		if p.PatientID != patientID {
			continue
		}
		total++
		if p.Status == StatusActive {
			active++
		}
	}
	return total, active, nil
}

type mockDirectory struct {
	people map[uuid.UUID]*Person
}

func (m *mockDirectory) Lookup(_ context.Context, id uuid.UUID) (*Person, error) {
	p, ok := m.people[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

type mockVisits struct {
	visits   []Visit
	total    int
	upcoming int
}

func (m *mockVisits) Recent(_ context.Context, _ uuid.UUID, limit int) ([]Visit, error) {
	if len(m.visits) > limit {
		return m.visits[:limit], nil
	}
	return m.visits, nil
}

func (m *mockVisits) Counts(_ context.Context, _ uuid.UUID) (int, int, error) {
	return m.total, m.upcoming, nil
}

type recordedNotification struct {
	event   notify.Event
	targets []string
}

type recordingNotifier struct {
	sent []recordedNotification
}

func (n *recordingNotifier) Notify(_ context.Context, event notify.Event, targets ...string) {
	n.sent = append(n.sent, recordedNotification{event: event, targets: targets})
}

// -- Fixtures --

var (
	patientID = uuid.New()
	doctorID  = uuid.New()
)

func newTestService() (*Service, *mockVisits, *recordingNotifier) {
	repo := newMockRepo()
	dir := &mockDirectory{people: map[uuid.UUID]*Person{
		patientID: {ID: patientID, Name: "Asha Rao", Role: "patient"},
		doctorID:  {ID: doctorID, Name: "Dr. Mehta", Role: "doctor"},
	}}
	visits := &mockVisits{}
	notifier := &recordingNotifier{}
	return NewService(repo, dir, visits, notifier), visits, notifier
}

func kindOf(t *testing.T, err error) response.Kind {
	t.Helper()
	apiErr, ok := err.(*response.Error)
	if !ok {
		t.Fatalf("expected *response.Error, got %T: %v", err, err)
	}
	return apiErr.Kind
}

func validInput() CreateInput {
	return CreateInput{
		PatientID: patientID,
		DoctorID:  doctorID,
		Diagnosis: "seasonal flu",
		Medications: []Medication{
			{Name: "Paracetamol", Dosage: "500mg", Frequency: "3x daily", Duration: "5 days"},
		},
	}
}

// -- Tests --

func TestCreate(t *testing.T) {
	svc, _, notifier := newTestService()
	p, err := svc.Create(context.Background(), validInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Status != StatusActive {
		t.Errorf("expected active, got %q", p.Status)
	}
	if p.PatientName != "Asha Rao" || p.DoctorName != "Dr. Mehta" {
		t.Errorf("expected joined names, got %q / %q", p.PatientName, p.DoctorName)
	}

	if len(notifier.sent) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifier.sent))
	}
	n := notifier.sent[0]
	if n.event.Type != notify.TypePrescription {
		t.Errorf("unexpected event type %q", n.event.Type)
	}
	if len(n.targets) != 1 || n.targets[0] != patientID.String() {
		t.Errorf("expected patient-only target, got %v", n.targets)
	}
}

func TestCreate_NoMedications(t *testing.T) {
	svc, _, _ := newTestService()
	in := validInput()
	in.Medications = nil
	_, err := svc.Create(context.Background(), in)
	if kindOf(t, err) != response.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err.Error() != "at least one medication is required" {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestCreate_MedicationMissingDosage(t *testing.T) {
	svc, _, _ := newTestService()
	in := validInput()
	in.Medications = []Medication{{Name: "Paracetamol", Dosage: " "}}
	_, err := svc.Create(context.Background(), in)
	if kindOf(t, err) != response.KindValidation {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestCreate_RoleMismatch(t *testing.T) {
	svc, _, _ := newTestService()
	in := validInput()
	in.PatientID, in.DoctorID = in.DoctorID, in.PatientID
	_, err := svc.Create(context.Background(), in)
	if kindOf(t, err) != response.KindNotFound {
		t.Errorf("expected not found for role mismatch, got %v", err)
	}
}

func TestCreate_MissingDiagnosis(t *testing.T) {
	svc, _, _ := newTestService()
	in := validInput()
	in.Diagnosis = "  "
	_, err := svc.Create(context.Background(), in)
	if kindOf(t, err) != response.KindValidation {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestUpdate_Status(t *testing.T) {
	svc, _, _ := newTestService()
	p, _ := svc.Create(context.Background(), validInput())

	status := StatusCompleted
	updated, err := svc.Update(context.Background(), p.ID, Update{Status: &status})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != StatusCompleted {
		t.Errorf("expected completed, got %q", updated.Status)
	}
}

func TestUpdate_CannotDropAllMedications(t *testing.T) {
	svc, _, _ := newTestService()
	p, _ := svc.Create(context.Background(), validInput())

	_, err := svc.Update(context.Background(), p.ID, Update{Medications: []Medication{}})
	if kindOf(t, err) != response.KindValidation {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestUpdate_InvalidStatus(t *testing.T) {
	svc, _, _ := newTestService()
	p, _ := svc.Create(context.Background(), validInput())
	status := "archived"
	_, err := svc.Update(context.Background(), p.ID, Update{Status: &status})
	if kindOf(t, err) != response.KindValidation {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestDelete_NotFound(t *testing.T) {
	svc, _, _ := newTestService()
	err := svc.Delete(context.Background(), uuid.New())
	if kindOf(t, err) != response.KindNotFound {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestHealthSummary(t *testing.T) {
	svc, visits, _ := newTestService()

	// Six active prescriptions; the summary window keeps five.
	for i := 0; i < 6; i++ {
		if _, err := svc.Create(context.Background(), validInput()); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	visits.visits = []Visit{
		{ID: uuid.New(), DoctorName: "Dr. Mehta", TimeSlot: "09:30", Status: "completed"},
	}
	visits.total = 4
	visits.upcoming = 2

	summary, err := svc.HealthSummary(context.Background(), patientID)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.PatientName != "Asha Rao" {
		t.Errorf("unexpected patient name %q", summary.PatientName)
	}
	if len(summary.RecentPrescriptions) != 5 {
		t.Errorf("expected 5 recent prescriptions, got %d", len(summary.RecentPrescriptions))
	}
	if summary.Counts.TotalPrescriptions != 6 || summary.Counts.ActivePrescriptions != 6 {
		t.Errorf("unexpected prescription counts: %+v", summary.Counts)
	}
	if summary.Counts.TotalAppointments != 4 || summary.Counts.UpcomingAppointments != 2 {
		t.Errorf("unexpected appointment counts: %+v", summary.Counts)
	}
	if len(summary.RecentAppointments) != 1 {
		t.Errorf("expected 1 recent appointment, got %d", len(summary.RecentAppointments))
	}
}

func TestHealthSummary_NotAPatient(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.HealthSummary(context.Background(), doctorID)
	if kindOf(t, err) != response.KindNotFound {
		t.Errorf("expected not found, got %v", err)
	}
}
