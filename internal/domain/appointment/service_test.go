package appointment

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
	appts map[uuid.UUID]*Appointment
}

func newMockRepo() *mockRepo {
	return &mockRepo{appts: make(map[uuid.UUID]*Appointment)}
}

func (m *mockRepo) slotOpen(a *Appointment) bool {
	for _, other := range m.appts {
		if other.ID == a.ID {
			continue
		}
		if other.DoctorID == a.DoctorID &&
			startOfDay(other.AppointmentDate).Equal(startOfDay(a.AppointmentDate)) &&
			other.TimeSlot == a.TimeSlot &&
			(other.Status == StatusScheduled || other.Status == StatusConfirmed) {
			return false
		}
	}
	return true
}

func (m *mockRepo) Create(_ context.Context, a *Appointment) error {
	if !m.slotOpen(a) {
		return ErrSlotTaken
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.CreatedAt = time.Now()
	a.UpdatedAt = time.Now()
	stored := *a
	m.appts[a.ID] = &stored
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	a, ok := m.appts[id]
	if !ok {
		return nil, ErrNotFound
	}
	copy := *a
	return &copy, nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*Appointment, int, error) {
	var result []*Appointment
	for _, a := range m.appts {
		copy := *a
		result = append(result, &copy)
	}
	return result, len(result), nil
}

func (m *mockRepo) ListByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	var result []*Appointment
	for _, a := range m.appts {
		if a.PatientID == patientID {
			copy := *a
			result = append(result, &copy)
		}
	}
	return result, len(result), nil
}

func (m *mockRepo) ListByDoctor(_ context.Context, doctorID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	var result []*Appointment
	for _, a := range m.appts {
		if a.DoctorID == doctorID {
			copy := *a
			result = append(result, &copy)
		}
	}
	return result, len(result), nil
}

func (m *mockRepo) Update(_ context.Context, a *Appointment) error {
	if _, ok := m.appts[a.ID]; !ok {
		return ErrNotFound
	}
	if !m.slotOpen(a) {
		return ErrSlotTaken
	}
	stored := *a
	m.appts[a.ID] = &stored
	return nil
}

func (m *mockRepo) CountByPatient(_ context.Context, patientID uuid.UUID) (int, int, error) {
	total, upcoming := 0, 0
	today := startOfDay(time.Now())
	for _, a := range m.appts {
		if a.PatientID != patientID {
			continue
		}
		total++
		if (a.Status == StatusScheduled || a.Status == StatusConfirmed) && !a.AppointmentDate.Before(today) {
			upcoming++
		}
	}
	return total, upcoming, nil
}

func (m *mockRepo) ListOpenByDate(_ context.Context, date time.Time) ([]*Appointment, error) {
	var result []*Appointment
	for _, a := range m.appts {
		if a.AppointmentDate.Equal(date) && (a.Status == StatusScheduled || a.Status == StatusConfirmed) {
			copy := *a
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.appts[id]; !ok {
		return ErrNotFound
	}
	delete(m.appts, id)
	return nil
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
	otherPat  = uuid.New()
)

func newTestService() (*Service, *mockRepo, *recordingNotifier) {
	repo := newMockRepo()
	dir := &mockDirectory{people: map[uuid.UUID]*Person{
		patientID: {ID: patientID, Name: "Asha Rao", Role: "patient"},
		doctorID:  {ID: doctorID, Name: "Dr. Mehta", Role: "doctor"},
		otherPat:  {ID: otherPat, Name: "Ben Cole", Role: "patient"},
	}}
	notifier := &recordingNotifier{}
	return NewService(repo, dir, notifier), repo, notifier
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
		PatientID:       patientID,
		DoctorID:        doctorID,
		AppointmentDate: time.Now().AddDate(0, 0, 7),
		TimeSlot:        "09:30",
		Reason:          "annual checkup",
	}
}

// -- Tests --

func TestCreate(t *testing.T) {
	svc, _, notifier := newTestService()
	a, err := svc.Create(context.Background(), validInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Status != StatusScheduled {
		t.Errorf("expected scheduled, got %q", a.Status)
	}
	if a.Type != TypeConsultation {
		t.Errorf("expected default consultation type, got %q", a.Type)
	}
	if a.PatientName != "Asha Rao" || a.DoctorName != "Dr. Mehta" {
		t.Errorf("expected joined names, got %q / %q", a.PatientName, a.DoctorName)
	}

	if len(notifier.sent) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifier.sent))
	}
	n := notifier.sent[0]
	if n.event.Type != notify.TypeAppointment {
		t.Errorf("unexpected event type %q", n.event.Type)
	}
	if len(n.targets) != 2 || n.targets[0] != patientID.String() || n.targets[1] != doctorID.String() {
		t.Errorf("expected patient and doctor targets, got %v", n.targets)
	}
}

func TestCreate_SlotConflict(t *testing.T) {
	svc, _, _ := newTestService()
	if _, err := svc.Create(context.Background(), validInput()); err != nil {
		t.Fatalf("first booking: %v", err)
	}

	// Same doctor, date, and slot for a different patient.
	in := validInput()
	in.PatientID = otherPat
	_, err := svc.Create(context.Background(), in)
	if kindOf(t, err) != response.KindConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
	if err.Error() != "Doctor is not available at this time slot" {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestCreate_DifferentSlotSameDoctor(t *testing.T) {
	svc, _, _ := newTestService()
	if _, err := svc.Create(context.Background(), validInput()); err != nil {
		t.Fatalf("first booking: %v", err)
	}
	in := validInput()
	in.PatientID = otherPat
	in.TimeSlot = "10:00"
	if _, err := svc.Create(context.Background(), in); err != nil {
		t.Errorf("different slot should book: %v", err)
	}
}

func TestCreate_RoleMismatch(t *testing.T) {
	svc, _, _ := newTestService()

	// Doctor ID placed in the patient position.
	in := validInput()
	in.PatientID = doctorID
	_, err := svc.Create(context.Background(), in)
	if kindOf(t, err) != response.KindNotFound {
		t.Errorf("expected not found for role mismatch, got %v", err)
	}

	// Patient ID placed in the doctor position.
	in = validInput()
	in.DoctorID = otherPat
	_, err = svc.Create(context.Background(), in)
	if kindOf(t, err) != response.KindNotFound {
		t.Errorf("expected not found for role mismatch, got %v", err)
	}
}

func TestCreate_UnknownParty(t *testing.T) {
	svc, _, _ := newTestService()
	in := validInput()
	in.DoctorID = uuid.New()
	_, err := svc.Create(context.Background(), in)
	if kindOf(t, err) != response.KindNotFound {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestCreate_MissingFields(t *testing.T) {
	svc, _, _ := newTestService()
	cases := []struct {
		name   string
		mutate func(*CreateInput)
	}{
		{"no patient", func(in *CreateInput) { in.PatientID = uuid.Nil }},
		{"no slot", func(in *CreateInput) { in.TimeSlot = " " }},
		{"no reason", func(in *CreateInput) { in.Reason = "" }},
		{"no date", func(in *CreateInput) { in.AppointmentDate = time.Time{} }},
		{"bad type", func(in *CreateInput) { in.Type = "walk-in" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)
			_, err := svc.Create(context.Background(), in)
			if kindOf(t, err) != response.KindValidation {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestExpiredProjection(t *testing.T) {
	svc, repo, _ := newTestService()
	in := validInput()
	in.AppointmentDate = time.Now().AddDate(0, 0, -3)
	a, err := svc.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := svc.Get(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != StatusExpired {
		t.Errorf("expected expired projection, got %q", got.Status)
	}

	// The stored row keeps its real status.
	if repo.appts[a.ID].Status != StatusScheduled {
		t.Errorf("projection leaked into storage: %q", repo.appts[a.ID].Status)
	}

	items, _, err := svc.ListByPatient(context.Background(), patientID, 20, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 || items[0].Status != StatusExpired {
		t.Errorf("expected expired in listing, got %+v", items)
	}
}

func TestExpiredProjection_NotForCompleted(t *testing.T) {
	svc, repo, _ := newTestService()
	in := validInput()
	in.AppointmentDate = time.Now().AddDate(0, 0, -3)
	a, _ := svc.Create(context.Background(), in)
	repo.appts[a.ID].Status = StatusCompleted

	got, err := svc.Get(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != StatusCompleted {
		t.Errorf("completed must not project to expired, got %q", got.Status)
	}
}

func TestUpdate_StatusChangeNotifies(t *testing.T) {
	svc, _, notifier := newTestService()
	a, _ := svc.Create(context.Background(), validInput())
	notifier.sent = nil

	status := StatusConfirmed
	updated, err := svc.Update(context.Background(), a.ID, Update{Status: &status})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != StatusConfirmed {
		t.Errorf("expected confirmed, got %q", updated.Status)
	}
	if len(notifier.sent) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifier.sent))
	}
	if notifier.sent[0].event.Type != notify.TypeAppointmentUpdate {
		t.Errorf("unexpected event type %q", notifier.sent[0].event.Type)
	}
}

func TestUpdate_NoStatusChangeNoNotification(t *testing.T) {
	svc, _, notifier := newTestService()
	a, _ := svc.Create(context.Background(), validInput())
	notifier.sent = nil

	notes := "bring previous reports"
	if _, err := svc.Update(context.Background(), a.ID, Update{Notes: &notes}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(notifier.sent) != 0 {
		t.Errorf("notes-only update should not notify, got %d", len(notifier.sent))
	}
}

func TestUpdate_MoveToTakenSlot(t *testing.T) {
	svc, _, _ := newTestService()
	first, _ := svc.Create(context.Background(), validInput())
	_ = first

	in := validInput()
	in.PatientID = otherPat
	in.TimeSlot = "10:00"
	second, err := svc.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("second booking: %v", err)
	}

	slot := "09:30"
	_, err = svc.Update(context.Background(), second.ID, Update{TimeSlot: &slot})
	if kindOf(t, err) != response.KindConflict {
		t.Errorf("expected conflict on move to taken slot, got %v", err)
	}
}

func TestUpdate_InvalidStatus(t *testing.T) {
	svc, _, _ := newTestService()
	a, _ := svc.Create(context.Background(), validInput())
	status := "expired"
	_, err := svc.Update(context.Background(), a.ID, Update{Status: &status})
	if kindOf(t, err) != response.KindValidation {
		t.Errorf("expired must not be storable, got %v", err)
	}
}

func TestDelete_NotFound(t *testing.T) {
	svc, _, _ := newTestService()
	err := svc.Delete(context.Background(), uuid.New())
	if kindOf(t, err) != response.KindNotFound {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestRemindDay(t *testing.T) {
	svc, _, notifier := newTestService()
	in := validInput()
	a, err := svc.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	notifier.sent = nil

	count, err := svc.RemindDay(context.Background(), a.AppointmentDate)
	if err != nil {
		t.Fatalf("remind: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 reminder, got %d", count)
	}
	n := notifier.sent[0]
	if len(n.targets) != 2 || n.targets[0] != patientID.String() || n.targets[1] != doctorID.String() {
		t.Errorf("reminder should target patient and doctor, got %v", n.targets)
	}
}

func TestListForUser(t *testing.T) {
	svc, _, _ := newTestService()
	svc.Create(context.Background(), validInput())
	in := validInput()
	in.PatientID = otherPat
	in.TimeSlot = "11:00"
	svc.Create(context.Background(), in)

	items, total, err := svc.ListForUser(context.Background(), patientID, "patient", 20, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || items[0].PatientID != patientID {
		t.Errorf("patient view leaked other bookings: total=%d", total)
	}

	_, total, err = svc.ListForUser(context.Background(), doctorID, "doctor", 20, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 {
		t.Errorf("doctor should see both bookings, got %d", total)
	}
}
