package notify

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/rs/zerolog"

	"github.com/caresync/hms/internal/platform/ws"
)

func testLogger() zerolog.Logger {
	return zerolog.New(os.Stderr).Level(zerolog.Disabled)
}

func addSession(d *ws.Directory, userID, role string) *ws.Session {
	s := &ws.Session{ID: userID + "-s", UserID: userID, Role: role, Send: make(chan []byte, 4)}
	d.Add(s)
	return s
}

func TestLocalNotifier_DeliversToTargetAndAdmins(t *testing.T) {
	dir := ws.NewDirectory()
	patient := addSession(dir, "p1", "patient")
	admin := addSession(dir, "a1", "admin")
	addSession(dir, "other", "patient")

	n := NewLocalNotifier(dir, testLogger())
	n.Notify(context.Background(), NewEvent(TypeAppointment, "booked", nil), "p1")

	var got Event
	if err := json.Unmarshal(<-patient.Send, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Type != TypeAppointment || got.Message != "booked" {
		t.Errorf("unexpected event: %+v", got)
	}
	if got.Timestamp.IsZero() {
		t.Error("expected timestamp to be set")
	}

	select {
	case <-admin.Send:
	default:
		t.Error("expected admin to receive broadcast")
	}
}

func TestLocalNotifier_DisconnectedTargetIsSilent(t *testing.T) {
	dir := ws.NewDirectory()
	n := NewLocalNotifier(dir, testLogger())
	// Must not panic or block.
	n.Notify(context.Background(), NewEvent(TypePrescription, "issued", nil), "nobody")
}

func TestLocalNotifier_DedupesTargets(t *testing.T) {
	dir := ws.NewDirectory()
	patient := addSession(dir, "p1", "patient")

	n := NewLocalNotifier(dir, testLogger())
	n.Notify(context.Background(), NewEvent(TypeAppointmentUpdate, "updated", nil), "p1", "p1")

	<-patient.Send
	select {
	case <-patient.Send:
		t.Error("expected a single delivery for duplicated target")
	default:
	}
}

func TestLocalNotifier_SkipsEmptyTarget(t *testing.T) {
	dir := ws.NewDirectory()
	admin := addSession(dir, "a1", "admin")

	n := NewLocalNotifier(dir, testLogger())
	n.Notify(context.Background(), NewEvent(TypeAppointment, "booked", nil), "")

	// Admin broadcast still happens.
	select {
	case <-admin.Send:
	default:
		t.Error("expected admin broadcast")
	}
}
