package appointment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/caresync/hms/internal/platform/auth"
	"github.com/caresync/hms/pkg/response"
)

func newTestHandler() (*Handler, *Service) {
	svc, _, _ := newTestService()
	return NewHandler(svc), svc
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func TestHandlerCreate(t *testing.T) {
	h, _ := newTestHandler()
	e := echo.New()
	body := fmt.Sprintf(`{"patient_id":%q,"doctor_id":%q,"appointment_date":"2026-10-05","time_slot":"09:30","reason":"checkup"}`,
		patientID, doctorID)
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/appointments", body), rec)

	if err := h.Create(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}

	var env struct {
		Data Appointment `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Data.Status != StatusScheduled {
		t.Errorf("expected scheduled, got %q", env.Data.Status)
	}
	if env.Data.DoctorName != "Dr. Mehta" {
		t.Errorf("expected joined doctor name, got %q", env.Data.DoctorName)
	}
}

func TestHandlerCreate_BadDate(t *testing.T) {
	h, _ := newTestHandler()
	e := echo.New()
	body := fmt.Sprintf(`{"patient_id":%q,"doctor_id":%q,"appointment_date":"05/10/2026","time_slot":"09:30","reason":"checkup"}`,
		patientID, doctorID)
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/appointments", body), rec)

	err := h.Create(c)
	if kindOf(t, err) != response.KindValidation {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestHandlerCreate_Conflict(t *testing.T) {
	h, svc := newTestHandler()
	if _, err := svc.Create(context.Background(), validInput()); err != nil {
		t.Fatalf("seed booking: %v", err)
	}

	e := echo.New()
	date := validInput().AppointmentDate.Format("2006-01-02")
	body := fmt.Sprintf(`{"patient_id":%q,"doctor_id":%q,"appointment_date":%q,"time_slot":"09:30","reason":"checkup"}`,
		otherPat, doctorID, date)
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/appointments", body), rec)

	err := h.Create(c)
	if kindOf(t, err) != response.KindConflict {
		t.Errorf("expected conflict, got %v", err)
	}
}

func TestHandlerMine(t *testing.T) {
	h, svc := newTestHandler()
	if _, err := svc.Create(context.Background(), validInput()); err != nil {
		t.Fatalf("seed booking: %v", err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/appointments/my-appointments", nil)
	ctx := context.WithValue(req.Context(), auth.UserIDKey, patientID.String())
	ctx = context.WithValue(ctx, auth.UserRoleKey, "patient")
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Mine(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), patientID.String()) {
		t.Errorf("expected own booking in response: %s", rec.Body.String())
	}
}

func TestHandlerGet_BadID(t *testing.T) {
	h, _ := newTestHandler()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/appointments/nope", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("nope")

	err := h.Get(c)
	if kindOf(t, err) != response.KindValidation {
		t.Errorf("expected validation error, got %v", err)
	}
}
