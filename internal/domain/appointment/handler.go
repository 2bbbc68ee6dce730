package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/caresync/hms/internal/platform/auth"
	"github.com/caresync/hms/pkg/pagination"
	"github.com/caresync/hms/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/appointments", h.List, auth.RequireRole("admin", "staff"))
	api.POST("/appointments", h.Create)
	api.GET("/appointments/my-appointments", h.Mine)
	api.GET("/appointments/patient/:patientId", h.ListByPatient)
	api.GET("/appointments/doctor/:doctorId", h.ListByDoctor)
	api.GET("/appointments/:id", h.Get)
	api.PUT("/appointments/:id", h.Update)
	api.DELETE("/appointments/:id", h.Delete, auth.RequireRole("admin"))
}

// Dates arrive as "2006-01-02"; RFC 3339 timestamps are tolerated.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

type createRequest struct {
	PatientID       uuid.UUID `json:"patient_id"`
	DoctorID        uuid.UUID `json:"doctor_id"`
	AppointmentDate string    `json:"appointment_date"`
	TimeSlot        string    `json:"time_slot"`
	Reason          string    `json:"reason"`
	Type            string    `json:"appointment_type"`
	Notes           *string   `json:"notes"`
}

func (h *Handler) Create(c echo.Context) error {
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return response.Validationf("invalid request body")
	}
	if req.AppointmentDate == "" {
		return response.Validationf("appointment_date is required")
	}
	date, err := parseDate(req.AppointmentDate)
	if err != nil {
		return response.Validationf("invalid appointment_date, expected YYYY-MM-DD")
	}
	a, err := h.svc.Create(c.Request().Context(), CreateInput{
		PatientID:       req.PatientID,
		DoctorID:        req.DoctorID,
		AppointmentDate: date,
		TimeSlot:        req.TimeSlot,
		Reason:          req.Reason,
		Type:            req.Type,
		Notes:           req.Notes,
	})
	if err != nil {
		return err
	}
	return response.Created(c, "appointment booked", a)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.Validationf("invalid appointment id")
	}
	a, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return response.OK(c, "", a)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return response.OK(c, "", pagination.NewPage(items, total, pg.Limit, pg.Offset))
}

// Mine lists the caller's own appointments, scoped by the token role.
func (h *Handler) Mine(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := uuid.Parse(auth.UserIDFromContext(ctx))
	if err != nil {
		return response.Unauthorizedf("invalid token subject")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListForUser(ctx, userID, auth.RoleFromContext(ctx), pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return response.OK(c, "", pagination.NewPage(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListByPatient(c echo.Context) error {
	return h.listBy(c, c.Param("patientId"), h.svc.ListByPatient)
}

func (h *Handler) ListByDoctor(c echo.Context) error {
	return h.listBy(c, c.Param("doctorId"), h.svc.ListByDoctor)
}

func (h *Handler) listBy(c echo.Context, rawID string,
	list func(ctx context.Context, id uuid.UUID, limit, offset int) ([]*Appointment, int, error)) error {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return response.Validationf("invalid user id")
	}
	pg := pagination.FromContext(c)
	items, total, err := list(c.Request().Context(), id, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return response.OK(c, "", pagination.NewPage(items, total, pg.Limit, pg.Offset))
}

type updateRequest struct {
	DoctorID        *uuid.UUID `json:"doctor_id"`
	AppointmentDate *string    `json:"appointment_date"`
	TimeSlot        *string    `json:"time_slot"`
	Reason          *string    `json:"reason"`
	Status          *string    `json:"status"`
	Type            *string    `json:"appointment_type"`
	Notes           *string    `json:"notes"`
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.Validationf("invalid appointment id")
	}
	var req updateRequest
	if err := c.Bind(&req); err != nil {
		return response.Validationf("invalid request body")
	}
	upd := Update{
		DoctorID: req.DoctorID,
		TimeSlot: req.TimeSlot,
		Reason:   req.Reason,
		Status:   req.Status,
		Type:     req.Type,
		Notes:    req.Notes,
	}
	if req.AppointmentDate != nil {
		date, err := parseDate(*req.AppointmentDate)
		if err != nil {
			return response.Validationf("invalid appointment_date, expected YYYY-MM-DD")
		}
		upd.AppointmentDate = &date
	}
	a, err := h.svc.Update(c.Request().Context(), id, upd)
	if err != nil {
		return err
	}
	return response.OK(c, "appointment updated", a)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.Validationf("invalid appointment id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return response.OK(c, "appointment deleted", nil)
}
