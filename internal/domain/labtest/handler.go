package labtest

import (
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
	api.GET("/lab-tests", h.List, auth.RequireRole("admin", "staff", "doctor"))
	api.POST("/lab-tests", h.Book)
	api.GET("/lab-tests/patient/:patientId", h.ListByPatient)
	api.GET("/lab-tests/:id", h.Get)
	api.PUT("/lab-tests/:id", h.Update, auth.RequireRole("doctor", "staff"))
}

func (h *Handler) Book(c echo.Context) error {
	var in BookInput
	if err := c.Bind(&in); err != nil {
		return response.Validationf("invalid request body")
	}
	lt, err := h.svc.Book(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return response.Created(c, "lab test booked", lt)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.Validationf("invalid lab test id")
	}
	lt, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return response.OK(c, "", lt)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return response.OK(c, "", pagination.NewPage(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListByPatient(c echo.Context) error {
	id, err := uuid.Parse(c.Param("patientId"))
	if err != nil {
		return response.Validationf("invalid patient id")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByPatient(c.Request().Context(), id, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return response.OK(c, "", pagination.NewPage(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.Validationf("invalid lab test id")
	}
	var upd Update
	if err := c.Bind(&upd); err != nil {
		return response.Validationf("invalid request body")
	}
	lt, err := h.svc.Update(c.Request().Context(), id, upd)
	if err != nil {
		return err
	}
	return response.OK(c, "lab test updated", lt)
}
