package prescription

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
	api.POST("/prescriptions", h.Create, auth.RequireRole("doctor"))
	api.GET("/prescriptions/health-summary/:patientId", h.HealthSummary, auth.RequireRole("doctor", "staff"))
	api.GET("/prescriptions/patient/:patientId", h.ListByPatient)
	api.GET("/prescriptions/doctor/:doctorId", h.ListByDoctor)
	api.GET("/prescriptions/:id", h.Get)
	api.PUT("/prescriptions/:id", h.Update, auth.RequireRole("doctor"))
	api.DELETE("/prescriptions/:id", h.Delete, auth.RequireRole("doctor"))
}

func (h *Handler) Create(c echo.Context) error {
	var in CreateInput
	if err := c.Bind(&in); err != nil {
		return response.Validationf("invalid request body")
	}
	p, err := h.svc.Create(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return response.Created(c, "prescription issued", p)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.Validationf("invalid prescription id")
	}
	p, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return response.OK(c, "", p)
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

func (h *Handler) ListByDoctor(c echo.Context) error {
	id, err := uuid.Parse(c.Param("doctorId"))
	if err != nil {
		return response.Validationf("invalid doctor id")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByDoctor(c.Request().Context(), id, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return response.OK(c, "", pagination.NewPage(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.Validationf("invalid prescription id")
	}
	var upd Update
	if err := c.Bind(&upd); err != nil {
		return response.Validationf("invalid request body")
	}
	p, err := h.svc.Update(c.Request().Context(), id, upd)
	if err != nil {
		return err
	}
	return response.OK(c, "prescription updated", p)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.Validationf("invalid prescription id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return response.OK(c, "prescription deleted", nil)
}

func (h *Handler) HealthSummary(c echo.Context) error {
	id, err := uuid.Parse(c.Param("patientId"))
	if err != nil {
		return response.Validationf("invalid patient id")
	}
	summary, err := h.svc.HealthSummary(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return response.OK(c, "", summary)
}
