package report

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
	api.POST("/reports/upload", h.Upload)
	api.GET("/reports", h.List)
	api.GET("/reports/patient/:patientId", h.ListByPatient, auth.RequireRole("doctor", "staff"))
	api.GET("/reports/:id", h.Get)
}

// Upload accepts a multipart form with a `file` field. An optional
// `patient_id` lets staff upload on a patient's behalf; patients upload for
// themselves.
func (h *Handler) Upload(c echo.Context) error {
	ctx := c.Request().Context()

	patientID, err := uuid.Parse(auth.UserIDFromContext(ctx))
	if raw := c.FormValue("patient_id"); raw != "" {
		patientID, err = uuid.Parse(raw)
	}
	if err != nil {
		return response.Validationf("invalid patient id")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return response.Validationf("file field is required")
	}
	src, err := fileHeader.Open()
	if err != nil {
		return response.Internalf(err)
	}
	defer src.Close()

	var title *string
	if t := c.FormValue("title"); t != "" {
		title = &t
	}

	rep, err := h.svc.Upload(ctx, UploadInput{
		PatientID: patientID,
		FileName:  fileHeader.Filename,
		MimeType:  fileHeader.Header.Get("Content-Type"),
		Size:      fileHeader.Size,
		Title:     title,
		Content:   src,
	})
	if err != nil {
		return err
	}
	return response.Created(c, "report uploaded", rep)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.Validationf("invalid report id")
	}
	rep, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return response.OK(c, "", rep)
}

func (h *Handler) List(c echo.Context) error {
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
