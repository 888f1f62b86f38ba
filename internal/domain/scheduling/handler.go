package scheduling

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinicdesk/clinic-server/internal/platform/auth"
	"github.com/clinicdesk/clinic-server/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(api *echo.Group) {
	appts := api.Group("/appointments")
	appts.POST("", h.Book)
	appts.GET("", h.List)
	appts.GET("/conflict", h.CheckConflict)
	appts.GET("/available-doctors", h.AvailableDoctors)
	appts.GET("/:id", h.Get)
	appts.PATCH("/:id/time", h.Reschedule)
	appts.PATCH("/:id/doctor", h.Assign, auth.RequireRole("nurse", "admin"))
	appts.PATCH("/:id/status", h.UpdateStatus)

	settings := api.Group("/settings")
	settings.GET("/overlap-minutes", h.GetOverlapMinutes)
	settings.PUT("/overlap-minutes", h.SetOverlapMinutes, auth.RequireRole("admin"))
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrInvalidFormat):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrTimeConflict):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

type bookRequest struct {
	PatientName string  `json:"patient_name"`
	DoctorName  string  `json:"doctor_name"`
	Time        string  `json:"time"`
	Reason      *string `json:"reason"`
}

func (h *Handler) Book(c echo.Context) error {
	var req bookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.PatientName == "" {
		// Patients book for themselves unless a name is given.
		if auth.RoleFromContext(c.Request().Context()) == "patient" {
			req.PatientName = auth.UsernameFromContext(c.Request().Context())
		}
	}
	a, err := h.svc.Book(c.Request().Context(), BookRequest{
		PatientName: req.PatientName,
		DoctorName:  req.DoctorName,
		Time:        req.Time,
		Reason:      req.Reason,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}
	a, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
	}
	return c.JSON(http.StatusOK, a)
}

// List scopes results to the caller: patients see their own appointments,
// doctors see their calendar, staff see everything.
func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()
	pg := pagination.FromContext(c)
	username := auth.UsernameFromContext(ctx)
	role := auth.RoleFromContext(ctx)

	switch role {
	case "patient":
		items, total, err := h.svc.ListByPatient(ctx, username, pg.Limit, pg.Offset)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
	case "doctor":
		items, err := h.svc.ListByDoctor(ctx, username)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, pagination.NewResponse(items, len(items), pg.Limit, pg.Offset))
	default:
		items, total, err := h.svc.List(ctx, pg.Limit, pg.Offset)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
	}
}

type rescheduleRequest struct {
	Time string `json:"time"`
}

func (h *Handler) Reschedule(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}
	var req rescheduleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a, err := h.svc.Reschedule(c.Request().Context(), id, req.Time)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, a)
}

type assignRequest struct {
	DoctorName string `json:"doctor_name"`
}

func (h *Handler) Assign(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}
	var req assignRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a, err := h.svc.Assign(c.Request().Context(), id, req.DoctorName)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, a)
}

type statusRequest struct {
	Status string  `json:"status"`
	Reason *string `json:"reason"`
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}
	var req statusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a, err := h.svc.UpdateStatus(c.Request().Context(), id, req.Status, req.Reason)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, a)
}

// CheckConflict answers ?doctor=&time=[&exclude_id=] without writing.
func (h *Handler) CheckConflict(c echo.Context) error {
	doctor := c.QueryParam("doctor")
	timeStr := c.QueryParam("time")
	if doctor == "" || timeStr == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "doctor and time are required")
	}
	excludeID := uuid.Nil
	if raw := c.QueryParam("exclude_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid exclude_id")
		}
		excludeID = id
	}
	conflict, err := h.svc.CheckConflict(c.Request().Context(), doctor, timeStr, excludeID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"conflict": conflict})
}

func (h *Handler) AvailableDoctors(c echo.Context) error {
	timeStr := c.QueryParam("time")
	if timeStr == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "time is required")
	}
	excludeID := uuid.Nil
	if raw := c.QueryParam("exclude_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid exclude_id")
		}
		excludeID = id
	}
	doctors, err := h.svc.AvailableDoctors(c.Request().Context(), timeStr, excludeID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"doctors": doctors})
}

func (h *Handler) GetOverlapMinutes(c echo.Context) error {
	m, err := h.svc.OverlapMinutes(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]int{"overlap_minutes": m})
}

type overlapRequest struct {
	OverlapMinutes int `json:"overlap_minutes"`
}

func (h *Handler) SetOverlapMinutes(c echo.Context) error {
	var req overlapRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.SetOverlapMinutes(c.Request().Context(), req.OverlapMinutes); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]int{"overlap_minutes": req.OverlapMinutes})
}
