package handler

import (
	"errors"
	"net/http"

	"github.com/THF151/booking-backend/internal/dto"
	"github.com/THF151/booking-backend/internal/repository"
	"github.com/THF151/booking-backend/internal/service"
	"github.com/labstack/echo/v4"
)

type BookingHandler struct {
	svc           service.BookingService
	jobRepo       repository.JobRepository
	defaultTenant string
}

func NewBookingHandler(svc service.BookingService, jobRepo repository.JobRepository, defaultTenant string) *BookingHandler {
	return &BookingHandler{svc: svc, jobRepo: jobRepo, defaultTenant: defaultTenant}
}

func (h *BookingHandler) RegisterRoutes(e *echo.Echo) {
	events := e.Group("/api/v1/events")
	events.GET("/:slug/slots", h.GetSlots)
	events.POST("/:slug/bookings", h.CreateBooking)
	events.GET("/:slug/bookings", h.ListBookings)

	manage := e.Group("/api/v1/bookings/manage")
	manage.GET("/:token", h.GetManagedBooking)
	manage.POST("/:token/cancel", h.CancelBooking)
	manage.POST("/:token/reschedule", h.RescheduleBooking)

	e.GET("/api/v1/jobs", h.ListJobs)
}

// tenantID reads the requesting tenant, falling back to the configured
// default for single-tenant deployments.
func (h *BookingHandler) tenantID(c echo.Context) string {
	if t := c.Request().Header.Get("X-Tenant-ID"); t != "" {
		return t
	}
	return h.defaultTenant
}

func (h *BookingHandler) GetSlots(c echo.Context) error {
	date := c.QueryParam("date")
	if date == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "date query parameter is required")
	}

	slots, err := h.svc.GetSlots(c.Request().Context(), h.tenantID(c), c.Param("slug"), date)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, dto.ToSlotsResponse(date, slots))
}

func (h *BookingHandler) CreateBooking(c echo.Context) error {
	var req dto.CreateBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Name == "" || req.Email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name and email are required")
	}
	if req.Date == "" || req.Time == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "date and time are required")
	}

	booking, err := h.svc.CreateBooking(c.Request().Context(), h.tenantID(c), c.Param("slug"), service.CreateBookingInput{
		Date:  req.Date,
		Time:  req.Time,
		Name:  req.Name,
		Email: req.Email,
		Note:  req.Notes,
		Token: req.Token,
	})
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusCreated, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) ListBookings(c echo.Context) error {
	bookings, err := h.svc.ListBookings(c.Request().Context(), h.tenantID(c), c.Param("slug"))
	if err != nil {
		return toHTTPError(err)
	}

	resp := make([]dto.BookingResponse, len(bookings))
	for i := range bookings {
		resp[i] = dto.ToBookingResponse(&bookings[i])
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *BookingHandler) GetManagedBooking(c echo.Context) error {
	booking, event, err := h.svc.GetManagedBooking(c.Request().Context(), c.Param("token"))
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, dto.ManagedBookingResponse{
		Booking: dto.ToBookingResponse(booking),
		Event:   event,
	})
}

func (h *BookingHandler) CancelBooking(c echo.Context) error {
	booking, err := h.svc.CancelByToken(c.Request().Context(), c.Param("token"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) RescheduleBooking(c echo.Context) error {
	var req dto.RescheduleBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Date == "" || req.Time == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "date and time are required")
	}

	booking, err := h.svc.RescheduleByToken(c.Request().Context(), c.Param("token"), req.Date, req.Time)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) ListJobs(c echo.Context) error {
	jobs, err := h.jobRepo.ListByTenant(c.Request().Context(), h.tenantID(c), 100)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, jobs)
}

// toHTTPError maps service sentinel errors onto status codes: validation
// failures 400, forbidden 403, missing resources 404, conflicts 409.
func toHTTPError(err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidDate),
		errors.Is(err, service.ErrInvalidTime),
		errors.Is(err, service.ErrUnresolvableTime),
		errors.Is(err, service.ErrPastBooking),
		errors.Is(err, service.ErrOutsideActive),
		errors.Is(err, service.ErrBookingCancelled):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrEventClosed),
		errors.Is(err, service.ErrTokenRequired),
		errors.Is(err, service.ErrTokenInvalid),
		errors.Is(err, service.ErrCancelDisabled),
		errors.Is(err, service.ErrRescheduleDisabled):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrEventNotFound),
		errors.Is(err, service.ErrBookingNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrSlotUnavailable),
		errors.Is(err, service.ErrDateUnavailable),
		errors.Is(err, service.ErrTokenUsed):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
