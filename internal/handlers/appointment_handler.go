package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	domain "github.com/BruksfildServices01/bookedbarber/internal/domain/appointment"
	"github.com/BruksfildServices01/bookedbarber/internal/httperr"
	"github.com/BruksfildServices01/bookedbarber/internal/httpresp"
	"github.com/BruksfildServices01/bookedbarber/internal/middleware"
	"github.com/BruksfildServices01/bookedbarber/internal/models"
	"github.com/BruksfildServices01/bookedbarber/internal/timezone"
	"github.com/BruksfildServices01/bookedbarber/internal/usecase/appointment"
	"github.com/BruksfildServices01/bookedbarber/internal/validators"
)

// ======================================================
// HANDLER
// ======================================================

type AppointmentHandler struct {
	book     *appointment.AttemptBooking
	cancel   *appointment.CancelAppointment
	complete *appointment.CompleteAppointment
	confirm  *appointment.ConfirmAppointment
	noShow   *appointment.MarkNoShow
	list     *appointment.ListAppointments
	logger   *slog.Logger
}

func NewAppointmentHandler(
	book *appointment.AttemptBooking,
	cancel *appointment.CancelAppointment,
	complete *appointment.CompleteAppointment,
	confirm *appointment.ConfirmAppointment,
	noShow *appointment.MarkNoShow,
	list *appointment.ListAppointments,
	logger *slog.Logger,
) *AppointmentHandler {
	return &AppointmentHandler{
		book:     book,
		cancel:   cancel,
		complete: complete,
		confirm:  confirm,
		noShow:   noShow,
		list:     list,
		logger:   logger,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateAppointmentRequest struct {
	ClientID    *uint  `json:"client_id"`
	ClientName  string `json:"client_name"`
	ClientPhone string `json:"client_phone"`
	ClientEmail string `json:"client_email"`
	Service     string `json:"service"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Notes       string `json:"notes"`
}

// ======================================================
// CREATE
// ======================================================

// Create books on the calendar of the logged in barber.
func (h *AppointmentHandler) Create(c *gin.Context) {
	barberID := c.MustGet(middleware.ContextUserID).(uint)
	barbershopID := c.MustGet(middleware.ContextBarbershopID).(uint)

	var req CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.logger, domain.InvalidInput("body"), "")
		return
	}

	res, err := h.book.Execute(
		c.Request.Context(),
		domain.BookingRequest{
			TenantID:    barbershopID,
			BarberID:    &barberID,
			Date:        req.Date,
			Time:        req.Time,
			ServiceName: req.Service,
			Notes:       req.Notes,
			Client: domain.ClientRef{
				ClientID: req.ClientID,
				Name:     req.ClientName,
				Phone:    validators.NormalizePhone(req.ClientPhone),
				Email:    req.ClientEmail,
			},
		},
		middleware.GetRequestID(c),
	)
	if err != nil {
		writeError(c, h.logger, err, "")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"appointment": res.Appointment,
		"warnings":    res.Warnings,
	})
}

// ======================================================
// LIST
// ======================================================

func (h *AppointmentHandler) ListByDate(c *gin.Context) {
	barberID := c.MustGet(middleware.ContextUserID).(uint)
	barbershopID := c.MustGet(middleware.ContextBarbershopID).(uint)

	dateStr := c.Query("date")
	if dateStr == "" {
		httperr.BadRequest(c, "missing_date", "Query parameter date is required.")
		return
	}

	date, err := time.Parse(timezone.DateLayout, dateStr)
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "Date must be YYYY-MM-DD.")
		return
	}

	aps, err := h.list.ByDate(c.Request.Context(), barberID, barbershopID, date)
	if err != nil {
		writeError(c, h.logger, err, "")
		return
	}

	httpresp.List(c, aps)
}

func (h *AppointmentHandler) ListByMonth(c *gin.Context) {
	barberID := c.MustGet(middleware.ContextUserID).(uint)
	barbershopID := c.MustGet(middleware.ContextBarbershopID).(uint)

	yearStr := c.Query("year")
	monthStr := c.Query("month")

	if yearStr == "" || monthStr == "" {
		httperr.BadRequest(c, "missing_year_or_month", "Query parameters year and month are required.")
		return
	}

	year, err := strconv.Atoi(yearStr)
	if err != nil || year < 2000 || year > 2100 {
		httperr.BadRequest(c, "invalid_year", "Invalid year.")
		return
	}

	month, err := strconv.Atoi(monthStr)
	if err != nil {
		httperr.BadRequest(c, "invalid_month", "Invalid month.")
		return
	}

	aps, err := h.list.ByMonth(c.Request.Context(), barberID, barbershopID, year, month)
	if err != nil {
		writeError(c, h.logger, err, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"year":         year,
		"month":        month,
		"appointments": aps,
	})
}

// ======================================================
// STATUS CHANGES
// ======================================================

type statusChange func(ctx context.Context, barbershopID, barberID, appointmentID uint) (*models.Appointment, error)

func (h *AppointmentHandler) changeStatus(c *gin.Context, change statusChange) {
	barberID := c.MustGet(middleware.ContextUserID).(uint)
	barbershopID := c.MustGet(middleware.ContextBarbershopID).(uint)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Invalid appointment id.")
		return
	}

	ap, err := change(c.Request.Context(), barbershopID, barberID, uint(id))
	if err != nil {
		writeError(c, h.logger, err, "")
		return
	}

	c.JSON(http.StatusOK, ap)
}

func (h *AppointmentHandler) Cancel(c *gin.Context) {
	h.changeStatus(c, h.cancel.Execute)
}

func (h *AppointmentHandler) Complete(c *gin.Context) {
	h.changeStatus(c, h.complete.Execute)
}

func (h *AppointmentHandler) Confirm(c *gin.Context) {
	h.changeStatus(c, h.confirm.Execute)
}

func (h *AppointmentHandler) NoShow(c *gin.Context) {
	h.changeStatus(c, h.noShow.Execute)
}
