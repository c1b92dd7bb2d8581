package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	domain "github.com/BruksfildServices01/bookedbarber/internal/domain/appointment"
	"github.com/BruksfildServices01/bookedbarber/internal/httperr"
	"github.com/BruksfildServices01/bookedbarber/internal/middleware"
	"github.com/BruksfildServices01/bookedbarber/internal/models"
	"github.com/BruksfildServices01/bookedbarber/internal/usecase/appointment"
	"github.com/BruksfildServices01/bookedbarber/internal/validators"
)

////////////////////////////////////////////////////////
// HANDLER
////////////////////////////////////////////////////////

type PublicHandler struct {
	tenants      domain.TenantDirectory
	book         *appointment.AttemptBooking
	availability *appointment.GetAvailability
	logger       *slog.Logger
}

func NewPublicHandler(
	tenants domain.TenantDirectory,
	book *appointment.AttemptBooking,
	availability *appointment.GetAvailability,
	logger *slog.Logger,
) *PublicHandler {
	return &PublicHandler{
		tenants:      tenants,
		book:         book,
		availability: availability,
		logger:       logger,
	}
}

////////////////////////////////////////////////////////
// DTOs
////////////////////////////////////////////////////////

// PublicCreateAppointmentRequest leaves presence checks to the booking
// validator so every missing field is reported the same way.
type PublicCreateAppointmentRequest struct {
	BarberID    *uint  `json:"barber_id"`
	Service     string `json:"service"`
	Date        string `json:"date"` // YYYY-MM-DD
	Time        string `json:"time"` // HH:mm
	Timezone    string `json:"timezone"`
	ClientName  string `json:"client_name"`
	ClientPhone string `json:"client_phone"`
	ClientEmail string `json:"client_email"`
	Notes       string `json:"notes"`
}

////////////////////////////////////////////////////////
// SHOP
////////////////////////////////////////////////////////

func (h *PublicHandler) shop(c *gin.Context) (*models.Barbershop, bool) {
	shop, err := h.tenants.TenantBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, domain.ErrTenantNotFound) {
			httperr.NotFound(c, "barbershop_not_found", "Barbershop not found.")
			return nil, false
		}
		writeError(c, h.logger, domain.StorageUnavailable("load barbershop", err), "")
		return nil, false
	}
	return shop, true
}

////////////////////////////////////////////////////////
// SERVICES
////////////////////////////////////////////////////////

func (h *PublicHandler) ListServices(c *gin.Context) {
	shop, ok := h.shop(c)
	if !ok {
		return
	}

	services, err := h.tenants.ListServices(c.Request.Context(), shop.ID)
	if err != nil {
		writeError(c, h.logger, domain.StorageUnavailable("list services", err), "")
		return
	}

	category := strings.TrimSpace(strings.ToLower(c.Query("category")))
	if category != "" {
		filtered := services[:0]
		for _, s := range services {
			if strings.ToLower(s.Category) == category {
				filtered = append(filtered, s)
			}
		}
		services = filtered
	}

	c.JSON(http.StatusOK, gin.H{
		"barbershop": shop,
		"services":   services,
	})
}

////////////////////////////////////////////////////////
// AVAILABILITY
////////////////////////////////////////////////////////

func (h *PublicHandler) Availability(c *gin.Context) {
	shop, ok := h.shop(c)
	if !ok {
		return
	}

	barberID, ok := optionalBarberID(c.Query("barber_id"))
	if !ok {
		writeError(c, h.logger, domain.InvalidInput("barber_id"), "")
		return
	}

	slots, err := h.availability.Execute(c.Request.Context(), domain.AvailabilityInput{
		TenantID:    shop.ID,
		BarberID:    barberID,
		ServiceName: c.Query("service"),
		Date:        c.Query("date"),
	})
	if err != nil {
		writeError(c, h.logger, err, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date":  c.Query("date"),
		"slots": slots,
	})
}

////////////////////////////////////////////////////////
// CREATE APPOINTMENT
////////////////////////////////////////////////////////

func (h *PublicHandler) CreateAppointment(c *gin.Context) {
	shop, ok := h.shop(c)
	if !ok {
		return
	}

	var req PublicCreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.logger, domain.InvalidInput("body"), "")
		return
	}

	res, err := h.book.Execute(
		c.Request.Context(),
		domain.BookingRequest{
			TenantID:     shop.ID,
			BarberID:     req.BarberID,
			Date:         req.Date,
			Time:         req.Time,
			ServiceName:  req.Service,
			UserTimezone: req.Timezone,
			Notes:        req.Notes,
			Client: domain.ClientRef{
				Name:  req.ClientName,
				Phone: validators.NormalizePhone(req.ClientPhone),
				Email: req.ClientEmail,
			},
		},
		middleware.GetRequestID(c),
	)
	if err != nil {
		writeError(c, h.logger, err, availabilityURL(shop.Slug, req.Date, req.Service, req.BarberID))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"appointment": res.Appointment,
		"warnings":    res.Warnings,
	})
}

func optionalBarberID(raw string) (*uint, bool) {
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return nil, false
	}
	v := uint(id)
	return &v, true
}

func availabilityURL(slug, date, service string, barberID *uint) string {
	q := url.Values{}
	q.Set("date", date)
	q.Set("service", service)
	if barberID != nil {
		q.Set("barber_id", strconv.FormatUint(uint64(*barberID), 10))
	}
	return "/api/public/" + url.PathEscape(slug) + "/availability?" + q.Encode()
}
