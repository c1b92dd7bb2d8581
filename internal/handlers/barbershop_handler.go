package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/bookedbarber/internal/audit"
	domain "github.com/BruksfildServices01/bookedbarber/internal/domain/appointment"
	"github.com/BruksfildServices01/bookedbarber/internal/httperr"
	"github.com/BruksfildServices01/bookedbarber/internal/middleware"
	"github.com/BruksfildServices01/bookedbarber/internal/models"
	"github.com/BruksfildServices01/bookedbarber/internal/timezone"
)

// PolicyInvalidator drops a cached tenant policy.
type PolicyInvalidator interface {
	Invalidate(tenantID uint)
}

type BarbershopHandler struct {
	db       *gorm.DB
	defaults domain.PolicyDefaults
	cache    PolicyInvalidator
	audit    *audit.Dispatcher
	logger   *slog.Logger
}

func NewBarbershopHandler(
	db *gorm.DB,
	defaults domain.PolicyDefaults,
	cache PolicyInvalidator,
	audit *audit.Dispatcher,
	logger *slog.Logger,
) *BarbershopHandler {
	return &BarbershopHandler{db: db, defaults: defaults, cache: cache, audit: audit, logger: logger}
}

// UpdateBarbershopConfigRequest is a partial update; nil fields are kept.
type UpdateBarbershopConfigRequest struct {
	Name              *string `json:"name"`
	Phone             *string `json:"phone"`
	Address           *string `json:"address"`
	Timezone          *string `json:"timezone"`
	BusinessStart     *string `json:"business_start"`
	BusinessEnd       *string `json:"business_end"`
	LunchStart        *string `json:"lunch_start"`
	LunchEnd          *string `json:"lunch_end"`
	ClosedWeekdays    *string `json:"closed_weekdays"`
	MinAdvanceMinutes *int    `json:"min_advance_minutes"`
	MaxAdvanceDays    *int    `json:"max_advance_days"`
	SlotMinutes       *int    `json:"slot_minutes"`
	SameDayCutoffHour *int    `json:"same_day_cutoff_hour"`
}

func (h *BarbershopHandler) load(c *gin.Context) (*models.Barbershop, bool) {
	barbershopID := c.MustGet(middleware.ContextBarbershopID).(uint)

	var shop models.Barbershop
	if err := h.db.WithContext(c.Request.Context()).First(&shop, barbershopID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.NotFound(c, "barbershop_not_found", "Barbershop not found.")
			return nil, false
		}
		h.logger.Error("load barbershop", "barbershop_id", barbershopID, "err", err)
		httperr.Internal(c, "failed_to_get_barbershop", "Could not load the barbershop.")
		return nil, false
	}
	return &shop, true
}

func (h *BarbershopHandler) GetMeBarbershop(c *gin.Context) {
	shop, ok := h.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, shop)
}

func (h *BarbershopHandler) UpdateMeBarbershop(c *gin.Context) {
	shop, ok := h.load(c)
	if !ok {
		return
	}

	var req UpdateBarbershopConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request payload.")
		return
	}

	if msg := applyBarbershopUpdate(shop, req); msg != "" {
		httperr.BadRequest(c, "invalid_settings", msg)
		return
	}

	// the stored row must still produce a usable policy
	if _, err := domain.PolicyFromBarbershop(shop, h.defaults); err != nil {
		httperr.BadRequest(c, "invalid_settings", err.Error())
		return
	}

	if err := h.db.WithContext(c.Request.Context()).Save(shop).Error; err != nil {
		h.logger.Error("save barbershop", "barbershop_id", shop.ID, "err", err)
		httperr.Internal(c, "failed_to_update_barbershop", "Could not save the barbershop settings.")
		return
	}

	if h.cache != nil {
		h.cache.Invalidate(shop.ID)
	}

	userID := c.MustGet(middleware.ContextUserID).(uint)
	h.audit.Dispatch(audit.Event{
		BarbershopID: shop.ID,
		UserID:       &userID,
		Action:       "barbershop_settings_updated",
		Entity:       "barbershop",
		EntityID:     &shop.ID,
		RequestID:    middleware.GetRequestID(c),
		Metadata:     req,
	})

	c.JSON(http.StatusOK, shop)
}

// applyBarbershopUpdate copies the set fields and returns a message for the
// first invalid one.
func applyBarbershopUpdate(shop *models.Barbershop, req UpdateBarbershopConfigRequest) string {
	if req.Name != nil {
		if *req.Name == "" {
			return "name cannot be empty"
		}
		shop.Name = *req.Name
	}
	if req.Phone != nil {
		shop.Phone = *req.Phone
	}
	if req.Address != nil {
		shop.Address = *req.Address
	}
	if req.Timezone != nil {
		if !timezone.IsValid(*req.Timezone) {
			return "unknown timezone"
		}
		shop.Timezone = *req.Timezone
	}
	if req.BusinessStart != nil {
		shop.BusinessStart = *req.BusinessStart
	}
	if req.BusinessEnd != nil {
		shop.BusinessEnd = *req.BusinessEnd
	}
	if req.LunchStart != nil {
		shop.LunchStart = *req.LunchStart
	}
	if req.LunchEnd != nil {
		shop.LunchEnd = *req.LunchEnd
	}
	if req.ClosedWeekdays != nil {
		shop.ClosedWeekdays = *req.ClosedWeekdays
	}
	if req.MinAdvanceMinutes != nil {
		if *req.MinAdvanceMinutes < 0 {
			return "min_advance_minutes must be zero or positive"
		}
		shop.MinAdvanceMinutes = *req.MinAdvanceMinutes
	}
	if req.MaxAdvanceDays != nil {
		if *req.MaxAdvanceDays < 0 {
			return "max_advance_days must be zero or positive"
		}
		shop.MaxAdvanceDays = *req.MaxAdvanceDays
	}
	if req.SlotMinutes != nil {
		if *req.SlotMinutes < 5 || *req.SlotMinutes > 240 {
			return "slot_minutes must be between 5 and 240"
		}
		shop.SlotMinutes = *req.SlotMinutes
	}
	if req.SameDayCutoffHour != nil {
		if *req.SameDayCutoffHour < 0 || *req.SameDayCutoffHour > 23 {
			return "same_day_cutoff_hour must be between 0 and 23"
		}
		shop.SameDayCutoffHour = *req.SameDayCutoffHour
	}
	return ""
}
