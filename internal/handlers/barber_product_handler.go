package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/bookedbarber/internal/audit"
	"github.com/BruksfildServices01/bookedbarber/internal/httperr"
	"github.com/BruksfildServices01/bookedbarber/internal/httpresp"
	"github.com/BruksfildServices01/bookedbarber/internal/middleware"
	"github.com/BruksfildServices01/bookedbarber/internal/models"
)

// BarberProductHandler manages the shop's service catalog.
type BarberProductHandler struct {
	db     *gorm.DB
	audit  *audit.Dispatcher
	logger *slog.Logger
}

func NewBarberProductHandler(db *gorm.DB, audit *audit.Dispatcher, logger *slog.Logger) *BarberProductHandler {
	return &BarberProductHandler{db: db, audit: audit, logger: logger}
}

// --------- Requests ---------

type CreateBarberProductRequest struct {
	Name           string  `json:"name" binding:"required"`
	Description    string  `json:"description"`
	DurationMin    int     `json:"duration_min" binding:"required,min=1"`
	BufferBefore   int     `json:"buffer_before_min" binding:"min=0"`
	BufferAfter    int     `json:"buffer_after_min" binding:"min=0"`
	Price          float64 `json:"price" binding:"min=0"`
	Category       string  `json:"category"`
	Premium        bool    `json:"premium"`
	MinLeadMinutes *int    `json:"min_lead_minutes" binding:"omitempty,min=0"`
}

type UpdateBarberProductRequest struct {
	Name           *string  `json:"name,omitempty"`
	Description    *string  `json:"description,omitempty"`
	DurationMin    *int     `json:"duration_min,omitempty" binding:"omitempty,min=1"`
	BufferBefore   *int     `json:"buffer_before_min,omitempty" binding:"omitempty,min=0"`
	BufferAfter    *int     `json:"buffer_after_min,omitempty" binding:"omitempty,min=0"`
	Price          *float64 `json:"price,omitempty" binding:"omitempty,min=0"`
	Category       *string  `json:"category,omitempty"`
	Premium        *bool    `json:"premium,omitempty"`
	MinLeadMinutes *int     `json:"min_lead_minutes,omitempty" binding:"omitempty,min=0"`
	Active         *bool    `json:"active,omitempty"`
}

// --------- Handlers ---------

func (h *BarberProductHandler) List(c *gin.Context) {
	barbershopID := c.MustGet(middleware.ContextBarbershopID).(uint)

	category := strings.ToLower(strings.TrimSpace(c.Query("category")))
	activeStr := strings.TrimSpace(c.Query("active"))
	query := strings.ToLower(strings.TrimSpace(c.Query("query")))

	q := h.db.WithContext(c.Request.Context()).Where("barbershop_id = ?", barbershopID)

	if category != "" {
		q = q.Where("LOWER(category) = ?", category)
	}

	switch activeStr {
	case "true":
		q = q.Where("active = ?", true)
	case "false":
		q = q.Where("active = ?", false)
	}

	if query != "" {
		like := "%" + query + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	var products []models.BarberProduct
	if err := q.Order("id ASC").Find(&products).Error; err != nil {
		h.logger.Error("list services", "barbershop_id", barbershopID, "err", err)
		httperr.Internal(c, "failed_to_list_services", "Could not list services.")
		return
	}

	httpresp.List(c, products)
}

func (h *BarberProductHandler) Create(c *gin.Context) {
	barbershopID := c.MustGet(middleware.ContextBarbershopID).(uint)
	userID := c.MustGet(middleware.ContextUserID).(uint)

	var req CreateBarberProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.WriteDetails(c, http.StatusBadRequest, "invalid_request", "Invalid service payload.", err.Error())
		return
	}

	product := models.BarberProduct{
		BarbershopID:   barbershopID,
		Name:           strings.TrimSpace(req.Name),
		Description:    req.Description,
		DurationMin:    req.DurationMin,
		BufferBefore:   req.BufferBefore,
		BufferAfter:    req.BufferAfter,
		Price:          req.Price,
		Active:         true,
		Category:       strings.ToLower(req.Category),
		Premium:        req.Premium,
		MinLeadMinutes: req.MinLeadMinutes,
	}

	if err := h.db.WithContext(c.Request.Context()).Create(&product).Error; err != nil {
		h.logger.Error("create service", "barbershop_id", barbershopID, "err", err)
		httperr.Internal(c, "failed_to_create_service", "Could not create the service.")
		return
	}

	h.audit.Dispatch(audit.Event{
		BarbershopID: barbershopID,
		UserID:       &userID,
		Action:       "service_created",
		Entity:       "barber_product",
		EntityID:     &product.ID,
		RequestID:    middleware.GetRequestID(c),
	})

	httpresp.Created(c, product)
}

func (h *BarberProductHandler) Update(c *gin.Context) {
	barbershopID := c.MustGet(middleware.ContextBarbershopID).(uint)
	userID := c.MustGet(middleware.ContextUserID).(uint)

	var product models.BarberProduct
	if err := h.db.WithContext(c.Request.Context()).
		Where("id = ? AND barbershop_id = ?", c.Param("id"), barbershopID).
		First(&product).Error; err != nil {

		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.NotFound(c, "service_not_found", "Service not found.")
			return
		}
		httperr.Internal(c, "failed_to_get_service", "Could not load the service.")
		return
	}

	var req UpdateBarberProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.WriteDetails(c, http.StatusBadRequest, "invalid_request", "Invalid service payload.", err.Error())
		return
	}

	if req.Name != nil {
		product.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.DurationMin != nil {
		product.DurationMin = *req.DurationMin
	}
	if req.BufferBefore != nil {
		product.BufferBefore = *req.BufferBefore
	}
	if req.BufferAfter != nil {
		product.BufferAfter = *req.BufferAfter
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.Category != nil {
		product.Category = strings.ToLower(*req.Category)
	}
	if req.Premium != nil {
		product.Premium = *req.Premium
	}
	if req.MinLeadMinutes != nil {
		product.MinLeadMinutes = req.MinLeadMinutes
	}
	if req.Active != nil {
		product.Active = *req.Active
	}

	if err := h.db.WithContext(c.Request.Context()).Save(&product).Error; err != nil {
		h.logger.Error("update service", "service_id", product.ID, "err", err)
		httperr.Internal(c, "failed_to_update_service", "Could not save the service.")
		return
	}

	// Existing appointments keep the duration and buffers they were booked with.
	h.audit.Dispatch(audit.Event{
		BarbershopID: barbershopID,
		UserID:       &userID,
		Action:       "service_updated",
		Entity:       "barber_product",
		EntityID:     &product.ID,
		RequestID:    middleware.GetRequestID(c),
		Metadata:     req,
	})

	c.JSON(http.StatusOK, product)
}

type SetBarberServicesRequest struct {
	ServiceIDs []uint `json:"service_ids"`
}

// SetMyServices replaces the services the logged-in barber performs. An
// empty list means every service of the shop.
func (h *BarberProductHandler) SetMyServices(c *gin.Context) {
	barbershopID := c.MustGet(middleware.ContextBarbershopID).(uint)
	userID := c.MustGet(middleware.ContextUserID).(uint)

	var req SetBarberServicesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid payload.")
		return
	}

	db := h.db.WithContext(c.Request.Context())

	var products []models.BarberProduct
	if len(req.ServiceIDs) > 0 {
		if err := db.Where("barbershop_id = ? AND id IN ?", barbershopID, req.ServiceIDs).
			Find(&products).Error; err != nil {
			httperr.Internal(c, "failed_to_get_service", "Could not load services.")
			return
		}
		if len(products) != len(req.ServiceIDs) {
			httperr.NotFound(c, "service_not_found", "One or more services do not belong to this barbershop.")
			return
		}
	}

	user := models.User{ID: userID}
	if err := db.Model(&user).Association("Services").Replace(products); err != nil {
		h.logger.Error("set barber services", "barber_id", userID, "err", err)
		httperr.Internal(c, "failed_to_update_services", "Could not save the barber services.")
		return
	}

	c.JSON(http.StatusOK, products)
}
