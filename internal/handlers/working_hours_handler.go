package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/bookedbarber/internal/audit"
	"github.com/BruksfildServices01/bookedbarber/internal/httperr"
	"github.com/BruksfildServices01/bookedbarber/internal/httpresp"
	"github.com/BruksfildServices01/bookedbarber/internal/middleware"
	"github.com/BruksfildServices01/bookedbarber/internal/models"
	"github.com/BruksfildServices01/bookedbarber/internal/timezone"
)

type WorkingHoursHandler struct {
	db     *gorm.DB
	audit  *audit.Dispatcher
	logger *slog.Logger
}

func NewWorkingHoursHandler(db *gorm.DB, audit *audit.Dispatcher, logger *slog.Logger) *WorkingHoursHandler {
	return &WorkingHoursHandler{db: db, audit: audit, logger: logger}
}

// WorkingWindowConfig is one open window. A weekday may list several.
type WorkingWindowConfig struct {
	Weekday    int    `json:"weekday" binding:"min=0,max=6"`
	Active     bool   `json:"active"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	LunchStart string `json:"lunch_start"`
	LunchEnd   string `json:"lunch_end"`
}

type WorkingHoursUpdateRequest struct {
	Days []WorkingWindowConfig `json:"days" binding:"required,dive"`
}

func (h *WorkingHoursHandler) Get(c *gin.Context) {
	barberID := c.MustGet(middleware.ContextUserID).(uint)

	var hours []models.WorkingHours
	if err := h.db.WithContext(c.Request.Context()).
		Where("barber_id = ?", barberID).
		Order("weekday ASC, start_time ASC").
		Find(&hours).Error; err != nil {

		h.logger.Error("list working hours", "barber_id", barberID, "err", err)
		httperr.Internal(c, "failed_to_get_working_hours", "Could not load working hours.")
		return
	}

	httpresp.List(c, hours)
}

// Update replaces the barber's whole weekly schedule.
func (h *WorkingHoursHandler) Update(c *gin.Context) {
	barberID := c.MustGet(middleware.ContextUserID).(uint)
	barbershopID := c.MustGet(middleware.ContextBarbershopID).(uint)

	var req WorkingHoursUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.WriteDetails(c, http.StatusBadRequest, "invalid_request", "Invalid working hours payload.", err.Error())
		return
	}

	if err := validateWindows(req.Days); err != nil {
		httperr.WriteDetails(c, http.StatusBadRequest, "invalid_working_hours", err.Error(), nil)
		return
	}

	toCreate := make([]models.WorkingHours, 0, len(req.Days))
	for _, d := range req.Days {
		toCreate = append(toCreate, models.WorkingHours{
			BarberID:   barberID,
			Weekday:    d.Weekday,
			Active:     d.Active,
			StartTime:  d.StartTime,
			EndTime:    d.EndTime,
			LunchStart: d.LunchStart,
			LunchEnd:   d.LunchEnd,
		})
	}

	err := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("barber_id = ?", barberID).Delete(&models.WorkingHours{}).Error; err != nil {
			return err
		}
		if len(toCreate) == 0 {
			return nil
		}
		return tx.Create(&toCreate).Error
	})
	if err != nil {
		h.logger.Error("save working hours", "barber_id", barberID, "err", err)
		httperr.Internal(c, "failed_to_save_working_hours", "Could not save working hours.")
		return
	}

	h.audit.Dispatch(audit.Event{
		BarbershopID: barbershopID,
		UserID:       &barberID,
		Action:       "working_hours_updated",
		Entity:       "working_hours",
		RequestID:    middleware.GetRequestID(c),
		Metadata:     map[string]any{"windows": len(toCreate)},
	})

	httpresp.List(c, toCreate)
}

// validateWindows checks clock formats and that active windows of the same
// weekday do not overlap.
func validateWindows(days []WorkingWindowConfig) error {
	type span struct{ start, end int }
	byDay := map[int][]span{}

	for i, d := range days {
		if !d.Active {
			continue
		}
		start, err := timezone.ParseClock(d.StartTime)
		if err != nil {
			return fmt.Errorf("days[%d].start_time must be HH:MM", i)
		}
		end, err := timezone.ParseClock(d.EndTime)
		if err != nil {
			return fmt.Errorf("days[%d].end_time must be HH:MM", i)
		}
		if end <= start {
			return fmt.Errorf("days[%d] ends before it starts", i)
		}

		if (d.LunchStart == "") != (d.LunchEnd == "") {
			return fmt.Errorf("days[%d] lunch needs both start and end", i)
		}
		if d.LunchStart != "" {
			ls, err1 := timezone.ParseClock(d.LunchStart)
			le, err2 := timezone.ParseClock(d.LunchEnd)
			if err1 != nil || err2 != nil || le <= ls || ls < start || le > end {
				return fmt.Errorf("days[%d] lunch must be a range inside the window", i)
			}
		}

		byDay[d.Weekday] = append(byDay[d.Weekday], span{start, end})
	}

	for wd, spans := range byDay {
		sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
		for i := 1; i < len(spans); i++ {
			if spans[i].start < spans[i-1].end {
				return fmt.Errorf("weekday %d has overlapping windows", wd)
			}
		}
	}
	return nil
}
