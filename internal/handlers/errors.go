package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	domain "github.com/BruksfildServices01/bookedbarber/internal/domain/appointment"
	"github.com/BruksfildServices01/bookedbarber/internal/httperr"
	"github.com/BruksfildServices01/bookedbarber/internal/timezone"
)

type intervalDTO struct {
	Date  string `json:"date"`
	Start string `json:"start"`
	End   string `json:"end"`
}

func intervalsDTO(ivs []domain.Interval) []intervalDTO {
	out := make([]intervalDTO, 0, len(ivs))
	for _, iv := range ivs {
		out = append(out, intervalDTO{
			Date:  iv.Start.Format(timezone.DateLayout),
			Start: iv.Start.Format(timezone.ClockLayout),
			End:   iv.End.Format(timezone.ClockLayout),
		})
	}
	return out
}

var bookingStatus = map[domain.ErrorKind]int{
	domain.KindInvalidInput:         http.StatusBadRequest,
	domain.KindUnknownService:       http.StatusNotFound,
	domain.KindPastDate:             http.StatusUnprocessableEntity,
	domain.KindInsufficientLeadTime: http.StatusUnprocessableEntity,
	domain.KindTooFarInAdvance:      http.StatusUnprocessableEntity,
	domain.KindSameDayRestricted:    http.StatusUnprocessableEntity,
	domain.KindOutsideBusinessHours: http.StatusUnprocessableEntity,
	domain.KindBarberUnavailable:    http.StatusUnprocessableEntity,
	domain.KindSlotConflict:         http.StatusConflict,
}

var businessStatus = map[string]int{
	"appointment_not_found":   http.StatusNotFound,
	"barbershop_not_found":    http.StatusNotFound,
	"invalid_state":           http.StatusConflict,
	"appointment_not_started": http.StatusConflict,
	"invalid_month":           http.StatusBadRequest,
}

// writeError maps use case errors to the JSON error envelope. suggest is
// the availability URL offered with a slot conflict; it may be empty.
func writeError(c *gin.Context, logger *slog.Logger, err error, suggest string) {
	if be, ok := domain.AsBookingError(err); ok {
		status := bookingStatus[be.Kind]
		if status == 0 {
			status = http.StatusBadRequest
		}
		httperr.WriteDetails(c, status, string(be.Kind), be.Error(), bookingDetails(be, suggest))
		return
	}

	if biz, ok := httperr.AsBusiness(err); ok {
		status, ok := businessStatus[biz.Code]
		if !ok {
			status = http.StatusBadRequest
		}
		httperr.Write(c, status, biz.Code, biz.Message())
		return
	}

	if errors.Is(err, domain.ErrStorageUnavailable) {
		logger.ErrorContext(c.Request.Context(), "storage unavailable", "path", c.FullPath(), "err", err)
		httperr.Unavailable(c, "service_unavailable", "Service temporarily unavailable, try again shortly.")
		return
	}

	logger.ErrorContext(c.Request.Context(), "unhandled error", "path", c.FullPath(), "err", err)
	httperr.Internal(c, "internal_error", "Unexpected error.")
}

func bookingDetails(be *domain.BookingError, suggest string) any {
	switch be.Kind {
	case domain.KindInvalidInput:
		if be.Field == "" {
			return nil
		}
		return gin.H{"field": be.Field}
	case domain.KindInsufficientLeadTime:
		return gin.H{"required_minutes": be.RequiredMinutes}
	case domain.KindTooFarInAdvance:
		return gin.H{"max_days": be.MaxDays}
	case domain.KindOutsideBusinessHours:
		return gin.H{"open_windows": intervalsDTO(be.Windows)}
	case domain.KindSlotConflict:
		details := gin.H{"conflicting_times": intervalsDTO(be.ConflictingTimes)}
		if suggest != "" {
			details["suggest"] = suggest
		}
		return details
	}
	return nil
}
