package routes

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/bookedbarber/internal/audit"
	"github.com/BruksfildServices01/bookedbarber/internal/config"
	domain "github.com/BruksfildServices01/bookedbarber/internal/domain/appointment"
	"github.com/BruksfildServices01/bookedbarber/internal/handlers"
	"github.com/BruksfildServices01/bookedbarber/internal/httperr"
	"github.com/BruksfildServices01/bookedbarber/internal/lock"
	"github.com/BruksfildServices01/bookedbarber/internal/middleware"
	"github.com/BruksfildServices01/bookedbarber/internal/timezone"
	ucAppointment "github.com/BruksfildServices01/bookedbarber/internal/usecase/appointment"
)

// Store is everything the booking flows need from storage.
type Store interface {
	domain.Repository
	domain.TenantDirectory
}

// Deps is built once in main. DB is nil when the memory store is in use;
// only the public and health routes are served then.
type Deps struct {
	Config   *config.Config
	Logger   *slog.Logger
	DB       *gorm.DB
	Store    Store
	Policies domain.PolicyConfig
	Cache    handlers.PolicyInvalidator
	Locker   lock.Locker
	Audit    *audit.Dispatcher
	Clock    timezone.Clock

	// Ready reports whether backing services answer. Nil means always ready.
	Ready func(ctx context.Context) error
}

func RegisterRoutes(r *gin.Engine, d Deps) {

	// ======================================================
	// MIDDLEWARE GLOBAL
	// ======================================================
	r.Use(middleware.RequestID())
	r.Use(middleware.AccessLog(d.Logger))
	r.Use(middleware.CORSMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if d.Ready != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := d.Ready(ctx); err != nil {
				d.Logger.Warn("readiness check failed", "err", err)
				httperr.Unavailable(c, "not_ready", "A backing service is unavailable.")
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	// ======================================================
	// USE CASES
	// ======================================================
	validator := domain.NewValidator(d.Store, d.Store, d.Store, d.Clock)

	bookUC := ucAppointment.NewAttemptBooking(d.Store, d.Policies, validator, d.Locker, d.Audit, d.Logger)
	availabilityUC := ucAppointment.NewGetAvailability(d.Store, d.Policies, d.Clock)

	cancelUC := ucAppointment.NewCancelAppointment(d.Store, d.Policies, d.Audit, d.Clock)
	completeUC := ucAppointment.NewCompleteAppointment(d.Store, d.Policies, d.Audit, d.Clock)
	confirmUC := ucAppointment.NewConfirmAppointment(d.Store, d.Policies, d.Audit, d.Clock)
	noShowUC := ucAppointment.NewMarkNoShow(d.Store, d.Policies, d.Audit, d.Clock)
	listUC := ucAppointment.NewListAppointments(d.Store, d.Policies)

	// ======================================================
	// API PUBLICA
	// ======================================================
	publicHandler := handlers.NewPublicHandler(d.Store, bookUC, availabilityUC, d.Logger)

	api := r.Group("/api")
	publicAPI := api.Group("/public")
	{
		publicAPI.GET("/:slug/services", publicHandler.ListServices)
		publicAPI.GET("/:slug/availability", publicHandler.Availability)
		publicAPI.POST("/:slug/appointments", publicHandler.CreateAppointment)
	}

	if d.DB == nil {
		return
	}

	// ======================================================
	// HANDLERS (gorm backed)
	// ======================================================
	cfg := d.Config

	authHandler := handlers.NewAuthHandler(d.DB, cfg.JWTSecret, cfg.Defaults.Timezone, d.Audit, d.Logger)
	meHandler := handlers.NewMeHandler(d.DB)
	barbershopHandler := handlers.NewBarbershopHandler(d.DB, cfg.PolicyDefaults(), d.Cache, d.Audit, d.Logger)
	barberProductHandler := handlers.NewBarberProductHandler(d.DB, d.Audit, d.Logger)
	clientHandler := handlers.NewClientHandler(d.DB, d.Logger)
	workingHoursHandler := handlers.NewWorkingHoursHandler(d.DB, d.Audit, d.Logger)
	auditLogsHandler := handlers.NewAuditLogsHandler(d.DB)

	appointmentHandler := handlers.NewAppointmentHandler(
		bookUC,
		cancelUC,
		completeUC,
		confirmUC,
		noShowUC,
		listUC,
		d.Logger,
	)

	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	secured := api.Group("/")
	secured.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	{
		secured.GET("/me", meHandler.GetMe)

		secured.GET("/me/barbershop", barbershopHandler.GetMeBarbershop)
		secured.PATCH("/me/barbershop", barbershopHandler.UpdateMeBarbershop)
		secured.POST("/me/barbers", authHandler.CreateBarber)

		secured.GET("/me/clients", clientHandler.List)

		secured.GET("/me/services", barberProductHandler.List)
		secured.POST("/me/services", barberProductHandler.Create)
		secured.PATCH("/me/services/:id", barberProductHandler.Update)
		secured.PUT("/me/services/mine", barberProductHandler.SetMyServices)

		secured.GET("/me/working-hours", workingHoursHandler.Get)
		secured.PUT("/me/working-hours", workingHoursHandler.Update)

		// ------------------------------
		// APPOINTMENTS
		// ------------------------------
		secured.POST("/me/appointments", appointmentHandler.Create)
		secured.GET("/me/appointments", appointmentHandler.ListByDate)
		secured.GET("/me/appointments/month", appointmentHandler.ListByMonth)
		secured.PATCH("/me/appointments/:id/cancel", appointmentHandler.Cancel)
		secured.PATCH("/me/appointments/:id/complete", appointmentHandler.Complete)
		secured.PATCH("/me/appointments/:id/confirm", appointmentHandler.Confirm)
		secured.PATCH("/me/appointments/:id/no-show", appointmentHandler.NoShow)

		secured.GET("/me/audit-logs", auditLogsHandler.List)
	}
}
