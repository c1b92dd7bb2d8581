package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/bookedbarber/internal/audit"
	"github.com/BruksfildServices01/bookedbarber/internal/config"
	dbpkg "github.com/BruksfildServices01/bookedbarber/internal/db"
	domain "github.com/BruksfildServices01/bookedbarber/internal/domain/appointment"
	"github.com/BruksfildServices01/bookedbarber/internal/infra/memory"
	"github.com/BruksfildServices01/bookedbarber/internal/infra/policycache"
	"github.com/BruksfildServices01/bookedbarber/internal/infra/repository"
	"github.com/BruksfildServices01/bookedbarber/internal/lock"
	"github.com/BruksfildServices01/bookedbarber/internal/logging"
	"github.com/BruksfildServices01/bookedbarber/internal/routes"
	"github.com/BruksfildServices01/bookedbarber/internal/seed"
	"github.com/BruksfildServices01/bookedbarber/internal/telemetry"
	"github.com/BruksfildServices01/bookedbarber/internal/timezone"
)

const serviceName = "bookedbarber-api"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.New(serviceName, cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	otelShutdown, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:      cfg.Otel.Enabled,
		ServiceName:  serviceName,
		OTLPEndpoint: cfg.Otel.Endpoint,
		SampleRatio:  cfg.Otel.SampleRatio,
	})
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	// ------------------------------
	// storage
	// ------------------------------
	var (
		db       *gorm.DB
		store    routes.Store
		policies domain.PolicyConfig
	)

	switch cfg.StorageDriver {
	case config.StorageMemory:
		mem := memory.NewStore(cfg.PolicyDefaults())
		res := seed.IntoMemory(mem, seed.Generate(seed.Options{
			Timezone: cfg.Defaults.Timezone,
		}))
		logger.Warn("using in-memory store; data is lost on exit",
			"slug", res.Slug, "barbers", len(res.BarberIDs))
		store, policies = mem, mem
	default:
		db, err = dbpkg.NewDB(cfg)
		if err != nil {
			return err
		}
		store = repository.NewAppointmentGormRepository(db)
		policies = repository.NewPolicyGormRepository(db, cfg.PolicyDefaults())
	}

	cache := policycache.New(policies, cfg.PolicyCache.Size, cfg.PolicyCache.TTL)

	// ------------------------------
	// locking
	// ------------------------------
	var (
		locker lock.Locker = lock.NewLocalLocker()
		rdb    *redis.Client
	)
	if cfg.Lock.Driver == config.LockRedis {
		rdb, err = lock.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password)
		if err != nil {
			return err
		}
		defer rdb.Close()
		locker = lock.NewRedisLocker(rdb, cfg.Lock.TTL, cfg.Lock.Wait)
	}

	// ------------------------------
	// audit
	// ------------------------------
	sinks := []audit.Sink{audit.NewSlogSink(logger)}
	if db != nil {
		sinks = append(sinks, audit.New(db))
	}
	if cfg.Audit.KafkaBrokers != "" {
		kafkaSink := audit.NewKafkaSink(cfg.Audit.KafkaBrokers, cfg.Audit.Topic)
		defer kafkaSink.Close()
		sinks = append(sinks, kafkaSink)
	}
	dispatcher := audit.NewDispatcher(logger, sinks...)
	defer dispatcher.Close()

	// ------------------------------
	// http
	// ------------------------------
	if !cfg.IsLocal() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	routes.RegisterRoutes(r, routes.Deps{
		Config:   cfg,
		Logger:   logger,
		DB:       db,
		Store:    store,
		Policies: cache,
		Cache:    cache,
		Locker:   locker,
		Audit:    dispatcher,
		Clock:    timezone.SystemClock{},
		Ready:    readyCheck(db, rdb),
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           otelhttp.NewHandler(r, "bookedbarber"),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr, "storage", cfg.StorageDriver, "lock", cfg.Lock.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
	return nil
}

func readyCheck(db *gorm.DB, rdb *redis.Client) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if db != nil {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			if err := sqlDB.PingContext(ctx); err != nil {
				return fmt.Errorf("db: %w", err)
			}
		}
		if rdb != nil {
			if err := rdb.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("redis: %w", err)
			}
		}
		return nil
	}
}
