package db

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/BruksfildServices01/bookedbarber/internal/config"
	"github.com/BruksfildServices01/bookedbarber/internal/models"
)

func NewDB(cfg *config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		PrepareStmt: true,
	}
	if !cfg.IsLocal() {
		gormCfg.Logger = logger.Default.LogMode(logger.Warn)
	}

	db, err := gorm.Open(postgres.Open(cfg.DBUrl), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := Migrate(db, cfg.Defaults.Timezone); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate creates the tables and the appointment overlap constraint. It is
// safe to run on every start.
func Migrate(db *gorm.DB, defaultTimezone string) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS btree_gist`).Error; err != nil {
		return fmt.Errorf("enable btree_gist: %w", err)
	}

	if err := db.AutoMigrate(
		&models.Barbershop{},
		&models.User{},
		&models.BarberProduct{},
		&models.WorkingHours{},
		&models.Client{},
		&models.Appointment{},
		&models.AuditLog{},
	); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	if err := db.Exec(`
        UPDATE barbershops
        SET timezone = ?
        WHERE timezone IS NULL OR timezone = ''
    `, defaultTimezone).Error; err != nil {
		return fmt.Errorf("backfill timezone: %w", err)
	}

	if err := db.Exec(`
        UPDATE appointments
        SET effective_start = start_time - make_interval(mins => buffer_before_min),
            effective_end   = end_time + make_interval(mins => buffer_after_min)
        WHERE effective_start IS NULL OR effective_end IS NULL
           OR effective_start = '0001-01-01' OR effective_end = '0001-01-01'
    `).Error; err != nil {
		return fmt.Errorf("backfill effective interval: %w", err)
	}

	if err := db.Exec(noOverlapConstraint).Error; err != nil {
		return fmt.Errorf("appointment overlap constraint: %w", err)
	}

	return nil
}

// noOverlapConstraint rejects two blocking appointments of one barber whose
// effective intervals intersect. Touching intervals are allowed.
const noOverlapConstraint = `
DO $$
BEGIN
    IF NOT EXISTS (
        SELECT 1 FROM pg_constraint WHERE conname = 'appointments_no_overlap'
    ) THEN
        ALTER TABLE appointments
            ADD CONSTRAINT appointments_no_overlap
            EXCLUDE USING gist (
                barber_id WITH =,
                tstzrange(effective_start, effective_end, '[)') WITH &&
            )
            WHERE (status IN ('scheduled', 'confirmed'));
    END IF;
END
$$;
`
