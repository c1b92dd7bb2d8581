package audit

import (
	"context"
	"encoding/json"
	"log/slog"

	"gorm.io/gorm"

	"github.com/BruksfildServices01/bookedbarber/internal/models"
)

// Logger writes audit events to the audit_logs table.
type Logger struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Logger {
	return &Logger{db: db}
}

func (l *Logger) Write(ctx context.Context, ev Event) error {
	row := models.AuditLog{
		BarbershopID: ev.BarbershopID,
		UserID:       ev.UserID,
		Action:       ev.Action,
		Entity:       ev.Entity,
		EntityID:     ev.EntityID,
		RequestID:    ev.RequestID,
		Metadata:     encodeMetadata(ev.Metadata),
		CreatedAt:    ev.At,
	}

	return l.db.WithContext(ctx).Create(&row).Error
}

func encodeMetadata(metadata any) string {
	if metadata == nil {
		return ""
	}
	b, err := json.Marshal(metadata)
	if err != nil {
		return ""
	}
	return string(b)
}

// SlogSink writes events to the process log. Used when no database sink
// is configured.
type SlogSink struct {
	logger *slog.Logger
}

func NewSlogSink(logger *slog.Logger) *SlogSink {
	return &SlogSink{logger: logger}
}

func (s *SlogSink) Write(_ context.Context, ev Event) error {
	s.logger.Info("audit",
		"action", ev.Action,
		"barbershop_id", ev.BarbershopID,
		"entity", ev.Entity,
		"request_id", ev.RequestID,
		"metadata", encodeMetadata(ev.Metadata),
	)
	return nil
}
