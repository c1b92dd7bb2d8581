package dto

import "time"

type AppointmentListDTO struct {
	ID             uint      `json:"id"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	EffectiveStart time.Time `json:"effective_start"`
	EffectiveEnd   time.Time `json:"effective_end"`
	Status         string    `json:"status"`
	ClientName     string    `json:"client_name"`
	Guest          bool      `json:"guest"`
	ServiceName    string    `json:"service_name"`
	Notes          string    `json:"notes,omitempty"`
}
