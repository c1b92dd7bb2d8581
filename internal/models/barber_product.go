package models

import "time"

// BarberProduct is one entry of the shop's service catalog.
type BarberProduct struct {
	ID           uint `gorm:"primaryKey" json:"id"`
	BarbershopID uint `gorm:"index" json:"barbershop_id"`

	Name         string  `gorm:"size:100;not null" json:"name"`
	Description  string  `gorm:"size:255" json:"description"`
	DurationMin  int     `json:"duration_min"`
	BufferBefore int     `gorm:"default:0" json:"buffer_before_min"`
	BufferAfter  int     `gorm:"default:0" json:"buffer_after_min"`
	Price        float64 `json:"price"`
	Active       bool    `gorm:"default:true" json:"active"`

	Category string `gorm:"size:50" json:"category"`
	Premium  bool   `gorm:"default:false" json:"premium"`

	// Overrides the shop minimum notice when set.
	MinLeadMinutes *int `json:"min_lead_minutes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
