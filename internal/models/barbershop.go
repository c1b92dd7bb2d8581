package models

import "time"

// Barbershop is the tenant. Booking policy columns live on the same row.
type Barbershop struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"size:100;not null" json:"name"`
	Slug     string `gorm:"size:100;uniqueIndex;not null" json:"slug"`
	Phone    string `gorm:"size:20" json:"phone"`
	Address  string `gorm:"size:255" json:"address"`
	Timezone string `gorm:"size:64" json:"timezone"`

	BusinessStart     string `gorm:"size:5" json:"business_start"`
	BusinessEnd       string `gorm:"size:5" json:"business_end"`
	LunchStart        string `gorm:"size:5" json:"lunch_start"`
	LunchEnd          string `gorm:"size:5" json:"lunch_end"`
	ClosedWeekdays    string `gorm:"size:20" json:"closed_weekdays"`
	MinAdvanceMinutes int    `gorm:"default:120" json:"min_advance_minutes"`
	MaxAdvanceDays    int    `gorm:"default:30" json:"max_advance_days"`
	SlotMinutes       int    `gorm:"default:30" json:"slot_minutes"`
	SameDayCutoffHour int    `gorm:"default:0" json:"same_day_cutoff_hour"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
