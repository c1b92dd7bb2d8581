package appointment

import (
	"time"

	"github.com/BruksfildServices01/bookedbarber/internal/models"
)

// ServiceInfo is a catalog entry resolved to durations.
type ServiceInfo struct {
	ID           uint
	Name         string
	Category     string
	Premium      bool
	Duration     time.Duration
	BufferBefore time.Duration
	BufferAfter  time.Duration

	// Service specific notice; nil means the policy default applies.
	MinLeadTime *time.Duration
}

func ServiceFromProduct(p *models.BarberProduct) ServiceInfo {
	info := ServiceInfo{
		ID:           p.ID,
		Name:         p.Name,
		Category:     p.Category,
		Premium:      p.Premium,
		Duration:     time.Duration(p.DurationMin) * time.Minute,
		BufferBefore: time.Duration(p.BufferBefore) * time.Minute,
		BufferAfter:  time.Duration(p.BufferAfter) * time.Minute,
	}
	if p.MinLeadMinutes != nil && *p.MinLeadMinutes >= 0 {
		lead := time.Duration(*p.MinLeadMinutes) * time.Minute
		info.MinLeadTime = &lead
	}
	return info
}

// BarberInfo is the scheduling view of a barber.
type BarberInfo struct {
	ID       uint
	TenantID uint
	Name     string
	Active   bool

	// Empty means qualified for every service.
	ServiceIDs []uint
}

func (b BarberInfo) Qualifies(serviceID uint) bool {
	if len(b.ServiceIDs) == 0 {
		return true
	}
	for _, id := range b.ServiceIDs {
		if id == serviceID {
			return true
		}
	}
	return false
}

func BarberFromUser(u *models.User) BarberInfo {
	info := BarberInfo{
		ID:       u.ID,
		TenantID: u.BarbershopID,
		Name:     u.Name,
		Active:   u.Active,
	}
	for _, s := range u.Services {
		info.ServiceIDs = append(info.ServiceIDs, s.ID)
	}
	return info
}
