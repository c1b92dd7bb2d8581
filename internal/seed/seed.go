package seed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/bookedbarber/internal/infra/memory"
	"github.com/BruksfildServices01/bookedbarber/internal/models"
)

type Options struct {
	Slug     string
	Timezone string
	Barbers  int
	Password string
	// Seed makes the generated names repeatable. Zero picks a random seed.
	Seed uint64
}

// Barber is a generated barber with the windows they work.
type Barber struct {
	User  models.User
	Hours []models.WorkingHours
}

type Plan struct {
	Shop     models.Barbershop
	Services []models.BarberProduct
	Barbers  []Barber
	Password string
}

// Result holds the ids the tools need after seeding.
type Result struct {
	ShopID    uint
	Slug      string
	BarberIDs []uint
	Services  []string
	Emails    []string
}

type catalogItem struct {
	name     string
	category string
	minutes  int
	before   int
	after    int
	premium  bool
}

var catalog = []catalogItem{
	{name: "Corte", category: "hair", minutes: 30},
	{name: "Barba", category: "beard", minutes: 30, after: 5},
	{name: "Corte e Barba", category: "combo", minutes: 60, after: 10},
	{name: "Platinado", category: "color", minutes: 90, before: 15, after: 15, premium: true},
	{name: "Sobrancelha", category: "extras", minutes: 15},
}

func Generate(opts Options) Plan {
	if opts.Barbers <= 0 {
		opts.Barbers = 3
	}
	if opts.Slug == "" {
		opts.Slug = "demo"
	}
	if opts.Password == "" {
		opts.Password = "barber123"
	}

	f := gofakeit.New(opts.Seed)

	shop := models.Barbershop{
		Name:              "Barbearia " + f.LastName(),
		Slug:              strings.ToLower(opts.Slug),
		Phone:             f.Phone(),
		Address:           fmt.Sprintf("%s, %s", f.Street(), f.City()),
		Timezone:          opts.Timezone,
		BusinessStart:     "09:00",
		BusinessEnd:       "19:00",
		ClosedWeekdays:    "0",
		MinAdvanceMinutes: 60,
		MaxAdvanceDays:    30,
		SlotMinutes:       15,
		SameDayCutoffHour: 12,
	}

	services := make([]models.BarberProduct, 0, len(catalog))
	for _, c := range catalog {
		services = append(services, models.BarberProduct{
			Name:         c.name,
			Description:  fmt.Sprintf("%s (%d min)", c.name, c.minutes),
			DurationMin:  c.minutes,
			BufferBefore: c.before,
			BufferAfter:  c.after,
			Price:        f.Price(30, 150),
			Active:       true,
			Category:     c.category,
			Premium:      c.premium,
		})
	}

	barbers := make([]Barber, 0, opts.Barbers)
	for i := 0; i < opts.Barbers; i++ {
		role := models.RoleBarber
		if i == 0 {
			role = models.RoleOwner
		}

		first := f.FirstName()
		b := Barber{
			User: models.User{
				Name:   first + " " + f.LastName(),
				Email:  fmt.Sprintf("%s.%d@%s.example.com", strings.ToLower(first), i+1, shop.Slug),
				Phone:  f.Phone(),
				Role:   role,
				Active: true,
			},
		}

		// alternate early and late shifts so the any-barber path has choices
		start, end := "09:00", "17:00"
		if i%2 == 1 {
			start, end = "11:00", "19:00"
		}
		for wd := time.Monday; wd <= time.Saturday; wd++ {
			b.Hours = append(b.Hours, models.WorkingHours{
				Weekday:    int(wd),
				Active:     true,
				StartTime:  start,
				EndTime:    end,
				LunchStart: "13:00",
				LunchEnd:   "14:00",
			})
		}
		barbers = append(barbers, b)
	}

	return Plan{Shop: shop, Services: services, Barbers: barbers, Password: opts.Password}
}

// IntoGorm writes the plan in one transaction. An existing shop with the
// same slug is an error.
func IntoGorm(ctx context.Context, db *gorm.DB, p Plan) (*Result, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	res := &Result{Slug: p.Shop.Slug}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Barbershop{}).Where("slug = ?", p.Shop.Slug).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("barbershop %q already exists", p.Shop.Slug)
		}

		shop := p.Shop
		if err := tx.Create(&shop).Error; err != nil {
			return fmt.Errorf("create barbershop: %w", err)
		}
		res.ShopID = shop.ID

		for _, s := range p.Services {
			s.BarbershopID = shop.ID
			if err := tx.Create(&s).Error; err != nil {
				return fmt.Errorf("create service %s: %w", s.Name, err)
			}
			res.Services = append(res.Services, s.Name)
		}

		for _, b := range p.Barbers {
			u := b.User
			u.BarbershopID = shop.ID
			u.PasswordHash = string(hash)
			if err := tx.Omit("Services").Create(&u).Error; err != nil {
				return fmt.Errorf("create barber %s: %w", u.Email, err)
			}
			for _, wh := range b.Hours {
				wh.BarberID = u.ID
				if err := tx.Create(&wh).Error; err != nil {
					return fmt.Errorf("create working hours: %w", err)
				}
			}
			res.BarberIDs = append(res.BarberIDs, u.ID)
			res.Emails = append(res.Emails, u.Email)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func IntoMemory(store *memory.Store, p Plan) *Result {
	shop := store.AddBarbershop(p.Shop)
	res := &Result{ShopID: shop.ID, Slug: shop.Slug}

	for _, s := range p.Services {
		s.BarbershopID = shop.ID
		store.AddProduct(s)
		res.Services = append(res.Services, s.Name)
	}

	for _, b := range p.Barbers {
		u := b.User
		u.BarbershopID = shop.ID
		u = store.AddBarber(u)
		for _, wh := range b.Hours {
			wh.BarberID = u.ID
			store.AddWorkingHours(wh)
		}
		res.BarberIDs = append(res.BarberIDs, u.ID)
		res.Emails = append(res.Emails, u.Email)
	}
	return res
}
