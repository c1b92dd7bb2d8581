package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/BruksfildServices01/bookedbarber/internal/config"
	dbpkg "github.com/BruksfildServices01/bookedbarber/internal/db"
	"github.com/BruksfildServices01/bookedbarber/internal/seed"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	slug := flag.String("slug", "demo", "barbershop slug")
	barbers := flag.Int("barbers", 3, "number of barbers")
	password := flag.String("password", "barber123", "password for every seeded barber")
	seedValue := flag.Uint64("seed", 0, "fake data seed, 0 for random")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	db, err := dbpkg.NewDB(cfg)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	log.Println("seed starting")

	res, err := seed.IntoGorm(ctx, db, seed.Generate(seed.Options{
		Slug:     *slug,
		Timezone: cfg.Defaults.Timezone,
		Barbers:  *barbers,
		Password: *password,
		Seed:     *seedValue,
	}))
	if err != nil {
		log.Fatalf("seed: %v", err)
	}

	log.Printf("barbershop %q (id %d) with services %v", res.Slug, res.ShopID, res.Services)
	for i, id := range res.BarberIDs {
		log.Printf("barber %d: %s", id, res.Emails[i])
	}
	log.Println("seed complete")
}
