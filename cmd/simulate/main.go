package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"

	"github.com/BruksfildServices01/bookedbarber/internal/audit"
	"github.com/BruksfildServices01/bookedbarber/internal/config"
	dbpkg "github.com/BruksfildServices01/bookedbarber/internal/db"
	domain "github.com/BruksfildServices01/bookedbarber/internal/domain/appointment"
	"github.com/BruksfildServices01/bookedbarber/internal/infra/memory"
	"github.com/BruksfildServices01/bookedbarber/internal/infra/repository"
	"github.com/BruksfildServices01/bookedbarber/internal/lock"
	"github.com/BruksfildServices01/bookedbarber/internal/logging"
	"github.com/BruksfildServices01/bookedbarber/internal/seed"
	"github.com/BruksfildServices01/bookedbarber/internal/timezone"
	"github.com/BruksfildServices01/bookedbarber/internal/usecase/appointment"
)

type simConfig struct {
	Store    string
	Attempts int
	Workers  int
	Barbers  int
	AnyRatio float64
}

type outcome struct {
	committed atomic.Int64
	conflicts atomic.Int64
	rejected  atomic.Int64
	failed    atomic.Int64

	mu        sync.Mutex
	latencies []time.Duration
}

func (o *outcome) record(d time.Duration, err error) {
	switch {
	case err == nil:
		o.committed.Add(1)
	case errors.Is(err, domain.ErrSlotConflict):
		o.conflicts.Add(1)
	case domain.KindOf(err) != "":
		o.rejected.Add(1)
	default:
		o.failed.Add(1)
	}

	o.mu.Lock()
	o.latencies = append(o.latencies, d)
	o.mu.Unlock()
}

func (o *outcome) percentile(p int) time.Duration {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.latencies) == 0 {
		return 0
	}
	sorted := append([]time.Duration(nil), o.latencies...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	idx := len(sorted) * p / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	var cfg simConfig
	flag.StringVar(&cfg.Store, "store", config.StorageMemory, "memory or postgres")
	flag.IntVar(&cfg.Attempts, "attempts", 2000, "booking attempts")
	flag.IntVar(&cfg.Workers, "workers", 32, "concurrent workers")
	flag.IntVar(&cfg.Barbers, "barbers", 3, "barbers in the simulated shop")
	flag.Float64Var(&cfg.AnyRatio, "any", 0.3, "share of attempts with no barber preference")
	flag.Parse()

	if err := run(cfg); err != nil {
		log.Fatal(err)
	}
}

func run(cfg simConfig) error {
	appCfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.New("bookedbarber-simulate", "error")

	plan := seed.Generate(seed.Options{
		Slug:     "sim-" + uuid.NewString()[:8],
		Timezone: appCfg.Defaults.Timezone,
		Barbers:  cfg.Barbers,
	})

	var (
		repo     domain.Repository
		policies domain.PolicyConfig
		res      *seed.Result
	)

	switch cfg.Store {
	case config.StorageMemory:
		mem := memory.NewStore(appCfg.PolicyDefaults())
		res = seed.IntoMemory(mem, plan)
		repo, policies = mem, mem
	case config.StoragePostgres:
		db, err := dbpkg.NewDB(appCfg)
		if err != nil {
			return err
		}
		res, err = seed.IntoGorm(context.Background(), db, plan)
		if err != nil {
			return err
		}
		repo = repository.NewAppointmentGormRepository(db)
		policies = repository.NewPolicyGormRepository(db, appCfg.PolicyDefaults())
	default:
		return fmt.Errorf("unknown store %q", cfg.Store)
	}

	loc := timezone.Location(plan.Shop.Timezone)
	day := targetDay(time.Now().In(loc))

	dispatcher := audit.NewDispatcher(logger)
	defer dispatcher.Close()

	book := appointment.NewAttemptBooking(
		repo,
		policies,
		domain.NewValidator(repo, repo, repo, nil),
		lock.NewLocalLocker(),
		dispatcher,
		logger,
	)

	log.Printf("simulating %d attempts with %d workers on %s (%s store, shop %s)",
		cfg.Attempts, cfg.Workers, day.Format(timezone.DateLayout), cfg.Store, res.Slug)

	var (
		out  outcome
		jobs = make(chan int)
		wg   sync.WaitGroup
	)

	started := time.Now()
	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range jobs {
				req := randomRequest(res, day, cfg.AnyRatio)
				t0 := time.Now()
				_, err := book.Execute(context.Background(), req, uuid.NewString())
				out.record(time.Since(t0), err)
			}
		}()
	}
	for i := 0; i < cfg.Attempts; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	elapsed := time.Since(started)

	log.Printf("done in %s: committed=%d conflicts=%d rejected=%d failed=%d p50=%s p95=%s",
		elapsed.Round(time.Millisecond),
		out.committed.Load(), out.conflicts.Load(), out.rejected.Load(), out.failed.Load(),
		out.percentile(50), out.percentile(95))

	overlaps, err := verify(context.Background(), repo, res.BarberIDs, day)
	if err != nil {
		return fmt.Errorf("verify: %w", err)
	}
	if overlaps > 0 {
		return fmt.Errorf("found %d overlapping appointment pairs", overlaps)
	}
	log.Println("no overlapping appointments")
	return nil
}

// targetDay is the next Tuesday at least two days ahead, clear of lead time
// and same-day rules.
func targetDay(now time.Time) time.Time {
	day := timezone.StartOfDay(now).AddDate(0, 0, 2)
	for day.Weekday() != time.Tuesday {
		day = day.AddDate(0, 0, 1)
	}
	return day
}

func randomRequest(res *seed.Result, day time.Time, anyRatio float64) domain.BookingRequest {
	// 09:00 to 18:30 on a quarter hour grid
	minute := 9*60 + rand.IntN(39)*15

	req := domain.BookingRequest{
		TenantID:    res.ShopID,
		Date:        day.Format(timezone.DateLayout),
		Time:        timezone.FormatClock(minute),
		ServiceName: res.Services[rand.IntN(len(res.Services))],
		Client: domain.ClientRef{
			Name:  gofakeit.Name(),
			Phone: gofakeit.Phone(),
		},
	}
	if rand.Float64() >= anyRatio {
		id := res.BarberIDs[rand.IntN(len(res.BarberIDs))]
		req.BarberID = &id
	}
	return req
}

// verify counts pairs of blocking appointments of the same barber whose
// effective intervals overlap.
func verify(ctx context.Context, repo domain.Repository, barberIDs []uint, day time.Time) (int, error) {
	overlaps := 0
	for _, id := range barberIDs {
		appts, err := repo.ListAppointmentsForPeriod(ctx, id, day.AddDate(0, 0, -1), day.AddDate(0, 0, 2))
		if err != nil {
			return 0, err
		}

		var blocking []domain.Interval
		for i := range appts {
			if domain.Status(appts[i].Status).Blocks() {
				blocking = append(blocking, domain.AppointmentEffective(&appts[i]))
			}
		}

		for i := 0; i < len(blocking); i++ {
			for j := i + 1; j < len(blocking); j++ {
				if blocking[i].Overlaps(blocking[j]) {
					overlaps++
				}
			}
		}
		log.Printf("barber %d: %d blocking appointments", id, len(blocking))
	}
	return overlaps, nil
}
