package policycache

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "github.com/BruksfildServices01/bookedbarber/internal/domain/appointment"
)

type countingConfig struct {
	calls int
	err   error
}

func (c *countingConfig) ForTenant(_ context.Context, tenantID uint) (domain.BusinessPolicy, error) {
	c.calls++
	if c.err != nil {
		return domain.BusinessPolicy{}, c.err
	}
	return domain.BusinessPolicy{TenantID: tenantID, MaxAdvanceDays: c.calls}, nil
}

func TestCacheServesRepeatedReads(t *testing.T) {
	next := &countingConfig{}
	c := New(next, 8, time.Minute)

	for i := 0; i < 3; i++ {
		p, err := c.ForTenant(context.Background(), 7)
		if err != nil {
			t.Fatalf("ForTenant: %v", err)
		}
		if p.TenantID != 7 {
			t.Fatalf("tenant = %d, want 7", p.TenantID)
		}
	}

	if next.calls != 1 {
		t.Fatalf("backing store called %d times, want 1", next.calls)
	}
}

func TestInvalidateForcesReload(t *testing.T) {
	next := &countingConfig{}
	c := New(next, 8, time.Minute)
	ctx := context.Background()

	if _, err := c.ForTenant(ctx, 1); err != nil {
		t.Fatal(err)
	}
	c.Invalidate(1)

	p, err := c.ForTenant(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if next.calls != 2 || p.MaxAdvanceDays != 2 {
		t.Fatalf("calls=%d max=%d, want a fresh policy", next.calls, p.MaxAdvanceDays)
	}
}

func TestErrorsAreNotCached(t *testing.T) {
	next := &countingConfig{err: domain.ErrTenantNotFound}
	c := New(next, 8, time.Minute)

	for i := 0; i < 2; i++ {
		if _, err := c.ForTenant(context.Background(), 3); !errors.Is(err, domain.ErrTenantNotFound) {
			t.Fatalf("err = %v", err)
		}
	}
	if next.calls != 2 {
		t.Fatalf("calls = %d, want 2", next.calls)
	}
	if c.Len() != 0 {
		t.Fatalf("cache holds %d entries", c.Len())
	}
}

func TestEntriesExpire(t *testing.T) {
	next := &countingConfig{}
	c := New(next, 8, 20*time.Millisecond)
	ctx := context.Background()

	if _, err := c.ForTenant(ctx, 1); err != nil {
		t.Fatal(err)
	}
	time.Sleep(60 * time.Millisecond)
	if _, err := c.ForTenant(ctx, 1); err != nil {
		t.Fatal(err)
	}
	if next.calls != 2 {
		t.Fatalf("calls = %d, want reload after ttl", next.calls)
	}
}
