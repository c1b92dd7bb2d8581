package lock

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"
)

func redisLocker(t *testing.T, ttl, wait time.Duration) *RedisLocker {
	t.Helper()

	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}

	client, err := NewRedisClient(addr, os.Getenv("TEST_REDIS_PASSWORD"))
	if err != nil {
		t.Fatalf("redis: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisLocker(client, ttl, wait)
}

func TestRedisLockerExcludes(t *testing.T) {
	l := redisLocker(t, 2*time.Second, 50*time.Millisecond)
	barberID := uint(time.Now().UnixNano() % 1_000_000)

	held := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- l.WithBarberLock(context.Background(), barberID, func(context.Context) error {
			close(held)
			<-release
			return nil
		})
	}()
	<-held

	err := l.WithBarberLock(context.Background(), barberID, func(context.Context) error { return nil })
	if !errors.Is(err, ErrLockNotAcquired) {
		t.Fatalf("err = %v, want ErrLockNotAcquired", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatal(err)
	}

	// released
	if err := l.WithBarberLock(context.Background(), barberID, func(context.Context) error { return nil }); err != nil {
		t.Fatalf("after release: %v", err)
	}
}

func TestRedisLockerReleaseKeepsForeignToken(t *testing.T) {
	l := redisLocker(t, 2*time.Second, 0)
	ctx := context.Background()
	key := barberKey(uint(time.Now().UnixNano()%1_000_000) + 1_000_000)

	if err := l.client.Set(ctx, key, "someone-else", time.Minute).Err(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { l.client.Del(context.Background(), key) })

	if err := l.release(ctx, key, "my-token"); err != nil {
		t.Fatal(err)
	}
	if v, _ := l.client.Get(ctx, key).Result(); v != "someone-else" {
		t.Fatalf("foreign lock deleted, value = %q", v)
	}
}
