package lock

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestLocalLockerSerialisesSameBarber(t *testing.T) {
	l := NewLocalLocker()

	var (
		inside  int32
		maxSeen int32
		wg      sync.WaitGroup
	)

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := l.WithBarberLock(context.Background(), 1, func(context.Context) error {
				n := atomic.AddInt32(&inside, 1)
				for {
					m := atomic.LoadInt32(&maxSeen)
					if n <= m || atomic.CompareAndSwapInt32(&maxSeen, m, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				atomic.AddInt32(&inside, -1)
				return nil
			})
			if err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	if maxSeen != 1 {
		t.Fatalf("%d holders at once, want 1", maxSeen)
	}
	if len(l.locks) != 0 {
		t.Fatalf("%d lock entries leaked", len(l.locks))
	}
}

func TestLocalLockerDifferentBarbersRunTogether(t *testing.T) {
	l := NewLocalLocker()
	held := make(chan struct{})
	release := make(chan struct{})

	go func() {
		_ = l.WithBarberLock(context.Background(), 1, func(context.Context) error {
			close(held)
			<-release
			return nil
		})
	}()
	<-held
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := l.WithBarberLock(ctx, 2, func(context.Context) error { return nil }); err != nil {
		t.Fatalf("barber 2 blocked by barber 1: %v", err)
	}
}

func TestLocalLockerHonoursContext(t *testing.T) {
	l := NewLocalLocker()
	held := make(chan struct{})
	release := make(chan struct{})

	go func() {
		_ = l.WithBarberLock(context.Background(), 7, func(context.Context) error {
			close(held)
			<-release
			return nil
		})
	}()
	<-held
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	called := false
	err := l.WithBarberLock(ctx, 7, func(context.Context) error {
		called = true
		return nil
	})
	if !errors.Is(err, ErrLockNotAcquired) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v", err)
	}
	if called {
		t.Fatal("fn ran without the lock")
	}
}

func TestLocalLockerReturnsFnError(t *testing.T) {
	l := NewLocalLocker()
	boom := errors.New("boom")
	if err := l.WithBarberLock(context.Background(), 1, func(context.Context) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	// released after an error
	if err := l.WithBarberLock(context.Background(), 1, func(context.Context) error { return nil }); err != nil {
		t.Fatal(err)
	}
}
