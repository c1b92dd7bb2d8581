package lock

import (
	"context"
	"errors"
	"sync"
)

var ErrLockNotAcquired = errors.New("barber lock not acquired")

// Locker serialises booking writers of the same barber. Writers of
// different barbers never wait on each other.
type Locker interface {
	WithBarberLock(ctx context.Context, barberID uint, fn func(ctx context.Context) error) error
}

// LocalLocker is an in-process keyed mutex. It is enough for a single API
// instance; use the Redis locker when several instances share a database.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[uint]*barberLock
}

type barberLock struct {
	ch   chan struct{}
	refs int
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[uint]*barberLock)}
}

func (l *LocalLocker) WithBarberLock(ctx context.Context, barberID uint, fn func(ctx context.Context) error) error {
	bl := l.acquireRef(barberID)
	defer l.releaseRef(barberID, bl)

	select {
	case bl.ch <- struct{}{}:
	case <-ctx.Done():
		return errors.Join(ErrLockNotAcquired, ctx.Err())
	}
	defer func() { <-bl.ch }()

	return fn(ctx)
}

func (l *LocalLocker) acquireRef(barberID uint) *barberLock {
	l.mu.Lock()
	defer l.mu.Unlock()

	bl, ok := l.locks[barberID]
	if !ok {
		bl = &barberLock{ch: make(chan struct{}, 1)}
		l.locks[barberID] = bl
	}
	bl.refs++
	return bl
}

func (l *LocalLocker) releaseRef(barberID uint, bl *barberLock) {
	l.mu.Lock()
	defer l.mu.Unlock()

	bl.refs--
	if bl.refs == 0 {
		delete(l.locks, barberID)
	}
}
