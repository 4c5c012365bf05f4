package common

import (
	"context"
	"sync"
	"time"

	"github.com/castlebay/warroom-go/internal/domain/shared"
)

// KeyedLock is an in-process advisory lock keyed by string. Generator
// invocations acquire the campaign's key before mutating assignments;
// acquisition blocks up to a wait budget and then gives up, so a stuck
// holder delays work instead of corrupting it.
type KeyedLock struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

// NewKeyedLock creates an empty keyed lock.
func NewKeyedLock() *KeyedLock {
	return &KeyedLock{slots: make(map[string]chan struct{})}
}

// Acquire takes the lock for key, waiting up to wait. On success it
// returns a release function that must be called exactly once, typically
// via defer. On timeout or context cancellation it returns a
// shared.LockTimeoutError and the caller must not proceed.
func (l *KeyedLock) Acquire(ctx context.Context, key string, wait time.Duration) (func(), error) {
	slot := l.slot(key)

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case slot <- struct{}{}:
		return func() { <-slot }, nil
	case <-timer.C:
		return nil, shared.NewLockTimeoutError(key, wait)
	case <-ctx.Done():
		return nil, shared.NewLockTimeoutError(key, wait)
	}
}

// TryAcquire takes the lock without waiting.
func (l *KeyedLock) TryAcquire(key string) (func(), bool) {
	slot := l.slot(key)
	select {
	case slot <- struct{}{}:
		return func() { <-slot }, true
	default:
		return nil, false
	}
}

func (l *KeyedLock) slot(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	slot, ok := l.slots[key]
	if !ok {
		slot = make(chan struct{}, 1)
		l.slots[key] = slot
	}
	return slot
}
