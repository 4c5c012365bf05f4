package common

import (
	"sync"
	"time"
)

// FlightGroup deduplicates concurrent computations per key: the first
// caller computes, and every caller arriving while the flight is open
// waits and reuses the result.
//
// Unlike a plain singleflight, waiters carry a wait budget. A waiter
// whose budget expires before the holder finishes computes independently
// and reports the contention, trading duplicate work for a guaranteed
// answer. This is the behavior the priority scorer needs: correctness
// over availability, but never an unbounded wait.
type FlightGroup struct {
	mu      sync.Mutex
	flights map[string]*flight
}

type flight struct {
	done   chan struct{}
	result interface{}
	err    error
}

// NewFlightGroup creates an empty flight group.
func NewFlightGroup() *FlightGroup {
	return &FlightGroup{flights: make(map[string]*flight)}
}

// Do runs fn under the key, sharing its result with concurrent callers.
// The second return is true when the result came from another caller's
// flight; the third is true when the wait budget expired and fn was run
// redundantly.
func (g *FlightGroup) Do(key string, wait time.Duration, fn func() (interface{}, error)) (result interface{}, shared bool, contended bool, err error) {
	g.mu.Lock()
	if f, ok := g.flights[key]; ok {
		g.mu.Unlock()

		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-f.done:
			return f.result, true, false, f.err
		case <-timer.C:
			// Holder is slow; compute independently rather than block.
			result, err = fn()
			return result, false, true, err
		}
	}

	f := &flight{done: make(chan struct{})}
	g.flights[key] = f
	g.mu.Unlock()

	f.result, f.err = fn()
	close(f.done)

	g.mu.Lock()
	delete(g.flights, key)
	g.mu.Unlock()

	return f.result, false, false, f.err
}
