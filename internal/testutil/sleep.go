package testutil

import (
	"context"
	"sync"
	"time"
)

// FakeSleeper records requested sleeps and returns immediately.
//
// Satisfies the engine's Sleeper interface without importing it, so
// in-package engine tests can use it.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type FakeSleeper struct {
	mu     sync.Mutex
	sleeps []time.Duration
}

// NewFakeSleeper creates a sleeper with no recorded sleeps.
func NewFakeSleeper() *FakeSleeper {
	return &FakeSleeper{}
}

// Sleep records d. It still honours cancellation so tests can cover the
// context path.
func (s *FakeSleeper) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sleeps = append(s.sleeps, d)
	return nil
}

// Sleeps returns a copy of the recorded durations in call order.
func (s *FakeSleeper) Sleeps() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.sleeps...)
}

// Total returns the sum of all recorded durations.
func (s *FakeSleeper) Total() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total time.Duration
	for _, d := range s.sleeps {
		total += d
	}
	return total
}

// Reset forgets recorded sleeps.
func (s *FakeSleeper) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sleeps = nil
}

// FixedSeeds hands out seeds in order, then repeats the last one.
type FixedSeeds struct {
	mu    sync.Mutex
	seeds []int64
	idx   int
}

// NewFixedSeeds creates a seed source. With no seeds it always returns 0.
func NewFixedSeeds(seeds ...int64) *FixedSeeds {
	return &FixedSeeds{seeds: seeds}
}

// NextSeed returns the next predetermined seed.
func (f *FixedSeeds) NextSeed() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.seeds) == 0 {
		return 0
	}
	seed := f.seeds[min(f.idx, len(f.seeds)-1)]
	f.idx++
	return seed
}
