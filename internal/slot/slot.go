// Package slot provides a single outbound request slot. A panel holds the slot
// for the lifetime of one request, so a second request from the same panel is
// rejected instead of queued.
package slot

import (
	"sync"

	"golang.org/x/sync/semaphore"
)

// Slot guards one logical request. The zero value is not usable; use New.
type Slot struct {
	// mu makes the permit and held change together, so Busy never disagrees
	// with a TryAcquire that has already returned.
	mu   sync.Mutex
	sem  *semaphore.Weighted
	held bool
}

// New returns an idle slot.
func New() *Slot {
	return &Slot{sem: semaphore.NewWeighted(1)}
}

// TryAcquire claims the slot without blocking. It returns false when a
// ticket is already outstanding.
func (s *Slot) TryAcquire() (*Ticket, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.sem.TryAcquire(1) {
		return nil, false
	}
	s.held = true
	return &Ticket{slot: s}, true
}

// Busy reports whether a ticket is outstanding.
func (s *Slot) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.held
}

// Ticket is the proof of ownership handed out by TryAcquire.
type Ticket struct {
	slot *Slot
	once sync.Once
}

// Release frees the slot. Only the first call has an effect; it returns true
// for that call and false afterwards.
func (t *Ticket) Release() bool {
	if t == nil {
		return false
	}
	released := false
	t.once.Do(func() {
		t.slot.mu.Lock()
		t.slot.held = false
		t.slot.sem.Release(1)
		t.slot.mu.Unlock()
		released = true
	})
	return released
}
