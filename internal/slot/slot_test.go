package slot

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotAcquireRelease(t *testing.T) {
	s := New()
	assert.False(t, s.Busy())

	ticket, ok := s.TryAcquire()
	require.True(t, ok)
	assert.True(t, s.Busy())

	_, again := s.TryAcquire()
	assert.False(t, again, "second acquire must fail while a ticket is outstanding")

	assert.True(t, ticket.Release())
	assert.False(t, s.Busy())

	next, ok := s.TryAcquire()
	require.True(t, ok)
	next.Release()
}

func TestTicketReleaseIsIdempotent(t *testing.T) {
	s := New()
	ticket, ok := s.TryAcquire()
	require.True(t, ok)

	assert.True(t, ticket.Release())
	assert.False(t, ticket.Release())
	assert.False(t, ticket.Release())

	// A double release must not free a slot that someone else now holds.
	other, ok := s.TryAcquire()
	require.True(t, ok)
	ticket.Release()
	assert.True(t, s.Busy())
	other.Release()
}

func TestNilTicketRelease(t *testing.T) {
	var ticket *Ticket
	assert.False(t, ticket.Release())
}

func TestSlotConcurrentAcquire(t *testing.T) {
	s := New()
	const workers = 32

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners int
		tickets []*Ticket
	)
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if ticket, ok := s.TryAcquire(); ok {
				mu.Lock()
				winners++
				tickets = append(tickets, ticket)
				mu.Unlock()
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, winners)
	for _, ticket := range tickets {
		ticket.Release()
	}
	assert.False(t, s.Busy())
}

func TestBusyAgreesWithFailedAcquire(t *testing.T) {
	for round := 0; round < 200; round++ {
		s := New()
		var (
			wg     sync.WaitGroup
			mu     sync.Mutex
			winner *Ticket
			stale  int
		)
		start := make(chan struct{})
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				ticket, ok := s.TryAcquire()
				mu.Lock()
				defer mu.Unlock()
				if ok {
					winner = ticket
					return
				}
				// The holder has not released, so the slot must read busy.
				if !s.Busy() {
					stale++
				}
			}()
		}
		close(start)
		wg.Wait()

		require.NotNil(t, winner)
		require.Zero(t, stale, "round %d: Busy() was false while a ticket was held", round)
		winner.Release()
		require.False(t, s.Busy())
	}
}
