// Package sync2 supplements spec.md's single canonical waitable (the
// message buffer) with the rest of the primitive family
// original_source/StateOS/kernel/inc/osmessagebuffer.h implies exists
// alongside it — a minimal demonstration that kernel's §4.5 wait/wake
// framework generalizes beyond one object.
package sync2

import "github.com/kernelsim/statego/kernel"

// Semaphore is a counting semaphore: Wait blocks while the count is
// zero, Signal increments it and wakes one waiter. The simplest
// possible consumer of the wait/wake framework — a single wait queue
// and an integer as all the local state a waitable needs.
type Semaphore struct {
	k     *kernel.Kernel
	queue kernel.WaitQueue
	count int
}

// NewSemaphore creates a semaphore with the given initial count.
func NewSemaphore(k *kernel.Kernel, initial int) *Semaphore {
	return &Semaphore{k: k, count: initial}
}

// Wait decrements the count, blocking until it is positive if
// necessary. Returns Timeout or Stopped if the wait doesn't end in a
// successful decrement.
func (s *Semaphore) Wait(ctx kernel.Context, deadline kernel.Duration) kernel.Event {
	self := ctx.Self()
	s.k.Enter()
	if s.count > 0 {
		s.count--
		s.k.Exit()
		s.k.Checkpoint(self)
		return 0
	}
	if deadline == kernel.Immediate {
		s.k.Exit()
		return kernel.Timeout
	}
	return s.k.ParkCurrent(self, &s.queue, deadline)
}

// TryWait is the ISR-safe non-blocking form: decrements and returns
// true if the count was positive, otherwise leaves it unchanged and
// returns false.
func (s *Semaphore) TryWait() bool {
	s.k.Enter()
	defer s.k.Exit()
	if s.count == 0 {
		return false
	}
	s.count--
	return true
}

// Signal increments the count and wakes one waiter if any is parked
// (ISR-safe: it never blocks and doesn't require a Context).
func (s *Semaphore) Signal() {
	s.k.Enter()
	if !s.queue.Empty() {
		s.k.WakeOne(&s.queue, 0)
	} else {
		s.count++
	}
	s.k.Exit()
}

// Count returns the current count (observational, ISR-safe).
func (s *Semaphore) Count() int {
	s.k.Enter()
	defer s.k.Exit()
	return s.count
}
