package sync2

import "github.com/kernelsim/statego/kernel"

// Event is a manual- or auto-reset event: Wait blocks until Set is
// called, or returns immediately if the event is already signaled.
// The simplest possible framework consumer — included because spec.md
// positions the message buffer as "the canonical example" of the
// wait/wake framework, implying siblings exist to generalize to.
type Event struct {
	k         *kernel.Kernel
	queue     kernel.WaitQueue
	signaled  bool
	autoReset bool
}

// NewEvent creates an event in the unsignaled state. If autoReset is
// true, a successful Wait clears the signal for the next waiter
// (exactly one waiter is released per Set); otherwise Set stays sticky
// until Reset is called explicitly.
func NewEvent(k *kernel.Kernel, autoReset bool) *Event {
	return &Event{k: k, autoReset: autoReset}
}

// Wait blocks until the event is signaled or the deadline elapses.
func (e *Event) Wait(ctx kernel.Context, deadline kernel.Duration) kernel.Event {
	self := ctx.Self()
	e.k.Enter()
	if e.signaled {
		if e.autoReset {
			e.signaled = false
		}
		e.k.Exit()
		e.k.Checkpoint(self)
		return 0
	}
	if deadline == kernel.Immediate {
		e.k.Exit()
		return kernel.Timeout
	}
	return e.k.ParkCurrent(self, &e.queue, deadline)
}

// Set signals the event. A manual-reset event wakes every parked
// waiter and stays signaled for future callers; an auto-reset event
// wakes at most one waiter and only stays signaled if none was parked
// to consume it immediately.
func (e *Event) Set() {
	e.k.Enter()
	if e.autoReset {
		if e.k.WakeOne(&e.queue, 0) {
			e.k.Exit()
			return
		}
		e.signaled = true
		e.k.Exit()
		return
	}
	e.signaled = true
	e.k.WakeAll(&e.queue, 0)
	e.k.Exit()
}

// Reset clears the signal without waking anyone.
func (e *Event) Reset() {
	e.k.Enter()
	e.signaled = false
	e.k.Exit()
}

// IsSet reports the current signal state (observational, ISR-safe).
func (e *Event) IsSet() bool {
	e.k.Enter()
	defer e.k.Exit()
	return e.signaled
}
