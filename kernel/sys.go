package kernel

import "math"

// LowestPriority is reserved for the idle task: no application task
// should be spawned at this priority, since the idle task's
// always-ready invariant (spec.md §4.7) depends on nothing else ever
// tying or beating it.
const LowestPriority = math.MaxInt32

// newTCB allocates a TCB in the NEW state (spec.md §3 "Lifecycle").
func (k *Kernel) newTCB(name string, entry func(Context), arg any, priority int) *TCB {
	return &TCB{
		Name:     name,
		priority: priority,
		basePrio: priority,
		state:    StateNew,
		entry:    entry,
		arg:      arg,
		resume:   make(chan struct{}, 1),
		exited:   make(chan struct{}),
		k:        k,
	}
}

// Spawn creates a task (spec.md §6 "create"): its entry function will
// be invoked with a Context once it is started and first dispatched.
// The task remains NEW, and off every list, until Start is called.
func (k *Kernel) Spawn(name string, entry func(Context), arg any, priority int) *TCB {
	return k.newTCB(name, entry, arg, priority)
}

// Start transitions a NEW task to READY and links it into the ready
// list (spec.md §6 "start"). No-op if already started.
func (t *TCB) Start() {
	k := t.k
	k.g.enter()
	if t.state != StateNew {
		k.g.exit()
		return
	}
	k.readyInsert(t)
	k.reschedule()
	k.g.exit()
}

// Stop removes a task from scheduling (spec.md §6 "stop"): unlinks it
// from the ready list or wait queue and the timer list, and marks it
// SUSPENDED. A suspended task never runs again: Start is a no-op on
// any task that is not NEW, so spawning a fresh TCB is the way to run
// the same logic again (the entry function has already returned or is
// paused mid-stack with no portable way to rewind it).
func (t *TCB) Stop() {
	k := t.k
	k.g.enter()
	defer k.g.exit()
	switch t.state {
	case StateReady:
		k.readyRemove(t)
	case StateBlocked, StateDelayed:
		if t.onWaitQueue != nil {
			t.onWaitQueue.remove(t)
		}
	}
	if t.onTimer {
		k.timer.cancel(t)
	}
	t.state = StateSuspended
}

// Wait blocks the calling goroutine (outside the kernel) until t's
// entry function has returned. Offered for tests and demo harnesses
// that need to observe task completion; no equivalent exists in
// spec.md because a real RTOS task never "returns" to a joiner.
func (t *TCB) Wait() { <-t.exited }

// Context is passed to a task's entry function at first dispatch
// (spec.md §3 "entry function and argument"). It is the only handle a
// task body uses to call back into the kernel, so that every
// task-owned kernel entry point can find its own TCB and perform the
// Checkpoint handoff correctly.
func (c Context) Arg() any   { return c.task.arg }
func (c Context) Self() *TCB { return c.task }

// Yield gives up the remainder of the current scheduling opportunity:
// the task re-joins the ready list at the tail of its priority band
// (round-robin) and a Checkpoint follows (spec.md §6 "yield").
func (c Context) Yield() {
	k := c.task.k
	k.g.enter()
	k.readyRemove(c.task)
	k.readyInsert(c.task)
	k.reschedule()
	k.g.exit()
	k.Checkpoint(c.task)
}

// SleepUntil suspends the calling task until the given absolute tick
// (spec.md §6 "sleep-until"). Equivalent to parking with no wait
// queue: the task can only be woken by that deadline elapsing, never
// by Stopped, since it is not waiting on any object.
func (c Context) SleepUntil(deadline Ticks) Event {
	k := c.task.k
	k.g.enter()
	if !Before(k.tickCount, deadline) {
		// deadline already elapsed (spec.md §4.3: schedule is a no-op
		// past its deadline) — return promptly instead of parking for
		// up to one full tick.
		k.g.exit()
		return Timeout
	}
	k.readyRemove(c.task)
	c.task.state = StateDelayed
	c.task.deadline = deadline
	c.task.waitingOn = nil
	k.timer.schedule(c.task)
	k.reschedule()

	next := k.ready.head
	k.running = next
	k.g.exit()

	k.give(next)
	<-c.task.resume
	return c.task.event
}

// SleepFor suspends the calling task for d ticks from now (spec.md §6
// "sleep-for"). d must not be Immediate or Infinite.
func (c Context) SleepFor(d Duration) Event {
	now := c.task.k.Now()
	return c.task.SleepUntilRaw(d.Deadline(now))
}

// SleepUntilRaw is the low-level form of SleepUntil, kept distinct so
// msgbuf/sync2 helpers that already hold a *TCB (rather than a
// Context) can reuse it without constructing one.
func (t *TCB) SleepUntilRaw(deadline Ticks) Event {
	return Context{task: t}.SleepUntil(deadline)
}
