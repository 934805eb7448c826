package kernel

// Kernel is the bring-up root holding the ready list, the timer list,
// the critical section, and the bookkeeping for which task's goroutine
// currently holds the run token.
//
// SPEC_FULL.md §0 explains the central adaptation: Go cannot swap a
// Cortex-M register file, so "the currently executing task" is modeled
// as whichever task goroutine currently holds a per-task run token
// (TCB.resume); the context-switch trampoline of spec.md §4.2 is the
// give/Checkpoint pair below, not a hand-written assembly stub.
type Kernel struct {
	g         guard
	ready     priorityList
	timer     timerList
	running   *TCB
	tickCount Ticks
	idle      *TCB
	log       func(format string, args ...any)
}

// Option configures a Kernel at construction time.
type Option func(*Kernel)

// WithLogger installs a debug sink; see klog for the production
// implementation wired to charmbracelet/log.
func WithLogger(fn func(format string, args ...any)) Option {
	return func(k *Kernel) { k.log = fn }
}

// logf is a no-op when no logger was installed.
func (k *Kernel) logf(format string, args ...any) {
	if k.log != nil {
		k.log(format, args...)
	}
}

// Logf lets a waitable object outside this package (msgbuf, sync2) log
// through the same sink as the scheduler's own events — e.g. a Kill
// broadcasting Stopped. A no-op if no logger was installed.
func (k *Kernel) Logf(format string, args ...any) { k.logf(format, args...) }

// taskName reports t.Name, or a placeholder before the kernel has
// dispatched anything yet.
func taskName(t *TCB) string {
	if t == nil {
		return "<none>"
	}
	return t.Name
}

// New creates a kernel and its idle task (spec.md §4.7), but does not
// start anything running — call Start to hand control to the
// scheduler.
func New(opts ...Option) *Kernel {
	k := &Kernel{}
	for _, opt := range opts {
		opt(k)
	}
	k.idle = k.newTCB("idle", idleEntry, nil, LowestPriority)
	k.idle.k = k
	k.readyInsert(k.idle)
	return k
}

// reschedule is spec.md §4.1's hook ("if head != previously-running
// task, arm the pending-switch exception"), called by every primitive
// that may have changed the ready-list head and by the tick handler.
// k.running still holds whichever task held the run token when this
// primitive started, since the handoff sites (Checkpoint, ParkCurrent,
// SleepUntil, taskExit) only update it after this call returns — so the
// comparison below is exactly "previously-running task" vs the new
// head. The actual handoff is still performed lazily, by those sites,
// at the next kernel-call boundary reached by whichever goroutine
// currently holds the token (see SPEC_FULL.md §0); this hook only
// decides whether one is now pending and logs it.
func (k *Kernel) reschedule() {
	next := k.ready.head
	if next != k.running {
		k.logf("reschedule: pending switch %s -> %s", taskName(k.running), taskName(next))
	}
}

// give hands the run token to t: for a task never yet dispatched, this
// is its first dispatch (spec.md §9 "port_first_start"); otherwise it
// wakes the goroutine already parked on t.resume (spec.md §9
// "port_save_and_swap").
func (k *Kernel) give(t *TCB) {
	if !t.started {
		k.firstStart(t)
		return
	}
	t.resume <- struct{}{}
}

// firstStart launches t's goroutine and hands it the run token for the
// first time, analogous to preparing a task's initial context so that
// the restore step of the trampoline jumps to its entry function
// (spec.md §3 "Lifecycle").
func (k *Kernel) firstStart(t *TCB) {
	t.started = true
	go func() {
		<-t.resume
		t.entry(Context{task: t})
		k.taskExit(t)
	}()
	t.resume <- struct{}{}
}

// taskExit runs when a task's entry function returns: it stops
// scheduling t and immediately lets the next ready task run, since t's
// goroutine is about to end and cannot itself call Checkpoint again.
func (k *Kernel) taskExit(t *TCB) {
	k.g.enter()
	k.readyRemove(t)
	t.state = StateTerminated
	next := k.ready.head
	k.running = next
	k.g.exit()
	if next != t {
		k.give(next)
	}
	close(t.exited)
}

// Start hands control to the scheduler (spec.md §6 "sys_start") and
// never returns: it dispatches the current ready-list head and then
// blocks the calling goroutine forever, since all further execution
// happens on task and driver goroutines.
func (k *Kernel) Start() {
	k.g.enter()
	head := k.ready.head
	k.running = head
	k.g.exit()
	k.give(head)
	select {}
}

// Tick is sys_tick (spec.md §6): invoked from the platform's periodic
// timer driver (kernel/port). It increments the tick count and wakes
// every task whose deadline has elapsed, in ascending-deadline order
// (spec.md §4.3, §5: "tick() increments time before scanning
// deadlines").
func (k *Kernel) Tick() {
	k.g.enter()
	k.tickCount++
	now := k.tickCount
	woke := false
	for k.timer.head != nil && !Before(now, k.timer.head.deadline) {
		k.wake(k.timer.head, Timeout)
		woke = true
	}
	if woke {
		k.reschedule()
	}
	k.g.exit()
}

// Now returns the current tick count.
func (k *Kernel) Now() Ticks {
	k.g.enter()
	defer k.g.exit()
	return k.tickCount
}
