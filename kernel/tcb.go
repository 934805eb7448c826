package kernel

// State is one of the task lifecycle states named in spec.md §3.
type State int

const (
	StateNew State = iota
	StateReady
	StateDelayed
	StateBlocked
	StateSuspended
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "NEW"
	case StateReady:
		return "READY"
	case StateDelayed:
		return "DELAYED"
	case StateBlocked:
		return "BLOCKED"
	case StateSuspended:
		return "SUSPENDED"
	case StateTerminated:
		return "TERMINATED"
	default:
		return "UNKNOWN"
	}
}

// Event is the sole return channel from a suspended state (spec.md §4.5,
// §6). A non-negative value is a success count (e.g. bytes transferred);
// the two named sentinels below are the only other values a framework
// consumer ever publishes.
type Event int

const (
	// Stopped is published to every task parked on an object that was
	// killed while they waited.
	Stopped Event = -1
	// Timeout is published by the tick handler when a deadline elapses
	// before the wait was satisfied.
	Timeout Event = -2
)

// Waitable is the back-reference target spec.md §9 calls for: "a
// nullable opaque handle plus a function-pointer/vtable of
// (dequeue, publish)". WaitQueue is its only implementation, and
// TCB.waitingOn records it while a task is parked; the tick handler's
// timeout path (wake) removes a timed-out task through TCB.onWaitQueue
// rather than through this interface.
type Waitable interface {
	// removeWaiter unlinks tcb from this object's wait queue. Called
	// with the kernel critical section already held.
	removeWaiter(tcb *TCB)
}

// Context is passed to a task's entry function at first dispatch.
type Context struct {
	task *TCB
}

// TCB is the unit of scheduling (spec.md §3).
type TCB struct {
	Name     string
	priority int // fixed at creation; may be temporarily raised (priority inheritance)
	basePrio int // the priority fixed at creation, restored once inheritance ends

	state State

	// rlink is the single intrusive link used for EITHER the ready list
	// or a wait queue — never both at once (spec.md invariant).
	rlink link
	// onWaitQueue records the wait queue rlink currently threads; nil
	// when rlink threads the ready list or no list at all.
	onWaitQueue *WaitQueue

	// tlink is the separate intrusive link for the process-wide timer
	// list; present (onTimer true) iff the task has an active wakeup
	// deadline.
	tlink    link
	onTimer  bool
	deadline Ticks

	waitingOn Waitable // nullable back-reference, for timeout/kill dequeue
	event     Event    // published by wake(), read by the waiter on resumption

	entry func(Context)
	arg   any

	// resume is the run token described in SPEC_FULL.md §0: the
	// goroutine-based stand-in for "saved stack pointer". A task's
	// goroutine blocks receiving from resume whenever it is not the
	// currently executing task.
	resume  chan struct{}
	started bool
	exited  chan struct{}

	k *Kernel
}

// Priority returns the task's current effective priority (possibly
// raised by priority inheritance; see sync2.Mutex).
func (t *TCB) Priority() int { return t.priority }

// State returns the task's current lifecycle state.
func (t *TCB) State() State { return t.state }

// SetPriority raises or lowers t's effective priority, re-sorting
// whichever list currently holds it. Exported for sync2.Mutex's
// priority-inheritance boost; the caller must already hold the
// kernel's critical section (via (*Kernel).Enter).
func (t *TCB) SetPriority(p int) { t.setPriority(p) }

// BasePriority returns the priority fixed at creation, unaffected by
// any temporary priority-inheritance boost.
func (t *TCB) BasePriority() int { return t.basePrio }

// setPriority changes the effective priority and re-sorts whichever
// list currently holds the task, so that a priority-inheritance boost
// is reflected in the ready list's sort key synchronously (spec.md §9
// open question, resolved in DESIGN.md).
func (t *TCB) setPriority(p int) {
	if t.priority == p {
		return
	}
	t.priority = p
	if t.state == StateReady {
		t.k.ready.reinsert(t)
	} else if t.onWaitQueue != nil {
		t.onWaitQueue.reinsert(t)
	}
}
