package kernel

// WaitQueue is the priority-sorted list of tasks parked on one
// waitable object (spec.md §3 "Wait queue"). A message buffer owns
// one, shared by whichever direction is stalled; a semaphore owns one. It threads the same
// TCB.rlink field the ready list uses, which is safe because a TCB is
// never on both at once (spec.md invariant).
type WaitQueue struct {
	list priorityList
}

// Empty reports whether any task is parked here.
func (q *WaitQueue) Empty() bool { return q.list.empty() }

// Len is the number of parked tasks.
func (q *WaitQueue) Len() int { return q.list.len() }

// Peek returns the highest-priority parked task without removing it,
// letting a waitable object inspect which waiter WakeOne would service
// next (e.g. to look up that waiter's pending transfer request) before
// committing to the wake.
func (q *WaitQueue) Peek() *TCB { return q.list.head }

func (q *WaitQueue) insert(t *TCB) {
	t.onWaitQueue = q
	q.list.insert(t)
}

func (q *WaitQueue) remove(t *TCB) {
	q.list.remove(t)
	t.onWaitQueue = nil
}

func (q *WaitQueue) reinsert(t *TCB) { q.list.reinsert(t) }

// removeWaiter implements Waitable. No kernel path calls it: wake and
// Stop dequeue a task through TCB.onWaitQueue instead.
func (q *WaitQueue) removeWaiter(t *TCB) { q.remove(t) }

// Enter acquires the kernel's critical section (spec.md §4.4). Every
// waitable object's operations bracket their state inspection and
// mutation between Enter and Exit.
func (k *Kernel) Enter() { k.g.enter() }

// Exit releases the critical section. Must be paired with every Enter
// on every exit path — ParkCurrent is the one exception, since leaving
// the section IS the suspension point and it performs the release
// itself.
func (k *Kernel) Exit() { k.g.exit() }

// ParkCurrent implements the "wait" half of the generic blocking
// protocol (spec.md §4.5). The caller must hold the critical section
// (via Enter) and must already have determined the operation cannot
// complete immediately and that deadline is not Immediate. It links
// self into q in priority order, arms a timeout unless deadline is
// Infinite, marks self BLOCKED (DELAYED instead, if timed), and then
// suspends — releasing the critical section as it does, exactly as
// spec.md's pseudocode requires ("leave critical section — SUSPENSION
// POINT").
//
// Returns the event published by whichever waker resumed self: a
// non-negative transfer count, Timeout, or Stopped.
func (k *Kernel) ParkCurrent(self *TCB, q *WaitQueue, deadline Duration) Event {
	k.readyRemove(self)
	q.insert(self)
	self.waitingOn = q
	self.state = StateBlocked
	if deadline != Infinite {
		self.deadline = deadline.Deadline(k.tickCount)
		self.state = StateDelayed
		k.timer.schedule(self)
	}
	k.reschedule()

	next := k.ready.head
	k.running = next
	k.g.exit()

	k.give(next)
	<-self.resume

	return self.event
}

// wake is the shared core of the waker protocol (spec.md §4.5): unlink
// t from whatever wait queue and/or timer-list entry it holds, publish
// event into its slot, and make it READY. Must be called with the
// critical section held.
func (k *Kernel) wake(t *TCB, event Event) {
	if t.onWaitQueue != nil {
		t.onWaitQueue.remove(t)
	}
	if t.onTimer {
		k.timer.cancel(t)
	}
	t.waitingOn = nil
	t.event = event
	k.readyInsert(t)
	k.logf("wake: %s event=%d", t.Name, event)
}

// WakeOne wakes the highest-priority (longest-waiting, within a
// priority band) task parked on q, publishing event. Reports whether a
// task was woken. Must be called with the critical section held; the
// caller releases it afterward and should call Checkpoint if it is
// itself a task, so a now-higher-priority waiter preempts promptly.
func (k *Kernel) WakeOne(q *WaitQueue, event Event) bool {
	if q.list.empty() {
		return false
	}
	k.wake(q.list.head, event)
	k.reschedule()
	return true
}

// WakeAll wakes every task parked on q, publishing event to each, in
// priority order. Used by an object's kill/delete operation (spec.md
// §3, §4.5, §8 "Kill semantics"). Returns the number woken.
func (k *Kernel) WakeAll(q *WaitQueue, event Event) int {
	n := 0
	for !q.list.empty() {
		k.wake(q.list.head, event)
		n++
	}
	if n > 0 {
		k.reschedule()
	}
	return n
}

// Checkpoint is the scheduling-point hook described in
// SPEC_FULL.md §0/§9: every task-owned entry point calls it after
// releasing the critical section following a kernel operation that
// may have changed the ready-list head (a wake, a yield, an unlock).
// If self is no longer the ready-list head, self hands its run token
// to whichever task now is and blocks until the token returns to it —
// this is the Go rewrite's rendition of "arm the pending-switch
// exception" followed by that exception's eventual delivery. See
// DESIGN.md for why delivery happens at the next kernel-call boundary
// rather than at an arbitrary instruction.
func (k *Kernel) Checkpoint(self *TCB) {
	k.g.enter()
	next := k.ready.head
	if next == self {
		k.running = self
		k.g.exit()
		return
	}
	k.running = next
	k.g.exit()

	k.logf("checkpoint: %s yields run token to %s", self.Name, next.Name)
	k.give(next)
	<-self.resume
}
