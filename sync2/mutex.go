package sync2

import "github.com/kernelsim/statego/kernel"

// Mutex is an owned lock with priority inheritance: a higher-priority
// task blocking on Lock immediately raises the current holder's
// effective priority (and, if the holder is READY, its position in the
// ready list) rather than waiting for the holder's own next scheduling
// point to notice. DESIGN.md records this as the resolution of spec.md
// §9's open question on whether inheritance is synchronous.
type Mutex struct {
	k      *kernel.Kernel
	queue  kernel.WaitQueue
	holder *kernel.TCB
}

// NewMutex creates an unlocked mutex.
func NewMutex(k *kernel.Kernel) *Mutex {
	return &Mutex{k: k}
}

// Lock acquires the mutex, blocking if it is already held. While
// blocked, the caller's priority is lent to the holder if the caller
// outranks it (lower priority value wins).
func (m *Mutex) Lock(ctx kernel.Context, deadline kernel.Duration) kernel.Event {
	self := ctx.Self()
	m.k.Enter()
	if m.holder == nil {
		m.holder = self
		m.k.Exit()
		m.k.Checkpoint(self)
		return 0
	}
	if deadline == kernel.Immediate {
		m.k.Exit()
		return kernel.Timeout
	}
	if self.Priority() < m.holder.Priority() {
		m.holder.SetPriority(self.Priority())
	}
	return m.k.ParkCurrent(self, &m.queue, deadline)
}

// TryLock is the non-blocking form: acquires the mutex if free and
// returns true, otherwise leaves it held and returns false. Never lends
// priority, since it never waits.
func (m *Mutex) TryLock(self *kernel.TCB) bool {
	m.k.Enter()
	defer m.k.Exit()
	if m.holder != nil {
		return false
	}
	m.holder = self
	return true
}

// Unlock releases the mutex. If held with a borrowed priority (because
// a higher-priority task was waiting), the holder's priority is
// restored to its base before the lock passes on. The woken task, if
// any, becomes the new holder directly — ownership transfers without a
// window where the mutex is unheld and re-contestable.
func (m *Mutex) Unlock(self *kernel.TCB) {
	m.k.Enter()
	if self.Priority() != self.BasePriority() {
		self.SetPriority(self.BasePriority())
	}
	if m.queue.Empty() {
		m.holder = nil
		m.k.Exit()
		return
	}
	next := m.queue.Peek()
	m.holder = next
	// next inherits ownership at its own priority; any other waiters
	// still queued behind it are not re-boosted onto next (single-level
	// inheritance only, per DESIGN.md).
	m.k.WakeOne(&m.queue, 0)
	m.k.Exit()
	m.k.Checkpoint(self)
}

// Holder returns the task currently holding the mutex, or nil.
func (m *Mutex) Holder() *kernel.TCB {
	m.k.Enter()
	defer m.k.Exit()
	return m.holder
}
