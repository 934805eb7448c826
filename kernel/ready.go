package kernel

// readyInsert places task in the sorted ready list behind all tasks of
// higher-or-equal priority, per spec.md §4.1 "insert". Used both for a
// freshly-started task and for a task re-added after a wake or a yield
// (which lands it at the tail of its priority band — round-robin).
func (k *Kernel) readyInsert(t *TCB) {
	t.state = StateReady
	t.deadline = 0
	k.ready.insert(t)
}

// readyRemove unlinks task from the ready list (spec.md §4.1 "remove").
func (k *Kernel) readyRemove(t *TCB) {
	k.ready.remove(t)
}

// readyCurrent is the ready list head: the task that should be
// executing (spec.md §4.1 "current"). Never nil once the kernel has
// been initialized, because the idle task is always ready.
func (k *Kernel) readyCurrent() *TCB {
	return k.ready.head
}
