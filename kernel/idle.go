package kernel

import (
	"runtime"
	"time"
)

// IdleHook is called by the idle task on every iteration it is
// actually dispatched, standing in for the "platform low-power
// instruction" spec.md §4.7 allows the idle task to execute. The
// default merely yields the OS thread briefly; kernel/port installs a
// real wait-for-interrupt-flavored hook (e.g. a poll with no file
// descriptors and a timeout) for platforms that support one.
var IdleHook func() = func() {
	runtime.Gosched()
	time.Sleep(time.Millisecond)
}

// idleEntry is the idle task's body: the lowest-priority task, always
// READY, that exists only to make readyCurrent total (spec.md §4.7).
func idleEntry(c Context) {
	k := c.task.k
	for {
		IdleHook()
		k.Checkpoint(c.task)
	}
}
