// Package port is the only machine-adjacent layer of this module: the
// tick source that drives kernel.Tick() from a real periodic interrupt
// analogue, and the idle task's low-power wait hook. spec.md §4.2's
// context-switch trampoline contract (FirstStart/SaveAndSwap) is
// implemented directly in package kernel as (*Kernel).give and
// (*Kernel).Checkpoint/ParkCurrent rather than re-exported here — see
// DESIGN.md for why splitting the run-token handoff across a package
// boundary bought nothing once the TCB's resume channel already lives
// in kernel. This package documents the contract those functions
// satisfy and supplies everything that genuinely differs by platform.
package port

import "github.com/kernelsim/statego/kernel"

// TickSource drives a kernel's tick count from some periodic source.
// Run blocks until ctx-equivalent shutdown (Stop) and should be
// started on its own goroutine.
type TickSource interface {
	// Run drives k.Tick() once per period until Stop is called.
	Run(k *kernel.Kernel)
	// Stop ends the driver goroutine's loop. Safe to call once.
	Stop()
}
