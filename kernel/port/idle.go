package port

import (
	"runtime"
	"time"

	"github.com/kernelsim/statego/kernel"
)

// InstallGenericIdle replaces kernel.IdleHook with the portable
// low-power stand-in: a brief Gosched plus sleep, the same default
// kernel ships with but named here so the demo binary can choose it
// explicitly alongside the Linux variant.
func InstallGenericIdle() {
	kernel.IdleHook = func() {
		runtime.Gosched()
		time.Sleep(time.Millisecond)
	}
}
