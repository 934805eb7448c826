//go:build linux

package port

import (
	"golang.org/x/sys/unix"

	"github.com/kernelsim/statego/kernel"
)

// InstallLinuxIdle replaces kernel.IdleHook with a real "wait for
// interrupt" analogue: unix.Ppoll on an empty descriptor set with a
// timeout, which parks the idle task's goroutine in the kernel rather
// than spinning a user-space loop. The timeout caps how long a missed
// wakeup (there shouldn't be one, since Checkpoint always re-evaluates
// the ready list after IdleHook returns) could delay noticing new work.
func InstallLinuxIdle() {
	kernel.IdleHook = func() {
		ts := unix.NsecToTimespec((1 * 1e6)) // 1ms
		_, _ = unix.Ppoll(nil, &ts, nil)
	}
}
