//go:build linux

package port

import (
	"time"

	"golang.org/x/sys/unix"

	"github.com/kernelsim/statego/kernel"
)

// LinuxTickSource drives kernel.Tick() from a real timerfd, giving the
// simulation a genuine asynchronous interrupt source rather than a
// language-runtime timer. Grounded on golang.org/x/sys/unix's
// TimerfdCreate/TimerfdSettime, the teacher corpus's only real
// avenue for a periodic OS-level wakeup.
type LinuxTickSource struct {
	period time.Duration
	fd     int
	stop   chan struct{}
}

// NewLinuxTickSource creates (but does not arm) a timerfd-backed tick
// source for the given period.
func NewLinuxTickSource(period time.Duration) (*LinuxTickSource, error) {
	fd, err := unix.TimerfdCreate(unix.CLOCK_MONOTONIC, 0)
	if err != nil {
		return nil, err
	}
	return &LinuxTickSource{period: period, fd: fd, stop: make(chan struct{})}, nil
}

// Run arms the timer and reads it once per period until Stop is
// called, calling k.Tick() on every expiry.
func (s *LinuxTickSource) Run(k *kernel.Kernel) {
	spec := unix.ItimerSpec{
		Interval: unix.NsecToTimespec(s.period.Nanoseconds()),
		Value:    unix.NsecToTimespec(s.period.Nanoseconds()),
	}
	if err := unix.TimerfdSettime(s.fd, 0, &spec, nil); err != nil {
		return
	}
	defer unix.Close(s.fd)

	buf := make([]byte, 8)
	for {
		pfds := []unix.PollFd{{Fd: int32(s.fd), Events: unix.POLLIN}}
		n, err := unix.Poll(pfds, int(s.period/time.Millisecond)+100)
		select {
		case <-s.stop:
			return
		default:
		}
		if err != nil || n == 0 {
			continue
		}
		if _, err := unix.Read(s.fd, buf); err != nil {
			continue
		}
		k.Tick()
	}
}

// Stop ends the driver loop. Safe to call once.
func (s *LinuxTickSource) Stop() { close(s.stop) }
