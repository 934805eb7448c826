package port

import (
	"time"

	"github.com/kernelsim/statego/kernel"
)

// TickerSource is the portable TickSource fallback, built on
// time.Ticker. Used on every platform, and the only one used on
// non-Linux builds.
type TickerSource struct {
	period time.Duration
	stop   chan struct{}
}

// NewTickerSource creates a tick source firing every period.
func NewTickerSource(period time.Duration) *TickerSource {
	return &TickerSource{period: period, stop: make(chan struct{})}
}

// Run drives k.Tick() once per period until Stop is called.
func (s *TickerSource) Run(k *kernel.Kernel) {
	t := time.NewTicker(s.period)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			k.Tick()
		case <-s.stop:
			return
		}
	}
}

// Stop ends the driver loop. Safe to call once.
func (s *TickerSource) Stop() { close(s.stop) }
