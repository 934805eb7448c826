package kernel

import "sync"

// guard is the real critical section of spec.md §4.4. On hardware this
// raises the interrupt-priority mask; here it is a plain mutex, because
// the Go rewrite has no ISR context to mask — the tick driver and every
// task call into the kernel as ordinary goroutines and all of them
// serialize on this same lock, matching "all kernel data structures may
// be read or written only inside a critical section." It is deliberately
// not reentrant: nesting is a programming error, exactly as a second
// mask-raise on hardware would be a no-op masking an already-masked
// level and must not be relied upon.
type guard struct {
	mu sync.Mutex
}

// enter acquires the section. Callers must exit on every return path,
// conventionally via `defer g.exit()` immediately after enter returns.
func (g *guard) enter() { g.mu.Lock() }

func (g *guard) exit() { g.mu.Unlock() }
