//go:build !debug

package kernel

// Assert is a no-op in non-debug builds: the check it performs under
// the debug tag is a programmer-misuse guard, never something a
// correct caller should pay for in production.
func Assert(cond bool, format string, args ...any) {}
