//go:build debug

package kernel

import "fmt"

// Assert panics if cond is false, reporting msg. Compiled only under
// the debug build tag, mirroring the teacher's Assert(...) calls in
// src/tq.go/src/dlq.go and original_source/StateOS's assert() use: a
// programmer-misuse check (e.g. calling a blocking operation from an
// ISR-safe context), not an ordinary fallible outcome — those are
// reported through Event values, never a panic or error.
func Assert(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf("kernel: assertion failed: "+format, args...))
	}
}
