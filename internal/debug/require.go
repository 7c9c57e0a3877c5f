package debug

import "fmt"

// Require panics with a contract-violation error if cond is false.
//
// Unlike [Assert], Require is unconditional: it runs in every build and is
// the sole error-signaling mechanism for the conditions in spec §7 (double
// free, out-of-memory, splitting a non-splittable block, and so on). This
// module has no recoverable error-value path for those conditions — they
// are designed to stop the process immediately.
func Require(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Errorf("arenagc: contract violation: "+format, args...))
	}
}
