//go:build !debug

package debug

import "fmt"

// Enabled is false in non-debug builds: [Log] is a no-op and [Assert] never
// panics (use [Require] for checks that must run unconditionally).
const Enabled = false

func Log(fmt.Stringer, string, string, ...any) {}
func Assert(bool, string, ...any)              {}

type Value[T any] struct {
	_ struct{}
}

// Get panics: [Value] only holds storage in debug builds.
func (v *Value[T]) Get() *T {
	panic("arenagc: called Value.Get() when not in debug mode")
}
