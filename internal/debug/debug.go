//go:build debug

// Package debug includes debugging and contract-assertion helpers shared by
// the arena allocator and garbage collector.
//
// There is no recoverable error path for a contract violation anywhere in
// this module (see spec §7): every precondition failure, structural
// invariant breach, or out-of-memory condition is signaled by [Require]
// panicking. Build with -tags debug to additionally get the expensive
// self-checks in [Assert] and verbose, filterable tracing of every
// block-chain mutation via [Log].
package debug

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/timandy/routine"

	"github.com/vasil-sd/arenagc/internal/xflag"
)

// Enabled is true if the compiler is being built with the debug tag, which
// enables verbose block-chain and GC tracing.
const Enabled = true

var (
	debugPattern = xflag.Func("filter", "regexp to filter debug logs by", regexp.Compile)
	nocapture    = flag.Bool("nocapture", false, "disables capturing debug logs as test logs")
)

// Log prints one trace line for a block-chain or collector operation to
// stderr (or to the current test's log, when running under [WithTesting]).
//
// at attributes the line to a location — an arena's Lowest(), a block's
// Address(), or nil if the operation has no single address to point at
// (e.g. a whole-chain walk). Every mutation this module makes to a block
// chain happens at some address, so Log is built around that instead of
// the free-form leading-context convention a general-purpose debug
// package would use.
func Log(at fmt.Stringer, operation string, format string, args ...any) {
	skip := 1
again:
	pc, file, line, _ := runtime.Caller(skip)

	fn := runtime.FuncForPC(pc)
	name := fn.Name()
	name = name[strings.LastIndex(name, ".")+1:]
	if strings.HasPrefix(name, "log") || strings.Contains(name, "Log") {
		skip++
		goto again
	}

	pkg := fn.Name()
	pkg = strings.TrimPrefix(pkg, "github.com/vasil-sd/arenagc/")
	pkg = strings.TrimPrefix(pkg, "pkg/")
	pkg = pkg[:strings.Index(pkg, ".")]

	file = filepath.Base(file)

	buf := new(strings.Builder)

	_, _ = fmt.Fprintf(buf, "%s/%s:%d [g%04d", pkg, file, line, routine.Goid())
	if at != nil {
		_, _ = fmt.Fprintf(buf, " at %s", at.String())
	}
	_, _ = fmt.Fprintf(buf, "] %s: ", operation)
	_, _ = fmt.Fprintf(buf, format, args...)

	if *debugPattern != nil &&
		!(*debugPattern).MatchString(buf.String()) {
		return
	}

	t := tls.Get()
	if !*nocapture && t != nil {
		t.Log(buf.String())
		return
	}

	_, _ = buf.Write([]byte{'\n'})
	_, _ = os.Stderr.WriteString(buf.String())
	_ = os.Stderr.Sync()
}

// Assert panics if cond is false, but only in debug mode.
//
// Use Assert for expensive, self-check-style invariants (e.g. walking the
// whole block chain to confirm no overlaps) that are too costly to run on
// every call in production. Use [Require] for the mandatory, always-fatal
// contract checks in spec §7.
func Assert(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Errorf("arenagc: internal assertion failed: "+format, args...))
	}
}

// Value is a value of any type that only exists when the debug tag is
// enabled. When disabled, this struct is replaced with an empty struct.
type Value[T any] struct {
	x T
}

// Get returns a pointer to this value. Panics if not in debug mode.
func (v *Value[T]) Get() *T { return &v.x }
