// Package test provides the small assertion helpers used throughout this
// module's tests, in the style of restic's internal/test "rtest" package:
// callers write `test.OK(t, err)` and `test.Equals(t, want, got)` instead
// of hand-rolling `if err != nil { t.Fatal(err) }` everywhere.
package test

import (
	"fmt"
	"path/filepath"
	"reflect"
	"runtime"

	"github.com/google/go-cmp/cmp"
)

// TB is the subset of testing.TB used here, so these helpers work from
// both *testing.T and *testing.B without importing "testing" into
// non-test builds.
type TB interface {
	Helper()
	Fatalf(format string, args ...interface{})
}

// Assert fails the test if the condition is false.
func Assert(tb TB, condition bool, format string, args ...interface{}) {
	tb.Helper()
	if !condition {
		_, file, line, _ := runtime.Caller(1)
		file = filepath.Base(file)
		tb.Fatalf("%s:%d: "+format, append([]interface{}{file, line}, args...)...)
	}
}

// OK fails the test if err is not nil.
func OK(tb TB, err error) {
	tb.Helper()
	if err != nil {
		_, file, line, _ := runtime.Caller(1)
		file = filepath.Base(file)
		tb.Fatalf("%s:%d: unexpected error: %+v", file, line, err)
	}
}

// Equals fails the test if want and got are not deeply equal, printing a
// structural diff via go-cmp when they aren't.
func Equals(tb TB, want, got interface{}) {
	tb.Helper()
	if reflect.DeepEqual(want, got) {
		return
	}
	_, file, line, _ := runtime.Caller(1)
	file = filepath.Base(file)
	diff := cmp.Diff(want, got)
	tb.Fatalf("%s:%d: mismatch (-want +got):\n%s", file, line, diff)
}

// ErrIs fails the test unless err is target or prints the same message as
// target; wrapped errors are not unwrapped to search their cause chain.
func ErrIs(tb TB, err, target error, msg string) {
	tb.Helper()
	if err != target && fmt.Sprintf("%v", err) != fmt.Sprintf("%v", target) {
		_, file, line, _ := runtime.Caller(1)
		file = filepath.Base(file)
		tb.Fatalf("%s:%d: %s: want error %v, got %v", file, line, msg, target, err)
	}
}
