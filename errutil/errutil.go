package errutil

import (
	"fmt"
	"os"
)

var debug = os.Getenv("DEBUG") == "1"

// First returns the first non-nil error.
func First(errs ...error) error {
	for _, e := range errs {
		if e != nil {
			return e
		}
	}
	return nil
}

func Bug(format string, msg ...any) {
	if debug {
		panic(fmt.Sprintf(format, msg...))
	}
}

func BugOn(cond bool, format string, msg ...any) {
	if debug && cond {
		Bug(format, msg...)
	}
}

func BugOnNotEq(a, b any) {
	if a == b {
		return
	}
	Bug("BUG: a != b, %v != %v", a, b)
}

// setDebug toggles assertion checks and returns a function restoring the
// previous state.
func setDebug(on bool) (restore func()) {
	prev := debug
	debug = on
	return func() { debug = prev }
}
