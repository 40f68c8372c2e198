package utils

import (
	"fmt"
	"os"
	"runtime/debug"
)

// GoSafe runs fn in a new goroutine and recovers from panics so one bad
// branch of a fan-out cannot take down the process.
func GoSafe(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				fmt.Fprintf(os.Stderr, "recovered from panic: %v\n%s", r, debug.Stack())
			}
		}()
		fn()
	}()
}
