// ABOUTME: RestoreOnPanic recovers from panics, releases active Sessions, and prints the stack trace.
// ABOUTME: Intended for use as a deferred call in main and in goroutines that run while blocked.

package intercept

import (
	"fmt"
	"os"
	"runtime/debug"
)

// RestoreOnPanic should be deferred at the top of main. On panic it
// releases every active Session (showing the cursor and leaving raw
// mode), prints the panic value and stack trace, then exits with code 1.
func RestoreOnPanic() {
	r := recover()
	if r == nil {
		return
	}

	_ = ReleaseAll()

	fmt.Fprintf(os.Stderr, "\npanic: %v\n\n%s\n", r, debug.Stack())
	os.Exit(1)
}

// RecoverGoroutine should be deferred at the top of background goroutines
// that run while a Session is active. Unlike RestoreOnPanic it does not
// exit, leaving shutdown to the main goroutine.
func RecoverGoroutine() {
	r := recover()
	if r == nil {
		return
	}

	_ = ReleaseAll()

	fmt.Fprintf(os.Stderr, "\ngoroutine panic: %v\n\n%s\n", r, debug.Stack())
}
