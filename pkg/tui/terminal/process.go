// ABOUTME: ProcessTerminal implements Device over *os.File handles using golang.org/x/term.
// ABOUTME: Manages raw mode state; the raw-disable capability comes from platform files.

package terminal

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

// ProcessTerminal is a real terminal backed by file handles, normally
// os.Stdin and os.Stdout.
type ProcessTerminal struct {
	in  *os.File
	out *os.File

	mu       sync.Mutex
	oldState *term.State
}

// NewProcessTerminal returns a ProcessTerminal on the process's stdin and stdout.
func NewProcessTerminal() *ProcessTerminal {
	return NewFileTerminal(os.Stdin, os.Stdout)
}

// NewFileTerminal returns a ProcessTerminal reading from in and writing to out.
func NewFileTerminal(in, out *os.File) *ProcessTerminal {
	return &ProcessTerminal{in: in, out: out}
}

// Reader returns the input file. Returning the *os.File itself (rather
// than the ProcessTerminal) lets readers use fd-based cancellation.
func (t *ProcessTerminal) Reader() io.Reader {
	return t.in
}

// IsTerminal reports whether the input file is a tty. Cygwin and MSYS
// ptys are named pipes that x/term cannot put in raw mode, so they
// report false and are treated like any other non-terminal stream.
func (t *ProcessTerminal) IsTerminal() bool {
	return isatty.IsTerminal(t.in.Fd())
}

// SupportsRawDisable reports whether ExitRawMode is safe on this platform.
func (t *ProcessTerminal) SupportsRawDisable() bool {
	return rawDisableReliable
}

// EnterRawMode switches the input to raw mode, saving the previous state.
// Calling it while already raw is a no-op.
func (t *ProcessTerminal) EnterRawMode() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.oldState != nil {
		return nil
	}
	state, err := term.MakeRaw(int(t.in.Fd()))
	if err != nil {
		return fmt.Errorf("entering raw mode: %w", err)
	}
	t.oldState = state
	return nil
}

// ExitRawMode restores the terminal to the state saved by EnterRawMode.
func (t *ProcessTerminal) ExitRawMode() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.oldState == nil {
		return nil
	}
	if err := term.Restore(int(t.in.Fd()), t.oldState); err != nil {
		return fmt.Errorf("exiting raw mode: %w", err)
	}
	t.oldState = nil
	return nil
}

// Size returns the current dimensions of the output terminal.
func (t *ProcessTerminal) Size() (width, height int, err error) {
	w, h, err := term.GetSize(int(t.out.Fd()))
	if err != nil {
		return 0, 0, fmt.Errorf("getting terminal size: %w", err)
	}
	return w, h, nil
}

// Write sends bytes to the output file.
func (t *ProcessTerminal) Write(p []byte) (int, error) {
	n, err := t.out.Write(p)
	if err != nil {
		return n, fmt.Errorf("writing to %s: %w", t.out.Name(), err)
	}
	return n, nil
}
