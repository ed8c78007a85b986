// ABOUTME: VirtualTerminal implements Device for testing without a real TTY.
// ABOUTME: Feeds typed keystrokes through a pipe, captures output writes, and tracks raw-mode calls.

package terminal

import (
	"bytes"
	"fmt"
	"io"
	"sync"
)

// VirtualTerminal is a fake Device for unit tests. Keystrokes passed to
// Type are delivered on Reader; writes are recorded individually.
type VirtualTerminal struct {
	pr *io.PipeReader
	pw *io.PipeWriter

	mu         sync.Mutex
	buf        bytes.Buffer
	writes     []string
	width      int
	height     int
	tty        bool
	rawDisable bool
	rawMode    bool
	enterCount int
	exitCount  int
}

// NewVirtualTerminal returns an interactive VirtualTerminal with the given
// dimensions that supports leaving raw mode.
func NewVirtualTerminal(width, height int) *VirtualTerminal {
	pr, pw := io.Pipe()
	return &VirtualTerminal{
		pr:         pr,
		pw:         pw,
		width:      width,
		height:     height,
		tty:        true,
		rawDisable: true,
	}
}

// Reader returns the keystroke stream.
func (v *VirtualTerminal) Reader() io.Reader {
	return v.pr
}

// IsTerminal reports the configured interactivity.
func (v *VirtualTerminal) IsTerminal() bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.tty
}

// SupportsRawDisable reports the configured capability.
func (v *VirtualTerminal) SupportsRawDisable() bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.rawDisable
}

// EnterRawMode records a raw-mode entry.
func (v *VirtualTerminal) EnterRawMode() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.tty {
		return fmt.Errorf("entering raw mode: not a terminal")
	}
	v.rawMode = true
	v.enterCount++
	return nil
}

// ExitRawMode records a raw-mode exit.
func (v *VirtualTerminal) ExitRawMode() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.tty {
		return fmt.Errorf("exiting raw mode: not a terminal")
	}
	v.rawMode = false
	v.exitCount++
	return nil
}

// Size returns the configured terminal dimensions.
func (v *VirtualTerminal) Size() (width, height int, err error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.width, v.height, nil
}

// Write records one output write.
func (v *VirtualTerminal) Write(p []byte) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	n, err := v.buf.Write(p)
	if err != nil {
		return n, fmt.Errorf("writing to virtual buffer: %w", err)
	}
	v.writes = append(v.writes, string(p))
	return n, nil
}

// --- Test helpers (not part of Device) ---

// Type delivers s on the keystroke stream. It blocks until a reader has
// consumed all of it.
func (v *VirtualTerminal) Type(s string) error {
	if _, err := io.WriteString(v.pw, s); err != nil {
		return fmt.Errorf("typing %q: %w", s, err)
	}
	return nil
}

// Close ends the keystroke stream; readers see io.EOF.
func (v *VirtualTerminal) Close() error {
	return v.pw.Close()
}

// SetTerminal sets whether the terminal reports itself as interactive.
func (v *VirtualTerminal) SetTerminal(tty bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.tty = tty
}

// SetRawDisable sets the SupportsRawDisable capability.
func (v *VirtualTerminal) SetRawDisable(ok bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.rawDisable = ok
}

// Output returns everything written so far.
func (v *VirtualTerminal) Output() string {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.buf.String()
}

// Writes returns each Write call's payload in order.
func (v *VirtualTerminal) Writes() []string {
	v.mu.Lock()
	defer v.mu.Unlock()

	out := make([]string, len(v.writes))
	copy(out, v.writes)
	return out
}

// Reset clears recorded output.
func (v *VirtualTerminal) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.buf.Reset()
	v.writes = nil
}

// IsRawMode reports whether raw mode is currently active.
func (v *VirtualTerminal) IsRawMode() bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.rawMode
}

// EnterCount returns how many times EnterRawMode succeeded.
func (v *VirtualTerminal) EnterCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.enterCount
}

// ExitCount returns how many times ExitRawMode succeeded.
func (v *VirtualTerminal) ExitCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.exitCount
}
