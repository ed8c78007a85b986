// ABOUTME: Defines the Input and Device interfaces for raw-mode keyboard input and terminal output.
// ABOUTME: Abstracts terminal operations so implementations can target real or virtual terminals.

package terminal

import "io"

// Input is the keyboard side of a terminal: a byte stream of keystrokes
// plus the raw-mode switch of the line discipline behind it.
type Input interface {
	// Reader returns the stream keystrokes arrive on.
	Reader() io.Reader
	// IsTerminal reports whether the stream is an interactive terminal.
	// Raw-mode calls are only meaningful when it is.
	IsTerminal() bool
	EnterRawMode() error
	ExitRawMode() error
	// SupportsRawDisable reports whether leaving raw mode is reliable on
	// this host. When false, callers leave the terminal raw on release.
	SupportsRawDisable() bool
}

// Device is a terminal with both an input and an output side.
type Device interface {
	Input
	io.Writer
	Size() (width, height int, err error)
}
