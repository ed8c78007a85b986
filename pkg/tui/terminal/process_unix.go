// ABOUTME: Unix raw-mode capability for ProcessTerminal.
// ABOUTME: termios restore is reliable on every unix, so Release always takes the terminal out of raw mode.

//go:build !windows

package terminal

const rawDisableReliable = true
