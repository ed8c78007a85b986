// ABOUTME: Windows raw-mode capability for ProcessTerminal.
// ABOUTME: Turning raw mode back off mid-process destabilizes the console input handle.

//go:build windows

package terminal

// Resetting the console mode after raw input leaves some consoles
// dropping or duplicating keys for the rest of the process, so the
// terminal stays raw until the process exits.
const rawDisableReliable = false
