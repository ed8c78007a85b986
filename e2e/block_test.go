// ABOUTME: E2E tests for the block command: q releases, Ctrl+C and SIGTERM exit with the terminal restored
// ABOUTME: Runs the real binary under a PTY so raw mode and signal handling are exercised

//go:build !windows

package e2e

import (
	"errors"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"
)

func TestBlock_QReleases(t *testing.T) {
	if testing.Short() {
		t.Skip("e2e tests skipped in short mode")
	}

	s := startKeyblock(t)
	defer s.close()

	// Raw mode is on once the cursor is hidden.
	s.expectStringTimeout(t, ansi.HideCursor, 5*time.Second)

	s.send(t, "ab")
	s.expectStringTimeout(t, ansi.EraseLineRight, 5*time.Second)

	s.send(t, "q")

	if code := s.waitExit(t, 5*time.Second); code != 0 {
		t.Errorf("exit code = %d, want 0", code)
	}
	if !strings.Contains(s.output(), ansi.ShowCursor) {
		t.Errorf("cursor not shown again; output: %q", s.output())
	}
	if strings.Contains(s.output(), "ab") {
		t.Errorf("typed keys should not be echoed; output: %q", s.output())
	}
}

func TestBlock_CtrlCExitsZero(t *testing.T) {
	if testing.Short() {
		t.Skip("e2e tests skipped in short mode")
	}

	s := startKeyblock(t)
	defer s.close()

	s.expectStringTimeout(t, ansi.HideCursor, 5*time.Second)

	s.sendCtrl(t, 'c')

	if code := s.waitExit(t, 5*time.Second); code != 0 {
		t.Errorf("exit code = %d, want 0", code)
	}
	if !strings.Contains(s.output(), ansi.ShowCursor) {
		t.Errorf("cursor not restored on Ctrl+C; output: %q", s.output())
	}
}

func TestBlock_SIGTERMRestoresTerminal(t *testing.T) {
	if testing.Short() {
		t.Skip("e2e tests skipped in short mode")
	}

	s := startKeyblock(t)
	defer s.close()

	s.expectStringTimeout(t, ansi.HideCursor, 5*time.Second)
	// An erased key proves the signal watcher is installed.
	s.send(t, "a")
	s.expectStringTimeout(t, ansi.EraseLineRight, 5*time.Second)

	if err := s.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		t.Fatal(err)
	}

	if code := s.waitExit(t, 5*time.Second); code != 143 {
		t.Errorf("exit code = %d, want 143", code)
	}
	if !strings.Contains(s.output(), ansi.ShowCursor) {
		t.Errorf("cursor not restored on SIGTERM; output: %q", s.output())
	}
}

func TestBlock_SIGINTOnPipeInputExitsZero(t *testing.T) {
	if testing.Short() {
		t.Skip("e2e tests skipped in short mode")
	}

	// With a pipe on stdin there is no raw mode, so Ctrl+C arrives as SIGINT.
	cmd := exec.Command(binPath, "-dir", t.TempDir())
	cmd.Env = append(os.Environ(), "KEYBLOCK_CONFIG_DIR="+t.TempDir())
	stdin, err := cmd.StdinPipe()
	if err != nil {
		t.Fatal(err)
	}
	defer stdin.Close()
	out := &lockedBuffer{}
	cmd.Stdout = out
	if err := cmd.Start(); err != nil {
		t.Fatalf("starting keyblock: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()
	exited := false
	defer func() {
		if !exited {
			_ = cmd.Process.Kill()
			<-done
		}
	}()

	// An erased key proves the session and its signal watcher are live.
	if _, err := stdin.Write([]byte("a")); err != nil {
		t.Fatal(err)
	}
	waitForOutput(t, out, ansi.EraseLineRight, 5*time.Second)

	if err := cmd.Process.Signal(os.Interrupt); err != nil {
		t.Fatal(err)
	}

	select {
	case err := <-done:
		exited = true
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			t.Fatalf("exit code = %d, want 0", exitErr.ExitCode())
		} else if err != nil {
			t.Fatalf("waiting for keyblock: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("keyblock did not exit on SIGINT; output so far: %q", out.String())
	}
	if !strings.HasSuffix(out.String(), ansi.ShowCursor) {
		t.Errorf("cursor not restored on SIGINT; output: %q", out.String())
	}
}

func TestBlock_NoOverwrite(t *testing.T) {
	if testing.Short() {
		t.Skip("e2e tests skipped in short mode")
	}

	s := startKeyblock(t, "-no-overwrite")
	defer s.close()

	s.expectStringTimeout(t, ansi.HideCursor, 5*time.Second)
	s.send(t, "xyq")

	if code := s.waitExit(t, 5*time.Second); code != 0 {
		t.Errorf("exit code = %d, want 0", code)
	}
	if strings.Contains(s.output(), ansi.EraseLineRight) {
		t.Errorf("-no-overwrite should not erase; output: %q", s.output())
	}
}

func TestVersion(t *testing.T) {
	if testing.Short() {
		t.Skip("e2e tests skipped in short mode")
	}

	out, err := exec.Command(binPath, "-version").Output()
	if err != nil {
		t.Fatalf("keyblock -version: %v", err)
	}
	if !strings.HasPrefix(string(out), "keyblock ") {
		t.Errorf("version output = %q", out)
	}
}
