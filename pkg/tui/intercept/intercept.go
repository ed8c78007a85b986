// ABOUTME: Session intercepts keystrokes on a raw-mode terminal and erases their echo position.
// ABOUTME: Acquire enters raw mode and hides the cursor; Release drains pending erases and restores.

// Package intercept blocks a terminal for the duration of a Session:
// the input is put in raw mode, every keystroke is observed, and (when
// overwrite is on) the cursor is moved back and the line cleared so a
// custom-rendered prompt is not disturbed by typing.
//
// Only one Session may be active per input stream; this is the caller's
// responsibility and is not checked. Nothing else may write escape
// sequences to the Session's output while it is active.
package intercept

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/x/ansi"
	"golang.org/x/sync/errgroup"

	"github.com/mauromedda/keyblock/internal/log"
	"github.com/mauromedda/keyblock/pkg/tui/input"
	"github.com/mauromedda/keyblock/pkg/tui/key"
	"github.com/mauromedda/keyblock/pkg/tui/terminal"
)

// Options configures Acquire. The zero value blocks the process terminal
// with overwrite and cursor hiding enabled.
type Options struct {
	// Input defaults to the process terminal (stdin).
	Input terminal.Input
	// Output defaults to the process terminal (stdout).
	Output io.Writer
	// Overwrite erases each keystroke's echo position. Nil means true.
	Overwrite *bool
	// HideCursor hides the cursor while active. Nil means true.
	HideCursor *bool
	// Notifier delivers keystrokes. When nil the Session creates one on
	// Input.Reader() and stops it on Release; a caller-supplied notifier
	// is started if needed but left running.
	Notifier *input.Notifier
	// Exit ends the process on Ctrl+C. Defaults to os.Exit.
	Exit func(code int)
}

// Bool returns a pointer to b, for Options fields.
func Bool(b bool) *bool {
	return &b
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

// Session is one acquisition of a terminal.
type Session struct {
	in          terminal.Input
	out         io.Writer
	overwrite   bool
	hideCursor  bool
	notifier    *input.Notifier
	ownNotifier bool
	exit        func(int)
	unsubscribe func()

	mu       sync.Mutex
	queue    []Vector
	released bool
	failed   bool // the writer hit an error; erases are no longer queued

	wake    chan struct{}
	stop    chan struct{}
	writers errgroup.Group

	releaseOnce sync.Once
	releaseErr  error
}

// Acquire puts the input in raw mode (when it is a terminal), hides the
// cursor if requested, and starts observing keystrokes. A non-terminal
// input is not an error: raw mode is skipped and everything else runs.
func Acquire(opts Options) (*Session, error) {
	var proc *terminal.ProcessTerminal
	if opts.Input == nil || opts.Output == nil {
		proc = terminal.NewProcessTerminal()
	}

	s := &Session{
		in:         opts.Input,
		out:        opts.Output,
		overwrite:  boolOr(opts.Overwrite, true),
		hideCursor: boolOr(opts.HideCursor, true),
		notifier:   opts.Notifier,
		exit:       opts.Exit,
		wake:       make(chan struct{}, 1),
		stop:       make(chan struct{}),
	}
	if s.in == nil {
		s.in = proc
	}
	if s.out == nil {
		s.out = proc
	}
	if s.exit == nil {
		s.exit = os.Exit
	}
	if s.notifier == nil {
		s.notifier = input.NewNotifier(s.in.Reader())
		s.ownNotifier = true
	}

	tty := s.in.IsTerminal()
	if tty {
		if err := s.in.EnterRawMode(); err != nil {
			return nil, fmt.Errorf("acquiring terminal: %w", err)
		}
	}

	if s.hideCursor {
		if _, err := io.WriteString(s.out, ansi.HideCursor); err != nil {
			if tty {
				_ = s.in.ExitRawMode()
			}
			return nil, fmt.Errorf("hiding cursor: %w", err)
		}
	}

	s.writers.Go(s.drain)
	s.unsubscribe = s.notifier.Subscribe(s.handleKey)

	// Registered before the first keystroke can arrive, so the interrupt
	// hook always sees this Session.
	active.add(s)

	if err := s.notifier.Start(context.Background()); err != nil {
		_ = s.Release()
		return nil, fmt.Errorf("starting key notifier: %w", err)
	}

	log.Debug("intercept: acquired (tty=%v overwrite=%v hideCursor=%v)", tty, s.overwrite, s.hideCursor)
	return s, nil
}

// handleKey runs on the notifier goroutine once per keystroke.
func (s *Session) handleKey(ev key.Event) {
	s.mu.Lock()
	if s.released {
		s.mu.Unlock()
		return
	}

	if ev.IsInterrupt() {
		s.mu.Unlock()
		log.Debug("intercept: interrupt key")
		interrupt(0, s.exit)
		return
	}

	if !s.overwrite || s.failed {
		s.mu.Unlock()
		return
	}
	s.queue = append(s.queue, EraseVector(ev))
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default: // Already pending; the writer drains the whole queue
	}
}

// drain is the single writer for erase sequences. It runs until Release
// and flushes whatever is queued before returning.
func (s *Session) drain() error {
	for {
		select {
		case <-s.wake:
			if err := s.flush(); err != nil {
				return err
			}
		case <-s.stop:
			return s.flush()
		}
	}
}

func (s *Session) flush() error {
	s.mu.Lock()
	pending := s.queue
	s.queue = nil
	s.mu.Unlock()

	for _, v := range pending {
		if _, err := io.WriteString(s.out, v.Move()); err != nil {
			return s.fail(fmt.Errorf("moving cursor: %w", err))
		}
		if _, err := io.WriteString(s.out, ClearLine); err != nil {
			return s.fail(fmt.Errorf("clearing line: %w", err))
		}
	}
	return nil
}

// fail stops queueing once the writer has given up, so the queue cannot
// grow until Release.
func (s *Session) fail(err error) error {
	s.mu.Lock()
	s.failed = true
	s.queue = nil
	s.mu.Unlock()

	log.Debug("intercept: erase writer stopped: %v", err)
	return err
}

// Release stops observing keystrokes, writes the erase for every
// keystroke already observed, shows the cursor if it was hidden, and
// takes the input out of raw mode. Raw mode is left on when the input
// reports it cannot reliably leave it. It returns the first I/O error.
//
// Release is meant to be called once by the owner; later calls return
// the first call's result.
func (s *Session) Release() error {
	s.releaseOnce.Do(func() {
		s.releaseErr = s.release()
	})
	return s.releaseErr
}

func (s *Session) release() error {
	s.mu.Lock()
	s.released = true
	s.mu.Unlock()

	s.unsubscribe()
	close(s.stop)
	errs := []error{s.writers.Wait()}

	if s.hideCursor {
		if _, err := io.WriteString(s.out, ansi.ShowCursor); err != nil {
			errs = append(errs, fmt.Errorf("showing cursor: %w", err))
		}
	}

	if s.in.IsTerminal() {
		if s.in.SupportsRawDisable() {
			errs = append(errs, s.in.ExitRawMode())
		} else {
			log.Debug("intercept: leaving terminal in raw mode; disabling it is unreliable here")
		}
	}

	if s.ownNotifier {
		s.notifier.Stop()
	}
	active.remove(s)

	log.Debug("intercept: released")
	return errors.Join(errs...)
}
