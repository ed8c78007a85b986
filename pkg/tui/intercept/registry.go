// ABOUTME: Process-wide registry of active Sessions and the global interrupt hook.
// ABOUTME: Ctrl+C or SIGINT/SIGTERM releases every active Session before the process exits.

package intercept

import (
	"errors"
	"os"
	"os/signal"
	"slices"
	"sync"
	"syscall"

	"github.com/mauromedda/keyblock/internal/log"
)

// Exit status used when SIGTERM ends a blocked process (128 + 15).
const sigtermExitCode = 143

type registry struct {
	mu       sync.Mutex
	sessions []*Session
	sigCh    chan os.Signal
}

var active registry

// add registers s. The first active Session installs the signal watcher.
func (r *registry) add(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions = append(r.sessions, s)
	if r.sigCh == nil {
		r.sigCh = make(chan os.Signal, 1)
		signal.Notify(r.sigCh, os.Interrupt, syscall.SIGTERM)
		go r.watch(r.sigCh)
	}
}

// remove deregisters s. The last one out restores default signal handling.
func (r *registry) remove(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions = slices.DeleteFunc(r.sessions, func(x *Session) bool { return x == s })
	if len(r.sessions) == 0 && r.sigCh != nil {
		signal.Stop(r.sigCh)
		close(r.sigCh)
		r.sigCh = nil
	}
}

func (r *registry) snapshot() []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	return slices.Clone(r.sessions)
}

// watch handles signals that arrive while a Session is active, e.g. an
// external kill or Ctrl+C on a non-raw input.
func (r *registry) watch(ch <-chan os.Signal) {
	for sig := range ch {
		exit := os.Exit
		if sessions := r.snapshot(); len(sessions) > 0 {
			exit = sessions[len(sessions)-1].exit
		}

		code := 0
		if sig == syscall.SIGTERM {
			code = sigtermExitCode
		}
		log.Debug("intercept: received %v", sig)
		interrupt(code, exit)
	}
}

// Active returns the number of Sessions currently acquired.
func Active() int {
	r := &active
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.sessions)
}

// ReleaseAll releases every active Session, most recent first, and
// returns the joined errors.
func ReleaseAll() error {
	sessions := active.snapshot()
	var errs []error
	for i := len(sessions) - 1; i >= 0; i-- {
		errs = append(errs, sessions[i].Release())
	}
	return errors.Join(errs...)
}

// interrupt restores every terminal and ends the process. There is no
// way back from it: the caller's own cleanup does not run.
func interrupt(code int, exit func(int)) {
	if err := ReleaseAll(); err != nil {
		log.Debug("intercept: restoring terminals on interrupt: %v", err)
	}
	exit(code)
}
