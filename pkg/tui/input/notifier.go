// ABOUTME: Notifier reads raw bytes from a terminal and publishes one key.Event per keystroke.
// ABOUTME: Uses cancelreader so Stop can unblock a pending read; lone ESC resolves after ~50ms.

package input

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/muesli/cancelreader"

	"github.com/mauromedda/keyblock/internal/eventbus"
	"github.com/mauromedda/keyblock/internal/log"
	"github.com/mauromedda/keyblock/pkg/tui/key"
)

const (
	readBufSize = 256
	escTimeout  = 50 * time.Millisecond
)

// ErrStopped is returned by Start on a notifier that has been stopped.
var ErrStopped = errors.New("notifier stopped")

// Notifier turns a raw byte stream into keystroke events. All events
// are delivered on a single goroutine, in arrival order, to the
// handlers subscribed at the time of delivery.
type Notifier struct {
	src  io.Reader
	bus  *eventbus.Bus[key.Event]
	done chan struct{}

	mu      sync.Mutex
	started bool
	stopped bool
	reader  cancelreader.CancelReader
	cancel  context.CancelFunc

	// buf is owned by the run goroutine.
	buf []byte
}

// NewNotifier returns a Notifier for r. Nothing is read until Start.
func NewNotifier(r io.Reader) *Notifier {
	return &Notifier{
		src:  r,
		bus:  eventbus.New[key.Event](),
		done: make(chan struct{}),
	}
}

// Subscribe registers fn for every subsequent keystroke and returns a
// function that deregisters it. fn runs on the notifier goroutine and
// must not block for long.
func (n *Notifier) Subscribe(fn func(key.Event)) (unsubscribe func()) {
	return n.bus.Subscribe(fn)
}

// Subscribers returns the number of registered handlers.
func (n *Notifier) Subscribers() int {
	return n.bus.Count()
}

// Start begins reading in the background. Starting a running notifier is
// a no-op; starting a stopped one returns ErrStopped.
func (n *Notifier) Start(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.stopped {
		return ErrStopped
	}
	if n.started {
		return nil
	}

	cr, err := cancelreader.NewReader(n.src)
	if err != nil {
		log.Debug("input: cancelable reader unavailable, using plain reads: %v", err)
		cr = &plainReader{r: n.src}
	}

	ctx, cancel := context.WithCancel(ctx)
	n.reader = cr
	n.cancel = cancel
	n.started = true

	go n.run(ctx)
	return nil
}

// Stop ends delivery. It does not wait for the read goroutine, so it is
// safe to call from a handler. Use Done to wait.
func (n *Notifier) Stop() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.stopped {
		return
	}
	n.stopped = true

	if !n.started {
		close(n.done)
		return
	}
	n.cancel()
	if !n.reader.Cancel() {
		log.Debug("input: read could not be interrupted; it ends on the next keystroke")
	}
}

// Done is closed once the notifier has stopped delivering events,
// either after Stop or when the input reaches EOF.
func (n *Notifier) Done() <-chan struct{} {
	return n.done
}

// readResult holds the outcome of a single Read call.
type readResult struct {
	data []byte
	err  error
}

func (n *Notifier) run(ctx context.Context) {
	defer close(n.done)

	readCh := make(chan readResult)
	quit := make(chan struct{})
	defer close(quit)

	go n.readLoop(readCh, quit)

	var escTimer <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case <-escTimer:
			escTimer = nil
			n.dispatch(ctx, true)
		case res, ok := <-readCh:
			if !ok || res.err != nil {
				if res.err != nil && !errors.Is(res.err, io.EOF) && !errors.Is(res.err, cancelreader.ErrCanceled) {
					log.Debug("input: read failed: %v", res.err)
				}
				n.dispatch(ctx, true)
				return
			}
			n.buf = append(n.buf, res.data...)
			escTimer = nil
			if n.dispatch(ctx, false) {
				escTimer = time.After(escTimeout)
			}
		}
	}
}

// readLoop owns the cancel reader; it reads until an error and forwards
// each chunk on ch.
func (n *Notifier) readLoop(ch chan<- readResult, quit <-chan struct{}) {
	defer close(ch)
	defer n.reader.Close()

	tmp := make([]byte, readBufSize)
	for {
		k, err := n.reader.Read(tmp)
		if k > 0 {
			data := make([]byte, k)
			copy(data, tmp[:k])
			select {
			case ch <- readResult{data: data}:
			case <-quit:
				return
			}
		}
		if err != nil {
			select {
			case ch <- readResult{err: err}:
			case <-quit:
			}
			return
		}
	}
}

// dispatch publishes every complete keystroke in the buffer. With force
// set, a trailing partial keystroke is published as-is. It reports
// whether a partial keystroke is still pending.
func (n *Notifier) dispatch(ctx context.Context, force bool) (pending bool) {
	for len(n.buf) > 0 {
		if ctx.Err() != nil {
			return false
		}

		size, k, wait := parseNext(n.buf)
		if wait {
			if !force {
				return true
			}
			size, k = forceNext(n.buf)
		}

		raw := make([]byte, size)
		copy(raw, n.buf[:size])
		n.buf = n.buf[size:]

		n.bus.Publish(key.Event{Raw: raw, Key: k})
	}
	n.buf = nil
	return false
}

// plainReader stands in for cancelreader on inputs it cannot poll, such
// as regular files or /dev/null. Cancel only marks the reader; a pending
// read still has to return on its own.
type plainReader struct {
	r        io.Reader
	canceled atomic.Bool
}

func (p *plainReader) Read(b []byte) (int, error) {
	if p.canceled.Load() {
		return 0, cancelreader.ErrCanceled
	}
	k, err := p.r.Read(b)
	if p.canceled.Load() {
		return 0, cancelreader.ErrCanceled
	}
	return k, err
}

func (p *plainReader) Cancel() bool {
	p.canceled.Store(true)
	return false
}

func (p *plainReader) Close() error {
	return nil
}
