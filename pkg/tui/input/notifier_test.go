// ABOUTME: Tests for Notifier key reading and dispatch from an io.Reader.
// ABOUTME: Covers keystroke splitting across reads, lone ESC timeout, paste, and stop semantics.

package input

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/mauromedda/keyblock/pkg/tui/key"
)

// recorder collects events delivered to a subscriber.
type recorder struct {
	mu     sync.Mutex
	events []key.Event
	notify chan struct{}
}

func newRecorder() *recorder {
	return &recorder{notify: make(chan struct{}, 64)}
}

func (r *recorder) handle(ev key.Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
	select {
	case r.notify <- struct{}{}:
	default:
	}
}

func (r *recorder) snapshot() []key.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]key.Event, len(r.events))
	copy(out, r.events)
	return out
}

// waitFor blocks until at least n events have arrived.
func (r *recorder) waitFor(t *testing.T, n int) []key.Event {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		if got := r.snapshot(); len(got) >= n {
			return got
		}
		select {
		case <-r.notify:
		case <-deadline:
			t.Fatalf("timed out waiting for %d events, got %d", n, len(r.snapshot()))
		}
	}
}

// runToEOF starts a notifier over data and waits for it to finish.
func runToEOF(t *testing.T, data string) []key.Event {
	t.Helper()

	n := NewNotifier(bytes.NewBufferString(data))
	rec := newRecorder()
	n.Subscribe(rec.handle)

	if err := n.Start(context.Background()); err != nil {
		t.Fatalf("Start() unexpected error: %v", err)
	}
	select {
	case <-n.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("notifier did not finish at EOF")
	}
	return rec.snapshot()
}

func TestNotifier_SplitsKeystrokes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		data     string
		wantRaw  []string
		wantType []key.KeyType
	}{
		{
			name:     "single rune",
			data:     "a",
			wantRaw:  []string{"a"},
			wantType: []key.KeyType{key.KeyRune},
		},
		{
			name:     "runes in order",
			data:     "abc",
			wantRaw:  []string{"a", "b", "c"},
			wantType: []key.KeyType{key.KeyRune, key.KeyRune, key.KeyRune},
		},
		{
			name:     "arrow then return",
			data:     "\x1b[A\r",
			wantRaw:  []string{"\x1b[A", "\r"},
			wantType: []key.KeyType{key.KeyUp, key.KeyEnter},
		},
		{
			name:     "unknown csi consumed whole",
			data:     "\x1b[99Zq",
			wantRaw:  []string{"\x1b[99Z", "q"},
			wantType: []key.KeyType{key.KeyUnknown, key.KeyRune},
		},
		{
			name:     "alt key",
			data:     "\x1bx",
			wantRaw:  []string{"\x1bx"},
			wantType: []key.KeyType{key.KeyRune},
		},
		{
			name:     "double escape",
			data:     "\x1b\x1b",
			wantRaw:  []string{"\x1b", "\x1b"},
			wantType: []key.KeyType{key.KeyEscape, key.KeyEscape},
		},
		{
			name:     "linux console function key",
			data:     "\x1b[[Aq",
			wantRaw:  []string{"\x1b[[A", "q"},
			wantType: []key.KeyType{key.KeyUnknown, key.KeyRune},
		},
		{
			name:     "meta-prefixed arrow",
			data:     "\x1b\x1b[A\x1b\x1bOB",
			wantRaw:  []string{"\x1b\x1b[A", "\x1b\x1bOB"},
			wantType: []key.KeyType{key.KeyUp, key.KeyDown},
		},
		{
			name:     "escape before alt key",
			data:     "\x1b\x1bx",
			wantRaw:  []string{"\x1b", "\x1bx"},
			wantType: []key.KeyType{key.KeyEscape, key.KeyRune},
		},
		{
			name:     "bracketed paste",
			data:     "\x1b[200~hi there\x1b[201~x",
			wantRaw:  []string{"\x1b[200~hi there\x1b[201~", "x"},
			wantType: []key.KeyType{key.KeyPaste, key.KeyRune},
		},
		{
			name:     "multibyte runes",
			data:     "é世",
			wantRaw:  []string{"é", "世"},
			wantType: []key.KeyType{key.KeyRune, key.KeyRune},
		},
		{
			name:     "ctrl+c",
			data:     "\x03",
			wantRaw:  []string{"\x03"},
			wantType: []key.KeyType{key.KeyCtrl},
		},
		{
			name:     "trailing escape flushed at EOF",
			data:     "a\x1b",
			wantRaw:  []string{"a", "\x1b"},
			wantType: []key.KeyType{key.KeyRune, key.KeyEscape},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := runToEOF(t, tt.data)

			if len(got) != len(tt.wantRaw) {
				t.Fatalf("got %d events, want %d: %+v", len(got), len(tt.wantRaw), got)
			}
			for i := range got {
				if string(got[i].Raw) != tt.wantRaw[i] {
					t.Errorf("event[%d].Raw = %q, want %q", i, got[i].Raw, tt.wantRaw[i])
				}
				if got[i].Key.Type != tt.wantType[i] {
					t.Errorf("event[%d].Key.Type = %v, want %v", i, got[i].Key.Type, tt.wantType[i])
				}
			}
		})
	}
}

func TestNotifier_MetaPrefixSetsAlt(t *testing.T) {
	t.Parallel()

	got := runToEOF(t, "\x1b\x1b[C")
	if len(got) != 1 {
		t.Fatalf("got %d events, want 1: %+v", len(got), got)
	}
	if k := got[0].Key; k.Type != key.KeyRight || !k.Alt {
		t.Errorf("event = %+v, want Alt+Right", k)
	}
}

func TestNotifier_RuneSplitAcrossReads(t *testing.T) {
	t.Parallel()

	r, ch := syncPipe()
	n := NewNotifier(r)
	rec := newRecorder()
	n.Subscribe(rec.handle)

	if err := n.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer n.Stop()

	ch <- []byte("\xe4\xb8")
	ch <- []byte("\x96!")

	got := rec.waitFor(t, 2)
	if got[0].Key.Rune != '世' || string(got[0].Raw) != "世" {
		t.Errorf("event[0] = %+v, want 世", got[0])
	}
	if got[1].Key.Rune != '!' {
		t.Errorf("event[1] = %+v, want !", got[1])
	}
}

func TestNotifier_SequenceSplitAcrossReads(t *testing.T) {
	t.Parallel()

	r, ch := syncPipe()
	n := NewNotifier(r)
	rec := newRecorder()
	n.Subscribe(rec.handle)

	if err := n.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer n.Stop()

	ch <- []byte("\x1b[")
	ch <- []byte("B")

	got := rec.waitFor(t, 1)
	if got[0].Key.Type != key.KeyDown {
		t.Errorf("event = %+v, want KeyDown", got[0])
	}
}

func TestNotifier_LoneEscapeTimeout(t *testing.T) {
	t.Parallel()

	r, ch := syncPipe()
	n := NewNotifier(r)
	rec := newRecorder()
	n.Subscribe(rec.handle)

	if err := n.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer n.Stop()

	ch <- []byte("\x1b")

	got := rec.waitFor(t, 1)
	if got[0].Key.Type != key.KeyEscape || string(got[0].Raw) != "\x1b" {
		t.Errorf("event = %+v, want lone Escape", got[0])
	}
}

func TestNotifier_UnsubscribedHandlerNotCalled(t *testing.T) {
	t.Parallel()

	n := NewNotifier(bytes.NewBufferString("abc"))
	stale := newRecorder()
	live := newRecorder()

	unsub := n.Subscribe(stale.handle)
	n.Subscribe(live.handle)
	unsub()

	if n.Subscribers() != 1 {
		t.Fatalf("Subscribers() = %d, want 1", n.Subscribers())
	}
	if err := n.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	<-n.Done()

	if len(stale.snapshot()) != 0 {
		t.Error("unsubscribed handler received events")
	}
	if len(live.snapshot()) != 3 {
		t.Errorf("live handler got %d events, want 3", len(live.snapshot()))
	}
}

func TestNotifier_StopEndsDelivery(t *testing.T) {
	t.Parallel()

	r, _ := syncPipe()
	n := NewNotifier(r)

	if err := n.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := n.Start(context.Background()); err != nil {
		t.Errorf("second Start() = %v, want nil", err)
	}

	n.Stop()
	n.Stop()

	select {
	case <-n.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("Done not closed after Stop")
	}

	if err := n.Start(context.Background()); !errors.Is(err, ErrStopped) {
		t.Errorf("Start() after Stop = %v, want ErrStopped", err)
	}
}

func TestNotifier_StopBeforeStart(t *testing.T) {
	t.Parallel()

	n := NewNotifier(bytes.NewBufferString("x"))
	n.Stop()

	select {
	case <-n.Done():
	default:
		t.Fatal("Done should be closed when stopped before start")
	}
}

func TestNotifier_StopFromHandler(t *testing.T) {
	t.Parallel()

	r, ch := syncPipe()
	n := NewNotifier(r)
	rec := newRecorder()
	n.Subscribe(func(ev key.Event) {
		rec.handle(ev)
		n.Stop()
	})

	if err := n.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	ch <- []byte("ab")

	select {
	case <-n.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("Done not closed after Stop from handler")
	}
	if got := rec.snapshot(); len(got) != 1 {
		t.Errorf("got %d events after stopping in the first handler, want 1", len(got))
	}
}

func TestNotifier_ContextCancellation(t *testing.T) {
	t.Parallel()

	r, _ := syncPipe()
	n := NewNotifier(r)

	ctx, cancel := context.WithCancel(context.Background())
	if err := n.Start(ctx); err != nil {
		t.Fatal(err)
	}
	cancel()

	select {
	case <-n.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("notifier did not stop after context cancellation")
	}
}

func TestPlainReader_Cancel(t *testing.T) {
	t.Parallel()

	p := &plainReader{r: bytes.NewBufferString("abc")}
	buf := make([]byte, 1)
	if k, err := p.Read(buf); k != 1 || err != nil {
		t.Fatalf("Read() = %d, %v", k, err)
	}
	if p.Cancel() {
		t.Error("plain reads cannot be interrupted; Cancel should report false")
	}
	if _, err := p.Read(buf); err == nil {
		t.Error("expected Read after Cancel to fail")
	}
}

// syncPipe creates a pipe-like reader/writer pair for testing.
// The reader blocks until data is sent; each send is one Read result.
func syncPipe() (*blockingReader, chan<- []byte) {
	ch := make(chan []byte)
	return &blockingReader{ch: ch}, ch
}

// blockingReader reads from a channel, blocking until data arrives.
type blockingReader struct {
	ch  <-chan []byte
	buf []byte
}

func (r *blockingReader) Read(p []byte) (int, error) {
	if len(r.buf) > 0 {
		n := copy(p, r.buf)
		r.buf = r.buf[n:]
		return n, nil
	}
	data, ok := <-r.ch
	if !ok {
		return 0, io.EOF
	}
	n := copy(p, data)
	if n < len(data) {
		r.buf = data[n:]
	}
	return n, nil
}
