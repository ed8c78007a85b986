// ABOUTME: The block command: holds the terminal until q is pressed or input ends
// ABOUTME: Shows a width-truncated status line, then subscribes to the shared key notifier

package main

import (
	"fmt"
	"sync"

	"github.com/mattn/go-runewidth"

	"github.com/mauromedda/keyblock/internal/config"
	"github.com/mauromedda/keyblock/internal/log"
	"github.com/mauromedda/keyblock/pkg/tui/input"
	"github.com/mauromedda/keyblock/pkg/tui/intercept"
	"github.com/mauromedda/keyblock/pkg/tui/key"
	"github.com/mauromedda/keyblock/pkg/tui/terminal"
)

const (
	defaultWidth = 80
	statusText   = "keyblock: input is blocked. Press q to release, Ctrl+C to quit."
)

func runBlock(h host, cfg *config.Settings) int {
	// The status line goes out before Acquire: the Session owns the
	// output from then on.
	fmt.Fprintln(h.term, statusLine(h.term))

	notifier := input.NewNotifier(h.term.Reader())
	defer notifier.Stop()

	quit := make(chan struct{})
	var once sync.Once
	unsubscribe := notifier.Subscribe(func(ev key.Event) {
		if isQuit(ev.Key) {
			once.Do(func() { close(quit) })
		}
	})
	defer unsubscribe()

	opts := sessionOptions(h, cfg)
	opts.Notifier = notifier
	sess, err := intercept.Acquire(opts)
	if err != nil {
		fmt.Fprintf(h.stderr, "error: %v\n", err)
		return 1
	}

	select {
	case <-quit:
		log.Debug("block: released by user")
	case <-notifier.Done():
		log.Debug("block: input closed")
	}

	if err := sess.Release(); err != nil {
		fmt.Fprintf(h.stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func isQuit(k key.Key) bool {
	return k.Type == key.KeyRune && !k.Alt && (k.Rune == 'q' || k.Rune == 'Q')
}

// statusLine fits statusText to the terminal width.
func statusLine(dev terminal.Device) string {
	width, _, err := dev.Size()
	if err != nil || width <= 0 {
		width = defaultWidth
	}
	return runewidth.Truncate(statusText, width, "…")
}
