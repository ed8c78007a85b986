// ABOUTME: Event pairs the raw bytes of one keystroke with its decoded Key.
// ABOUTME: Produced by the input notifier and consumed synchronously by subscribers.

package key

// Interrupt is the ETX byte a terminal in raw mode sends for Ctrl+C.
const Interrupt = "\x03"

// Event describes one keystroke as it arrived from the terminal.
type Event struct {
	Raw []byte
	Key Key
}

// NewEvent copies raw and decodes it.
func NewEvent(raw []byte) Event {
	b := make([]byte, len(raw))
	copy(b, raw)
	return Event{Raw: b, Key: ParseKey(string(b))}
}

// Name returns the logical name of the key (see Key.Name).
func (e Event) Name() string {
	return e.Key.Name()
}

// IsReturn reports whether the keystroke was a carriage return.
func (e Event) IsReturn() bool {
	return e.Key.Type == KeyEnter
}

// IsInterrupt reports whether the raw keystroke is exactly Ctrl+C.
func (e Event) IsInterrupt() bool {
	return string(e.Raw) == Interrupt
}
