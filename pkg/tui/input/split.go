// ABOUTME: parseNext carves one keystroke off the front of a raw input buffer.
// ABOUTME: Recognizes CSI/SS3 sequences, Alt+key, UTF-8 runes, and bracketed paste blocks.

package input

import (
	"bytes"
	"unicode/utf8"

	"github.com/mauromedda/keyblock/pkg/tui/key"
)

const maxCSILen = 32

var (
	bracketStart = []byte("\x1b[200~")
	bracketEnd   = []byte("\x1b[201~")
)

// parseNext returns the size of the first keystroke in buf and its
// decoded key. wait is true when buf ends inside a keystroke and more
// bytes are needed to decide.
func parseNext(buf []byte) (size int, k key.Key, wait bool) {
	if len(buf) == 0 {
		return 0, key.Key{}, false
	}

	if bytes.HasPrefix(buf, bracketStart) {
		end := bytes.Index(buf[len(bracketStart):], bracketEnd)
		if end < 0 {
			return 0, key.Key{}, true
		}
		return len(bracketStart) + end + len(bracketEnd), key.Key{Type: key.KeyPaste}, false
	}

	if buf[0] == 0x1b {
		return parseEscape(buf)
	}

	if !utf8.FullRune(buf) {
		return 0, key.Key{}, true
	}
	r, n := utf8.DecodeRune(buf)
	if r == utf8.RuneError && n <= 1 {
		return 1, key.Key{Type: key.KeyUnknown}, false
	}
	return n, key.ParseKey(string(buf[:n])), false
}

func parseEscape(buf []byte) (int, key.Key, bool) {
	if len(buf) == 1 {
		return 0, key.Key{}, true
	}

	switch buf[1] {
	case '[':
		// Linux console function keys: ESC [ [ A..E.
		if len(buf) > 2 && buf[2] == '[' {
			if len(buf) < 4 {
				return 0, key.Key{}, true
			}
			return 4, key.ParseKey(string(buf[:4])), false
		}
		for i := 2; i < len(buf) && i < maxCSILen; i++ {
			if buf[i] >= 0x40 && buf[i] <= 0x7e {
				return i + 1, key.ParseKey(string(buf[:i+1])), false
			}
		}
		if len(buf) >= maxCSILen {
			// Runaway sequence: give up on it and treat ESC as a key.
			return 1, key.Key{Type: key.KeyEscape}, false
		}
		return 0, key.Key{}, true
	case 'O':
		if len(buf) < 3 {
			return 0, key.Key{}, true
		}
		return 3, key.ParseKey(string(buf[:3])), false
	case 0x1b:
		return parseMetaEscape(buf)
	}

	// Alt+key
	rest := buf[1:]
	if !utf8.FullRune(rest) {
		return 0, key.Key{}, true
	}
	_, n := utf8.DecodeRune(rest)
	return 1 + n, key.ParseKey(string(buf[:1+n])), false
}

// parseMetaEscape handles ESC ESC. A meta-prefixed sequence such as
// ESC ESC [ A is one Alt-modified keystroke; anything else starts with
// a lone Escape.
func parseMetaEscape(buf []byte) (int, key.Key, bool) {
	if len(buf) == 2 {
		return 0, key.Key{}, true
	}
	if buf[2] != '[' && buf[2] != 'O' {
		return 1, key.Key{Type: key.KeyEscape}, false
	}

	size, k, wait := parseEscape(buf[1:])
	if wait {
		return 0, key.Key{}, true
	}
	if size == 1 {
		// The inner sequence ran away; only the first ESC is settled.
		return 1, key.Key{Type: key.KeyEscape}, false
	}
	k.Alt = true
	return 1 + size, k, false
}

// forceNext is parseNext for a buffer that will not grow: whatever is
// pending becomes a keystroke now.
func forceNext(buf []byte) (int, key.Key) {
	if size, k, wait := parseNext(buf); !wait {
		return size, k
	}
	switch {
	case len(buf) == 1 && buf[0] == 0x1b, bytes.HasPrefix(buf, []byte("\x1b\x1b")):
		return 1, key.Key{Type: key.KeyEscape}
	case bytes.HasPrefix(buf, bracketStart):
		return len(buf), key.Key{Type: key.KeyPaste}
	case buf[0] == 0x1b:
		return len(buf), key.Key{Type: key.KeyUnknown}
	}
	return 1, key.Key{Type: key.KeyUnknown}
}
