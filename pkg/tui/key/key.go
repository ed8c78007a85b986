// ABOUTME: Defines the Key type and ParseKey for decoding one raw keystroke.
// ABOUTME: Handles printable runes, control letters, and delegates escape sequences to the legacy table.

package key

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Key represents a decoded keystroke.
type Key struct {
	Type  KeyType
	Rune  rune // Printable character, or the letter for KeyCtrl
	Alt   bool
	Ctrl  bool
	Shift bool
}

// KeyType enumerates the kinds of keystrokes a terminal can deliver.
type KeyType int

const (
	KeyRune      KeyType = iota // Printable character
	KeyEnter                    // Carriage return (0x0D)
	KeyLineFeed                 // Line feed (0x0A)
	KeyTab                      // Tab
	KeyBackTab                  // Shift+Tab
	KeyBackspace                // Backspace / DEL (0x7F) / BS (0x08)
	KeyDelete                   // Delete key
	KeyUp                       // Arrow up
	KeyDown                     // Arrow down
	KeyLeft                     // Arrow left
	KeyRight                    // Arrow right
	KeyHome                     // Home
	KeyEnd                      // End
	KeyPageUp                   // Page Up
	KeyPageDown                 // Page Down
	KeyEscape                   // Escape
	KeyCtrl                     // Ctrl+letter; Rune holds the letter
	KeyPaste                    // Bracketed paste block
	KeyUnknown                  // Unrecognized input
)

// ParseKey decodes the bytes of a single keystroke into a Key.
func ParseKey(data string) Key {
	if len(data) == 0 {
		return Key{Type: KeyUnknown}
	}

	if len(data) == 1 {
		return parseSingleByte(data[0])
	}

	if data[0] == 0x1b {
		return parseEscapeSequence(data)
	}

	r, size := utf8.DecodeRuneInString(data)
	if r == utf8.RuneError || size != len(data) {
		return Key{Type: KeyUnknown}
	}
	return Key{Type: KeyRune, Rune: r}
}

func parseSingleByte(b byte) Key {
	switch {
	case b == 0x0d:
		return Key{Type: KeyEnter}
	case b == 0x0a:
		return Key{Type: KeyLineFeed}
	case b == 0x09:
		return Key{Type: KeyTab}
	case b == 0x7f || b == 0x08:
		return Key{Type: KeyBackspace}
	case b == 0x1b:
		return Key{Type: KeyEscape}
	case b >= 0x20 && b <= 0x7e:
		return Key{Type: KeyRune, Rune: rune(b)}
	case b >= 0x01 && b <= 0x1a:
		return Key{Type: KeyCtrl, Rune: rune('a' + b - 1), Ctrl: true}
	}
	return Key{Type: KeyUnknown}
}

func parseEscapeSequence(data string) Key {
	if k, ok := legacySequences[data]; ok {
		return k
	}
	if k, ok := parseModifiedCSI(data); ok {
		return k
	}

	// Alt+key: ESC followed by a single printable byte or control letter
	if len(data) == 2 {
		k := parseSingleByte(data[1])
		if k.Type != KeyUnknown && k.Type != KeyEscape {
			k.Alt = true
			return k
		}
	}

	return Key{Type: KeyUnknown}
}

var keyTypeNames = map[KeyType]string{
	KeyEnter:     "return",
	KeyLineFeed:  "enter",
	KeyTab:       "tab",
	KeyBackTab:   "tab",
	KeyBackspace: "backspace",
	KeyDelete:    "delete",
	KeyUp:        "up",
	KeyDown:      "down",
	KeyLeft:      "left",
	KeyRight:     "right",
	KeyHome:      "home",
	KeyEnd:       "end",
	KeyPageUp:    "pageup",
	KeyPageDown:  "pagedown",
	KeyEscape:    "escape",
	KeyPaste:     "paste",
}

// Name returns the logical key name: "return" for Enter, "backspace",
// "up", the lower-cased character for printable and Ctrl keys, or ""
// when the keystroke is not recognized.
func (k Key) Name() string {
	switch k.Type {
	case KeyRune, KeyCtrl:
		return string(unicode.ToLower(k.Rune))
	case KeyUnknown:
		return ""
	}
	return keyTypeNames[k.Type]
}

// String returns a human-readable representation for debug display.
func (k Key) String() string {
	var mods []string
	if k.Ctrl {
		mods = append(mods, "Ctrl")
	}
	if k.Alt {
		mods = append(mods, "Alt")
	}
	if k.Shift && k.Type != KeyBackTab {
		mods = append(mods, "Shift")
	}

	var base string
	switch k.Type {
	case KeyRune:
		base = string(k.Rune)
	case KeyCtrl:
		base = string(unicode.ToUpper(k.Rune))
	case KeyBackTab:
		base = "BackTab"
	case KeyUnknown:
		return "Unknown"
	default:
		name := keyTypeNames[k.Type]
		base = strings.ToUpper(name[:1]) + name[1:]
	}

	if len(mods) == 0 {
		return base
	}
	return fmt.Sprintf("%s+%s", strings.Join(mods, "+"), base)
}
