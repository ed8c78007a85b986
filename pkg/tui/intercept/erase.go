// ABOUTME: Erase vectors and the escape sequences that undo a keystroke's echo position.
// ABOUTME: Return moves up a row; every other key moves back one column; then clear to end of line.

package intercept

import (
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/mauromedda/keyblock/pkg/tui/key"
)

// Vector is a relative cursor displacement in cells.
type Vector struct {
	DX, DY int
}

// EraseVector returns the displacement that undoes the echo of ev.
func EraseVector(ev key.Event) Vector {
	if ev.IsReturn() {
		return Vector{DX: 0, DY: -1}
	}
	return Vector{DX: -1, DY: 0}
}

// Move returns the escape sequence moving the cursor by v, horizontal
// component first. A zero vector yields "".
func (v Vector) Move() string {
	var b strings.Builder
	switch {
	case v.DX < 0:
		b.WriteString(ansi.CursorBackward(-v.DX))
	case v.DX > 0:
		b.WriteString(ansi.CursorForward(v.DX))
	}
	switch {
	case v.DY < 0:
		b.WriteString(ansi.CursorUp(-v.DY))
	case v.DY > 0:
		b.WriteString(ansi.CursorDown(v.DY))
	}
	return b.String()
}

// ClearLine clears from the cursor to the end of the line.
const ClearLine = ansi.EraseLineRight
