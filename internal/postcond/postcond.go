// ABOUTME: File postconditions checked after a blocked operation completes
// ABOUTME: Run collects unmet checks as "name (reason)"; Report prints them with lipgloss

package postcond

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mauromedda/keyblock/internal/config"
)

// Params gives a check access to files under Root.
type Params struct {
	Root string
}

// FileExists fails when path (relative to Root) does not exist.
func (p Params) FileExists(path string) error {
	if _, err := os.Stat(p.resolve(path)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("File %q does not exist", path)
		}
		return fmt.Errorf("stat %q: %w", path, err)
	}
	return nil
}

// FileContains fails when path does not exist or does not contain want.
func (p Params) FileContains(path, want string) error {
	if err := p.FileExists(path); err != nil {
		return err
	}
	data, err := os.ReadFile(p.resolve(path))
	if err != nil {
		return fmt.Errorf("reading %q: %w", path, err)
	}
	if !strings.Contains(string(data), want) {
		return fmt.Errorf("File %q does not contain %q", path, want)
	}
	return nil
}

func (p Params) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(p.Root, path)
}

// Check is a single named postcondition.
type Check struct {
	Name string
	Run  func(Params) error
}

// Run executes every check against root and returns one message per
// failed check, in order. A non-empty prefix is prepended as "prefix: ".
func Run(checks []Check, root, prefix string) []string {
	params := Params{Root: root}

	var unmet []string
	for _, c := range checks {
		err := c.Run(params)
		if err == nil {
			continue
		}
		msg := fmt.Sprintf("%s (%s)", c.Name, err.Error())
		if prefix != "" {
			msg = prefix + ": " + msg
		}
		unmet = append(unmet, msg)
	}
	return unmet
}

// FromSpecs builds checks from configured postconditions.
func FromSpecs(specs []config.Postcondition) []Check {
	checks := make([]Check, 0, len(specs))
	for _, s := range specs {
		checks = append(checks, Check{
			Name: s.Name,
			Run: func(p Params) error {
				if s.Contains == "" {
					return p.FileExists(s.File)
				}
				return p.FileContains(s.File, s.Contains)
			},
		})
	}
	return checks
}

// Report writes the unmet postconditions to w as a yellow list under a
// bold title. Nothing is written when unmet is empty.
func Report(w io.Writer, unmet []string) error {
	if len(unmet) == 0 {
		return nil
	}

	r := lipgloss.NewRenderer(w)
	title := r.NewStyle().Bold(true)
	item := r.NewStyle().Foreground(lipgloss.Color("3"))

	var b strings.Builder
	b.WriteString(title.Render("Postconditions not met"))
	b.WriteString("\n")
	for _, msg := range unmet {
		b.WriteString(item.Render("- " + msg))
		b.WriteString("\n")
	}
	b.WriteString("\nPostconditions are not supposed to fail.\n")

	_, err := io.WriteString(w, b.String())
	return err
}
