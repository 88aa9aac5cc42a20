package report

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

// Styles for the console report
var (
	passStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#50FA7B"))

	failStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF5555"))

	nameStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#BD93F9"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6272A4"))

	hintStyle = lipgloss.NewStyle().
			Italic(true).
			Foreground(lipgloss.Color("#8BE9FD"))
)

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// TerminalWidth returns the width of the terminal behind f, or 0 when it
// cannot be determined.
func TerminalWidth(f *os.File) int {
	if !IsTerminal(f) {
		return 0
	}
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return w
}

// painter applies styles only when the output is interactive.
type painter struct {
	enabled bool
}

func (p painter) paint(style lipgloss.Style, text string) string {
	if p.enabled {
		return style.Render(text)
	}
	return text
}

// wrapText wraps s to width columns leaving room for indentation. A
// width of zero disables wrapping.
func wrapText(width int, s string) string {
	limit := width - 10
	if width <= 0 || limit < 20 {
		return s
	}
	return ansi.Wrap(s, limit, "")
}

func indent(spaces int, s string) string {
	pad := strings.Repeat(" ", spaces)
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = pad + line
		}
	}
	return strings.Join(lines, "\n")
}

// setupSpinner shows progress while a setup command runs. It is inert
// unless the output is interactive.
type setupSpinner struct {
	spinner *spinner.Spinner
}

func newSetupSpinner(enabled bool, out io.Writer) *setupSpinner {
	if !enabled {
		return &setupSpinner{}
	}
	writer := spinner.WithWriter(out)
	if f, ok := out.(*os.File); ok {
		writer = spinner.WithWriterFile(f)
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, writer)
	_ = s.Color("cyan")
	return &setupSpinner{spinner: s}
}

func (s *setupSpinner) Start(message string) {
	if s.spinner == nil {
		return
	}
	s.spinner.Suffix = " " + message
	s.spinner.Start()
}

func (s *setupSpinner) Stop() {
	if s.spinner != nil {
		s.spinner.Stop()
	}
}
