package diag

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
)

// Renderer writes caret-annotated excerpts. The zero value renders plain
// text; NewRenderer(true) highlights the message and line number.
type Renderer struct {
	color   bool
	message lipgloss.Style
	lineNo  lipgloss.Style
	pointer lipgloss.Style
}

var (
	errorColor = lipgloss.Color("#EF4444")
	lineColor  = lipgloss.Color("#3B82F6")
)

// NewRenderer creates a renderer; color enables lipgloss styling
func NewRenderer(color bool) *Renderer {
	return &Renderer{
		color:   color,
		message: lipgloss.NewStyle().Foreground(errorColor),
		lineNo:  lipgloss.NewStyle().Foreground(lineColor),
		pointer: lipgloss.NewStyle().Foreground(errorColor),
	}
}

// Pointer returns the caret line body: leading spaces up to the first
// pointed-at column, then one caret per column.
func Pointer(column, width int) string {
	lead := 0
	if column > 0 {
		lead = column - width + 1
	}
	if lead < 0 {
		lead = 0
	}
	return strings.Repeat(" ", lead) + strings.Repeat("^", width)
}

func (r *Renderer) style(s lipgloss.Style, text string) string {
	if r == nil || !r.color {
		return text
	}
	return s.Render(text)
}

// Render writes d against the source lines
func (r *Renderer) Render(w io.Writer, d *Diagnostic, lines []string) error {
	line, column, width := d.Locate()

	text := ""
	if line >= 1 && line <= len(lines) {
		text = lines[line-1]
		column = displayColumn(text, column)
	}

	_, err := fmt.Fprintf(w, "\nParsing Error: %s\n  | \n%s | %s\n  | %s\n\n",
		r.style(r.message, d.Error()),
		r.style(r.lineNo, strconv.Itoa(line)),
		text,
		r.style(r.pointer, Pointer(column, width)),
	)
	return err
}

// displayColumn converts a byte column into the rune column it is shown at
func displayColumn(text string, column int) int {
	if column < 0 {
		return column
	}
	prefix := text
	if column+1 < len(text) {
		prefix = text[:column+1]
	}
	return column - (len(prefix) - utf8.RuneCountInString(prefix))
}

// RenderAll writes every diagnostic in order
func (r *Renderer) RenderAll(w io.Writer, l List, lines []string) error {
	for _, d := range l {
		if err := r.Render(w, d, lines); err != nil {
			return err
		}
	}
	return nil
}

// Excerpt renders d without color
func (d *Diagnostic) Excerpt(lines []string) string {
	var sb strings.Builder
	_ = (&Renderer{}).Render(&sb, d, lines)
	return sb.String()
}
