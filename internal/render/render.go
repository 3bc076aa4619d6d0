// Package render turns summaries into terminal output.
package render

import (
	"bytes"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/mattn/go-isatty"
)

const (
	// DefaultStyle is the chroma style used for summaries
	DefaultStyle = "monokai"

	formatter = "terminal256"
	lexer     = "markdown"
)

// Markdown highlights a markdown summary for a 256-color terminal.
// On any highlighting error the text is returned unchanged.
func Markdown(text, style string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	if style == "" {
		style = DefaultStyle
	}

	var buf bytes.Buffer
	if err := quick.Highlight(&buf, text, lexer, formatter, style); err != nil {
		return text
	}
	return strings.TrimRight(buf.String(), "\n")
}

// IsTerminal reports whether w is an interactive terminal
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Summary returns text highlighted when w is a terminal and plain otherwise
func Summary(w io.Writer, text string) string {
	if IsTerminal(w) {
		return Markdown(text, DefaultStyle)
	}
	return text
}
