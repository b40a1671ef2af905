package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/annolens/annolens-cli/internal/ui"
)

// Logger is a tiny opt-in logger used across internal packages.
// When Writer is nil, logging is disabled.
//
// The output format is:
//
//	<ColoredPrefix> dataset=<name> <formattedMessage>\n
//
// where <name> is trimmed and defaults to "(unknown)".
type Logger struct {
	Writer io.Writer

	PrefixText  string
	PrefixColor string

	// OmitDataset controls whether the dataset field is written.
	// When false (default), output includes: "dataset=<name>".
	OmitDataset bool
}

func (l *Logger) SetWriter(w io.Writer) { l.Writer = w }

func (l *Logger) Enabled() bool { return l != nil && l.Writer != nil }

func (l *Logger) Logf(dataset string, format string, args ...any) {
	if l == nil || l.Writer == nil {
		return
	}
	prefix := l.PrefixText
	if prefix == "" {
		prefix = "Log:"
	}
	if l.PrefixColor != "" {
		prefix = ui.Color(prefix, l.PrefixColor)
	}
	msg := fmt.Sprintf(format, args...)
	if l.OmitDataset {
		fmt.Fprintf(l.Writer, "%s %s\n", prefix, msg)
		return
	}

	d := strings.TrimSpace(dataset)
	if d == "" {
		d = "(unknown)"
	}
	fmt.Fprintf(l.Writer, "%s dataset=%s %s\n", prefix, d, msg)
}
