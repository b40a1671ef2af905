package ui

// Basic ANSI color codes used by the logging package. Styled terminal
// output elsewhere goes through the lipgloss styles in styles.go.
const (
	Reset     = "\033[0m"
	FgCyan    = "\033[36m"
	FgGreen   = "\033[32m"
	FgMagenta = "\033[35m"
	FgYellow  = "\033[33m"
	FgRed     = "\033[31m"
)

var colorEnabled = true

// Init configures terminal output. When noColor is true, Color becomes a
// no-op so log output stays plain (also used by tests for stable output).
func Init(noColor bool) {
	colorEnabled = !noColor
}

// Color wraps a string with the given ANSI code.
func Color(s string, code string) string {
	if !colorEnabled {
		return s
	}
	return code + s + Reset
}
