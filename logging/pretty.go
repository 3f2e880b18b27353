package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/grovetools/remux/tui/theme"
)

// PrettyLogger writes styled, user-facing output. Structured logs go through
// NewLogger instead.
type PrettyLogger struct {
	writer io.Writer
	theme  *theme.Theme
}

// NewPrettyLogger returns a PrettyLogger writing to stderr.
func NewPrettyLogger() *PrettyLogger {
	return &PrettyLogger{writer: os.Stderr, theme: theme.DefaultTheme}
}

// WithWriter sets the destination.
func (p *PrettyLogger) WithWriter(w io.Writer) *PrettyLogger {
	p.writer = w
	return p
}

// Success prints a message with a check mark.
func (p *PrettyLogger) Success(message string) {
	fmt.Fprintf(p.writer, "%s %s\n",
		p.theme.Success.Render(theme.IconSuccess),
		p.theme.Success.Render(message))
}

// InfoPretty prints an informational line.
func (p *PrettyLogger) InfoPretty(message string) {
	fmt.Fprintf(p.writer, "%s\n", p.theme.Info.Render(message))
}

// WarnPretty prints a warning.
func (p *PrettyLogger) WarnPretty(message string) {
	fmt.Fprintf(p.writer, "%s %s\n",
		p.theme.Warning.Render(theme.IconWarning),
		p.theme.Warning.Render(message))
}

// ErrorPretty prints an error, with err appended when non-nil.
func (p *PrettyLogger) ErrorPretty(message string, err error) {
	fmt.Fprintf(p.writer, "%s %s",
		p.theme.Error.Render(theme.IconError),
		p.theme.Error.Render(message))
	if err != nil {
		fmt.Fprintf(p.writer, ": %s", p.theme.Error.Render(err.Error()))
	}
	fmt.Fprintln(p.writer)
}

// Field prints an aligned key/value pair.
func (p *PrettyLogger) Field(key string, value interface{}) {
	fmt.Fprintf(p.writer, "  %s %s\n",
		p.theme.Muted.Render(fmt.Sprintf("%-12s", key+":")),
		p.theme.Bold.Render(fmt.Sprint(value)))
}

// URL prints a labelled public URL.
func (p *PrettyLogger) URL(label, url string) {
	fmt.Fprintf(p.writer, "  %s %s %s\n",
		p.theme.Muted.Render(fmt.Sprintf("%-12s", label+":")),
		theme.IconTunnel,
		p.theme.URL.Render(url))
}

// Hint prints a follow-up command suggestion.
func (p *PrettyLogger) Hint(message string) {
	fmt.Fprintf(p.writer, "%s %s\n",
		p.theme.Muted.Render(theme.IconArrow),
		p.theme.Muted.Render(message))
}

// Code prints indented command output.
func (p *PrettyLogger) Code(content string) {
	for _, line := range strings.Split(strings.TrimRight(content, "\n"), "\n") {
		fmt.Fprintf(p.writer, "%s\n", p.theme.Code.Render(line))
	}
}

// Blank prints an empty line.
func (p *PrettyLogger) Blank() {
	fmt.Fprintln(p.writer)
}
