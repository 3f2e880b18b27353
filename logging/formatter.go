package logging

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/grovetools/remux/tui/theme"
	"github.com/sirupsen/logrus"
)

// TextFormatter renders entries as a single human-readable line.
type TextFormatter struct {
	Config FormatConfig
	// Plain disables styling, used for the file sink.
	Plain bool
}

// Format renders a single log entry.
func (f *TextFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b strings.Builder

	if !f.Config.DisableTimestamp {
		b.WriteString(entry.Time.Format("2006-01-02 15:04:05"))
		b.WriteString(" ")
	}

	levelStr := entry.Level.String()
	if levelStr == "warning" {
		levelStr = "warn"
	}
	fmt.Fprintf(&b, "[%s]", strings.ToUpper(levelStr))

	if component, ok := entry.Data["component"]; ok && !f.Config.DisableComponent {
		name := fmt.Sprintf("%v", component)
		if !f.Plain {
			name = theme.DefaultTheme.Accent.Render(name)
		}
		fmt.Fprintf(&b, " [%s]", name)
	}

	if entry.HasCaller() {
		fmt.Fprintf(&b, " [%s:%d %s]",
			filepath.Base(entry.Caller.File), entry.Caller.Line, filepath.Base(entry.Caller.Function))
	}

	b.WriteString(" ")
	b.WriteString(entry.Message)

	// Fields in key order so log lines are stable.
	keys := make([]string, 0, len(entry.Data))
	for key := range entry.Data {
		if key != "component" {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(&b, " %s=%v", key, entry.Data[key])
	}

	b.WriteString("\n")
	return []byte(b.String()), nil
}
