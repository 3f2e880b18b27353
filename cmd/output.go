package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/grovetools/remux/logging"
	"github.com/grovetools/remux/pkg/sessions"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func printYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return enc.Close()
}

// pretty returns the styled writer for human output on the command's
// stdout.
func pretty(cmd *cobra.Command) *logging.PrettyLogger {
	return logging.NewPrettyLogger().WithWriter(cmd.OutOrStdout())
}

// printSession shows a record and the commands that act on it.
func printSession(p *logging.PrettyLogger, rec sessions.Record) {
	if rec.HasURL() {
		p.URL("url", rec.PublicURL)
	} else {
		p.Field("url", "(not discovered)")
	}
	p.Field("directory", rec.WorkingDirectory)
	p.Field("created", rec.CreatedAt.Local().Format(time.RFC3339))
}

func sessionHints(p *logging.PrettyLogger, name string) {
	p.Hint(fmt.Sprintf("remux attach %s", name))
	p.Hint(fmt.Sprintf("remux stop %s", name))
}

// relativeAge renders how long ago t was, coarsely.
func relativeAge(now, t time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 48*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
