package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/grovetools/remux/cli"
	"github.com/grovetools/remux/logging"
	"github.com/grovetools/remux/pkg/sessions"
	"github.com/grovetools/remux/tui/components/table"
	"github.com/moby/patternmatcher"
	"github.com/spf13/cobra"
)

const clearScreen = "\033[H\033[2J"

func newListCmd(factory AppFactory) *cobra.Command {
	var (
		filters []string
		watch   bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded sessions",
		Long: `Lists the session records on disk. Records are not checked against
running tmux sessions; use 'remux info <name>' for that.

Examples:
  remux list
  remux list --filter 'api-*' --filter '!api-old'
  remux list --watch`,
		Aliases: []string{"ls"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := factory(cmd)
			if err != nil {
				return err
			}
			matcher, err := newNameMatcher(filters)
			if err != nil {
				return err
			}
			jsonOut := cli.GetOptions(cmd).JSONOutput
			render := func() error {
				return renderList(cmd.Context(), app, matcher, jsonOut, app.out(), cmd.ErrOrStderr())
			}

			if !watch {
				return render()
			}
			if app.Watcher == nil {
				return fmt.Errorf("--watch needs a file-backed store")
			}
			return watchList(cmd.Context(), app.Watcher, app.out(), render)
		},
	}
	cmd.Flags().StringSliceVarP(&filters, "filter", "f", nil, "Only show names matching these glob patterns ('!' excludes)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Re-render whenever a record changes")
	return cmd
}

// nameMatcher filters session names by glob patterns. An empty pattern list
// matches everything; a list of only exclusions matches everything else.
type nameMatcher struct {
	pm *patternmatcher.PatternMatcher
}

func newNameMatcher(patterns []string) (*nameMatcher, error) {
	if len(patterns) == 0 {
		return &nameMatcher{}, nil
	}
	onlyExclusions := true
	for _, p := range patterns {
		if !strings.HasPrefix(p, "!") {
			onlyExclusions = false
			break
		}
	}
	if onlyExclusions {
		patterns = append([]string{"*"}, patterns...)
	}
	pm, err := patternmatcher.New(patterns)
	if err != nil {
		return nil, fmt.Errorf("invalid --filter pattern: %w", err)
	}
	return &nameMatcher{pm: pm}, nil
}

func (m *nameMatcher) Match(name string) bool {
	if m.pm == nil {
		return true
	}
	ok, err := m.pm.MatchesOrParentMatches(name)
	return err == nil && ok
}

func renderList(ctx context.Context, app *App, matcher *nameMatcher, jsonOut bool, out, errOut io.Writer) error {
	records, skipped, err := app.Controller.List(ctx)
	if err != nil {
		return err
	}

	filtered := make([]sessions.Record, 0, len(records))
	for _, rec := range records {
		if matcher.Match(rec.Name) {
			filtered = append(filtered, rec)
		}
	}

	warn := logging.NewPrettyLogger().WithWriter(errOut)
	for _, s := range skipped {
		warn.WarnPretty(fmt.Sprintf("skipped %s: %v", s.File, s.Err))
	}

	if jsonOut {
		return printJSON(out, filtered)
	}
	if len(filtered) == 0 {
		fmt.Fprintln(out, "No sessions.")
		return nil
	}

	now := time.Now()
	rows := make([][]string, 0, len(filtered))
	for _, rec := range filtered {
		url := rec.PublicURL
		if url == "" {
			url = "-"
		}
		rows = append(rows, []string{rec.Name, url, rec.WorkingDirectory, relativeAge(now, rec.CreatedAt)})
	}
	fmt.Fprintln(out, table.SimpleTable([]string{"NAME", "URL", "DIRECTORY", "CREATED"}, rows))
	return nil
}

// watchList renders once, then again after every store change, until ctx
// is cancelled.
func watchList(ctx context.Context, w StoreWatcher, out io.Writer, render func() error) error {
	redraw := func() {
		fmt.Fprint(out, clearScreen)
		if err := render(); err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
		}
	}
	redraw()
	err := w.Watch(ctx, sessions.DefaultWatchDebounce, redraw)
	if ctx.Err() != nil {
		return nil
	}
	return err
}
