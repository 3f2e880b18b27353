package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/grovetools/remux/errors"
	"github.com/grovetools/remux/logging"
	"github.com/grovetools/remux/pkg/paths"
	"github.com/hpcloud/tail"
	"github.com/spf13/cobra"
)

// NewLogsCmd prints or follows the remux log file.
func NewLogsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the remux log file",
		Long: `Show the log written by every remux command.

Examples:
  # Last 50 lines
  remux logs --tail 50

  # Follow tunnel discovery only
  remux logs -f --component tunnel`,
		Args: cobra.NoArgs,
		RunE: runLogsE,
	}

	cmd.Flags().BoolP("follow", "f", false, "Follow log output")
	cmd.Flags().Int("tail", -1, "Number of lines to show from the end of the log (default: all)")
	cmd.Flags().StringSlice("component", nil, "Only show lines from these components")
	cmd.Flags().String("run", "", "Only show lines from one invocation (the run= field)")
	cmd.Flags().Bool("path", false, "Print the log file path and exit")

	return cmd
}

func runLogsE(cmd *cobra.Command, args []string) error {
	follow, _ := cmd.Flags().GetBool("follow")
	tailN, _ := cmd.Flags().GetInt("tail")
	components, _ := cmd.Flags().GetStringSlice("component")
	pathOnly, _ := cmd.Flags().GetBool("path")
	run, _ := cmd.Flags().GetString("run")

	cfg := logging.CurrentConfig()
	if cfg.File.Disabled {
		return errors.New(errors.ErrCodeConfigInvalid, "the log file is disabled (logging.file.disabled)")
	}

	logFile := logging.LogFilePath(cfg, time.Now())
	out := cmd.OutOrStdout()
	if pathOnly {
		fmt.Fprintln(out, logFile)
		return nil
	}

	if _, err := os.Stat(logFile); err != nil {
		latest, findErr := findLatestLogFile(paths.LogsDir())
		if findErr != nil && !follow {
			return errors.Wrap(findErr, errors.ErrCodeNotFound, "no log file found")
		}
		if latest != "" {
			logFile = latest
		}
	}

	filter := allOf(componentFilter(components), runFilter(run))
	if !follow {
		return printLastLines(out, logFile, tailN, filter)
	}
	return followLog(cmd.Context(), out, logFile, tailN, filter)
}

// findLatestLogFile returns the most recently modified remux-*.log in dir.
func findLatestLogFile(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "remux-*.log"))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no log files in %s", dir)
	}
	sort.Slice(matches, func(i, j int) bool {
		return modTime(matches[i]).After(modTime(matches[j]))
	})
	return matches[0], nil
}

func modTime(path string) time.Time {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}

// componentFilter accepts text lines tagged "[name]" and JSON lines with a
// matching "component" field. No components accepts everything.
func componentFilter(components []string) func(string) bool {
	if len(components) == 0 {
		return func(string) bool { return true }
	}
	wanted := make(map[string]bool, len(components))
	for _, c := range components {
		wanted[c] = true
	}
	return func(line string) bool {
		if strings.HasPrefix(line, "{") {
			var entry struct {
				Component string `json:"component"`
			}
			if err := json.Unmarshal([]byte(line), &entry); err == nil {
				return wanted[entry.Component]
			}
		}
		for c := range wanted {
			if strings.Contains(line, "["+c+"]") {
				return true
			}
		}
		return false
	}
}

// runFilter accepts lines tagged with the given run ID; "" accepts all.
func runFilter(run string) func(string) bool {
	if run == "" {
		return func(string) bool { return true }
	}
	return func(line string) bool {
		return strings.Contains(line, logging.RunField+"="+run) ||
			strings.Contains(line, `"`+logging.RunField+`":"`+run+`"`)
	}
}

func allOf(filters ...func(string) bool) func(string) bool {
	return func(line string) bool {
		for _, f := range filters {
			if !f(line) {
				return false
			}
		}
		return true
	}
}

// lastLines reads r and keeps the final n accepted lines; n < 0 keeps all.
func lastLines(r io.Reader, n int, accept func(string) bool) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !accept(line) {
			continue
		}
		lines = append(lines, line)
		if n >= 0 && len(lines) > n {
			lines = lines[1:]
		}
	}
	return lines, scanner.Err()
}

func printLastLines(w io.Writer, path string, n int, accept func(string) bool) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeNotFound, "failed to open log file").WithDetail("path", path)
	}
	defer f.Close()

	lines, err := lastLines(f, n, accept)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	for _, line := range lines {
		fmt.Fprintln(w, line)
	}
	return nil
}

// followLog prints the last n lines, then new lines as they are written,
// until ctx is cancelled. The file may not exist yet.
func followLog(ctx context.Context, w io.Writer, path string, n int, accept func(string) bool) error {
	var offset int64
	if _, err := os.Stat(path); err == nil {
		if n != 0 {
			if err := printLastLines(w, path, n, accept); err != nil {
				return err
			}
		}
		offset = fileSize(path)
	}

	t, err := tail.TailFile(path, tail.Config{
		Follow:    true,
		ReOpen:    true,
		MustExist: false,
		Location:  &tail.SeekInfo{Offset: offset, Whence: io.SeekStart},
		Logger:    stdlog.New(io.Discard, "", 0),
	})
	if err != nil {
		return fmt.Errorf("failed to follow %s: %w", path, err)
	}
	defer t.Cleanup()

	for {
		select {
		case <-ctx.Done():
			_ = t.Stop()
			return nil
		case line, ok := <-t.Lines:
			if !ok {
				return t.Err()
			}
			if line.Err != nil {
				continue
			}
			if accept(line.Text) {
				fmt.Fprintln(w, line.Text)
			}
		}
	}
}

func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}
