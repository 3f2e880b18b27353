package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/grovetools/remux/errors"
	"github.com/grovetools/remux/logging"
	"github.com/grovetools/remux/tui/theme"
)

// ErrorHandler prints one clear message per error plus a hint keyed on the
// error code.
type ErrorHandler struct {
	Verbose bool
	Out     io.Writer
	// RunID, when set, points failures that leave a trail in the log file
	// at 'remux logs --run'.
	RunID string
}

// NewErrorHandler creates an ErrorHandler writing to stderr that refers to
// this process's log entries.
func NewErrorHandler(verbose bool) *ErrorHandler {
	return &ErrorHandler{Verbose: verbose, Out: os.Stderr, RunID: logging.RunID()}
}

// Handle reports err and returns it unchanged.
func (h *ErrorHandler) Handle(err error) error {
	if err == nil {
		return nil
	}
	t := theme.DefaultTheme
	out := h.Out
	if out == nil {
		out = os.Stderr
	}

	remuxErr, ok := errors.As(err)
	if !ok {
		fmt.Fprintf(out, "%s %s\n", t.Error.Render(theme.IconError+" Error:"), err.Error())
		return err
	}

	fmt.Fprintf(out, "%s %s\n", t.Error.Render(theme.IconError), remuxErr.Message)
	if remuxErr.Cause != nil {
		fmt.Fprintf(out, "  %s\n", t.Muted.Render(remuxErr.Cause.Error()))
	}
	if output := remuxErr.Detail("output"); output != "" {
		for _, line := range strings.Split(strings.TrimRight(output, "\n"), "\n") {
			fmt.Fprintf(out, "  %s\n", t.Muted.Render("| "+line))
		}
	}
	if hint := Hint(remuxErr); hint != "" {
		fmt.Fprintf(out, "%s %s\n", t.Muted.Render(theme.IconArrow), hint)
	}
	if h.RunID != "" && logsHelp(remuxErr.Code) {
		fmt.Fprintf(out, "%s Logs: remux logs --run %s\n", t.Muted.Render(theme.IconArrow), h.RunID)
	}

	if h.Verbose {
		fmt.Fprintf(out, "\nError details:\n%s\n", remuxErr.ToJSON())
	}
	return err
}

// logsHelp reports whether the log file explains errors with this code
// better than the message does.
func logsHelp(code errors.ErrorCode) bool {
	switch code {
	case errors.ErrCodeCommandFailed, errors.ErrCodeDiscoveryTimeout, errors.ErrCodeInternal:
		return true
	}
	return false
}

// Hint returns the follow-up suggestion for an error code.
func Hint(err *errors.RemuxError) string {
	name := err.Detail("session")
	switch err.Code {
	case errors.ErrCodeNotFound:
		return "Run 'remux list' to see known sessions."
	case errors.ErrCodeCollision:
		if name != "" {
			return fmt.Sprintf("Attach with 'remux attach %s', or pick another name.", name)
		}
		return "Pick another name, or pass --on-collision=suffix."
	case errors.ErrCodeStaleMetadata:
		if name != "" {
			return fmt.Sprintf("Run 'remux stop %s' to clear it, or 'remux recover %s' to restart the tunnel.", name, name)
		}
		return "Run 'remux stop <name>' to clear the stale record."
	case errors.ErrCodeDiscoveryTimeout:
		if name != "" {
			return fmt.Sprintf("Check the tunnel window, then run 'remux recover %s'.", name)
		}
		return "Check that ngrok is authenticated, then run 'remux recover <name>'."
	case errors.ErrCodeDependencyMissing:
		return "Run 'remux doctor' to check prerequisites."
	case errors.ErrCodeConfigNotFound, errors.ErrCodeConfigInvalid:
		return "Run 'remux paths' to locate the config file, and 'remux schema --config' for its fields."
	case errors.ErrCodeAborted:
		return ""
	case errors.ErrCodeCommandFailed:
		return "Re-run with --verbose for details."
	default:
		return ""
	}
}
