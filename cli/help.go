package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/grovetools/remux/tui/theme"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"
)

const (
	maxWidth = 72
	minWidth = 40
)

// getTerminalWidth returns the terminal width capped at maxWidth.
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width < minWidth {
		return maxWidth
	}
	if width > maxWidth {
		return maxWidth
	}
	return width
}

// wrapText wraps text to width, preserving existing line breaks.
func wrapText(text string, width int) string {
	if width <= 0 {
		width = maxWidth
	}

	var result []string
	for _, paragraph := range strings.Split(text, "\n") {
		if ansi.StringWidth(paragraph) <= width {
			result = append(result, paragraph)
			continue
		}
		var line string
		for _, word := range strings.Fields(paragraph) {
			switch {
			case line == "":
				line = word
			case ansi.StringWidth(line)+1+ansi.StringWidth(word) <= width:
				line += " " + word
			default:
				result = append(result, line)
				line = word
			}
		}
		if line != "" {
			result = append(result, line)
		}
	}
	return strings.Join(result, "\n")
}

// SetStyledHelp applies remux styling to a command's help output.
func SetStyledHelp(cmd *cobra.Command) {
	cmd.SetHelpFunc(styledHelpFunc)
}

// ApplyStyledHelpRecursive applies styled help to cmd and all subcommands.
// Call it after every subcommand has been added.
func ApplyStyledHelpRecursive(cmd *cobra.Command) {
	cmd.SetHelpFunc(styledHelpFunc)
	cmd.SetUsageFunc(styledUsageFunc)
	for _, sub := range cmd.Commands() {
		ApplyStyledHelpRecursive(sub)
	}
}

// styledUsageFunc prints nothing; errors are reported by ErrorHandler.
func styledUsageFunc(cmd *cobra.Command) error {
	return nil
}

// PrintError prints a flag or argument error with a help hint.
func PrintError(cmd *cobra.Command, err error) {
	t := theme.DefaultTheme
	fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", t.Error.Render("Error:"), err.Error())
	fmt.Fprintf(cmd.ErrOrStderr(), "%s\n", t.Muted.Render(fmt.Sprintf("Run '%s --help' for usage.", cmd.CommandPath())))
}

// parseDescription splits a long description into text and examples.
func parseDescription(long string) (description string, examples string) {
	for _, marker := range []string{"\nExamples:\n", "\nExample:\n"} {
		if idx := strings.Index(long, marker); idx != -1 {
			return strings.TrimSpace(long[:idx]), strings.TrimSpace(long[idx+len(marker):])
		}
	}
	return long, ""
}

func renderExamples(w io.Writer, t *theme.Theme, examples string, cmdPath string) {
	rootCmd := strings.Split(cmdPath, " ")[0]
	for _, line := range strings.Split(examples, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			fmt.Fprintln(w)
		case strings.HasPrefix(trimmed, "#"):
			fmt.Fprintln(w, " "+t.Muted.Render(trimmed))
		default:
			fmt.Fprintln(w, " "+styleCommandLine(trimmed, rootCmd, t))
		}
	}
}

// styleCommandLine highlights the binary, subcommand and flags of an example.
func styleCommandLine(line, rootCmd string, t *theme.Theme) string {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return line
	}

	result := make([]string, 0, len(parts))
	for i, part := range parts {
		switch {
		case i == 0 && part == rootCmd:
			result = append(result, t.Accent.Render(part))
		case i == 1 && !strings.HasPrefix(part, "-"):
			result = append(result, t.Info.Render(part))
		case strings.HasPrefix(part, "-"):
			result = append(result, t.Muted.Render(part))
		default:
			result = append(result, part)
		}
	}
	return "  " + strings.Join(result, " ")
}

func styledHelpFunc(cmd *cobra.Command, args []string) {
	w := cmd.OutOrStdout()
	t := theme.DefaultTheme
	section := lipgloss.NewStyle().Italic(true).Inherit(t.Warning)
	width := getTerminalWidth() - 2

	fmt.Fprintln(w, " "+t.Accent.Render(strings.ToUpper(cmd.CommandPath())))

	description, examples := cmd.Short, ""
	if cmd.Long != "" {
		description, examples = parseDescription(cmd.Long)
	}
	if cmd.Short != "" {
		for _, line := range strings.Split(wrapText(cmd.Short, width), "\n") {
			fmt.Fprintln(w, " "+t.Muted.Render(line))
		}
	}
	if description != "" && description != cmd.Short {
		fmt.Fprintln(w)
		for _, line := range strings.Split(wrapText(description, width), "\n") {
			fmt.Fprintln(w, " "+line)
		}
	}

	if cmd.Runnable() || cmd.HasSubCommands() {
		fmt.Fprintln(w, "\n "+section.Render("USAGE"))
		if cmd.Runnable() {
			fmt.Fprintf(w, " %s\n", cmd.UseLine())
		}
		if cmd.HasSubCommands() {
			fmt.Fprintf(w, " %s [command]\n", cmd.CommandPath())
		}
	}

	if cmd.HasAvailableSubCommands() {
		maxLen := 0
		for _, sub := range cmd.Commands() {
			if sub.IsAvailableCommand() && len(sub.Name()) > maxLen {
				maxLen = len(sub.Name())
			}
		}
		fmt.Fprintln(w, "\n "+section.Render("COMMANDS"))
		for _, sub := range cmd.Commands() {
			if sub.IsAvailableCommand() {
				padding := strings.Repeat(" ", maxLen-len(sub.Name()))
				fmt.Fprintf(w, " %s%s  %s\n", t.Info.Render(sub.Name()), padding, sub.Short)
			}
		}
	}

	var visibleFlags []*pflag.Flag
	cmd.LocalFlags().VisitAll(func(f *pflag.Flag) {
		if !f.Hidden {
			visibleFlags = append(visibleFlags, f)
		}
	})

	if len(visibleFlags) > 0 {
		if cmd.HasAvailableSubCommands() {
			var flags []string
			for _, f := range visibleFlags {
				if f.Shorthand != "" {
					flags = append(flags, fmt.Sprintf("-%s/--%s", f.Shorthand, f.Name))
				} else {
					flags = append(flags, "--"+f.Name)
				}
			}
			fmt.Fprintln(w, "\n "+t.Muted.Render("Flags: "+strings.Join(flags, ", ")))
		} else {
			fmt.Fprintln(w, "\n "+section.Render("FLAGS"))
			maxFlagLen := 0
			for _, f := range visibleFlags {
				if n := len(formatFlagName(f)); n > maxFlagLen {
					maxFlagLen = n
				}
			}
			for _, f := range visibleFlags {
				flagStr := formatFlagName(f)
				padding := strings.Repeat(" ", maxFlagLen-len(flagStr))
				indent := strings.Repeat(" ", maxFlagLen+3)

				usage, choices := parseChoices(f.Usage)
				if f.DefValue != "" && f.DefValue != "false" && f.DefValue != "[]" && f.DefValue != "0s" {
					usage += t.Muted.Render(fmt.Sprintf(" (default: %s)", f.DefValue))
				}
				fmt.Fprintf(w, " %s%s  %s\n", t.Accent.Render(flagStr), padding, usage)
				for _, choice := range choices {
					fmt.Fprintf(w, " %s  %s\n", indent, t.Muted.Render("• "+choice))
				}
			}
		}
	}

	exampleText := cmd.Example
	if exampleText == "" {
		exampleText = examples
	}
	if exampleText != "" {
		fmt.Fprintln(w, "\n "+section.Render("EXAMPLES"))
		renderExamples(w, t, exampleText, cmd.CommandPath())
	}

	if cmd.HasSubCommands() {
		fmt.Fprintf(w, "\n Use \"%s [command] --help\" for more information.\n", cmd.CommandPath())
	}
}

// formatFlagName returns "-f, --flag" or "    --flag".
func formatFlagName(f *pflag.Flag) string {
	if f.Shorthand != "" {
		return fmt.Sprintf("-%s, --%s", f.Shorthand, f.Name)
	}
	return "    --" + f.Name
}

// parseChoices splits a usage string of the form "Label: a, b, or c" into
// the label and its choices. Bulleted multi-line usage is also accepted.
func parseChoices(usage string) (description string, choices []string) {
	lines := strings.Split(usage, "\n")
	if len(lines) > 1 {
		var baseDesc string
		var bulletChoices []string
		for i, line := range lines {
			trimmed := strings.TrimSpace(line)
			if strings.HasPrefix(trimmed, "• ") || strings.HasPrefix(trimmed, "- ") {
				choice := strings.TrimPrefix(trimmed, "• ")
				bulletChoices = append(bulletChoices, strings.TrimPrefix(choice, "- "))
			} else if i == 0 && trimmed != "" {
				baseDesc = trimmed
			}
		}
		if len(bulletChoices) > 0 {
			return baseDesc, bulletChoices
		}
	}

	colonIdx := strings.Index(usage, ": ")
	if colonIdx == -1 {
		return usage, nil
	}
	afterColon := usage[colonIdx+2:]

	choicesStr, suffix := afterColon, ""
	if endIdx := strings.Index(afterColon, " ("); endIdx != -1 {
		choicesStr, suffix = afterColon[:endIdx], afterColon[endIdx:]
	}
	parts := strings.Split(choicesStr, ", ")
	if len(parts) < 3 {
		return usage, nil
	}
	for i, p := range parts {
		parts[i] = strings.TrimSpace(strings.TrimPrefix(p, "or "))
	}
	return usage[:colonIdx+1] + suffix, parts
}
