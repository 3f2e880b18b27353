// Package tui holds terminal setup shared by remux's styled output and
// prompts.
package tui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// ColorEnv forces a color profile: "none", "ansi", "256" or "truecolor".
const ColorEnv = "REMUX_COLOR"

// InitializeTerminal picks the lipgloss color profile. REMUX_COLOR wins,
// then NO_COLOR, then CLICOLOR_FORCE and COLORTERM for output that is piped
// but should stay colored. Otherwise lipgloss's own detection stands.
func InitializeTerminal() {
	if profile, ok := profileFromEnv(); ok {
		lipgloss.SetColorProfile(profile)
	}
}

func profileFromEnv() (termenv.Profile, bool) {
	switch os.Getenv(ColorEnv) {
	case "none":
		return termenv.Ascii, true
	case "ansi":
		return termenv.ANSI, true
	case "256":
		return termenv.ANSI256, true
	case "truecolor":
		return termenv.TrueColor, true
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return termenv.Ascii, true
	}
	if os.Getenv("CLICOLOR_FORCE") == "1" || os.Getenv("COLORTERM") == "truecolor" {
		return termenv.TrueColor, true
	}
	return termenv.Ascii, false
}
