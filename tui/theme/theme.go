// Package theme holds the lipgloss styles shared by remux's terminal output.
package theme

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/grovetools/remux/config"
	"github.com/muesli/termenv"
)

// ThemeEnv selects a palette by name, overriding the config file.
const ThemeEnv = "REMUX_THEME"

const defaultThemeName = "kanagawa"

// --- Kanagawa Dragon (dark) palette ---
const (
	kanagawaDarkGreen     = "#98BB6C"
	kanagawaDarkYellow    = "#FF9E3B"
	kanagawaDarkRed       = "#FF5D62"
	kanagawaDarkOrange    = "#FFA066"
	kanagawaDarkCyan      = "#7E9CD8"
	kanagawaDarkViolet    = "#957FB8"
	kanagawaDarkLightText = "#DCD7BA"
	kanagawaDarkMutedText = "#727169"
	kanagawaDarkBorder    = "#363646"
)

// --- Kanagawa Wave (light) palette ---
const (
	kanagawaLightGreen     = "#4E7C5A"
	kanagawaLightYellow    = "#A68A64"
	kanagawaLightRed       = "#C34043"
	kanagawaLightOrange    = "#CC6B4E"
	kanagawaLightCyan      = "#5B8BBE"
	kanagawaLightViolet    = "#674D7A"
	kanagawaLightLightText = "#2B2F42"
	kanagawaLightMutedText = "#6C7086"
	kanagawaLightBorder    = "#B5BDC5"
)

// Colors is the palette a Theme is built from.
type Colors struct {
	Green     lipgloss.TerminalColor
	Yellow    lipgloss.TerminalColor
	Red       lipgloss.TerminalColor
	Orange    lipgloss.TerminalColor
	Cyan      lipgloss.TerminalColor
	Violet    lipgloss.TerminalColor
	LightText lipgloss.TerminalColor
	MutedText lipgloss.TerminalColor
	Border    lipgloss.TerminalColor
}

// Theme holds the pre-configured styles for remux output.
type Theme struct {
	Name   string
	Colors Colors

	Header lipgloss.Style
	Title  lipgloss.Style

	// Status indicators
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style

	Bold   lipgloss.Style
	Normal lipgloss.Style
	Muted  lipgloss.Style

	// Session listing
	SessionName lipgloss.Style
	URL         lipgloss.Style
	Live        lipgloss.Style
	Dead        lipgloss.Style
	TableHeader lipgloss.Style

	// Prompt elements
	Cursor   lipgloss.Style
	Selected lipgloss.Style
	Key      lipgloss.Style

	Box    lipgloss.Style
	Code   lipgloss.Style
	Accent lipgloss.Style
}

// DefaultTheme is resolved once from REMUX_THEME or the "ui" config section.
var DefaultTheme = NewThemeWithName(themeName())

// NewThemeWithName builds a theme from a palette name. Unknown names fall
// back to kanagawa.
func NewThemeWithName(name string) *Theme {
	key := normalizeThemeName(name)
	if termenv.EnvColorProfile() == termenv.Ascii {
		key = "plain"
	}
	switch key {
	case "terminal", "ansi":
		return newTheme("terminal", terminalColors())
	case "plain", "none", "no-color":
		return newTheme("plain", Colors{})
	default:
		return newTheme(defaultThemeName, kanagawaColors())
	}
}

// RenderStatus renders text with the style for status.
func RenderStatus(status, text string) string {
	switch status {
	case "success":
		return DefaultTheme.Success.Render(text)
	case "error":
		return DefaultTheme.Error.Render(text)
	case "warning":
		return DefaultTheme.Warning.Render(text)
	case "info":
		return DefaultTheme.Info.Render(text)
	default:
		return text
	}
}

// RenderLiveness renders a session's live/dead marker.
func RenderLiveness(live bool) string {
	if live {
		return DefaultTheme.Live.Render(IconLive + " live")
	}
	return DefaultTheme.Dead.Render(IconDead + " dead")
}

func newTheme(name string, colors Colors) *Theme {
	fg := func(c lipgloss.TerminalColor) lipgloss.Style {
		s := lipgloss.NewStyle()
		if c != nil {
			s = s.Foreground(c)
		}
		return s
	}
	border := lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder())
	tableHeader := lipgloss.NewStyle().Bold(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true)
	if colors.Border != nil {
		border = border.BorderForeground(colors.Border)
		tableHeader = tableHeader.BorderForeground(colors.Border)
	}

	return &Theme{
		Name:   name,
		Colors: colors,

		Header: lipgloss.NewStyle().Bold(true).MarginTop(1).MarginBottom(1),
		Title:  lipgloss.NewStyle().Bold(true).Underline(true).MarginBottom(1),

		Success: fg(colors.Green).Bold(true),
		Error:   fg(colors.Red).Bold(true),
		Warning: fg(colors.Yellow).Bold(true),
		Info:    fg(colors.Cyan).Bold(true),

		Bold:   lipgloss.NewStyle().Bold(true),
		Normal: lipgloss.NewStyle(),
		Muted:  lipgloss.NewStyle().Faint(true),

		SessionName: fg(colors.Violet).Bold(true),
		URL:         fg(colors.Cyan).Underline(true),
		Live:        fg(colors.Green),
		Dead:        fg(colors.Red).Faint(true),
		TableHeader: tableHeader,

		Cursor:   fg(colors.Orange).Bold(true),
		Selected: fg(colors.LightText).Bold(true),
		Key:      fg(colors.MutedText),

		Box:    border.Padding(0, 1),
		Code:   fg(colors.LightText).MarginLeft(2),
		Accent: fg(colors.Violet).Bold(true),
	}
}

func kanagawaColors() Colors {
	return Colors{
		Green:     lipgloss.AdaptiveColor{Light: kanagawaLightGreen, Dark: kanagawaDarkGreen},
		Yellow:    lipgloss.AdaptiveColor{Light: kanagawaLightYellow, Dark: kanagawaDarkYellow},
		Red:       lipgloss.AdaptiveColor{Light: kanagawaLightRed, Dark: kanagawaDarkRed},
		Orange:    lipgloss.AdaptiveColor{Light: kanagawaLightOrange, Dark: kanagawaDarkOrange},
		Cyan:      lipgloss.AdaptiveColor{Light: kanagawaLightCyan, Dark: kanagawaDarkCyan},
		Violet:    lipgloss.AdaptiveColor{Light: kanagawaLightViolet, Dark: kanagawaDarkViolet},
		LightText: lipgloss.AdaptiveColor{Light: kanagawaLightLightText, Dark: kanagawaDarkLightText},
		MutedText: lipgloss.AdaptiveColor{Light: kanagawaLightMutedText, Dark: kanagawaDarkMutedText},
		Border:    lipgloss.AdaptiveColor{Light: kanagawaLightBorder, Dark: kanagawaDarkBorder},
	}
}

func terminalColors() Colors {
	return Colors{
		Green:     lipgloss.Color("2"),
		Yellow:    lipgloss.Color("3"),
		Red:       lipgloss.Color("1"),
		Orange:    lipgloss.Color("208"),
		Cyan:      lipgloss.Color("6"),
		Violet:    lipgloss.Color("5"),
		LightText: lipgloss.Color("7"),
		MutedText: lipgloss.Color("8"),
		Border:    lipgloss.Color("8"),
	}
}

func normalizeThemeName(name string) string {
	normalized := strings.ToLower(strings.TrimSpace(name))
	normalized = strings.ReplaceAll(normalized, " ", "-")
	return strings.ReplaceAll(normalized, "_", "-")
}

// uiConfig is the "ui" extension section of remux.yml.
type uiConfig struct {
	Theme string `yaml:"theme"`
	Icons string `yaml:"icons"`
}

func loadUIConfig() uiConfig {
	var ui uiConfig
	cfg, err := config.LoadDefault()
	if err != nil || cfg == nil {
		return ui
	}
	_ = cfg.UnmarshalExtension("ui", &ui)
	return ui
}

func themeName() string {
	if name := normalizeThemeName(os.Getenv(ThemeEnv)); name != "" {
		return name
	}
	if name := normalizeThemeName(loadUIConfig().Theme); name != "" {
		return name
	}
	return defaultThemeName
}
