// Package table renders the bordered tables used by list, info and doctor.
package table

import (
	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"
	"github.com/grovetools/remux/tui/theme"
)

// Builder provides a fluent interface for creating styled tables.
type Builder struct {
	table    *ltable.Table
	theme    *theme.Theme
	bordered bool
	headers  bool
}

// NewBuilder creates a builder with the default theme.
func NewBuilder() *Builder {
	return &Builder{table: ltable.New(), theme: theme.DefaultTheme, bordered: true}
}

// WithTheme sets the theme.
func (b *Builder) WithTheme(t *theme.Theme) *Builder {
	b.theme = t
	return b
}

// WithBorder enables or disables the border.
func (b *Builder) WithBorder(bordered bool) *Builder {
	b.bordered = bordered
	return b
}

// WithHeaders sets the header row.
func (b *Builder) WithHeaders(headers ...string) *Builder {
	b.table = b.table.Headers(headers...)
	b.headers = len(headers) > 0
	return b
}

// WithRows appends data rows.
func (b *Builder) WithRows(rows ...[]string) *Builder {
	for _, row := range rows {
		b.table = b.table.Row(row...)
	}
	return b
}

// Build applies borders and styling.
func (b *Builder) Build() *ltable.Table {
	t := b.theme
	if b.bordered {
		border := lipgloss.NewStyle()
		if t.Colors.Border != nil {
			border = border.Foreground(t.Colors.Border)
		}
		b.table = b.table.Border(lipgloss.RoundedBorder()).BorderStyle(border)
	} else {
		b.table = b.table.Border(lipgloss.HiddenBorder()).
			BorderTop(false).BorderBottom(false).BorderLeft(false).BorderRight(false).
			BorderHeader(false).BorderColumn(false)
	}

	return b.table.StyleFunc(func(row, col int) lipgloss.Style {
		if row == ltable.HeaderRow {
			return t.Bold.Padding(0, 1)
		}
		return lipgloss.NewStyle().Padding(0, 1)
	})
}

// SimpleTable renders headers and rows in a bordered table.
func SimpleTable(headers []string, rows [][]string) string {
	return NewBuilder().WithHeaders(headers...).WithRows(rows...).Build().String()
}

// StatusTable renders label/value pairs without borders, labels muted.
func StatusTable(items [][2]string) string {
	t := theme.DefaultTheme
	b := NewBuilder().WithBorder(false)
	for _, item := range items {
		b.WithRows([]string{t.Muted.Render(item[0] + ":"), item[1]})
	}
	return b.Build().String()
}
