package main

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette. Adaptive colors pick the light or dark variant from the
// terminal background.
var (
	primary     = lipgloss.AdaptiveColor{Light: "#101F38", Dark: "#8BC34A"}
	muted       = lipgloss.AdaptiveColor{Light: "#6b7280", Dark: "#94a3b8"}
	success     = lipgloss.Color("#8BC34A")
	destructive = lipgloss.Color("#e53935")
	warning     = lipgloss.Color("#FFC107")
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(primary).MarginBottom(1)
	boldStyle    = lipgloss.NewStyle().Bold(true)
	bodyStyle    = lipgloss.NewStyle()
	mutedStyle   = lipgloss.NewStyle().Foreground(muted)
	successStyle = lipgloss.NewStyle().Foreground(success).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(destructive).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(warning)
)

// table renders static rows with aligned columns.
type table struct {
	title   string
	headers []string
	rows    [][]string
}

func newTable(title string, headers ...string) *table {
	return &table{title: title, headers: headers}
}

func (t *table) addRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *table) String() string {
	var sb strings.Builder
	if t.title != "" {
		sb.WriteString(titleStyle.Render(t.title))
		sb.WriteString("\n")
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}
	// lipgloss widths include padding
	total := len(widths) - 1
	for i := range widths {
		widths[i] += 2
		total += widths[i]
	}

	header := boldStyle.Padding(0, 1)
	cell := bodyStyle.Padding(0, 1)
	sep := mutedStyle.Render("|")

	writeRow := func(style lipgloss.Style, cells []string) {
		for i := range widths {
			v := ""
			if i < len(cells) {
				v = cells[i]
			}
			sb.WriteString(style.Width(widths[i]).Render(v))
			if i < len(widths)-1 {
				sb.WriteString(sep)
			}
		}
		sb.WriteString("\n")
	}

	writeRow(header, t.headers)
	sb.WriteString(mutedStyle.Render(strings.Repeat("-", total)))
	sb.WriteString("\n")
	for _, row := range t.rows {
		writeRow(cell, row)
	}
	return sb.String()
}
