// Package tui holds rendering pieces shared by the terminal application.
package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	tabStyle       = lipgloss.NewStyle().Padding(0, 2).Foreground(lipgloss.Color("245"))
	activeTabStyle = lipgloss.NewStyle().Padding(0, 2).Foreground(lipgloss.Color("#000000")).Background(lipgloss.Color("86")).Bold(true)
	tabSeparator   = lipgloss.NewStyle().Foreground(lipgloss.Color("238")).Render("|")
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	ruleStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
)

// TabBar renders titles as pills with the active one highlighted.
func TabBar(titles []string, active int) string {
	pieces := make([]string, 0, 2*len(titles))
	for i, title := range titles {
		if i > 0 {
			pieces = append(pieces, tabSeparator)
		}
		if i == active {
			pieces = append(pieces, activeTabStyle.Render(title))
		} else {
			pieces = append(pieces, tabStyle.Render(title))
		}
	}
	// Left-aligned so a wider active pill never wraps the bar.
	return strings.Join(pieces, " ")
}

// Header renders the title line, the tab bar and a rule of the given width.
func Header(title string, titles []string, active, width int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(TabBar(titles, active))
	b.WriteString("\n")
	if width > 0 {
		b.WriteString(ruleStyle.Render(strings.Repeat("─", width)))
	}
	return b.String()
}
