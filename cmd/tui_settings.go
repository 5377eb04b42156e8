package cmd

import (
	"strings"

	"wakili-cli/internal/settings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
)

var (
	settingKeyStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("245"))
	loadingText     = "Loading settings…"
)

// settingsPanel shows the server configuration. Fetches are started by the
// app when the tab is activated.
type settingsPanel struct {
	ctrl   *Controller
	loader *settings.Loader
	width  int
	height int
}

func newSettingsPanel(ctrl *Controller, loader *settings.Loader) settingsPanel {
	return settingsPanel{ctrl: ctrl, loader: loader}
}

func (p *settingsPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

func (p settingsPanel) Update(msg tea.Msg) (settingsPanel, tea.Cmd) {
	switch msg := msg.(type) {
	case settingsMsg:
		p.loader.Complete(msg.result)
	case tea.KeyMsg:
		if msg.String() == "r" {
			return p, p.ctrl.LoadSettings()
		}
	}
	return p, nil
}

func (p settingsPanel) View() string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("Server settings"))
	b.WriteString("\n\n")

	view := p.loader.View()
	switch {
	case view.Loading:
		b.WriteString(loadingText)
	case view.LoadError != "":
		b.WriteString(failedStyle.Render(view.LoadError))
	case view.Loaded():
		b.WriteString(renderSettingsTable(settings.Entries(view.Config), p.width))
	default:
		b.WriteString(hintStyle.Render("No settings loaded."))
	}
	b.WriteString("\n\n")
	b.WriteString(hintStyle.Render("r: reload"))
	return b.String()
}

func renderSettingsTable(entries []settings.Entry, width int) string {
	if len(entries) == 0 {
		return hintStyle.Render("The server reported no settings.")
	}
	labelWidth := 0
	for _, e := range entries {
		labelWidth = max(labelWidth, lipgloss.Width(e.Label))
	}
	valueWidth := max(width-labelWidth-4, 20)

	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteString("\n")
		}
		label := settingKeyStyle.Width(labelWidth + 2).Render(e.Label)
		value := wordwrap.String(e.Value, valueWidth)
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, label, value))
	}
	return b.String()
}
