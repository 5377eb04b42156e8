package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ToastDuration is how long a toast stays visible.
const ToastDuration = 3 * time.Second

// ToastLevel selects the toast colour.
type ToastLevel int

const (
	ToastInfo ToastLevel = iota
	ToastSuccess
	ToastError
)

type ToastModel struct {
	message   string
	level     ToastLevel
	visible   bool
	timestamp time.Time
	width     int
	now       func() time.Time
}

// ShowToastMsg displays Message until the next toast or ToastDuration passes.
type ShowToastMsg struct {
	Message string
	Level   ToastLevel
}

type HideToastMsg struct{ shownAt time.Time }

func NewToastModel() ToastModel { return ToastModel{now: time.Now} }

// ShowToast returns a command that displays message.
func ShowToast(message string, level ToastLevel) tea.Cmd {
	return func() tea.Msg { return ShowToastMsg{Message: message, Level: level} }
}

func (m ToastModel) Update(msg tea.Msg) (ToastModel, tea.Cmd) {
	switch msg := msg.(type) {
	case ShowToastMsg:
		m.message = msg.Message
		m.level = msg.Level
		m.visible = true
		m.timestamp = m.clock()
		shownAt := m.timestamp
		return m, tea.Tick(ToastDuration, func(time.Time) tea.Msg { return HideToastMsg{shownAt: shownAt} })
	case HideToastMsg:
		// A newer toast replaced the one this hide was scheduled for.
		if msg.shownAt.IsZero() || msg.shownAt.Equal(m.timestamp) {
			m.visible = false
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	}
	return m, nil
}

func (m ToastModel) clock() time.Time {
	if m.now == nil {
		return time.Now()
	}
	return m.now()
}

// Visible reports whether a toast is showing.
func (m ToastModel) Visible() bool { return m.visible }

// Message returns the text of the current toast.
func (m ToastModel) Message() string { return m.message }

func (m ToastModel) View() string {
	if !m.visible {
		return ""
	}
	bg := lipgloss.Color("86")
	switch m.level {
	case ToastSuccess:
		bg = lipgloss.Color("35")
	case ToastError:
		bg = lipgloss.Color("160")
	}
	toast := lipgloss.NewStyle().
		Foreground(lipgloss.Color("230")).
		Background(bg).
		Padding(0, 2).
		MarginRight(2).
		Bold(true).
		Render(m.message)
	if m.width <= 0 {
		return toast
	}
	return lipgloss.PlaceHorizontal(m.width, lipgloss.Right, toast)
}
