package cmd

import (
	"fmt"
	"strings"

	"wakili-cli/internal/session"
	"wakili-cli/internal/tui"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
)

const (
	userLabel = "You"
	botLabel  = "Wakili"

	thinkingText = "Thinking…"
)

const chatHelp = `Commands:
  /help               Show this help
  /mode [ask|draft]   Switch mode (no argument toggles)
  /copy               Copy the last reply to the clipboard
  /clear              Start a new conversation
  /exit               Quit

Hotkeys:
  Ctrl+T              Toggle Ask/Draft
  Up/Down             Input history
  PgUp/PgDn           Scroll the conversation
  Tab/Shift+Tab       Switch panels`

var (
	userLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#cccccc"))
	botLabelStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	failedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	noticeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
	inputBoxStyle  = lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("63"))
	hintStyle      = lipgloss.NewStyle().Faint(true)
)

// chatPanel shows the conversation and the message input.
type chatPanel struct {
	ctrl  *Controller
	store *session.Store

	viewport viewport.Model
	textarea textarea.Model
	spin     spinner.Model

	history   []string
	histIndex int
	// notice is client-side feedback such as /help output. It is not part of
	// the conversation and clears on the next send.
	notice string

	width  int
	height int
}

func newChatPanel(ctrl *Controller, store *session.Store) chatPanel {
	ta := textarea.New()
	ta.Placeholder = store.Mode().Placeholder()
	ta.Prompt = "> "
	ta.ShowLineNumbers = false
	ta.SetWidth(30)
	ta.SetHeight(1)
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.KeyMap.InsertNewline.SetEnabled(false)
	ta.Focus()

	vp := viewport.New(30, 5)
	// Letters must reach the input, so only paging keys scroll.
	vp.KeyMap = viewport.KeyMap{
		PageDown: key.NewBinding(key.WithKeys("pgdown")),
		PageUp:   key.NewBinding(key.WithKeys("pgup")),
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))

	p := chatPanel{
		ctrl:     ctrl,
		store:    store,
		viewport: vp,
		textarea: ta,
		spin:     s,
	}
	p.refreshViewportBottom()
	return p
}

func (p chatPanel) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, p.spin.Tick)
}

// SetSize gives the panel its share of the terminal.
func (p *chatPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
	p.textarea.SetWidth(max(width-2, 10))
	p.layout()
	p.refreshViewportBottom()
}

// layout gives the viewport whatever the input area leaves over.
func (p *chatPanel) layout() {
	p.viewport.Width = p.width
	p.viewport.Height = max(p.height-lipgloss.Height(p.renderInput()), 1)
}

// Focus and Blur follow the active tab so a hidden panel shows no cursor.
func (p *chatPanel) Focus() tea.Cmd { return p.textarea.Focus() }
func (p *chatPanel) Blur()          { p.textarea.Blur() }

// Update handles messages meant for the chat panel. Keys arrive only while the
// panel is visible; replies arrive whichever panel is showing.
func (p chatPanel) Update(msg tea.Msg) (chatPanel, tea.Cmd) {
	switch msg := msg.(type) {
	case chatReplyMsg:
		p.store.Complete(msg.req, msg.reply)
		p.refreshViewportBottom()
		return p, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		p.spin, cmd = p.spin.Update(msg)
		if p.store.Pending() {
			p.setViewportContent()
		}
		return p, cmd

	case tea.MouseMsg:
		var cmd tea.Cmd
		p.viewport, cmd = p.viewport.Update(msg)
		return p, cmd

	case tea.KeyMsg:
		return p.handleKey(msg)
	}

	var cmd tea.Cmd
	p.textarea, cmd = p.textarea.Update(msg)
	return p, cmd
}

func (p chatPanel) handleKey(msg tea.KeyMsg) (chatPanel, tea.Cmd) {
	switch msg.String() {
	case "ctrl+t":
		p.setMode(p.store.ToggleMode())
		return p, nil

	case "pgup", "pgdown":
		var cmd tea.Cmd
		p.viewport, cmd = p.viewport.Update(msg)
		return p, cmd

	case "up":
		if p.histIndex > 0 {
			p.histIndex--
			p.textarea.SetValue(p.history[p.histIndex])
			p.textarea.CursorEnd()
		}
		return p, nil

	case "down":
		if p.histIndex < len(p.history)-1 {
			p.histIndex++
			p.textarea.SetValue(p.history[p.histIndex])
			p.textarea.CursorEnd()
		} else {
			p.histIndex = len(p.history)
			p.textarea.SetValue("")
		}
		return p, nil

	case "enter":
		return p.submit()
	}

	var cmd tea.Cmd
	p.textarea, cmd = p.textarea.Update(msg)
	return p, cmd
}

// submit sends the input or runs a slash command. While a request is pending
// the input is left as typed.
func (p chatPanel) submit() (chatPanel, tea.Cmd) {
	text := strings.TrimSpace(p.textarea.Value())
	if text == "" {
		return p, nil
	}
	if strings.HasPrefix(text, "/") {
		return p.runSlash(text)
	}
	if p.store.Pending() {
		return p, nil
	}

	cmd := p.ctrl.Send(text)
	if cmd == nil {
		return p, nil
	}
	p.history = append(p.history, text)
	p.histIndex = len(p.history)
	p.textarea.Reset()
	p.setNotice("")
	p.refreshViewportBottom()
	return p, cmd
}

func (p chatPanel) runSlash(text string) (chatPanel, tea.Cmd) {
	fields := strings.Fields(text)
	p.textarea.Reset()

	switch strings.ToLower(fields[0]) {
	case "/help":
		p.setNotice(chatHelp)

	case "/mode":
		if len(fields) < 2 {
			p.setMode(p.store.ToggleMode())
			break
		}
		mode, err := session.ParseMode(fields[1])
		if err != nil {
			p.setNotice("Usage: /mode [ask|draft]")
			break
		}
		p.store.SetMode(mode)
		p.setMode(mode)

	case "/copy":
		reply, ok := p.store.LastReply()
		if !ok {
			p.setNotice("Nothing to copy yet.")
			break
		}
		return p, copyToClipboard(reply.Text)

	case "/clear":
		if !p.store.Clear() {
			p.setNotice("Wait for the pending reply before clearing.")
			break
		}
		p.setNotice("")

	case "/exit", "/quit":
		return p, tea.Quit

	default:
		p.setNotice(fmt.Sprintf("Unknown command %s. Type /help for commands.", fields[0]))
	}

	p.refreshViewportBottom()
	return p, nil
}

// setMode updates the placeholder after the store's mode changed.
func (p *chatPanel) setMode(mode session.Mode) {
	p.textarea.Placeholder = mode.Placeholder()
	p.setNotice("Mode: " + mode.Label())
}

func (p *chatPanel) setNotice(text string) {
	p.notice = text
	p.layout()
}

func copyToClipboard(text string) tea.Cmd {
	return func() tea.Msg {
		if err := clipboard.WriteAll(text); err != nil {
			return tui.ShowToastMsg{Message: "Copy failed: " + err.Error(), Level: tui.ToastError}
		}
		return tui.ShowToastMsg{Message: "Copied last reply", Level: tui.ToastSuccess}
	}
}

func renderTranscript(msgs []session.Message, width int) string {
	wrapAt := max(width-2, 10)
	var b strings.Builder
	for i, msg := range msgs {
		if i > 0 {
			b.WriteString("\n")
		}
		switch {
		case msg.Role == session.RoleUser:
			b.WriteString(userLabelStyle.Render(userLabel + ":"))
			b.WriteString("\n")
			b.WriteString(wordwrap.String(msg.Text, wrapAt))
		case msg.Failed:
			b.WriteString(botLabelStyle.Render(botLabel + ":"))
			b.WriteString("\n")
			b.WriteString(failedStyle.Render(wordwrap.String(msg.Text, wrapAt)))
		default:
			b.WriteString(botLabelStyle.Render(botLabel + ":"))
			b.WriteString("\n")
			b.WriteString(wordwrap.String(msg.Text, wrapAt))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (p chatPanel) renderContent() string {
	var b strings.Builder
	b.WriteString(renderTranscript(p.store.Transcript(), p.width))
	if p.store.Pending() {
		b.WriteString("\n")
		b.WriteString(botLabelStyle.Render(botLabel+":") + " " + p.spin.View() + thinkingText)
		b.WriteString("\n")
	}
	return b.String()
}

func (p *chatPanel) setViewportContent() {
	p.viewport.SetContent(p.renderContent())
}

func (p *chatPanel) refreshViewportBottom() {
	p.setViewportContent()
	p.viewport.GotoBottom()
}

func (p chatPanel) renderInput() string {
	var b strings.Builder
	if p.notice != "" {
		b.WriteString(noticeStyle.Render(p.notice))
		b.WriteString("\n")
	}
	b.WriteString(inputBoxStyle.Render(p.textarea.View()))
	b.WriteString("\n")

	hint := fmt.Sprintf("[%s] Enter: send | Ctrl+T: switch to %s | /help for commands",
		p.store.Mode().Label(), otherMode(p.store.Mode()).Label())
	if p.width > 2 {
		hint = wordwrap.String(hint, p.width-2)
	}
	b.WriteString(hintStyle.Render(hint))
	return b.String()
}

func otherMode(m session.Mode) session.Mode {
	if m == session.ModeDraft {
		return session.ModeChat
	}
	return session.ModeDraft
}

func (p chatPanel) View() string {
	return p.viewport.View() + "\n" + p.renderInput()
}
