package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"wakili-cli/cmd/utils"
	"wakili-cli/internal/router"
	"wakili-cli/internal/session"
	"wakili-cli/internal/tui"
	"wakili-cli/internal/upload"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"
	"go.uber.org/zap"
)

const appTitle = "Kenya Law Firm – Legal Assistant"

// Lines drawn around the active panel: the header (title, tabs, rule), the
// info bar and the toast line.
const appChrome = 5

type appOptions struct {
	tab      router.Tab
	mode     session.Mode
	dir      string
	watchDir string
	// notice is shown as an error toast once the application starts.
	notice string
}

// appModel is the terminal application: a header with tabs, the active panel,
// an info bar and a toast.
type appModel struct {
	svc    *services
	ctrl   *Controller
	router *router.Router

	chat     chatPanel
	upload   uploadPanel
	settings settingsPanel
	toast    tui.ToastModel

	host     string
	watchDir string
	notice   string
	width    int
	height   int
}

func newAppModel(ctx context.Context, svc *services, opts appOptions) appModel {
	ctrl := NewController(ctx, svc)
	svc.session.SetMode(opts.mode)
	dir := opts.dir
	if dir == "" {
		dir = utils.GetEffectiveCWD()
	}

	m := appModel{
		svc:      svc,
		ctrl:     ctrl,
		router:   router.New(opts.tab),
		chat:     newChatPanel(ctrl, svc.session),
		upload:   newUploadPanel(ctrl, svc.uploads, dir),
		settings: newSettingsPanel(ctrl, svc.settings),
		toast:    tui.NewToastModel(),
		host:     utils.HostOf(svc.api.BaseURL()),
		watchDir: opts.watchDir,
		notice:   opts.notice,
	}
	if m.router.Active() != router.Chat {
		m.chat.Blur()
	}

	// Lay out for the current terminal until the first WindowSizeMsg arrives.
	if w, h, err := term.GetSize(os.Stdout.Fd()); err == nil && w > 0 && h > 0 {
		m.resize(w, h)
	} else {
		m.resize(80, 24)
	}
	return m
}

func (m appModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.chat.Init(), m.upload.Init()}
	if m.router.Active() == router.Settings {
		cmds = append(cmds, m.ctrl.LoadSettings())
	}
	if m.notice != "" {
		cmds = append(cmds, tui.ShowToast(m.notice, tui.ToastError))
	}
	return tea.Batch(cmds...)
}

func (m *appModel) resize(width, height int) {
	m.width = width
	m.height = height
	panelHeight := max(height-appChrome, 3)
	m.chat.SetSize(width, panelHeight)
	m.upload.SetSize(width, panelHeight)
	m.settings.SetSize(width, panelHeight)
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		m.toast, _ = m.toast.Update(msg)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "tab":
			return m.activate(m.router.Next())
		case "shift+tab":
			return m.activate(m.router.Prev())
		}
		return m.updateActive(msg)

	case chatReplyMsg:
		m.chat, cmd = m.chat.Update(msg)
		if m.router.Active() != router.Chat {
			return m, tea.Batch(cmd, tui.ShowToast("New reply in Chat", tui.ToastInfo))
		}
		return m, cmd

	case jobDoneMsg:
		status, ok := m.svc.uploads.Complete(msg.job, msg.out)
		if ok && m.router.Active() != router.Upload {
			return m, tui.ShowToast(status, toastLevelFor(msg.out.Err))
		}
		return m, nil

	case settingsMsg:
		m.settings, cmd = m.settings.Update(msg)
		return m, cmd

	case watchEventMsg:
		ev := msg.event
		if ev.Status == "" {
			return m, nil
		}
		return m, tui.ShowToast(ev.Status, toastLevelFor(watchErr(ev)))

	case utils.TUIMessageMsg:
		return m, tui.ShowToast(strings.TrimSpace(msg.Message.Content), toastLevelForMessage(msg.Message.Type))

	case tui.ShowToastMsg, tui.HideToastMsg:
		m.toast, cmd = m.toast.Update(msg)
		return m, cmd

	case spinner.TickMsg:
		// Each spinner only accepts its own ticks.
		var chatCmd, uploadCmd tea.Cmd
		m.chat, chatCmd = m.chat.Update(msg)
		m.upload, uploadCmd = m.upload.Update(msg)
		return m, tea.Batch(chatCmd, uploadCmd)
	}

	// Cursor blinks and directory listings go to the panel that owns them.
	var chatCmd, uploadCmd tea.Cmd
	m.chat, chatCmd = m.chat.Update(msg)
	m.upload, uploadCmd = m.upload.Update(msg)
	return m, tea.Batch(chatCmd, uploadCmd)
}

// activate shows the panel the router just switched to. Panels keep their
// state while hidden; showing Settings refreshes it.
func (m appModel) activate(tab router.Tab) (tea.Model, tea.Cmd) {
	utils.Logger().Debug("tab activated", zap.Stringer("tab", tab))
	switch tab {
	case router.Chat:
		return m, m.chat.Focus()
	case router.Settings:
		m.chat.Blur()
		return m, m.ctrl.LoadSettings()
	default:
		m.chat.Blur()
		return m, nil
	}
}

func (m appModel) updateActive(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.router.Active() {
	case router.Upload:
		m.upload, cmd = m.upload.Update(msg)
	case router.Settings:
		m.settings, cmd = m.settings.Update(msg)
	default:
		m.chat, cmd = m.chat.Update(msg)
	}
	return m, cmd
}

func toastLevelFor(err error) tui.ToastLevel {
	if err != nil {
		return tui.ToastError
	}
	return tui.ToastSuccess
}

func watchErr(ev upload.WatchEvent) error {
	if ev.Err != nil {
		return ev.Err
	}
	return ev.Outcome.Err
}

func toastLevelForMessage(t utils.MessageType) tui.ToastLevel {
	switch t {
	case utils.ErrorMessage, utils.WarningMessage:
		return tui.ToastError
	case utils.SuccessMessage:
		return tui.ToastSuccess
	default:
		return tui.ToastInfo
	}
}

func tabTitles() []string {
	tabs := router.Tabs()
	titles := make([]string, len(tabs))
	for i, t := range tabs {
		titles[i] = t.Title()
	}
	return titles
}

func (m appModel) renderInfoBar() string {
	parts := []string{
		"Server: " + m.host,
		"Mode: " + m.svc.session.Mode().Label(),
	}
	if m.svc.session.Pending() {
		parts = append(parts, "waiting for reply")
	}
	if st := m.svc.uploads.State(); st.Busy {
		parts = append(parts, fmt.Sprintf("%s running", st.Running))
	}
	if m.watchDir != "" {
		parts = append(parts, "Watching: "+m.watchDir)
	}
	line := strings.Join(parts, " | ")

	// Truncate if too long for terminal width
	if m.width > 5 && lipgloss.Width(line) > m.width-2 {
		line = string([]rune(line)[:max(m.width-5, 0)]) + "..."
	}

	return lipgloss.NewStyle().
		Width(m.width).
		Background(lipgloss.Color("#027ffd")).
		Foreground(lipgloss.Color("#ffffff")).
		PaddingLeft(1).
		PaddingRight(1).
		Render(line)
}

func (m appModel) View() string {
	var panel string
	switch m.router.Active() {
	case router.Upload:
		panel = m.upload.View()
	case router.Settings:
		panel = m.settings.View()
	default:
		panel = m.chat.View()
	}
	panelHeight := max(m.height-appChrome, 3)
	panel = lipgloss.NewStyle().Height(panelHeight).MaxHeight(panelHeight).Render(panel)

	var b strings.Builder
	b.WriteString(tui.Header(appTitle, tabTitles(), int(m.router.Active()), m.width))
	b.WriteString("\n")
	b.WriteString(panel)
	b.WriteString("\n")
	b.WriteString(m.renderInfoBar())
	b.WriteString("\n")
	b.WriteString(m.toast.View())
	return b.String()
}

// runApp runs the terminal application until the user quits.
func runApp(ctx context.Context, svc *services, opts appOptions) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := newAppModel(ctx, svc, opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))

	if opts.watchDir != "" {
		w, err := upload.NewWatcher(svc.uploads, opts.watchDir,
			upload.WithDebounce(svc.cfg.WatchDebounce()),
			upload.WithWatchLogger(svc.log.Named("watch")),
			upload.OnEvent(func(ev upload.WatchEvent) { p.Send(watchEventMsg{event: ev}) }),
		)
		if err != nil {
			return fmt.Errorf("cannot watch %s: %w", opts.watchDir, err)
		}
		go func() {
			if err := w.Run(ctx); err != nil {
				svc.log.Error("watcher stopped", zap.Error(err))
				p.Send(utils.TUIMessageMsg{Message: utils.OutputMessage{Type: utils.ErrorMessage, Content: "Watch folder stopped: " + err.Error()}})
			}
		}()
	}

	// Enable TUI mode for output routing
	utils.SetTUIMode(p)
	defer utils.ClearTUIMode()

	svc.log.Info("terminal application started", zap.Stringer("tab", opts.tab), zap.String("server", svc.api.BaseURL()))
	_, err := p.Run()
	if err != nil && ctx.Err() != nil {
		// Interrupted by a signal; not a failure.
		return nil
	}
	return err
}
