package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"wakili-cli/cmd/utils"
	"wakili-cli/internal/upload"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#cccccc"))
)

const uploadHelp = "Enter: select | x: clear selection | Ctrl+U: upload | Ctrl+R: re-index knowledge base"

// uploadPanel picks a PDF and runs uploads and re-indexing.
type uploadPanel struct {
	ctrl *Controller
	wf   *upload.Workflow

	picker filepicker.Model
	spin   spinner.Model
	// notice reports a rejected selection or an ignored action.
	notice string

	width  int
	height int
}

func newUploadPanel(ctrl *Controller, wf *upload.Workflow, dir string) uploadPanel {
	fp := filepicker.New()
	fp.AllowedTypes = []string{".pdf", ".PDF"}
	fp.CurrentDirectory = dir
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.AutoHeight = true

	s := spinner.New()
	s.Spinner = spinner.MiniDot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))

	return uploadPanel{ctrl: ctrl, wf: wf, picker: fp, spin: s}
}

func (p uploadPanel) Init() tea.Cmd {
	return tea.Batch(p.picker.Init(), p.spin.Tick)
}

// The picker sizes itself from a window size message, keeping a margin of
// five lines below the list.
const pickerMargin = 5

// uploadChrome is the lines the panel draws besides the file list.
const uploadChrome = 6

func (p *uploadPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
	listHeight := max(height-uploadChrome, 3)
	p.picker, _ = p.picker.Update(tea.WindowSizeMsg{Width: width, Height: listHeight + pickerMargin})
}

func (p uploadPanel) Update(msg tea.Msg) (uploadPanel, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		p.spin, cmd = p.spin.Update(msg)
		return p, cmd

	case tea.WindowSizeMsg:
		// The app sizes the panel through SetSize.
		return p, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+u":
			return p.startUpload()
		case "ctrl+r":
			return p.startIngest()
		case "x":
			p.wf.ClearSelection()
			p.notice = ""
			return p, nil
		}
	}

	var cmd tea.Cmd
	p.picker, cmd = p.picker.Update(msg)

	if ok, path := p.picker.DidSelectFile(msg); ok {
		if _, err := p.wf.Select(path); err != nil {
			p.notice = err.Error()
		} else {
			p.notice = ""
		}
	}
	if ok, path := p.picker.DidSelectDisabledFile(msg); ok {
		p.notice = fmt.Sprintf("%s: %v", filepath.Base(path), upload.ErrNotPDF)
	}
	return p, cmd
}

func (p uploadPanel) startUpload() (uploadPanel, tea.Cmd) {
	st := p.wf.State()
	if st.Busy {
		return p, nil
	}
	if st.Selected == nil {
		p.notice = "Select a PDF first."
		return p, nil
	}
	cmd := p.ctrl.Upload()
	if cmd != nil {
		p.notice = ""
	}
	return p, cmd
}

func (p uploadPanel) startIngest() (uploadPanel, tea.Cmd) {
	cmd := p.ctrl.Ingest()
	if cmd != nil {
		p.notice = ""
	}
	return p, cmd
}

func (p uploadPanel) View() string {
	st := p.wf.State()

	var b strings.Builder
	b.WriteString(sectionStyle.Render("Upload a PDF to the knowledge base"))
	b.WriteString("  ")
	b.WriteString(hintStyle.Render(p.picker.CurrentDirectory))
	b.WriteString("\n")
	b.WriteString(p.picker.View())
	b.WriteString("\n")

	if st.Selected != nil {
		b.WriteString(fmt.Sprintf("Selected: %s (%s, %s)",
			st.Selected.Name, utils.FormatBytes(st.Selected.Size), utils.FormatPages(st.Selected.Pages)))
	} else {
		b.WriteString(hintStyle.Render("No file selected."))
	}
	b.WriteString("\n")

	switch {
	case st.Busy && st.Running == upload.JobIngest:
		b.WriteString(p.spin.View() + " Re-indexing…")
	case st.Busy:
		b.WriteString(p.spin.View() + " Uploading…")
	case st.Status != "":
		b.WriteString(statusStyle.Render(st.Status))
	}
	b.WriteString("\n")

	if p.notice != "" {
		b.WriteString(failedStyle.Render(p.notice))
	}
	b.WriteString("\n")
	b.WriteString(hintStyle.Render(uploadHelp))
	return b.String()
}
