package cmd

import (
	"context"

	"wakili-cli/internal/session"
	"wakili-cli/internal/settings"
	"wakili-cli/internal/upload"

	tea "github.com/charmbracelet/bubbletea"
)

// chatReplyMsg carries a finished chat or draft request back to Update.
type chatReplyMsg struct {
	req   *session.Request
	reply session.Reply
}

// jobDoneMsg carries a finished upload or ingest back to Update.
type jobDoneMsg struct {
	job *upload.Job
	out upload.Outcome
}

// settingsMsg carries a settings fetch back to Update.
type settingsMsg struct {
	result settings.Result
}

// watchEventMsg reports a watch-folder upload. It is sent from the watcher
// goroutine, never from Update.
type watchEventMsg struct {
	event upload.WatchEvent
}

// Controller owns the stores and turns user actions into Tea commands. The
// synchronous half of each action runs in the caller (Update); the network
// call runs in the returned command.
type Controller struct {
	ctx context.Context
	svc *services
}

func NewController(ctx context.Context, svc *services) *Controller {
	return &Controller{ctx: ctx, svc: svc}
}

// Send starts a request in the current mode. It returns nil when the text is
// blank or a request is already pending.
func (c *Controller) Send(text string) tea.Cmd {
	req, ok := c.svc.session.Begin(text)
	if !ok {
		return nil
	}
	return func() tea.Msg {
		return chatReplyMsg{req: req, reply: c.svc.session.Do(c.ctx, req)}
	}
}

// Upload starts uploading the selected file, or returns nil when nothing is
// selected or the workflow is busy.
func (c *Controller) Upload() tea.Cmd {
	job, ok := c.svc.uploads.BeginUpload()
	if !ok {
		return nil
	}
	return c.run(job)
}

// Ingest starts a re-index, or returns nil when the workflow is busy.
func (c *Controller) Ingest() tea.Cmd {
	job, ok := c.svc.uploads.BeginIngest()
	if !ok {
		return nil
	}
	return c.run(job)
}

func (c *Controller) run(job *upload.Job) tea.Cmd {
	return func() tea.Msg {
		return jobDoneMsg{job: job, out: c.svc.uploads.Run(c.ctx, job)}
	}
}

// LoadSettings marks the settings view as loading and fetches them.
func (c *Controller) LoadSettings() tea.Cmd {
	f := c.svc.settings.Begin()
	return func() tea.Msg {
		return settingsMsg{result: c.svc.settings.Run(c.ctx, f)}
	}
}
