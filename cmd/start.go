package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"wakili-cli/cmd/utils"
	"wakili-cli/internal/router"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"
)

var (
	startTab      string
	startWatchDir string
	startDir      string
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Open the terminal application",
	Long: `Open the terminal application with Chat, Upload and Settings tabs.

Keys:
  Tab / Shift+Tab   switch tabs
  Ctrl+T            toggle Ask/Draft (Chat)
  Ctrl+U / Ctrl+R   upload the selected PDF / re-index (Upload)
  r                 reload (Settings)
  Ctrl+C            quit

Examples:
  wakili start
  wakili start --tab upload --dir ~/Documents/cases
  wakili start --watch ~/Scans`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tab, err := router.ParseTab(startTab)
		if err != nil {
			return err
		}
		return startApp(cmd, appOptions{tab: tab, dir: startDir, watchDir: startWatchDir})
	},
}

func init() {
	startCmd.Flags().StringVar(&startTab, "tab", "chat", "Tab to open: chat, upload or settings")
	startCmd.Flags().StringVar(&startWatchDir, "watch", "", "Upload PDFs that appear in this directory (default: watch.dir from the config)")
	startCmd.Flags().StringVar(&startDir, "dir", "", "Directory the file picker opens in (default: working directory)")
	rootCmd.AddCommand(startCmd)
}

// startApp checks for a terminal, warns when the server does not answer and
// runs the application until the user quits or a signal arrives.
func startApp(cmd *cobra.Command, opts appOptions) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("the terminal application needs an interactive terminal; use 'wakili chat \"question\"', 'wakili upload FILE' or 'wakili settings' instead")
	}

	svc, err := loadServices()
	if err != nil {
		return err
	}
	if opts.watchDir == "" {
		opts.watchDir = svc.cfg.Watch.Dir
	}
	opts.watchDir = utils.ResolvePath(opts.watchDir)
	opts.dir = utils.ResolvePath(opts.dir)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := utils.Reachable(ctx, svc.api.BaseURL()); err != nil {
		svc.log.Warn("server not answering", zap.String("server", svc.api.BaseURL()), zap.Error(err))
		// Shown as a toast; the alternate screen would hide a printed warning.
		if utils.IsLocalhost(svc.api.BaseURL()) {
			opts.notice = "No server is answering at " + utils.HostOf(svc.api.BaseURL()) + ". Is the backend running?"
		} else {
			opts.notice = "Server " + utils.HostOf(svc.api.BaseURL()) + " is not answering."
		}
	}

	return runApp(ctx, svc, opts)
}
