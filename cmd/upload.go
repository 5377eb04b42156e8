package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wakili-cli/cmd/utils"
	"wakili-cli/internal/upload"

	"github.com/spf13/cobra"
)

var uploadWatchDir string

var uploadCmd = &cobra.Command{
	Use:   "upload [FILE.pdf]...",
	Short: "Upload PDFs to the knowledge base",
	Long: `Upload one or more PDF documents to the knowledge base. Files are sent one
at a time and the server indexes each before the next starts.

With --watch the command keeps running and uploads every PDF that is created
in or copied into the directory, until interrupted.

Examples:
  wakili upload ./acts/land-act-2012.pdf
  wakili upload ./judgments/*.pdf
  wakili upload --watch ~/Scans`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 && uploadWatchDir == "" {
			return fmt.Errorf("provide at least one PDF or --watch DIR")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := loadServices()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		paths := make([]string, len(args))
		for i, a := range args {
			paths[i] = utils.ResolvePath(a)
		}
		failed := uploadFiles(ctx, svc.uploads, paths)
		if uploadWatchDir != "" {
			if err := watchFolder(ctx, svc, utils.ResolvePath(uploadWatchDir)); err != nil {
				return err
			}
		}
		if failed > 0 {
			return errReported
		}
		return nil
	},
}

func init() {
	uploadCmd.Flags().StringVar(&uploadWatchDir, "watch", "", "Keep running and upload PDFs that appear in this directory")
	rootCmd.AddCommand(uploadCmd)
}

// uploadFiles uploads paths in order and returns how many failed.
func uploadFiles(ctx context.Context, wf *upload.Workflow, paths []string) int {
	failed := 0
	for i, path := range paths {
		if ctx.Err() != nil {
			utils.OutputWarning("Interrupted, %d file(s) not uploaded\n", len(paths)-i)
			return failed + len(paths) - i
		}
		file, err := wf.Select(path)
		if err != nil {
			utils.OutputError("Skipped %s: %v\n", path, err)
			failed++
			continue
		}

		utils.OutputProgress("Uploading %s (%s, %s)...\n", file.Name, utils.FormatBytes(file.Size), utils.FormatPages(file.Pages))
		start := time.Now()
		out, ok := wf.Upload(ctx)
		if !ok {
			utils.OutputError("Skipped %s: %v\n", file.Name, upload.ErrBusy)
			failed++
			continue
		}
		if out.Err != nil {
			utils.OutputError("%s\n", wf.Status())
			failed++
			continue
		}
		utils.OutputSuccess("%s (%s)\n", wf.Status(), utils.FormatDuration(time.Since(start)))
	}
	return failed
}

// watchFolder uploads PDFs that settle in dir until ctx is done.
func watchFolder(ctx context.Context, svc *services, dir string) error {
	w, err := upload.NewWatcher(svc.uploads, dir,
		upload.WithDebounce(svc.cfg.WatchDebounce()),
		upload.WithWatchLogger(svc.log.Named("watch")),
		upload.OnEvent(func(ev upload.WatchEvent) {
			if watchErr(ev) != nil {
				utils.OutputError("%s\n", ev.Status)
				return
			}
			utils.OutputSuccess("%s\n", ev.Status)
		}),
	)
	if err != nil {
		return fmt.Errorf("cannot watch %s: %w", dir, err)
	}
	utils.OutputInfo("Watching %s for new PDFs (Ctrl+C to stop)\n", w.Dir())
	if err := w.Run(ctx); err != nil {
		return err
	}
	utils.OutputInfo("Stopped watching %s\n", w.Dir())
	return nil
}
