package cmd

import (
	"wakili-cli/cmd/utils"
	"wakili-cli/internal/upload"

	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Re-index the knowledge base",
	Long: `Ask the server to rebuild the knowledge base from its default document.
Answers may be unavailable until the first ingest has finished.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := loadServices()
		if err != nil {
			return err
		}
		utils.OutputProgress("Re-indexing the knowledge base...\n")
		out, ok := svc.uploads.Ingest(cmd.Context())
		if !ok {
			return upload.ErrBusy
		}
		if out.Err != nil {
			utils.OutputError("%s\n", svc.uploads.Status())
			return errReported
		}
		utils.OutputSuccess("%s\n", svc.uploads.Status())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}
