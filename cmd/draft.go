package cmd

import (
	"wakili-cli/internal/router"
	"wakili-cli/internal/session"

	"github.com/spf13/cobra"
)

var draftInputFile string

var draftCmd = &cobra.Command{
	Use:   `draft ["instruction"]`,
	Short: "Draft a legal document",
	Long: `Describe a document and print the draft the assistant writes. With no
instruction the terminal application opens on the Chat tab in Draft mode.

Examples:
  wakili draft "Tenancy agreement for a two-bedroom flat in Kilimani"
  wakili draft -f ./instructions.txt > agreement.txt`,
	Args: func(cmd *cobra.Command, args []string) error {
		if draftInputFile != "" && len(args) > 0 {
			return errBothInputs
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		input, err := resolveInput(cmd, args, draftInputFile)
		if err != nil {
			return err
		}
		if input == "" {
			return startApp(cmd, appOptions{tab: router.Chat, mode: session.ModeDraft})
		}
		return runOneShot(cmd.Context(), session.ModeDraft, input)
	},
}

func init() {
	draftCmd.Flags().StringVarP(&draftInputFile, "file", "f", "", "Read the instruction from a file (\"-\" for standard input)")
	rootCmd.AddCommand(draftCmd)
}
