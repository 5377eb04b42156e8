package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"wakili-cli/cmd/utils"
	"wakili-cli/internal/router"
	"wakili-cli/internal/session"

	"github.com/spf13/cobra"
)

var errBothInputs = errors.New("specify either --file or an inline input, not both")

var (
	chatInputFile string
	chatDraft     bool
)

// chatCmd represents the `wakili chat` command
var chatCmd = &cobra.Command{
	Use:   `chat ["question"]`,
	Short: "Ask the legal assistant a question",
	Long: `Ask the legal assistant a question and print the answer. With no question
the terminal application opens on the Chat tab.

Examples:
  # Inline question
  wakili chat "Can a landlord evict a tenant without notice?"

  # Question read from a file ("-" reads standard input)
  wakili chat -f ./question.txt

  # Draft instead of answer
  wakili chat --draft "Affidavit of service for a civil summons"

  # Interactive session
  wakili chat`,
	Args: func(cmd *cobra.Command, args []string) error {
		if chatInputFile != "" && len(args) > 0 {
			return errBothInputs
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		mode := session.ModeChat
		if chatDraft {
			mode = session.ModeDraft
		}
		input, err := resolveInput(cmd, args, chatInputFile)
		if err != nil {
			return err
		}
		if input == "" {
			return startApp(cmd, appOptions{tab: router.Chat, mode: mode})
		}
		return runOneShot(cmd.Context(), mode, input)
	},
}

func init() {
	chatCmd.Flags().StringVarP(&chatInputFile, "file", "f", "", "Read the question from a file (\"-\" for standard input)")
	chatCmd.Flags().BoolVar(&chatDraft, "draft", false, "Ask for a document draft instead of an answer")
	rootCmd.AddCommand(chatCmd)
}

// resolveInput returns the inline arguments joined by spaces, or the contents
// of file. A file that holds only whitespace is an error.
func resolveInput(cmd *cobra.Command, args []string, file string) (string, error) {
	if file == "" {
		return strings.TrimSpace(strings.Join(args, " ")), nil
	}

	var (
		data []byte
		err  error
	)
	if file == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(utils.ResolvePath(file))
	}
	if err != nil {
		return "", fmt.Errorf("error reading file '%s': %w", file, err)
	}
	input := strings.TrimSpace(string(data))
	if input == "" {
		return "", fmt.Errorf("input file '%s' is empty", file)
	}
	return input, nil
}

// runOneShot sends input in mode and prints the reply. A failed reply goes to
// stderr and makes the command exit non-zero.
func runOneShot(ctx context.Context, mode session.Mode, input string) error {
	svc, err := loadServices()
	if err != nil {
		return err
	}
	svc.session.SetMode(mode)

	utils.OutputDebug("Sending %s request to %s\n", mode, svc.api.BaseURL())
	reply, ok := svc.session.Send(ctx, input)
	if !ok {
		return errors.New("nothing to send")
	}
	if reply.Failed() {
		utils.OutputError("%s\n", reply.Text)
		return errReported
	}
	utils.OutputInfoPlain("%s\n", reply.Text)
	return nil
}
