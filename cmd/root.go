package cmd

import (
	"errors"
	"fmt"
	"os"

	"wakili-cli/cmd/config"
	"wakili-cli/cmd/utils"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	debug       bool
	serverURL   string
	configPath  string
	overrideCwd string
)

// Resolved by PersistentPreRunE before any command body runs.
var (
	appConfig    *config.Config
	configSource string
)

// errReported makes Execute exit non-zero without printing anything more. The
// command has already told the user what went wrong.
var errReported = errors.New("failure already reported")

// skipConfig marks commands that must work without a valid configuration.
const skipConfig = "skip-config"

var rootCmd = &cobra.Command{
	Use:   "wakili",
	Short: "Wakili - terminal client for the Kenya Law Firm legal assistant",
	Long: `Wakili talks to the Kenya Law Firm legal-assistant server. Ask legal
questions, draft documents, upload PDFs to the knowledge base and inspect the
server's settings, either one command at a time or in the terminal application.

Getting started:
  # Open the terminal application
  wakili start

  # Ask a single question
  wakili chat "What is the limitation period for contract claims?"

  # Draft a document
  wakili draft "Demand letter for unpaid rent of KES 120,000"

  # Add a document to the knowledge base
  wakili upload ./statutes/employment-act.pdf`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		utils.OverrideCwd = overrideCwd
		if cmd.Annotations[skipConfig] == "true" {
			return nil
		}
		return setupConfig()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		utils.CloseLogger()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Enable debug output")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server-url", "", "Legal assistant server URL (default: "+config.DefaultServerURL+")")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: wakili.yaml in the working or data directory)")
	rootCmd.PersistentFlags().StringVar(&overrideCwd, "cwd", "", "Override the current working directory for CLI operations")
}

// setupConfig resolves the configuration and starts the logger.
func setupConfig() error {
	dataDir, err := utils.GetDataDir()
	if err != nil {
		// The data directory only adds a search location and the log default.
		dataDir = ""
	}
	cfg, source, err := config.Load(config.LoadOptions{
		ConfigPath: utils.ResolvePath(configPath),
		Cwd:        utils.GetEffectiveCWD(),
		DataDir:    dataDir,
		ServerURL:  serverURL,
	})
	if err != nil {
		return err
	}
	if err := utils.InitLogger(utils.LogOptions{Path: cfg.LogFile, Debug: debug, Console: debug}); err != nil {
		return err
	}
	appConfig, configSource = cfg, source

	fields := []zap.Field{zap.String("server_url", cfg.ServerURL), zap.String("timeout", cfg.Timeout)}
	if source != "" {
		fields = append(fields, zap.String("config", source))
	}
	utils.Logger().Info("configuration loaded", fields...)
	return nil
}
