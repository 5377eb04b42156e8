package cmd

import (
	"fmt"

	"wakili-cli/cmd/utils"

	"github.com/spf13/cobra"
	yaml "gopkg.in/yaml.v2"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the resolved configuration",
	Long: `Show the configuration after defaults, the config file, .env, WAKILI_*
environment variables and flags have been applied, and where it came from.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := yaml.Marshal(appConfig)
		if err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}
		source := configSource
		if source == "" {
			source = "none (defaults and environment)"
		}
		utils.OutputInfoPlain("# config file: %s\n# log file: %s\n%s", source, utils.LogPath(), data)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
