package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"wakili-cli/cmd/utils"
	"wakili-cli/internal/settings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	yaml "gopkg.in/yaml.v2"
)

var settingsOutput string

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show the server's settings",
	Long: `Show the configuration the legal-assistant server reports: models,
retrieval depth and the Ollama endpoint.

Examples:
  wakili settings
  wakili settings --output json`,
	Args: cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		switch settingsOutput {
		case "table", "json", "yaml":
			return nil
		default:
			return fmt.Errorf("invalid --output %q (use table, json or yaml)", settingsOutput)
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := loadServices()
		if err != nil {
			return err
		}
		view := svc.settings.Load(cmd.Context())
		if !view.Loaded() {
			svc.log.Debug("settings unavailable", zap.Error(view.Err))
			utils.OutputError("%s\n", view.LoadError)
			if view.Err != nil {
				utils.OutputDebug("%v\n", view.Err)
			}
			return errReported
		}

		out, err := formatSettings(view.Config, settingsOutput)
		if err != nil {
			return err
		}
		utils.OutputInfoPlain("%s", out)
		return nil
	},
}

func init() {
	settingsCmd.Flags().StringVarP(&settingsOutput, "output", "o", "table", "Output format: table, json or yaml")
	rootCmd.AddCommand(settingsCmd)
}

func formatSettings(cfg map[string]any, format string) (string, error) {
	switch format {
	case "json":
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to encode settings: %w", err)
		}
		return string(data) + "\n", nil
	case "yaml":
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return "", fmt.Errorf("failed to encode settings: %w", err)
		}
		return string(data), nil
	}

	entries := settings.Entries(cfg)
	if len(entries) == 0 {
		return "The server reported no settings.\n", nil
	}
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "SETTING\tKEY\tVALUE")
	fmt.Fprintln(w, "-------\t---\t-----")
	for _, e := range entries {
		// Keep multi-line values on one table row.
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.Label, e.Key, strings.ReplaceAll(e.Value, "\n", " "))
	}
	w.Flush()
	return buf.String(), nil
}
