package cmd

import (
	"fmt"
	"runtime"

	"wakili-cli/cmd/utils"
	"wakili-cli/cmd/version"

	"github.com/spf13/cobra"
)

var versionRequire string

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of the Wakili CLI",
	Long: `Print the version number of the Wakili CLI.

With --require the command exits non-zero unless the version satisfies the
constraint, which lets scripts check for a minimum release:
  wakili version --require ">= 1.2"`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipConfig: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		build := ""
		if !version.IsRelease(version.CurrentVersion) {
			build = ", development build"
		}
		utils.OutputInfoPlain("Wakili CLI %s (%s/%s%s)\n", version.FormatVersionForDisplay(version.CurrentVersion), runtime.GOOS, runtime.GOARCH, build)
		if versionRequire == "" {
			return nil
		}
		ok, err := version.Satisfies(version.CurrentVersion, versionRequire)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("version %s does not satisfy %q", version.FormatVersionForDisplay(version.CurrentVersion), versionRequire)
		}
		return nil
	},
}

func init() {
	versionCmd.Flags().StringVar(&versionRequire, "require", "", "Fail unless the version satisfies this semver constraint")
	rootCmd.AddCommand(versionCmd)
}
