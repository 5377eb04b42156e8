package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DataDirEnv overrides the data directory.
const DataDirEnv = "WAKILI_DATA_DIR"

// OverrideCwd is set from --cwd.
var OverrideCwd string

// GetDataDir returns the directory holding logs and the user-level config.
func GetDataDir() (string, error) {
	if dataDir := strings.TrimSpace(os.Getenv(DataDirEnv)); dataDir != "" {
		return dataDir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("GetDataDir: could not determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".wakili"), nil
}

// GetEffectiveCWD returns the absolute --cwd directory when given, otherwise
// the process working directory. It falls back to "." when neither resolves.
func GetEffectiveCWD() string {
	if dir := strings.TrimSpace(OverrideCwd); dir != "" {
		if abs, err := filepath.Abs(expandHome(dir)); err == nil {
			return abs
		}
		return "."
	}
	if wd, err := os.Getwd(); err == nil && wd != "" {
		return wd
	}
	return "."
}

// ResolvePath makes a user-supplied path absolute. "~/" expands to the home
// directory and relative paths are taken from GetEffectiveCWD, so --cwd
// applies to file arguments too.
func ResolvePath(p string) string {
	p = expandHome(strings.TrimSpace(p))
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(GetEffectiveCWD(), p)
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
