// Package version reports the CLI version and checks it against constraints.
package version

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// CurrentVersion is set by build flags during release builds:
//
//	go build -ldflags "-X wakili-cli/cmd/version.CurrentVersion=v1.2.0"
var CurrentVersion = "dev"

func normalizeForSemver(raw string) (string, *semver.Version) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return trimmed, nil
	}
	normalized := strings.TrimPrefix(strings.TrimPrefix(trimmed, "v"), "V")
	parsed, err := semver.NewVersion(normalized)
	if err != nil {
		return normalized, nil
	}
	return normalized, parsed
}

// FormatVersionForDisplay ensures a single "v" prefix, e.g. "1.0.0" -> "v1.0.0".
// Non-release builds such as "dev" are shown unchanged.
func FormatVersionForDisplay(version string) string {
	normalized, parsed := normalizeForSemver(version)
	switch {
	case normalized == "":
		return "unknown"
	case parsed == nil:
		return normalized
	default:
		return "v" + parsed.String()
	}
}

// IsRelease reports whether version parses as semver.
func IsRelease(version string) bool {
	_, parsed := normalizeForSemver(version)
	return parsed != nil
}

// Satisfies reports whether version meets constraint, e.g. ">= 1.2, < 2".
// Development builds satisfy nothing.
func Satisfies(version, constraint string) (bool, error) {
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return false, fmt.Errorf("invalid version constraint %q: %w", constraint, err)
	}
	_, parsed := normalizeForSemver(version)
	if parsed == nil {
		return false, nil
	}
	return c.Check(parsed), nil
}
