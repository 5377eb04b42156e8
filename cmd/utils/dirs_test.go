package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetDataDir(t *testing.T) {
	t.Setenv(DataDirEnv, "/tmp/wakili-data")
	got, err := GetDataDir()
	if err != nil || got != "/tmp/wakili-data" {
		t.Errorf("GetDataDir() = %q, %v", got, err)
	}

	t.Setenv(DataDirEnv, "")
	t.Setenv("HOME", "/home/advocate")
	got, err = GetDataDir()
	if err != nil || got != filepath.Join("/home/advocate", ".wakili") {
		t.Errorf("GetDataDir() default = %q, %v", got, err)
	}
}

func TestResolvePath(t *testing.T) {
	home := t.TempDir()
	cwd := t.TempDir()
	t.Setenv("HOME", home)
	OverrideCwd = cwd
	t.Cleanup(func() { OverrideCwd = "" })

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"/abs/file.pdf", "/abs/file.pdf"},
		{"act.pdf", filepath.Join(cwd, "act.pdf")},
		{"  cases/act.pdf ", filepath.Join(cwd, "cases", "act.pdf")},
		{"~/Scans", filepath.Join(home, "Scans")},
		{"~", home},
	}
	for _, tt := range tests {
		if got := ResolvePath(tt.in); got != tt.want {
			t.Errorf("ResolvePath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGetEffectiveCWD(t *testing.T) {
	OverrideCwd = ""
	wd, _ := os.Getwd()
	if got := GetEffectiveCWD(); got != wd {
		t.Errorf("GetEffectiveCWD() = %q, want %q", got, wd)
	}

	OverrideCwd = "relative/dir"
	t.Cleanup(func() { OverrideCwd = "" })
	if got := GetEffectiveCWD(); got != filepath.Join(wd, "relative/dir") {
		t.Errorf("GetEffectiveCWD() relative = %q", got)
	}
}
