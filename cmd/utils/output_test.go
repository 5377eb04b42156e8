package utils

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func withCapturedOutput(t *testing.T) (stdout, stderr *bytes.Buffer) {
	t.Helper()
	ResetOutputForTesting()
	noColor := color.NoColor
	color.NoColor = true
	stdout, stderr = &bytes.Buffer{}, &bytes.Buffer{}
	SetOutputWriters(stdout, stderr)
	t.Cleanup(func() {
		color.NoColor = noColor
		ResetOutputForTesting()
	})
	return stdout, stderr
}

func TestOutputManagerDirectMode(t *testing.T) {
	tests := []struct {
		name     string
		sendFunc func(string, ...interface{})
		toStderr bool
		expected string
	}{
		{"info", OutputInfo, false, "info  uploading lease.pdf\n"},
		{"warning", OutputWarning, true, "warn  uploading lease.pdf\n"},
		{"error", OutputError, true, "error  uploading lease.pdf\n"},
		{"success", OutputSuccess, false, "ok  uploading lease.pdf\n"},
		{"progress", OutputProgress, false, "...  uploading lease.pdf\n"},
		{"plain", OutputInfoPlain, false, "uploading lease.pdf\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, stderr := withCapturedOutput(t)
			tt.sendFunc("uploading %s\n", "lease.pdf")

			got, other := stdout.String(), stderr.String()
			if tt.toStderr {
				got, other = other, got
			}
			if got != tt.expected {
				t.Errorf("output = %q, want %q", got, tt.expected)
			}
			if other != "" {
				t.Errorf("unexpected output on the other stream: %q", other)
			}
		})
	}
}

func TestOutputDebugRespectsFlag(t *testing.T) {
	_, stderr := withCapturedOutput(t)
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	OutputDebug("hidden")
	if stderr.Len() != 0 {
		t.Errorf("debug output without --debug: %q", stderr.String())
	}
}

func TestPrefixesCanBeDisabled(t *testing.T) {
	stdout, _ := withCapturedOutput(t)
	SetPrefixesEnabled(false)
	OutputSuccess("done")
	if stdout.String() != "done" {
		t.Errorf("output = %q, want %q", stdout.String(), "done")
	}
}

func TestMessageQueueing(t *testing.T) {
	stdout, stderr := withCapturedOutput(t)

	// A nil program stands in for the moment before the program exists.
	SetTUIMode(nil)
	if !InTUIMode() {
		t.Fatal("expected TUI mode")
	}

	OutputInfo("queued message 1")
	OutputWarning("queued message 2")
	OutputProgress("indexing\r")
	OutputProgress("indexing")

	console.mu.Lock()
	queue := append([]OutputMessage(nil), console.pending...)
	console.mu.Unlock()

	if len(queue) != 3 {
		t.Fatalf("expected 3 queued messages, got %d: %+v", len(queue), queue)
	}
	if queue[1].Type != WarningMessage || !strings.Contains(queue[1].Content, "queued message 2") {
		t.Errorf("unexpected queued message: %+v", queue[1])
	}
	if queue[2].Content != "indexing" {
		t.Errorf("progress content = %q", queue[2].Content)
	}
	if stdout.Len()+stderr.Len() != 0 {
		t.Errorf("queued messages must not reach the terminal")
	}

	ClearTUIMode()
	console.mu.Lock()
	left := len(console.pending)
	console.mu.Unlock()
	if left != 0 {
		t.Errorf("expected queue to be cleared, got %d messages", left)
	}
	if InTUIMode() {
		t.Error("still in TUI mode after ClearTUIMode")
	}
}

func TestMessageTypeString(t *testing.T) {
	if got := ErrorMessage.String(); got != "error" {
		t.Errorf("ErrorMessage.String() = %q", got)
	}
	if got := MessageType(42).String(); got != "info" {
		t.Errorf("unknown type = %q, want info", got)
	}
	if got := FormatMessage(OutputMessage{Type: MessageType(42), Content: "x"}); got != "info  x" {
		t.Errorf("FormatMessage unknown type = %q", got)
	}
}
