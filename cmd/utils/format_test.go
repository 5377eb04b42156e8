package utils

import (
	"testing"
	"time"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes    int64
		expected string
	}{
		{0, "0 B"},
		{500, "500 B"},
		{1024, "1.0 KB"},
		{1536 * 1024, "1.5 MB"},
		{1024 * 1024 * 1024, "1.0 GB"},
		// Caps at PB instead of running off the unit table
		{1 << 60, "1024.0 PB"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := FormatBytes(tt.bytes); got != tt.expected {
				t.Errorf("FormatBytes(%d) = %s, want %s", tt.bytes, got, tt.expected)
			}
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d        time.Duration
		expected string
	}{
		{-time.Second, "unknown"},
		{850 * time.Millisecond, "850ms"},
		{45 * time.Second, "45s"},
		{150 * time.Second, "2m 30s"},
		{2 * time.Minute, "2m"},
		{90 * time.Minute, "1h 30m"},
		{2 * time.Hour, "2h"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := FormatDuration(tt.d); got != tt.expected {
				t.Errorf("FormatDuration(%v) = %s, want %s", tt.d, got, tt.expected)
			}
		})
	}
}

func TestFormatPages(t *testing.T) {
	for n, want := range map[int]string{0: "unknown", 1: "1 page", 14: "14 pages"} {
		if got := FormatPages(n); got != want {
			t.Errorf("FormatPages(%d) = %s, want %s", n, got, want)
		}
	}
}
