//nolint:varnamelen // Test files use idiomatic short variable names (t, tt, etc.)
package formatters_test

import (
	"testing"
	"time"

	"github.com/joe/packvault/pkg/formatters"
)

// TestFormatBytes tests byte count formatting across unit boundaries.
func TestFormatBytes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		bytes int64
		want  string
	}{
		{name: "zero", bytes: 0, want: "0 B"},
		{name: "bytes", bytes: 512, want: "512 B"},
		{name: "just below a kilobyte", bytes: 1023, want: "1023 B"},
		{name: "exactly one kilobyte", bytes: 1024, want: "1.0 KB"},
		{name: "one and a half kilobytes", bytes: 1536, want: "1.5 KB"},
		{name: "megabytes", bytes: 5 * 1024 * 1024, want: "5.0 MB"},
		{name: "gigabytes", bytes: 7 * 1024 * 1024 * 1024, want: "7.0 GB"},
		{name: "terabytes", bytes: 2 * 1024 * 1024 * 1024 * 1024, want: "2.0 TB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := formatters.FormatBytes(tt.bytes)
			if got != tt.want {
				t.Errorf("FormatBytes(%d) = %q, want %q", tt.bytes, got, tt.want)
			}
		})
	}
}

// TestFormatRate tests transfer rate formatting.
func TestFormatRate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		rate float64
		want string
	}{
		{name: "zero", rate: 0, want: "0 B/s"},
		{name: "bytes per second", rate: 500, want: "500 B/s"},
		{name: "kilobytes per second", rate: 2048, want: "2.0 KB/s"},
		{name: "megabytes per second", rate: 5.5 * 1024 * 1024, want: "5.5 MB/s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := formatters.FormatRate(tt.rate)
			if got != tt.want {
				t.Errorf("FormatRate(%v) = %q, want %q", tt.rate, got, tt.want)
			}
		})
	}
}

// TestFormatDuration tests duration formatting at each magnitude.
func TestFormatDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		duration time.Duration
		want     string
	}{
		{name: "zero", duration: 0, want: "0s"},
		{name: "seconds only", duration: 45 * time.Second, want: "45s"},
		{name: "rounds sub-second", duration: 2600 * time.Millisecond, want: "3s"},
		{name: "minutes and seconds", duration: 2*time.Minute + 30*time.Second, want: "2m 30s"},
		{name: "hours minutes seconds", duration: time.Hour + 5*time.Minute + 3*time.Second, want: "1h 5m 3s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := formatters.FormatDuration(tt.duration)
			if got != tt.want {
				t.Errorf("FormatDuration(%v) = %q, want %q", tt.duration, got, tt.want)
			}
		})
	}
}

// TestFormatETA tests that unknown estimates never render as a duration.
func TestFormatETA(t *testing.T) {
	t.Parallel()

	if got := formatters.FormatETA(0, false); got != "unknown" {
		t.Errorf("FormatETA(0, false) = %q, want %q", got, "unknown")
	}
	if got := formatters.FormatETA(90*time.Second, true); got != "1m 30s" {
		t.Errorf("FormatETA(90s, true) = %q, want %q", got, "1m 30s")
	}
}
