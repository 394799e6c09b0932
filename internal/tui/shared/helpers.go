package shared

import (
	"time"

	"github.com/joe/packvault/pkg/formatters"
)

// ============================================================================
// Formatting Functions
// These wrap pkg/formatters for consistent display across the UI
// ============================================================================

// FormatBytes formats bytes into human-readable format (e.g., "1.5 MB")
func FormatBytes(bytes int64) string {
	return formatters.FormatBytes(bytes)
}

// FormatDuration formats duration into human-readable format (e.g., "2m 30s")
func FormatDuration(duration time.Duration) string {
	return formatters.FormatDuration(duration)
}

// FormatRate formats transfer rate into human-readable format (e.g., "5.2 MB/s")
func FormatRate(bytesPerSec float64) string {
	return formatters.FormatRate(bytesPerSec)
}

// FormatETA formats a remaining-time estimate, rendering "unknown" until
// enough samples exist for a meaningful number
func FormatETA(eta time.Duration, known bool) string {
	return formatters.FormatETA(eta, known)
}
