// Package faults classifies transfer failures and enriches them with
// actionable suggestions.
//
// This package wraps standard Go errors with a category and actionable
// suggestions so callers can decide whether a failed transfer is worth
// retrying. It automatically detects failure types (network, disk space,
// quota, etc.) from the error text and provides specific guidance per
// category.
//
// Basic Usage:
//
//	classifier := faults.NewClassifier()
//	err := store.Put(ctx, id, reader, size)
//	if err != nil {
//	    fault := classifier.Classify(err, id)
//	    if !faults.IsResumable(fault) {
//	        // stop the queue, retry will not help
//	    }
//	}
//
// The FormatSuggestions helper formats suggestions with bullet points for
// display:
//
//	formatted := faults.FormatSuggestions(fault)
//	fmt.Println(formatted)
package faults

import "strings"

// Exported constants.
const (
	CategoryDiskSpace  Category = "disk_space"
	CategoryIntegrity  Category = "integrity"
	CategoryNetwork    Category = "network"
	CategoryPath       Category = "path"
	CategoryPermission Category = "permission"
	CategoryQuota      Category = "quota"
	CategoryTimeout    Category = "timeout"
	CategoryUnknown    Category = "unknown"
)

// Category represents the type of failure that occurred.
type Category string

// Resumable reports whether failures of this category are worth retrying.
// Destination-side capacity failures are terminal: repeating the transfer
// cannot succeed until the operator frees space, so the whole operation is
// marked unresumable. Everything else is treated as transient.
func (c Category) Resumable() bool {
	switch c {
	case CategoryDiskSpace, CategoryQuota:
		return false
	default:
		return true
	}
}

// Fault represents a classified transfer failure with actionable suggestions.
type Fault interface {
	error
	OriginalError() string
	Category() Category
	Suggestions() []string
	BlobID() string
}

// NewFault creates a new Fault with the given details.
func NewFault(
	originalError string,
	category Category,
	suggestions []string,
	blobID string,
) Fault {
	return &fault{
		originalError: originalError,
		category:      category,
		suggestions:   suggestions,
		blobID:        blobID,
	}
}

// FormatSuggestions formats the suggestions from a Fault as a bulleted list
// for display in the TUI. Returns empty string if the error is nil or has no
// suggestions.
func FormatSuggestions(err error) string {
	if err == nil {
		return ""
	}

	classified, ok := err.(Fault)
	if !ok {
		return ""
	}

	suggestions := classified.Suggestions()
	if len(suggestions) == 0 {
		return ""
	}

	// Format as bulleted list with two-space indent
	var builder strings.Builder
	for i, suggestion := range suggestions {
		if i > 0 {
			builder.WriteString("\n")
		}
		builder.WriteString("  • ")
		builder.WriteString(suggestion)
	}

	return builder.String()
}

// fault is the concrete implementation of Fault.
type fault struct {
	originalError string
	category      Category
	suggestions   []string
	blobID        string
}

// BlobID returns the blob identifier affected by this failure.
func (f *fault) BlobID() string {
	return f.blobID
}

// Category returns the failure category.
func (f *fault) Category() Category {
	return f.category
}

// Error implements the error interface.
func (f *fault) Error() string {
	return f.originalError
}

// OriginalError returns the original error message.
func (f *fault) OriginalError() string {
	return f.originalError
}

// Suggestions returns the list of actionable suggestions.
func (f *fault) Suggestions() []string {
	return f.suggestions
}
