package faults_test

import (
	"testing"

	"github.com/joe/packvault/pkg/faults"
)

func TestPatternMatcher_CaseInsensitive(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		errorMsg string
		expected faults.Category
	}{
		{
			name:     "uppercase permission denied",
			errorMsg: "PERMISSION DENIED",
			expected: faults.CategoryPermission,
		},
		{
			name:     "mixed case no space left",
			errorMsg: "No Space Left On Device",
			expected: faults.CategoryDiskSpace,
		},
	}

	matcher := faults.NewPatternMatcher()

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			category := matcher.Match(testCase.errorMsg)
			if category != testCase.expected {
				t.Errorf("expected category %q, got %q for error: %q",
					testCase.expected, category, testCase.errorMsg)
			}
		})
	}
}

func TestPatternMatcher_MatchCategories(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		errorMsg string
		expected faults.Category
	}{
		{
			name:     "quota exceeded",
			errorMsg: "write failed: quota exceeded",
			expected: faults.CategoryQuota,
		},
		{
			name:     "disk full",
			errorMsg: "disk full",
			expected: faults.CategoryDiskSpace,
		},
		{
			name:     "no space left",
			errorMsg: "write /vault/blob: no space left on device",
			expected: faults.CategoryDiskSpace,
		},
		{
			name:     "permission denied",
			errorMsg: "open /vault/blob: permission denied",
			expected: faults.CategoryPermission,
		},
		{
			name:     "missing path",
			errorMsg: "stat /store/blobs: no such file or directory",
			expected: faults.CategoryPath,
		},
		{
			name:     "timeout",
			errorMsg: "dial tcp: i/o timeout",
			expected: faults.CategoryTimeout,
		},
		{
			name:     "deadline exceeded",
			errorMsg: "context deadline exceeded",
			expected: faults.CategoryTimeout,
		},
		{
			name:     "connection refused",
			errorMsg: "dial tcp 10.0.0.1:22: connection refused",
			expected: faults.CategoryNetwork,
		},
		{
			name:     "broken pipe",
			errorMsg: "write: broken pipe",
			expected: faults.CategoryNetwork,
		},
		{
			name:     "checksum mismatch",
			errorMsg: "blob llama-7b: checksum mismatch",
			expected: faults.CategoryIntegrity,
		},
		{
			name:     "unmatched message",
			errorMsg: "something inexplicable happened",
			expected: faults.CategoryUnknown,
		},
		{
			name:     "empty message",
			errorMsg: "",
			expected: faults.CategoryUnknown,
		},
	}

	matcher := faults.NewPatternMatcher()

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			category := matcher.Match(testCase.errorMsg)
			if category != testCase.expected {
				t.Errorf("expected category %q, got %q for error: %q",
					testCase.expected, category, testCase.errorMsg)
			}
		})
	}
}

// TestPatternMatcher_CapacityWinsOverlap pins the match ordering: when a
// message matches both a capacity pattern and a transient one, the capacity
// category (the unresumable kind) must win.
func TestPatternMatcher_CapacityWinsOverlap(t *testing.T) {
	t.Parallel()

	matcher := faults.NewPatternMatcher()

	category := matcher.Match("connection reset while writing: disk full")
	if category != faults.CategoryDiskSpace {
		t.Errorf("expected disk_space to win over network, got %q", category)
	}
}
