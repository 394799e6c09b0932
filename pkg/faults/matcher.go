package faults

import "strings"

// PatternMatcher matches error messages to categories using string patterns.
type PatternMatcher interface {
	Match(errorMsg string) Category
}

// NewPatternMatcher creates a new PatternMatcher with predefined patterns.
func NewPatternMatcher() PatternMatcher {
	return &patternMatcher{
		// ordered: earlier categories win when patterns overlap, so capacity
		// failures (the only unresumable kind) are checked first
		order: []Category{
			CategoryQuota,
			CategoryDiskSpace,
			CategoryPermission,
			CategoryPath,
			CategoryTimeout,
			CategoryNetwork,
			CategoryIntegrity,
		},
		patterns: map[Category][]string{
			CategoryQuota: {
				"quota exceeded",
				"over quota",
				"storage limit",
			},
			CategoryDiskSpace: {
				"no space left on device",
				"disk full",
				"insufficient space",
			},
			CategoryPermission: {
				"permission denied",
				"access denied",
				"operation not permitted",
			},
			CategoryPath: {
				"no such file or directory",
				"file not found",
				"blob not found",
				"path does not exist",
			},
			CategoryTimeout: {
				"timeout",
				"timed out",
				"deadline exceeded",
			},
			CategoryNetwork: {
				"connection refused",
				"connection reset",
				"broken pipe",
				"network is unreachable",
				"eof",
			},
			CategoryIntegrity: {
				"checksum mismatch",
				"hash mismatch",
				"short write",
			},
		},
	}
}

// patternMatcher is the concrete implementation of PatternMatcher.
type patternMatcher struct {
	order    []Category
	patterns map[Category][]string
}

// Match returns the failure category based on pattern matching.
func (m *patternMatcher) Match(errorMsg string) Category {
	lowerMsg := strings.ToLower(errorMsg)

	for _, category := range m.order {
		for _, pattern := range m.patterns[category] {
			if strings.Contains(lowerMsg, pattern) {
				return category
			}
		}
	}

	return CategoryUnknown
}
