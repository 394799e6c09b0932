package faults

import (
	"errors"
)

// Classifier classifies standard errors into Faults with suggestions.
type Classifier interface {
	Classify(err error, blobID string) error
}

// NewClassifier creates a new Classifier with the default pattern matcher and
// suggestion generator.
func NewClassifier() Classifier {
	return &classifier{
		matcher:   NewPatternMatcher(),
		generator: NewSuggestionGenerator(),
	}
}

// IsResumable reports whether the error permits a retry. Plain (unclassified)
// errors are treated as resumable: the conservative default is to keep the
// retry path open rather than lock the operator out of it.
func IsResumable(err error) bool {
	var classified Fault
	if errors.As(err, &classified) {
		return classified.Category().Resumable()
	}

	return true
}

// classifier is the concrete implementation of Classifier.
type classifier struct {
	matcher   PatternMatcher
	generator SuggestionGenerator
}

// Classify takes a standard error and wraps it with a category and actionable
// suggestions. If the error is already a Fault, it is returned unchanged.
func (c *classifier) Classify(err error, blobID string) error {
	if err == nil {
		return nil
	}

	// If already classified, return as-is
	var classified Fault
	if errors.As(err, &classified) {
		return classified
	}

	errMsg := err.Error()
	category := c.matcher.Match(errMsg)
	suggestions := c.generator.Generate(category, blobID)

	return NewFault(errMsg, category, suggestions, blobID)
}
