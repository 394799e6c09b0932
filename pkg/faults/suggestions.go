package faults

// SuggestionGenerator generates actionable suggestions based on failure category.
type SuggestionGenerator interface {
	Generate(category Category, blobID string) []string
}

// NewSuggestionGenerator creates a new SuggestionGenerator.
func NewSuggestionGenerator() SuggestionGenerator {
	return &suggestionGenerator{}
}

// suggestionGenerator is the concrete implementation of SuggestionGenerator.
type suggestionGenerator struct{}

// Generate returns actionable suggestions based on the failure category and
// affected blob.
func (g *suggestionGenerator) Generate(category Category, blobID string) []string {
	switch category {
	case CategoryDiskSpace:
		return g.generateDiskSpaceSuggestions()
	case CategoryQuota:
		return g.generateQuotaSuggestions()
	case CategoryNetwork, CategoryTimeout:
		return g.generateNetworkSuggestions()
	case CategoryPermission:
		return g.generatePermissionSuggestions()
	case CategoryPath:
		return g.generatePathSuggestions(blobID)
	case CategoryIntegrity:
		return g.generateIntegritySuggestions(blobID)
	default:
		return g.generateUnknownSuggestions(blobID)
	}
}

func (g *suggestionGenerator) generateDiskSpaceSuggestions() []string {
	return []string{
		"Free up space on the destination store",
		"Check available space with 'df -h'",
		"Run a cleanup pass on blobs already backed up",
	}
}

func (g *suggestionGenerator) generateIntegritySuggestions(blobID string) []string {
	suggestions := []string{
		"The transferred data did not match the expected content hash",
		"Retry the transfer - the source copy may be fine",
	}

	if blobID != "" {
		suggestions = append(suggestions, "Verify the local blob is not corrupted: "+blobID)
	}

	return suggestions
}

func (g *suggestionGenerator) generateNetworkSuggestions() []string {
	return []string{
		"Check the connection to the vault host",
		"Retry the failed items - network errors are usually transient",
		"Verify the vault URL and that the remote host is reachable",
	}
}

func (g *suggestionGenerator) generatePathSuggestions(blobID string) []string {
	suggestions := []string{
		"Verify the store and vault paths exist and are spelled correctly",
	}

	if blobID != "" {
		suggestions = append(suggestions, "Check that the blob is still present: "+blobID)
	}

	return suggestions
}

func (g *suggestionGenerator) generatePermissionSuggestions() []string {
	return []string{
		"Ensure you have read/write permissions for the store and vault paths",
		"Check permissions with 'ls -la' on the affected path",
		"Try running with appropriate permissions or as a privileged user",
	}
}

func (g *suggestionGenerator) generateQuotaSuggestions() []string {
	return []string{
		"The vault rejected the transfer because its storage quota is exhausted",
		"Delete old backups or request more quota before retrying",
	}
}

func (g *suggestionGenerator) generateUnknownSuggestions(blobID string) []string {
	suggestions := []string{
		"Check the error message for more details",
		"Verify permissions and available space on both sides",
	}

	if blobID != "" {
		suggestions = append(suggestions, "Affected blob: "+blobID)
	}

	return suggestions
}
