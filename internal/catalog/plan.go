package catalog

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/joe/packvault/internal/transfer"
)

// Plan is the set of blobs a run will move, derived from comparing a pack
// manifest against store and vault contents.
type Plan struct {
	Items      []transfer.Item
	TotalBytes int64
	// Skipped counts manifest blobs excluded because the destination
	// already holds them or the pattern filtered them out.
	Skipped int
}

// BlobFilter decides which manifest blobs a run should consider.
type BlobFilter interface {
	// ShouldInclude reports whether the blob with the given display name
	// belongs in the plan.
	ShouldInclude(displayName string) bool
}

// GlobFilter implements BlobFilter with case-insensitive glob patterns.
// Empty pattern matches everything.
type GlobFilter struct {
	normalizedPattern string
	isEmpty           bool
}

// NewGlobFilter creates a GlobFilter for the given pattern.
func NewGlobFilter(pattern string) *GlobFilter {
	return &GlobFilter{
		normalizedPattern: strings.ToLower(pattern),
		isEmpty:           pattern == "",
	}
}

// ShouldInclude reports whether the display name matches the pattern.
func (f *GlobFilter) ShouldInclude(displayName string) bool {
	if f.isEmpty {
		return true
	}

	matched, err := doublestar.Match(f.normalizedPattern, strings.ToLower(displayName))
	if err != nil {
		// Invalid patterns match nothing.
		return false
	}

	return matched
}

// PlanPush selects blobs present locally but absent from the vault.
func PlanPush(pack *Pack, local, remote map[string]int64, filter BlobFilter) Plan {
	return buildPlan(pack, filter, func(id string) bool {
		_, haveLocal := local[id]
		_, haveRemote := remote[id]

		return haveLocal && !haveRemote
	})
}

// PlanPull selects blobs present in the vault but absent locally.
func PlanPull(pack *Pack, local, remote map[string]int64, filter BlobFilter) Plan {
	return buildPlan(pack, filter, func(id string) bool {
		_, haveLocal := local[id]
		_, haveRemote := remote[id]

		return haveRemote && !haveLocal
	})
}

// PlanCleanup selects blobs held both locally and in the vault. Only blobs
// confirmed on both sides are candidates for freeing local space.
func PlanCleanup(pack *Pack, local, remote map[string]int64, filter BlobFilter) Plan {
	return buildPlan(pack, filter, func(id string) bool {
		_, haveLocal := local[id]
		_, haveRemote := remote[id]

		return haveLocal && haveRemote
	})
}

func buildPlan(pack *Pack, filter BlobFilter, want func(id string) bool) Plan {
	var plan Plan

	for _, blob := range pack.Blobs {
		if filter != nil && !filter.ShouldInclude(blob.DisplayNameOrID()) {
			plan.Skipped++

			continue
		}

		if !want(blob.ID) {
			plan.Skipped++

			continue
		}

		plan.Items = append(plan.Items, transfer.Item{
			ID:          blob.ID,
			DisplayName: blob.DisplayNameOrID(),
			SizeBytes:   blob.SizeBytes,
		})
		plan.TotalBytes += blob.SizeBytes
	}

	return plan
}
