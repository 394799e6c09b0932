// Package catalog loads pack manifests and plans which blobs need to move
// between the local store and the vault.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Sentinel errors for manifest loading.
var (
	ErrPackNotFound    = errors.New("pack manifest not found")
	ErrInvalidManifest = errors.New("invalid pack manifest")
)

// Blob is one content-addressed entry in a pack manifest.
type Blob struct {
	ID          string `json:"id"`
	DisplayName string `json:"name"`
	SizeBytes   int64  `json:"size"`
}

// Pack is a named collection of blobs, loaded from <name>.json in the
// store directory.
type Pack struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Blobs       []Blob `json:"blobs"`
}

// LoadPack reads and validates the manifest for the named pack from storeDir.
func LoadPack(storeDir, name string) (*Pack, error) {
	manifestPath := filepath.Join(storeDir, name+".json")

	data, err := os.ReadFile(manifestPath) //nolint:gosec // path comes from user config
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrPackNotFound, manifestPath)
		}

		return nil, fmt.Errorf("failed to read pack manifest: %w", err)
	}

	var pack Pack
	if err := json.Unmarshal(data, &pack); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidManifest, err)
	}

	if pack.Name == "" {
		pack.Name = name
	}

	if err := validatePack(&pack); err != nil {
		return nil, err
	}

	return &pack, nil
}

// validatePack rejects manifests the planner cannot work with.
func validatePack(pack *Pack) error {
	for i, blob := range pack.Blobs {
		if blob.ID == "" {
			return fmt.Errorf("%w: blob %d has no id", ErrInvalidManifest, i)
		}

		if strings.ContainsAny(blob.ID, "/\\") {
			return fmt.Errorf("%w: blob id %q contains path separators", ErrInvalidManifest, blob.ID)
		}

		if blob.SizeBytes < 0 {
			return fmt.Errorf("%w: blob %q has negative size", ErrInvalidManifest, blob.ID)
		}
	}

	return nil
}

// DisplayNameOrID returns the human-facing name for a blob.
func (b Blob) DisplayNameOrID() string {
	if b.DisplayName != "" {
		return b.DisplayName
	}

	return b.ID
}
