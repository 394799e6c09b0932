// Package config handles application configuration and command-line argument parsing.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/alexflint/go-arg"
	"github.com/bmatcuk/doublestar/v4"
)

// Mode selects which operation the run performs
type Mode int

const (
	// Push - copy pack blobs from the local store into the vault
	Push Mode = iota
	// Pull - copy pack blobs from the vault back into the local store
	Pull
	// Cleanup - free local space for blobs already held in the vault
	Cleanup
	// Status - show pack and vault contents without moving anything
	Status
)

// String returns the string representation of Mode
func (m Mode) String() string {
	switch m {
	case Push:
		return "push"
	case Pull:
		return "pull"
	case Cleanup:
		return "cleanup"
	case Status:
		return "status"
	default:
		return "unknown"
	}
}

// ParseMode parses a string into a Mode
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "push", "up":
		return Push, nil
	case "pull", "down":
		return Pull, nil
	case "cleanup", "clean":
		return Cleanup, nil
	case "status", "st":
		return Status, nil
	default:
		return Push, fmt.Errorf("invalid mode: %s (valid: push, pull, cleanup, status)", s)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler for go-arg
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Config holds the application configuration
type Config struct {
	Mode     Mode   `arg:"positional" default:"push" help:"Operation to run: push|pull|cleanup|status (aliases: up|down|clean|st)"`
	Pack     string `arg:"-p,--pack" help:"Name of the pack to operate on"`
	StoreDir string `arg:"-s,--store" help:"Local store directory containing pack manifests and blobs"`
	VaultURL string `arg:"-v,--vault" help:"Vault location: a directory path or sftp://user@host:port/path"`
	Cleanup  bool   `arg:"--free-space" help:"After a successful push, free local space for the transferred blobs"`
	Pattern  string `arg:"--filter" help:"Glob pattern limiting which blobs are transferred"`
	Plain    bool   `arg:"--plain" help:"Plain text progress output instead of the full-screen UI"`
	Verbose  bool   `arg:"--verbose" help:"Verbose logging"`
	LogFile  string `arg:"--log-file" help:"Write a debug log to the given file"`
}

// Description returns the program description for go-arg
func (Config) Description() string {
	return "Manage AI model packs between a local store and a remote vault"
}

// Version returns the version string for go-arg
func (Config) Version() string {
	return "packvault 1.0.0"
}

// ParseFlags parses command-line flags and returns configuration
func ParseFlags() (*Config, error) {
	cfg := &Config{}

	arg.MustParse(cfg)

	return PostProcessConfig(cfg)
}

// PostProcessConfig applies post-processing logic to a parsed config
func PostProcessConfig(cfg *Config) (*Config, error) {
	if cfg.Pack == "" {
		return nil, fmt.Errorf("pack name is required")
	}

	if cfg.VaultURL == "" {
		return nil, fmt.Errorf("vault location is required")
	}

	if cfg.Cleanup && cfg.Mode != Push {
		return nil, fmt.Errorf("--free-space only applies to push")
	}

	if err := validateVaultURL(cfg.VaultURL); err != nil {
		return nil, err
	}

	if err := ValidateBlobPattern(cfg.Pattern); err != nil {
		return nil, err
	}

	if err := cfg.ValidateStore(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateVaultURL performs a shallow syntax check on sftp:// vault URLs so
// obviously malformed ones fail before any connection attempt. Local paths
// pass through untouched.
func validateVaultURL(url string) error {
	if !strings.HasPrefix(url, "sftp://") {
		return nil
	}

	if !strings.Contains(url, "@") {
		return fmt.Errorf("SFTP URL must include username: %s", url)
	}

	if strings.Count(url, "/") < 3 {
		return fmt.Errorf("SFTP URL must include path: %s", url)
	}

	return nil
}

// ValidateBlobPattern checks that a --filter glob is well formed.
// Empty patterns are valid and match everything.
func ValidateBlobPattern(pattern string) error {
	if pattern == "" {
		return nil
	}

	if !doublestar.ValidatePattern(pattern) {
		return fmt.Errorf("invalid filter pattern: %s", pattern)
	}

	return nil
}

// ValidateStore validates that the local store directory exists
func (cfg *Config) ValidateStore() error {
	if cfg.StoreDir == "" {
		return fmt.Errorf("store directory is required")
	}

	info, err := os.Stat(cfg.StoreDir)
	if os.IsNotExist(err) {
		return fmt.Errorf("store directory does not exist: %s", cfg.StoreDir)
	}
	if err != nil {
		return fmt.Errorf("cannot access store directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("store path is not a directory: %s", cfg.StoreDir)
	}

	return nil
}
