//nolint:varnamelen // Test files use idiomatic short variable names (t, tt, etc.)
package config_test

import (
	"strings"
	"testing"

	"github.com/joe/packvault/internal/config"
)

// TestValidateSFTPURL tests the unexported validateVaultURL function indirectly
// through PostProcessConfig
func TestValidateSFTPURL(t *testing.T) {
	t.Parallel()

	storeDir := t.TempDir()

	tests := []struct {
		name     string
		vaultURL string
		wantErr  bool
		errMsg   string
	}{
		{
			name:     "valid SFTP URL",
			vaultURL: "sftp://user@host/path",
			wantErr:  false,
		},
		{
			name:     "valid SFTP URL with port",
			vaultURL: "sftp://user@host:22/path/to/vault",
			wantErr:  false,
		},
		{
			name:     "valid SFTP URL with subdirectories",
			vaultURL: "sftp://admin@server.com/home/user/vault",
			wantErr:  false,
		},
		{
			name:     "local path skips SFTP checks",
			vaultURL: "/var/lib/vault",
			wantErr:  false,
		},
		{
			name:     "missing username (no @)",
			vaultURL: "sftp://host/path",
			wantErr:  true,
			errMsg:   "must include username",
		},
		{
			name:     "missing path (only 2 slashes)",
			vaultURL: "sftp://user@host",
			wantErr:  true,
			errMsg:   "must include path",
		},
		{
			name:     "trailing slash is considered valid",
			vaultURL: "sftp://user@host/",
			wantErr:  false, // Has 3 slashes, so passes validation
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := config.Config{
				Mode:     config.Push,
				Pack:     "llama",
				StoreDir: storeDir,
				VaultURL: tt.vaultURL,
			}

			_, err := config.PostProcessConfig(&cfg)

			if tt.wantErr {
				if err == nil {
					t.Error("Expected error but got nil")
				} else if tt.errMsg != "" && !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("Error message %q does not contain %q", err.Error(), tt.errMsg)
				}
			} else {
				if err != nil {
					t.Errorf("Unexpected error: %v", err)
				}
			}
		})
	}
}
