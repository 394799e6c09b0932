//nolint:varnamelen // Test files use idiomatic short variable names (t, etc.)
package vault_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/joe/packvault/pkg/faults"
	"github.com/joe/packvault/pkg/vault"
)

// TestPushExecutor_CopiesBlob tests copying a blob from the local store into
// the vault.
func TestPushExecutor_CopiesBlob(t *testing.T) {
	t.Parallel()

	local := newTestStore(t)
	remote := newTestStore(t)
	putBlob(t, local, "sha256-abc", "weights")

	exec := vault.PushExecutor(local, remote)
	if err := exec(context.Background(), "sha256-abc"); err != nil {
		t.Fatalf("Executor failed: %v", err)
	}

	size, err := remote.Stat(context.Background(), "sha256-abc")
	if err != nil {
		t.Fatalf("Blob missing from vault after push: %v", err)
	}
	if size != int64(len("weights")) {
		t.Errorf("Vault blob size = %d, want %d", size, len("weights"))
	}
}

// TestPullExecutor_CopiesBlob tests copying a blob from the vault back into
// the local store.
func TestPullExecutor_CopiesBlob(t *testing.T) {
	t.Parallel()

	local := newTestStore(t)
	remote := newTestStore(t)
	putBlob(t, remote, "sha256-abc", "weights")

	exec := vault.PullExecutor(remote, local)
	if err := exec(context.Background(), "sha256-abc"); err != nil {
		t.Fatalf("Executor failed: %v", err)
	}

	if _, err := local.Stat(context.Background(), "sha256-abc"); err != nil {
		t.Errorf("Blob missing from local store after pull: %v", err)
	}
}

// TestPushExecutor_MissingSource tests that pushing a blob absent from the
// source returns a classified fault naming the blob.
func TestPushExecutor_MissingSource(t *testing.T) {
	t.Parallel()

	local := newTestStore(t)
	remote := newTestStore(t)

	exec := vault.PushExecutor(local, remote)
	err := exec(context.Background(), "sha256-missing")
	if err == nil {
		t.Fatal("Expected error for missing source blob, got nil")
	}

	var fault faults.Fault
	if !errors.As(err, &fault) {
		t.Fatalf("Error %v should be a classified fault", err)
	}
	if fault.BlobID() != "sha256-missing" {
		t.Errorf("Fault blob id = %q, want %q", fault.BlobID(), "sha256-missing")
	}
	if fault.Category() != faults.CategoryPath {
		t.Errorf("Fault category = %q, want %q", fault.Category(), faults.CategoryPath)
	}
}

// TestCleanupExecutor_DeletesConfirmedBlob tests that cleanup removes the
// local copy once the blob is confirmed in the vault.
func TestCleanupExecutor_DeletesConfirmedBlob(t *testing.T) {
	t.Parallel()

	local := newTestStore(t)
	remote := newTestStore(t)
	putBlob(t, local, "sha256-abc", "weights")
	putBlob(t, remote, "sha256-abc", "weights")

	exec := vault.CleanupExecutor(local, remote)
	if err := exec(context.Background(), "sha256-abc"); err != nil {
		t.Fatalf("Executor failed: %v", err)
	}

	if _, err := local.Stat(context.Background(), "sha256-abc"); !errors.Is(err, vault.ErrBlobNotFound) {
		t.Errorf("Local blob should be gone after cleanup, Stat = %v", err)
	}
	if _, err := remote.Stat(context.Background(), "sha256-abc"); err != nil {
		t.Errorf("Vault blob should survive cleanup, Stat = %v", err)
	}
}

// TestCleanupExecutor_RefusesUnconfirmedBlob tests that cleanup keeps the
// local copy when the blob cannot be confirmed in the vault.
func TestCleanupExecutor_RefusesUnconfirmedBlob(t *testing.T) {
	t.Parallel()

	local := newTestStore(t)
	remote := newTestStore(t)
	putBlob(t, local, "sha256-abc", "weights")

	exec := vault.CleanupExecutor(local, remote)
	err := exec(context.Background(), "sha256-abc")
	if err == nil {
		t.Fatal("Expected error when blob not confirmed in vault, got nil")
	}
	if !strings.Contains(err.Error(), "refusing to delete") {
		t.Errorf("Error %q should explain the refusal", err)
	}

	// The local copy must be untouched.
	if _, err := local.Stat(context.Background(), "sha256-abc"); err != nil {
		t.Errorf("Local blob should survive a refused cleanup, Stat = %v", err)
	}
}
