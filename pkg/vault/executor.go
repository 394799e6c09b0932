package vault

import (
	"context"
	"fmt"

	"github.com/joe/packvault/internal/transfer"
	"github.com/joe/packvault/pkg/faults"
)

// PushExecutor returns an Executor that copies one blob from local into
// remote. Store puts are idempotent, so re-running a failed item after a
// partial transfer is safe. Errors are classified so the engine can tell
// transient failures from fatal destination-capacity ones.
func PushExecutor(local, remote Store) transfer.Executor {
	return copyExecutor(local, remote)
}

// PullExecutor returns an Executor that copies one blob from remote back into
// local. Same shape as push, opposite direction.
func PullExecutor(remote, local Store) transfer.Executor {
	return copyExecutor(remote, local)
}

// CleanupExecutor returns an Executor that deletes one blob from local, but
// only after independently confirming the blob is present in remote. The
// check lives here, on the caller side of the engine boundary: the engine
// never decides what is safe to delete.
func CleanupExecutor(local, remote Store) transfer.Executor {
	classifier := faults.NewClassifier()

	return func(ctx context.Context, id string) error {
		if _, err := remote.Stat(ctx, id); err != nil {
			return classifier.Classify(
				fmt.Errorf("refusing to delete local copy, blob not confirmed in vault: %w", err), id)
		}

		if err := local.Delete(ctx, id); err != nil {
			return classifier.Classify(err, id)
		}

		return nil
	}
}

// copyExecutor streams one blob from src to dst.
func copyExecutor(src, dst Store) transfer.Executor {
	classifier := faults.NewClassifier()

	return func(ctx context.Context, id string) error {
		reader, size, err := src.Fetch(ctx, id)
		if err != nil {
			return classifier.Classify(err, id)
		}

		defer func() {
			_ = reader.Close()
		}()

		if err := dst.Put(ctx, id, reader, size); err != nil {
			return classifier.Classify(err, id)
		}

		return nil
	}
}
