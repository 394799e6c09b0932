// Package vault provides access to blob stores: the local pack store and the
// remote backup vault. Both sides expose the same Store interface over
// content-addressed blobs, so push, pull, and cleanup are all expressed as
// transfers between two Stores.
package vault

import (
	"context"
	"errors"
	"io"
)

// Exported variables.
var (
	ErrBlobNotFound = errors.New("blob not found")
)

// Store is a content-addressed blob store. Implementations must make Put
// idempotent: repeating a put after a partial failure leaves the destination
// with either the previous state or the complete new blob, never a torn one.
type Store interface {
	// Put writes a blob under the given id. Size is advisory (some backends
	// preallocate); the blob's bytes come from r.
	Put(ctx context.Context, id string, r io.Reader, size int64) error

	// Fetch opens a blob for reading and reports its size.
	Fetch(ctx context.Context, id string) (io.ReadCloser, int64, error)

	// Delete removes a blob. Deleting a missing blob returns ErrBlobNotFound.
	Delete(ctx context.Context, id string) error

	// List enumerates all blob ids present, with sizes.
	List(ctx context.Context) (map[string]int64, error)

	// Stat reports a blob's size, or ErrBlobNotFound.
	Stat(ctx context.Context, id string) (int64, error)

	// Close releases any underlying connections.
	Close() error
}
