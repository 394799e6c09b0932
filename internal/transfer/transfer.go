// Package transfer provides the operation engine that moves batches of
// content-addressed blobs between the local store and a vault.
//
// The engine does not decide what to transfer or how bytes move; callers
// supply an ordered item list and an Executor that performs one item's
// transfer. The engine executes the list strictly sequentially, tracks
// aggregate progress, honors cancellation, and supports retrying only the
// items that failed.
package transfer

import (
	"context"
	"errors"
)

// Exported variables.
var (
	ErrAlreadyRunning = errors.New("an operation is already running on this runner")
	ErrItemsFailed    = errors.New("item(s) failed to transfer")
	ErrNotResumable   = errors.New("previous run ended with an unresumable failure")
	ErrNothingToRetry = errors.New("no failed items to retry")
	ErrRunCancelled   = errors.New("operation cancelled")
)

// Item is one unit of work: a single blob to transfer. Items are constructed
// by the caller before Start and are never mutated by the engine.
type Item struct {
	// ID is the content-addressed key (a hash). Identity within one
	// operation's item list. Duplicate IDs are processed independently;
	// uniqueness is a caller contract, not enforced here.
	ID string

	// DisplayName is the human label. Not used for identity.
	DisplayName string

	// SizeBytes is the expected size. Used only for aggregate progress and
	// rate math, not correctness.
	SizeBytes int64
}

// Executor performs the transfer of a single item, identified by its ID.
// The engine places no constraint on what it does (SFTP put, local delete,
// HTTP call) beyond eventually settling. The context is cancelled when the
// operation is cancelled; honoring it is optional - the engine waits for the
// in-flight call to settle either way.
//
// A returned error is classified through faults.IsResumable to decide whether
// the rest of the queue keeps running.
type Executor func(ctx context.Context, id string) error
