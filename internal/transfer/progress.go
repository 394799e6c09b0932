package transfer

import "time"

// State is the derived status of an operation. It is computed from the
// counts at snapshot time, never stored redundantly.
type State int

const (
	// StateIdle - no operation has run yet (or the runner was reset).
	StateIdle State = iota
	// StateRunning - items are still settling.
	StateRunning
	// StateCompleted - every item succeeded.
	StateCompleted
	// StateFailed - the loop finished with at least one failed item.
	StateFailed
	// StateCancelled - the operation was cancelled before finishing.
	StateCancelled
)

// String returns the string representation of State.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state is a terminal one.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed || s == StateCancelled
}

// Progress is an immutable snapshot of an in-flight (or finished) operation.
// A fresh value is published after every item transition; observers never
// share mutable state with the engine.
//
// Invariants held at every published snapshot:
//   - CompletedItems + FailedItems <= TotalItems
//   - TransferredBytes <= TotalBytes, advancing only on item boundaries
//   - len(Errors) == FailedItems
//   - once CanResume goes false it stays false for the rest of the run
type Progress struct {
	TotalItems     int
	CompletedItems int
	FailedItems    int

	TotalBytes int64
	// TransferredBytes counts bytes only for items that have fully settled.
	// No partial-item byte credit.
	TransferredBytes int64

	// CurrentItem is the item presently executing, nil when idle between
	// items or finished.
	CurrentItem *Item

	// BytesPerSecond is the smoothed instantaneous rate for the current run.
	BytesPerSecond float64

	// ETA is the estimated time remaining. Only meaningful when ETAKnown is
	// true; an unknown ETA must render as "unknown", never as zero.
	ETA      time.Duration
	ETAKnown bool

	// Elapsed is wall-clock time since the current run started. Resets on
	// RetryFailed.
	Elapsed time.Duration

	// Errors holds one message per failed item, in failure order.
	Errors []string

	// CanResume is true while every failure seen so far is transient. A
	// single fatal failure forces it false for the remainder of the run.
	CanResume bool

	// State is the derived operation status.
	State State
}

// PercentDone returns overall completion in the 0-1 range, by bytes when the
// operation has any, by items otherwise.
func (p Progress) PercentDone() float64 {
	if p.TotalBytes > 0 {
		return float64(p.TransferredBytes) / float64(p.TotalBytes)
	}

	if p.TotalItems > 0 {
		return float64(p.CompletedItems+p.FailedItems) / float64(p.TotalItems)
	}

	return 0
}

// SettledItems returns how many items have reached a terminal per-item state.
func (p Progress) SettledItems() int {
	return p.CompletedItems + p.FailedItems
}
