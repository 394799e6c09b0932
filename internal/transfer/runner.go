package transfer

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/joe/packvault/pkg/faults"
)

// itemState tracks one item's outcome within the current operation.
type itemState struct {
	item    Item
	settled bool
	failed  bool
	reason  string
}

// Runner executes an ordered list of Items, each through a caller-supplied
// Executor, tracking aggregate progress, honoring cancellation, and
// supporting a later retry pass over only the items that failed.
//
// Items run strictly sequentially in list order. Sequential-not-parallel is a
// deliberate choice: byte and rate accounting stay simple, and
// destination-side ordering constraints hold without the caller building a
// DAG. Callers wanting concurrency run independent Runner instances over
// disjoint item sets.
//
// Start and RetryFailed block until the run reaches a terminal state; hosts
// that want a live display run them in a goroutine and observe progress via
// RegisterProgressCallback or Snapshot, both safe to call while a run is in
// flight.
type Runner struct {
	// TimeProvider supplies the clock; swap for a mock in tests.
	TimeProvider TimeProvider
	// Verbose enables per-item log lines in the operation log file.
	Verbose bool

	emitter   EventEmitter
	callbacks []func(Progress)

	mu          sync.RWMutex
	running     bool
	cancelled   bool
	started     bool // at least one run has begun since the last Reset
	states      []itemState
	completed   int
	failed      int
	totalBytes  int64
	transferred int64
	runBytes    int64 // bytes settled within the current run; feeds the rate estimator
	errors      []string
	canResume   bool
	startTime   time.Time
	endTime     time.Time
	currentIdx  int
	rate        *RateEstimator
	cancelRun   context.CancelFunc

	logFile *os.File
	logMu   sync.Mutex
}

// NewRunner creates a Runner with a real clock and no operation state.
func NewRunner() *Runner {
	return &Runner{
		TimeProvider: &RealTimeProvider{},
		rate:         NewRateEstimator(),
		currentIdx:   -1,
		canResume:    true,
	}
}

// SetEventEmitter sets the event emitter. Optional - when nil, no events are
// emitted.
func (r *Runner) SetEventEmitter(emitter EventEmitter) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.emitter = emitter
}

// RegisterProgressCallback registers a callback invoked with a fresh Progress
// snapshot after every item transition.
func (r *Runner) RegisterProgressCallback(callback func(Progress)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.callbacks = append(r.callbacks, callback)
}

// Start executes the given items in order through executor. An empty item
// list is a no-op success. Returns ErrAlreadyRunning if an operation is
// already in flight on this Runner (the second call is rejected without
// touching the running operation's state), ErrItemsFailed or ErrRunCancelled
// for the corresponding terminal states, nil on full success.
func (r *Runner) Start(ctx context.Context, items []Item, executor Executor) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return ErrAlreadyRunning
	}

	r.states = make([]itemState, len(items))
	r.totalBytes = 0
	for i, item := range items {
		r.states[i] = itemState{item: item}
		r.totalBytes += item.SizeBytes
	}

	r.completed = 0
	r.failed = 0
	r.transferred = 0
	r.errors = nil
	r.canResume = true
	r.started = true

	queue := make([]int, len(items))
	for i := range queue {
		queue[i] = i
	}
	r.mu.Unlock()

	return r.run(ctx, queue, executor, false)
}

// RetryFailed re-runs only the items that failed in the previous run,
// identified by position. Successfully retried items move back into the
// completed count; the error list is rebuilt from items that fail again.
// Elapsed time and the rate estimator reset for the new run.
//
// Returns ErrAlreadyRunning while a run is in flight, ErrNothingToRetry when
// the previous run had no failures, and ErrNotResumable when a fatal failure
// closed the retry path.
func (r *Runner) RetryFailed(ctx context.Context, executor Executor) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return ErrAlreadyRunning
	}

	if r.failed == 0 {
		r.mu.Unlock()
		return ErrNothingToRetry
	}

	if !r.canResume {
		r.mu.Unlock()
		return ErrNotResumable
	}

	queue := make([]int, 0, r.failed)
	for i := range r.states {
		if r.states[i].failed {
			queue = append(queue, i)
			r.states[i].settled = false
			r.states[i].failed = false
			r.states[i].reason = ""
		}
	}

	// Every failed item is in the retry set, so the whole error history
	// belongs to items about to re-run. Failures that recur repopulate it.
	r.failed = 0
	r.errors = nil
	r.mu.Unlock()

	return r.run(ctx, queue, executor, true)
}

// Cancel stops starting new items once the current one settles. The in-flight
// executor call is signalled through its context but allowed to settle
// naturally, so a destination blob is never left half-written; its outcome is
// still recorded. Items never started stay unsettled, which leaves the final
// snapshot short of TotalItems - the cancelled terminal signal.
//
// Idempotent; a no-op when nothing is running.
func (r *Runner) Cancel() {
	r.mu.Lock()
	if !r.running || r.cancelled {
		r.mu.Unlock()
		return
	}

	r.cancelled = true
	cancel := r.cancelRun
	r.mu.Unlock()

	r.logToFile("Cancel requested; waiting for in-flight item to settle")

	if cancel != nil {
		cancel()
	}
}

// Reset clears all operation state back to "nothing has run", so the Runner
// can be reused for an unrelated operation. Ignored while a run is in flight.
func (r *Runner) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return
	}

	r.states = nil
	r.completed = 0
	r.failed = 0
	r.totalBytes = 0
	r.transferred = 0
	r.runBytes = 0
	r.errors = nil
	r.canResume = true
	r.cancelled = false
	r.started = false
	r.startTime = time.Time{}
	r.endTime = time.Time{}
	r.currentIdx = -1
	r.rate.Reset()
}

// Snapshot returns a fresh Progress value describing the operation right now.
func (r *Runner) Snapshot() Progress {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.snapshotLocked()
}

// run drives the queue of item indices through executor until every queued
// item settles, a fatal failure short-circuits, or cancellation stops the
// loop between items.
func (r *Runner) run(parent context.Context, queue []int, executor Executor, retry bool) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	var queuedBytes int64

	r.mu.Lock()
	r.running = true
	r.cancelled = false
	r.currentIdx = -1
	r.runBytes = 0
	r.startTime = r.TimeProvider.Now()
	r.endTime = time.Time{}
	r.cancelRun = cancel
	r.rate.Reset()
	for _, idx := range queue {
		queuedBytes += r.states[idx].item.SizeBytes
	}
	r.mu.Unlock()

	r.emit(RunStarted{Items: len(queue), Bytes: queuedBytes, Retry: retry})
	r.logToFile(fmt.Sprintf("Run started: %d item(s), retry=%v", len(queue), retry))
	r.publish()

	for position, idx := range queue {
		if r.interrupted() {
			break
		}

		item := r.beginItem(idx)
		r.emit(ItemStarted{Item: item, Index: position})

		err := executor(ctx, item.ID)

		r.settleItem(idx, err)

		if err == nil {
			r.emit(ItemCompleted{Item: item})
			r.logVerbose(fmt.Sprintf("  ✓ %s (%d bytes)", item.DisplayName, item.SizeBytes))
		} else {
			resumable := faults.IsResumable(err)
			r.emit(ItemFailed{Item: item, Reason: err.Error(), Resumable: resumable})
			r.logToFile(fmt.Sprintf("  ✗ %s: %v (resumable=%v)", item.DisplayName, err, resumable))
		}
	}

	r.mu.Lock()
	r.running = false
	r.endTime = r.TimeProvider.Now()
	r.cancelRun = nil
	state := r.stateLocked()
	r.mu.Unlock()

	r.publish()

	final := r.Snapshot()
	r.emit(RunCompleted{Final: final})
	r.logToFile(fmt.Sprintf("Run finished: %s (%d/%d completed, %d failed)",
		state, final.CompletedItems, final.TotalItems, final.FailedItems))

	switch state {
	case StateCancelled:
		return ErrRunCancelled
	case StateFailed:
		return ErrItemsFailed
	default:
		return nil
	}
}

// interrupted reports whether the loop must stop before starting the next
// item: a cancel request, or a fatal failure closing the queue.
func (r *Runner) interrupted() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.cancelled || !r.canResume
}

// beginItem marks the item as executing and publishes the snapshot whose
// CurrentItem points at it. Returns a copy of the item for the caller.
func (r *Runner) beginItem(idx int) Item {
	r.mu.Lock()
	r.currentIdx = idx
	item := r.states[idx].item
	r.mu.Unlock()

	r.publish()

	return item
}

// settleItem records an item's outcome, credits its bytes on success (byte
// credit only ever moves on item boundaries), and publishes the next
// snapshot atomically with clearing CurrentItem - observers never see a
// snapshot whose current item has already finished.
func (r *Runner) settleItem(idx int, err error) {
	r.mu.Lock()

	state := &r.states[idx]
	state.settled = true

	if err != nil {
		state.failed = true
		state.reason = err.Error()
		r.failed++
		r.errors = append(r.errors, err.Error())

		if !faults.IsResumable(err) {
			r.canResume = false
		}
	} else {
		r.completed++
		r.transferred += state.item.SizeBytes
		r.runBytes += state.item.SizeBytes
		r.rate.AddSample(r.TimeProvider.Now().Sub(r.startTime), r.runBytes)
	}

	r.currentIdx = -1
	r.mu.Unlock()

	r.publish()
}

// stateLocked derives the operation state from the counts. Caller holds mu.
func (r *Runner) stateLocked() State {
	settled := r.completed + r.failed

	switch {
	case !r.started:
		return StateIdle
	case r.running:
		return StateRunning
	case r.cancelled && settled < len(r.states):
		return StateCancelled
	case r.failed > 0:
		return StateFailed
	case settled < len(r.states):
		// fatal short-circuit with the failure recorded upstream; counts
		// incomplete but not cancelled
		return StateFailed
	default:
		return StateCompleted
	}
}

// snapshotLocked builds a Progress value. Caller holds mu (read or write).
func (r *Runner) snapshotLocked() Progress {
	progress := Progress{
		TotalItems:       len(r.states),
		CompletedItems:   r.completed,
		FailedItems:      r.failed,
		TotalBytes:       r.totalBytes,
		TransferredBytes: r.transferred,
		Errors:           append([]string(nil), r.errors...),
		CanResume:        r.canResume,
		State:            r.stateLocked(),
	}

	if r.currentIdx >= 0 {
		current := r.states[r.currentIdx].item
		progress.CurrentItem = &current
	}

	if rate, ok := r.rate.Rate(); ok {
		progress.BytesPerSecond = rate
	}

	if r.running {
		progress.Elapsed = r.TimeProvider.Now().Sub(r.startTime)
		progress.ETA, progress.ETAKnown = r.rate.ETA(r.totalBytes - r.transferred)
	} else if r.started && !r.endTime.IsZero() {
		progress.Elapsed = r.endTime.Sub(r.startTime)
	}

	return progress
}

// publish sends a fresh snapshot to every registered callback.
func (r *Runner) publish() {
	r.mu.RLock()
	snapshot := r.snapshotLocked()
	callbacks := make([]func(Progress), len(r.callbacks))
	copy(callbacks, r.callbacks)
	r.mu.RUnlock()

	for _, callback := range callbacks {
		callback(snapshot)
	}
}

// emit sends an event if an emitter is configured. Safe when nil.
func (r *Runner) emit(event Event) {
	r.mu.RLock()
	emitter := r.emitter
	r.mu.RUnlock()

	if emitter != nil {
		emitter.Emit(event)
	}
}

// EnableFileLogging enables logging operation activity to a file.
func (r *Runner) EnableFileLogging(logPath string) error {
	f, err := os.Create(logPath)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	r.logMu.Lock()
	r.logFile = f
	r.logMu.Unlock()

	r.logToFile("=== Transfer Log Started: " + time.Now().Format(time.RFC3339) + " ===")

	return nil
}

// CloseLog closes the log file if open.
func (r *Runner) CloseLog() {
	r.logMu.Lock()
	defer r.logMu.Unlock()

	if r.logFile != nil {
		fmt.Fprintln(r.logFile, "=== Transfer Log Ended: "+time.Now().Format(time.RFC3339)+" ===")
		_ = r.logFile.Close()
		r.logFile = nil
	}
}

func (r *Runner) logToFile(message string) {
	r.logMu.Lock()
	defer r.logMu.Unlock()

	if r.logFile != nil {
		fmt.Fprintln(r.logFile, message)
	}
}

func (r *Runner) logVerbose(message string) {
	if !r.Verbose {
		return
	}

	r.logToFile(message)
}
