package transfer

import (
	"context"
	"sync"
)

// ChainState is the state of the backup→cleanup phase chain.
type ChainState int

const (
	// ChainIdle - the chain has not run.
	ChainIdle ChainState = iota
	// ChainBackupRunning - phase 1 is executing.
	ChainBackupRunning
	// ChainBackupFailed - phase 1 failed (or was cancelled); phase 2 never starts.
	ChainBackupFailed
	// ChainCleanupRunning - phase 2 is executing.
	ChainCleanupRunning
	// ChainCleanupFailed - phase 2 reached a failed terminal state.
	ChainCleanupFailed
	// ChainCompleted - the chain finished, including the case where cleanup
	// was not requested or resolved to nothing.
	ChainCompleted
)

// String returns the string representation of ChainState.
func (s ChainState) String() string {
	switch s {
	case ChainIdle:
		return "idle"
	case ChainBackupRunning:
		return "backup_running"
	case ChainBackupFailed:
		return "backup_failed"
	case ChainCleanupRunning:
		return "cleanup_running"
	case ChainCleanupFailed:
		return "cleanup_failed"
	case ChainCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// CleanupResolver returns the cleanup phase's item set. It is called at
// phase-2 time, not captured up front, so the set reflects current local and
// vault membership - a blob that never actually made it into the vault can
// never end up in the set.
type CleanupResolver func(ctx context.Context) ([]Item, error)

// ChainOptions configures the optional cleanup phase of a Run.
type ChainOptions struct {
	// CleanupRequested opts in to phase 2. Captured at invocation time.
	CleanupRequested bool
	// ResolveCleanup computes the cleanup item set. Required when
	// CleanupRequested is true.
	ResolveCleanup CleanupResolver
	// CleanupExecutor performs one cleanup item (a local delete). Required
	// when CleanupRequested is true.
	CleanupExecutor Executor
}

// oneShot is an explicit one-shot latch. TryAcquire returns true exactly
// once, no matter how many times or from how many goroutines it is called.
// The phase-1→phase-2 transition is guarded by this latch rather than by any
// assumption that the completion handler only fires once.
type oneShot struct {
	mu    sync.Mutex
	fired bool
}

// TryAcquire consumes the latch. The first caller wins.
func (o *oneShot) TryAcquire() bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.fired {
		return false
	}

	o.fired = true

	return true
}

// Chain orchestrates two Runner invocations in sequence: a backup phase over
// "not yet backed up" items, then - only when the caller opted in and the
// backup fully or partially succeeded - a cleanup phase over a freshly
// resolved "safe to free locally" set. The two phases keep distinct item
// sets and distinct Runners; observers read phase 2's progress from the
// Cleanup runner directly and relabel phases ("Step 1 of 2") themselves.
type Chain struct {
	// Backup runs phase 1. Exposed so hosts can subscribe to its progress.
	Backup *Runner
	// Cleanup runs phase 2.
	Cleanup *Runner

	emitter EventEmitter

	mu           sync.Mutex
	state        ChainState
	cleanupLatch *oneShot
	opts         ChainOptions
	backupExec   Executor // captured by Run for RetryFailed
}

// NewChain creates a Chain with fresh runners.
func NewChain() *Chain {
	return &Chain{
		Backup:       NewRunner(),
		Cleanup:      NewRunner(),
		state:        ChainIdle,
		cleanupLatch: &oneShot{},
	}
}

// SetEventEmitter sets the emitter for chain-level events. The emitter is
// also attached to both runners.
func (c *Chain) SetEventEmitter(emitter EventEmitter) {
	c.mu.Lock()
	c.emitter = emitter
	c.mu.Unlock()

	c.Backup.SetEventEmitter(emitter)
	c.Cleanup.SetEventEmitter(emitter)
}

// State returns the chain's current state.
func (c *Chain) State() ChainState {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

// Cancel cancels whichever phase is currently running.
func (c *Chain) Cancel() {
	c.Backup.Cancel()
	c.Cleanup.Cancel()
}

// Run executes the backup phase over items, then hands off to the phase-1
// completion handler, which decides whether cleanup runs. Returns the backup
// phase's error when it has one (ErrItemsFailed on partial success is still
// returned even after a successful cleanup), otherwise the cleanup phase's.
func (c *Chain) Run(ctx context.Context, items []Item, backupExecutor Executor, opts ChainOptions) error {
	c.mu.Lock()
	if c.state == ChainBackupRunning || c.state == ChainCleanupRunning {
		c.mu.Unlock()
		return ErrAlreadyRunning
	}

	c.state = ChainBackupRunning
	c.cleanupLatch = &oneShot{}
	c.opts = opts
	c.backupExec = backupExecutor
	c.mu.Unlock()

	c.emit(PhaseStarted{Phase: "backup", Items: len(items)})

	backupErr := c.Backup.Start(ctx, items, backupExecutor)
	snapshot := c.Backup.Snapshot()

	// Advance only on full or partial success. A cancelled run, or one where
	// nothing at all was backed up, must never trigger deletions.
	advance := snapshot.State == StateCompleted ||
		(snapshot.State == StateFailed && snapshot.CompletedItems > 0)

	if !advance {
		c.setState(ChainBackupFailed)
		c.emit(ChainFinished{State: ChainBackupFailed})

		return backupErr
	}

	cleanupErr := c.completeBackupPhase(ctx)

	if backupErr != nil {
		return backupErr
	}

	return cleanupErr
}

// completeBackupPhase is the phase-1 completion handler. The one-shot latch
// makes a duplicate invocation a no-op: phase 2 starts at most once per Run.
func (c *Chain) completeBackupPhase(ctx context.Context) error {
	if !c.cleanupLatch.TryAcquire() {
		return nil
	}

	c.mu.Lock()
	opts := c.opts
	c.mu.Unlock()

	if !opts.CleanupRequested {
		c.setState(ChainCompleted)
		c.emit(PhaseSkipped{Phase: "cleanup", Reason: "not requested"})
		c.emit(ChainFinished{State: ChainCompleted})

		return nil
	}

	items, err := opts.ResolveCleanup(ctx)
	if err != nil {
		c.setState(ChainCleanupFailed)
		c.emit(ChainFinished{State: ChainCleanupFailed})

		return err
	}

	if len(items) == 0 {
		// Nothing actually needs freeing; short-circuit to terminal success
		// without starting a no-op phase 2.
		c.setState(ChainCompleted)
		c.emit(PhaseSkipped{Phase: "cleanup", Reason: "nothing to free"})
		c.emit(ChainFinished{State: ChainCompleted})

		return nil
	}

	c.setState(ChainCleanupRunning)
	c.emit(PhaseStarted{Phase: "cleanup", Items: len(items)})

	cleanupErr := c.Cleanup.Start(ctx, items, opts.CleanupExecutor)
	if cleanupErr != nil {
		c.setState(ChainCleanupFailed)
		c.emit(ChainFinished{State: ChainCleanupFailed})

		return cleanupErr
	}

	c.setState(ChainCompleted)
	c.emit(ChainFinished{State: ChainCompleted})

	return nil
}

// RetryFailed re-runs the failed items of whichever phase is in a failed
// terminal state. A backup retry that reaches full success still advances to
// cleanup, unless this Run's phase transition already fired.
func (c *Chain) RetryFailed(ctx context.Context) error {
	c.mu.Lock()
	backupExec := c.backupExec
	cleanupExec := c.opts.CleanupExecutor
	c.mu.Unlock()

	switch c.State() {
	case ChainBackupFailed:
		c.setState(ChainBackupRunning)

		retryErr := c.Backup.RetryFailed(ctx, backupExec)
		snapshot := c.Backup.Snapshot()

		advance := snapshot.State == StateCompleted ||
			(snapshot.State == StateFailed && snapshot.CompletedItems > 0)

		if !advance {
			c.setState(ChainBackupFailed)
			c.emit(ChainFinished{State: ChainBackupFailed})

			return retryErr
		}

		cleanupErr := c.completeBackupPhase(ctx)

		if retryErr != nil {
			return retryErr
		}

		return cleanupErr

	case ChainCleanupFailed:
		c.setState(ChainCleanupRunning)

		retryErr := c.Cleanup.RetryFailed(ctx, cleanupExec)
		if retryErr != nil {
			c.setState(ChainCleanupFailed)
			c.emit(ChainFinished{State: ChainCleanupFailed})

			return retryErr
		}

		c.setState(ChainCompleted)
		c.emit(ChainFinished{State: ChainCompleted})

		return nil

	case ChainIdle, ChainBackupRunning, ChainCleanupRunning, ChainCompleted:
		return ErrNothingToRetry
	default:
		return ErrNothingToRetry
	}
}

func (c *Chain) setState(state ChainState) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = state
}

func (c *Chain) emit(event Event) {
	c.mu.Lock()
	emitter := c.emitter
	c.mu.Unlock()

	if emitter != nil {
		emitter.Emit(event)
	}
}
