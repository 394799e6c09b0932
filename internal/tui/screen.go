package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/joe/packvault/internal/transfer"
	"github.com/joe/packvault/internal/tui/shared"
)

// PhaseLabels names the chain's phases for display.
type PhaseLabels struct {
	Backup  string // e.g. "Pushing to vault"
	Cleanup string // e.g. "Freeing local space"
}

// RunFunc starts the transfer run and blocks until it reaches a terminal
// state. The screen invokes it from a tea.Cmd goroutine.
type RunFunc func() error

// TransferScreen renders a single transfer run: one progress bar, byte and
// rate counters, the item currently moving, and any accumulated errors.
type TransferScreen struct {
	chain      *transfer.Chain
	start      RunFunc
	labels     PhaseLabels
	phaseCount int

	snapshot   transfer.Progress
	chainState transfer.ChainState
	spinner    spinner.Model
	bar        progress.Model
	width      int
	height     int
	cancelled  bool
	done       bool
	runErr     error
	lastUpdate time.Time
}

// NewTransferScreen creates the screen for a run. phaseCount is 2 when a
// cleanup phase was requested, otherwise 1.
func NewTransferScreen(chain *transfer.Chain, start RunFunc, labels PhaseLabels, phaseCount int) *TransferScreen {
	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(shared.PrimaryColor())

	return &TransferScreen{
		chain:      chain,
		start:      start,
		labels:     labels,
		phaseCount: phaseCount,
		spinner:    spin,
		bar:        shared.NewProgressModel(shared.ProgressBarWidth),
		lastUpdate: time.Now(),
	}
}

// Init implements tea.Model
func (s *TransferScreen) Init() tea.Cmd {
	return tea.Batch(
		s.spinner.Tick,
		s.startRun(),
		shared.TickCmd(),
	)
}

// Update implements tea.Model
func (s *TransferScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return s.handleWindowSize(msg)
	case tea.KeyMsg:
		return s.handleKeyMsg(msg)
	case RunDoneMsg:
		return s.handleRunDone(msg)
	case spinner.TickMsg:
		return s.handleSpinnerTick(msg)
	case shared.TickMsg:
		return s.handleTick()
	}

	return s, nil
}

// View implements tea.Model
func (s *TransferScreen) View() string {
	var builder strings.Builder

	builder.WriteString(s.renderHeader())
	builder.WriteString("\n\n")

	if s.done {
		builder.WriteString(s.renderSummary())
	} else {
		builder.WriteString(s.renderActive())
	}

	builder.WriteString("\n")
	builder.WriteString(s.renderHelp())

	return shared.RenderBox(builder.String())
}

// Done reports whether the run has reached a terminal state (for testing)
func (s *TransferScreen) Done() bool {
	return s.done
}

// RunErr returns the run's terminal error (for testing)
func (s *TransferScreen) RunErr() error {
	return s.runErr
}

// ============================================================================
// Message Handlers
// ============================================================================

func (s *TransferScreen) handleWindowSize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	s.width = msg.Width
	s.height = msg.Height

	barWidth := max(msg.Width-shared.ProgressBarMargin, shared.ProgressBarWidth)
	s.bar.Width = min(barWidth, shared.MaxProgressBarWidth)

	return s, nil
}

//nolint:exhaustive // Only handling specific key types
func (s *TransferScreen) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		// Emergency exit - quit immediately
		return s, tea.Quit

	case tea.KeyEsc:
		return s.cancelOrQuit()
	}

	switch msg.String() {
	case "q":
		return s.cancelOrQuit()
	case "r":
		return s.retry()
	}

	return s, nil
}

// cancelOrQuit requests a graceful cancel while the run is active, and quits
// once it has settled.
func (s *TransferScreen) cancelOrQuit() (tea.Model, tea.Cmd) {
	if s.done {
		return s, tea.Quit
	}

	s.cancelled = true
	s.chain.Cancel()

	return s, nil
}

// retry kicks off a retry of the failed items. Only valid once the run has
// settled in a resumable failed state.
func (s *TransferScreen) retry() (tea.Model, tea.Cmd) {
	if !s.done {
		return s, nil
	}

	snapshot := s.activeSnapshot()
	if snapshot.State != transfer.StateFailed || !snapshot.CanResume {
		return s, nil
	}

	s.done = false
	s.runErr = nil
	s.cancelled = false

	return s, func() tea.Msg {
		return RunDoneMsg{Err: s.chain.RetryFailed(context.Background())}
	}
}

func (s *TransferScreen) handleRunDone(msg RunDoneMsg) (tea.Model, tea.Cmd) {
	s.done = true
	s.runErr = msg.Err
	s.refresh()

	return s, nil
}

func (s *TransferScreen) handleSpinnerTick(msg spinner.TickMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	s.spinner, cmd = s.spinner.Update(msg)

	return s, cmd
}

func (s *TransferScreen) handleTick() (tea.Model, tea.Cmd) {
	// Refresh from the engine, but throttled to reduce lock contention
	now := time.Now()
	if now.Sub(s.lastUpdate) >= shared.StatusUpdateThrottleMs*time.Millisecond {
		s.refresh()
		s.lastUpdate = now
	}

	return s, shared.TickCmd()
}

func (s *TransferScreen) refresh() {
	s.chainState = s.chain.State()
	s.snapshot = s.activeSnapshot()
}

// activeSnapshot reads progress from whichever phase the chain is in. Once
// cleanup starts, its runner owns the display.
func (s *TransferScreen) activeSnapshot() transfer.Progress {
	switch s.chain.State() {
	case transfer.ChainCleanupRunning, transfer.ChainCleanupFailed:
		return s.chain.Cleanup.Snapshot()
	case transfer.ChainCompleted:
		if s.phaseCount > 1 && s.chain.Cleanup.Snapshot().State != transfer.StateIdle {
			return s.chain.Cleanup.Snapshot()
		}

		return s.chain.Backup.Snapshot()
	case transfer.ChainIdle, transfer.ChainBackupRunning, transfer.ChainBackupFailed:
		return s.chain.Backup.Snapshot()
	default:
		return s.chain.Backup.Snapshot()
	}
}

// ============================================================================
// Rendering
// ============================================================================

func (s *TransferScreen) renderHeader() string {
	label, step := s.phaseLabel()

	if s.phaseCount > 1 {
		return shared.RenderTitle(fmt.Sprintf("Step %d of %d: %s", step, s.phaseCount, label))
	}

	return shared.RenderTitle(label)
}

func (s *TransferScreen) phaseLabel() (string, int) {
	switch s.chainState {
	case transfer.ChainCleanupRunning, transfer.ChainCleanupFailed:
		return s.labels.Cleanup, 2
	case transfer.ChainCompleted:
		if s.phaseCount > 1 {
			return s.labels.Cleanup, 2
		}

		return s.labels.Backup, 1
	case transfer.ChainIdle, transfer.ChainBackupRunning, transfer.ChainBackupFailed:
		return s.labels.Backup, 1
	default:
		return s.labels.Backup, 1
	}
}

func (s *TransferScreen) renderActive() string {
	var builder strings.Builder

	if s.cancelled {
		builder.WriteString(s.spinner.View())
		builder.WriteString(" Cancelling, waiting for the current item to settle...\n\n")
	}

	if s.snapshot.State == transfer.StateIdle {
		builder.WriteString(s.spinner.View())
		builder.WriteString(" Starting...\n")

		return builder.String()
	}

	builder.WriteString(shared.RenderProgress(s.bar, s.snapshot.PercentDone()))
	fmt.Fprintf(&builder, " %d/%d items\n\n", s.snapshot.SettledItems(), s.snapshot.TotalItems)

	fmt.Fprintf(&builder, "%s / %s",
		shared.FormatBytes(s.snapshot.TransferredBytes),
		shared.FormatBytes(s.snapshot.TotalBytes))
	fmt.Fprintf(&builder, "  •  %s", shared.FormatRate(s.snapshot.BytesPerSecond))
	fmt.Fprintf(&builder, "  •  ETA %s\n\n", shared.FormatETA(s.snapshot.ETA, s.snapshot.ETAKnown))

	if s.snapshot.CurrentItem != nil {
		builder.WriteString(shared.RenderLabel("Moving: "))
		builder.WriteString(s.snapshot.CurrentItem.DisplayName)
		builder.WriteString("\n")
	}

	s.renderErrors(&builder, shared.MaxErrorsToShow)

	return builder.String()
}

func (s *TransferScreen) renderSummary() string {
	var builder strings.Builder

	switch s.snapshot.State {
	case transfer.StateCompleted:
		builder.WriteString(shared.RenderSuccess("✓ Done"))
	case transfer.StateCancelled:
		builder.WriteString(shared.RenderWarning("Cancelled"))
	case transfer.StateFailed:
		builder.WriteString(shared.RenderError(fmt.Sprintf("✗ %d item(s) failed", s.snapshot.FailedItems)))
	case transfer.StateIdle, transfer.StateRunning:
		builder.WriteString(shared.RenderWarning("Finished"))
	}

	builder.WriteString("\n\n")

	fmt.Fprintf(&builder, "%d/%d items, %s in %s\n",
		s.snapshot.CompletedItems,
		s.snapshot.TotalItems,
		shared.FormatBytes(s.snapshot.TransferredBytes),
		shared.FormatDuration(s.snapshot.Elapsed))

	if s.runErr != nil && !errors.Is(s.runErr, transfer.ErrItemsFailed) &&
		!errors.Is(s.runErr, transfer.ErrRunCancelled) {
		builder.WriteString("\n")
		builder.WriteString(shared.RenderError(s.runErr.Error()))
		builder.WriteString("\n")
	}

	s.renderErrors(&builder, len(s.snapshot.Errors))

	return builder.String()
}

func (s *TransferScreen) renderErrors(builder *strings.Builder, limit int) {
	if len(s.snapshot.Errors) == 0 {
		return
	}

	builder.WriteString("\n")
	builder.WriteString(shared.RenderError(fmt.Sprintf("⚠ Errors (%d):", len(s.snapshot.Errors))))
	builder.WriteString("\n")

	shown := min(len(s.snapshot.Errors), limit)
	for i := range shown {
		builder.WriteString("  • ")
		builder.WriteString(s.snapshot.Errors[i])
		builder.WriteString("\n")
	}

	if len(s.snapshot.Errors) > shown {
		builder.WriteString(shared.RenderDim(fmt.Sprintf("  ... and %d more\n", len(s.snapshot.Errors)-shown)))
	}
}

func (s *TransferScreen) renderHelp() string {
	if !s.done {
		return shared.RenderDim("Esc or q to cancel • Ctrl+C to exit immediately")
	}

	if s.snapshot.State == transfer.StateFailed && s.snapshot.CanResume {
		return shared.RenderDim("r to retry failed items • q to quit")
	}

	return shared.RenderDim("q to quit")
}

// ============================================================================
// Run Start
// ============================================================================

func (s *TransferScreen) startRun() tea.Cmd {
	return func() tea.Msg {
		return RunDoneMsg{Err: s.start()}
	}
}
