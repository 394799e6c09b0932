package tui

import (
	"fmt"
	"io"
	"sync"

	"github.com/joe/packvault/internal/transfer"
	"github.com/joe/packvault/internal/tui/shared"
)

// PlainReporter prints one line per item transition, for piped output and
// dumb terminals. It subscribes to a runner's progress callbacks.
type PlainReporter struct {
	out   io.Writer
	phase string

	mu       sync.Mutex
	lastItem string
	finished bool
}

// NewPlainReporter creates a reporter writing to out, prefixing each line
// with the phase label.
func NewPlainReporter(out io.Writer, phase string) *PlainReporter {
	return &PlainReporter{out: out, phase: phase}
}

// Attach subscribes the reporter to the runner's progress snapshots.
func (p *PlainReporter) Attach(runner *transfer.Runner) {
	runner.RegisterProgressCallback(p.report)
}

func (p *PlainReporter) report(snapshot transfer.Progress) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if snapshot.CurrentItem != nil && snapshot.CurrentItem.DisplayName != p.lastItem {
		p.lastItem = snapshot.CurrentItem.DisplayName
		fmt.Fprintf(p.out, "%s: %s (%d/%d, %s of %s, %s)\n",
			p.phase,
			snapshot.CurrentItem.DisplayName,
			snapshot.SettledItems()+1,
			snapshot.TotalItems,
			shared.FormatBytes(snapshot.TransferredBytes),
			shared.FormatBytes(snapshot.TotalBytes),
			shared.FormatRate(snapshot.BytesPerSecond))
	}

	if snapshot.State.Terminal() && !p.finished {
		p.finished = true
		fmt.Fprintf(p.out, "%s: %s, %d/%d items, %s in %s\n",
			p.phase,
			snapshot.State,
			snapshot.CompletedItems,
			snapshot.TotalItems,
			shared.FormatBytes(snapshot.TransferredBytes),
			shared.FormatDuration(snapshot.Elapsed))

		for _, msg := range snapshot.Errors {
			fmt.Fprintf(p.out, "%s: error: %s\n", p.phase, msg)
		}
	}
}
