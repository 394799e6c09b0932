package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/joe/packvault/internal/transfer"
	"github.com/joe/packvault/internal/tui/shared"
)

var _ = Describe("TransferScreen", func() {
	var (
		chain  *transfer.Chain
		screen *TransferScreen
	)

	newScreen := func(phaseCount int) *TransferScreen {
		chain = transfer.NewChain()
		labels := PhaseLabels{Backup: "Pushing to vault", Cleanup: "Freeing local space"}

		return NewTransferScreen(chain, func() error { return nil }, labels, phaseCount)
	}

	BeforeEach(func() {
		screen = newScreen(1)
	})

	Describe("Construction", func() {
		It("starts not done", func() {
			Expect(screen.Done()).To(BeFalse())
			Expect(screen.RunErr()).To(BeNil())
		})

		It("starts with the default bar width", func() {
			Expect(screen.bar.Width).To(Equal(shared.ProgressBarWidth))
		})
	})

	Describe("Window Size Handling", func() {
		It("stores width and height", func() {
			newModel, _ := screen.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
			updated := newModel.(*TransferScreen)

			Expect(updated.width).To(Equal(120))
			Expect(updated.height).To(Equal(40))
		})

		It("clamps the bar to the maximum width on wide terminals", func() {
			newModel, _ := screen.Update(tea.WindowSizeMsg{Width: 300, Height: 40})
			updated := newModel.(*TransferScreen)

			Expect(updated.bar.Width).To(Equal(shared.MaxProgressBarWidth))
		})

		It("keeps the bar at its default width on narrow terminals", func() {
			newModel, _ := screen.Update(tea.WindowSizeMsg{Width: 30, Height: 10})
			updated := newModel.(*TransferScreen)

			Expect(updated.bar.Width).To(Equal(shared.ProgressBarWidth))
		})
	})

	Describe("Header Rendering", func() {
		It("renders the bare phase label for single-phase runs", func() {
			view := screen.View()

			Expect(view).To(ContainSubstring("Pushing to vault"))
			Expect(view).NotTo(ContainSubstring("Step 1 of"))
		})

		It("renders step numbering for two-phase runs", func() {
			screen = newScreen(2)

			Expect(screen.View()).To(ContainSubstring("Step 1 of 2: Pushing to vault"))
		})

		It("switches to the cleanup label once cleanup is running", func() {
			screen = newScreen(2)
			screen.chainState = transfer.ChainCleanupRunning

			Expect(screen.View()).To(ContainSubstring("Step 2 of 2: Freeing local space"))
		})
	})

	Describe("Key Handling", func() {
		It("quits immediately on ctrl+c", func() {
			_, cmd := screen.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

			Expect(cmd).NotTo(BeNil())
			Expect(cmd()).To(Equal(tea.Quit()))
		})

		It("requests a graceful cancel on q while running", func() {
			newModel, cmd := screen.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
			updated := newModel.(*TransferScreen)

			Expect(cmd).To(BeNil())
			Expect(updated.cancelled).To(BeTrue())
		})

		It("requests a graceful cancel on esc while running", func() {
			newModel, _ := screen.Update(tea.KeyMsg{Type: tea.KeyEsc})
			updated := newModel.(*TransferScreen)

			Expect(updated.cancelled).To(BeTrue())
		})

		It("quits on q once the run is done", func() {
			screen.done = true

			_, cmd := screen.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})

			Expect(cmd).NotTo(BeNil())
			Expect(cmd()).To(Equal(tea.Quit()))
		})

		It("ignores r while the run is active", func() {
			_, cmd := screen.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})

			Expect(cmd).To(BeNil())
			Expect(screen.Done()).To(BeFalse())
		})

		It("ignores r when the run finished without resumable failures", func() {
			screen.done = true

			_, cmd := screen.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})

			Expect(cmd).To(BeNil())
			Expect(screen.Done()).To(BeTrue())
		})

		It("ignores unrelated keys", func() {
			_, cmd := screen.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})

			Expect(cmd).To(BeNil())
		})
	})

	Describe("Run Completion", func() {
		It("records the terminal state and error", func() {
			runErr := errors.New("vault unreachable")

			newModel, _ := screen.Update(RunDoneMsg{Err: runErr})
			updated := newModel.(*TransferScreen)

			Expect(updated.Done()).To(BeTrue())
			Expect(updated.RunErr()).To(MatchError(runErr))
		})

		It("treats a nil error as success", func() {
			newModel, _ := screen.Update(RunDoneMsg{})
			updated := newModel.(*TransferScreen)

			Expect(updated.Done()).To(BeTrue())
			Expect(updated.RunErr()).To(BeNil())
		})
	})

	Describe("Active Rendering", func() {
		It("shows a starting indicator before the first snapshot arrives", func() {
			Expect(screen.View()).To(ContainSubstring("Starting..."))
		})

		It("shows counters and the current item while running", func() {
			screen.snapshot = transfer.Progress{
				State:            transfer.StateRunning,
				TotalItems:       3,
				CompletedItems:   1,
				TotalBytes:       3000,
				TransferredBytes: 1000,
				CurrentItem:      &transfer.Item{ID: "sha256-bbb", DisplayName: "llama-13b.gguf"},
			}

			view := screen.View()

			Expect(view).To(ContainSubstring("1/3 items"))
			Expect(view).To(ContainSubstring("Moving:"))
			Expect(view).To(ContainSubstring("llama-13b.gguf"))
		})

		It("renders an unknown ETA until the estimator settles", func() {
			screen.snapshot = transfer.Progress{
				State:      transfer.StateRunning,
				TotalItems: 1,
				TotalBytes: 100,
			}

			Expect(screen.View()).To(ContainSubstring("ETA unknown"))
		})

		It("limits errors shown while running", func() {
			screen.snapshot = transfer.Progress{
				State:       transfer.StateRunning,
				TotalItems:  6,
				FailedItems: 5,
				Errors:      []string{"e1", "e2", "e3", "e4", "e5"},
			}

			view := screen.View()

			Expect(view).To(ContainSubstring("e3"))
			Expect(view).NotTo(ContainSubstring("e4"))
			Expect(view).To(ContainSubstring("and 2 more"))
		})

		It("announces a pending cancel", func() {
			screen.cancelled = true

			Expect(screen.View()).To(ContainSubstring("Cancelling"))
		})
	})

	Describe("Summary Rendering", func() {
		It("reports success", func() {
			screen.done = true
			screen.snapshot = transfer.Progress{
				State:            transfer.StateCompleted,
				TotalItems:       2,
				CompletedItems:   2,
				TransferredBytes: 2048,
			}

			view := screen.View()

			Expect(view).To(ContainSubstring("Done"))
			Expect(view).To(ContainSubstring("2/2 items"))
		})

		It("reports a cancelled run", func() {
			screen.done = true
			screen.snapshot = transfer.Progress{State: transfer.StateCancelled, TotalItems: 2}

			Expect(screen.View()).To(ContainSubstring("Cancelled"))
		})

		It("reports failed items with every error listed", func() {
			screen.done = true
			screen.snapshot = transfer.Progress{
				State:       transfer.StateFailed,
				TotalItems:  6,
				FailedItems: 5,
				Errors:      []string{"e1", "e2", "e3", "e4", "e5"},
			}

			view := screen.View()

			Expect(view).To(ContainSubstring("5 item(s) failed"))
			Expect(view).To(ContainSubstring("e5"))
		})

		It("suppresses the sentinel errors already explained by the item list", func() {
			screen.done = true
			screen.runErr = transfer.ErrItemsFailed
			screen.snapshot = transfer.Progress{State: transfer.StateFailed, TotalItems: 1, FailedItems: 1}

			Expect(screen.View()).NotTo(ContainSubstring(transfer.ErrItemsFailed.Error()))
		})

		It("shows unexpected terminal errors", func() {
			screen.done = true
			screen.runErr = errors.New("vault unreachable")
			screen.snapshot = transfer.Progress{State: transfer.StateFailed, TotalItems: 1, FailedItems: 1}

			Expect(screen.View()).To(ContainSubstring("vault unreachable"))
		})
	})

	Describe("Help Line", func() {
		It("offers cancel keys while running", func() {
			Expect(screen.View()).To(ContainSubstring("Esc or q to cancel"))
		})

		It("offers retry only for resumable failures", func() {
			screen.done = true
			screen.snapshot = transfer.Progress{State: transfer.StateFailed, FailedItems: 1, CanResume: true}

			Expect(screen.View()).To(ContainSubstring("r to retry failed items"))
		})

		It("offers only quit after a fatal failure", func() {
			screen.done = true
			screen.snapshot = transfer.Progress{State: transfer.StateFailed, FailedItems: 1, CanResume: false}

			view := screen.View()

			Expect(view).NotTo(ContainSubstring("r to retry"))
			Expect(view).To(ContainSubstring("q to quit"))
		})
	})
})

func TestTransferScreen(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "TransferScreen Suite")
}
