//nolint:varnamelen // Test files use idiomatic short variable names (g, ok, etc.)
package tui_test

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers

	"github.com/joe/packvault/internal/transfer"
	"github.com/joe/packvault/internal/tui"
)

func newTestScreen() *tui.TransferScreen {
	chain := transfer.NewChain()
	labels := tui.PhaseLabels{Backup: "Pushing to vault", Cleanup: "Freeing local space"}

	return tui.NewTransferScreen(chain, func() error { return nil }, labels, 1)
}

func TestAppModelWrapsScreen(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	screen := newTestScreen()
	model := tui.NewAppModel(screen)

	g.Expect(model.CurrentScreen()).To(BeIdenticalTo(screen))
}

func TestAppModelDelegatesUpdate(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	model := tui.NewAppModel(newTestScreen())

	updatedModel, _ := model.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	appModel, ok := updatedModel.(tui.AppModel)
	g.Expect(ok).Should(BeTrue(), "Expected updatedModel to be AppModel")

	screen, ok := appModel.CurrentScreen().(*tui.TransferScreen)
	g.Expect(ok).Should(BeTrue(), "Expected current screen to be TransferScreen")
	g.Expect(screen.Done()).Should(BeFalse())
}

func TestAppModelDelegatesView(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	model := tui.NewAppModel(newTestScreen())

	g.Expect(model.View()).To(ContainSubstring("Pushing to vault"))
}
