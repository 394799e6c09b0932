// Package tui renders a transfer run as a full-screen terminal UI.
package tui

import (
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term" //nolint:depguard // Required for TTY detection
)

// AppModel is the top-level model wrapping the transfer screen
type AppModel struct {
	currentScreen tea.Model
}

// NewAppModel creates a new app model for the given screen
func NewAppModel(screen *TransferScreen) *AppModel {
	return &AppModel{currentScreen: screen}
}

// CurrentScreen returns the current screen (for testing)
func (a AppModel) CurrentScreen() tea.Model {
	return a.currentScreen
}

// Init implements tea.Model
func (a AppModel) Init() tea.Cmd {
	return a.currentScreen.Init()
}

// Update implements tea.Model
func (a AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	a.currentScreen, cmd = a.currentScreen.Update(msg)

	return a, cmd
}

// View implements tea.Model
func (a AppModel) View() string {
	return a.currentScreen.View()
}

// Run drives the screen until the user quits.
func Run(screen *TransferScreen) error {
	model := NewAppModel(screen)

	// Only use alt screen if stdout is a TTY
	var opts []tea.ProgramOption
	if term.IsTerminal(int(os.Stdout.Fd())) {
		opts = append(opts, tea.WithAltScreen())
	}

	program := tea.NewProgram(model, opts...)

	_, err := program.Run()

	return err
}
