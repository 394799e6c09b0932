package tui

// RunDoneMsg is sent when the transfer run (or a retry) reaches a terminal
// state. Err carries the run's terminal error, nil on full success.
type RunDoneMsg struct {
	Err error
}
