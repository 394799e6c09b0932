package transfer

// Event is the interface implemented by all transfer engine events.
type Event interface {
	isEvent()
}

// EventEmitter is the interface for emitting events.
type EventEmitter interface {
	Emit(event Event)
}

// Run events

// RunStarted is emitted when a run begins (initial start or a retry pass).
type RunStarted struct {
	Items int
	Bytes int64
	Retry bool
}

func (RunStarted) isEvent() {}

// ItemStarted is emitted when an item's executor is invoked.
type ItemStarted struct {
	Item  Item
	Index int // position in the run's queue
}

func (ItemStarted) isEvent() {}

// ItemCompleted is emitted when an item's executor settles successfully.
type ItemCompleted struct {
	Item Item
}

func (ItemCompleted) isEvent() {}

// ItemFailed is emitted when an item's executor settles with an error.
type ItemFailed struct {
	Item      Item
	Reason    string
	Resumable bool
}

func (ItemFailed) isEvent() {}

// RunCompleted is emitted when a run reaches a terminal state.
type RunCompleted struct {
	Final Progress
}

func (RunCompleted) isEvent() {}

// Chain events

// PhaseStarted is emitted when a chain phase begins executing.
type PhaseStarted struct {
	Phase string // "backup" or "cleanup"
	Items int
}

func (PhaseStarted) isEvent() {}

// PhaseSkipped is emitted when the cleanup phase is skipped because nothing
// needs freeing or the caller did not request it.
type PhaseSkipped struct {
	Phase  string
	Reason string
}

func (PhaseSkipped) isEvent() {}

// ChainFinished is emitted when the chain reaches a terminal state.
type ChainFinished struct {
	State ChainState
}

func (ChainFinished) isEvent() {}
