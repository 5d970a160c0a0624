package pipeline

// CommandKind enumerates the control signals the runner consumes between
// loop iterations.
type CommandKind int

const (
	CommandNone CommandKind = iota
	CommandQuit
	CommandToggleProcessor
	CommandClearChain
	CommandSaveFrame
	CommandToggleRecording
)

func (k CommandKind) String() string {
	switch k {
	case CommandNone:
		return "none"
	case CommandQuit:
		return "quit"
	case CommandToggleProcessor:
		return "toggle-processor"
	case CommandClearChain:
		return "clear-chain"
	case CommandSaveFrame:
		return "save-frame"
	case CommandToggleRecording:
		return "toggle-recording"
	}
	return "unknown"
}

// Command is one user control signal. Index is meaningful only for
// CommandToggleProcessor, where it selects a chain position.
type Command struct {
	Kind  CommandKind
	Index int
}
