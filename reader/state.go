package reader

// State is the lifecycle state of Reader
type State int32

// Reader states, in the only possible order
const (
	StateIdle State = iota
	StateRunning
	StateFinishing
	StateTerminal
)

func (state State) String() string {
	switch state {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateFinishing:
		return "finishing"
	case StateTerminal:
		return "terminal"
	default:
		return "invalid"
	}
}

// TerminationCause tells why a run has ended
type TerminationCause int

// Termination causes
const (
	CauseExhausted TerminationCause = iota // end of data
	CauseCancelled
	CauseReadError
)

func (cause TerminationCause) String() string {
	switch cause {
	case CauseExhausted:
		return "exhausted"
	case CauseCancelled:
		return "cancelled"
	case CauseReadError:
		return "readError"
	default:
		return "invalid"
	}
}
