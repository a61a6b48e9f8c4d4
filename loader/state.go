package loader

// State is the progress of a single load attempt.
type State int

const (
	StateStart State = iota
	StateHeaderValidated
	StateSegmentLoaded
	StateTransferred
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateStart:
		return "START"
	case StateHeaderValidated:
		return "HEADER_VALIDATED"
	case StateSegmentLoaded:
		return "SEGMENT_LOADED"
	case StateTransferred:
		return "TRANSFERRED"
	case StateAborted:
		return "ABORTED"
	default:
		return "UNKNOWN"
	}
}
