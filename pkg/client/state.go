package client

// State is the lifecycle state of a Program.
type State uint8

const (
	StateNone    State = iota // Not joined; waiting for an open transport
	StateJoining              // Join sent, waiting for the ack
	StateJoined               // Server id assigned
	StateLeaving              // Leave being sent
	StateLeft                 // Finished; no longer tracked
)

// String returns the string representation of the State.
func (s State) String() string {
	switch s {
	case StateNone:
		return "none"
	case StateJoining:
		return "joining"
	case StateJoined:
		return "joined"
	case StateLeaving:
		return "leaving"
	case StateLeft:
		return "left"
	default:
		return "unknown"
	}
}

// CanTransition reports whether a program in state s may move to next.
//
// Joining and Joined fall back to None when the transport drops. None
// goes straight to Left when a program that never joined is left.
func (s State) CanTransition(next State) bool {
	switch s {
	case StateNone:
		return next == StateJoining || next == StateLeft
	case StateJoining:
		return next == StateJoined || next == StateLeaving || next == StateNone
	case StateJoined:
		return next == StateLeaving || next == StateNone
	case StateLeaving:
		return next == StateLeft
	default:
		return false
	}
}
