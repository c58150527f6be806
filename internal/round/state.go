package round

// State of the round state machine.
type State int

const (
	StateIdle State = iota
	StateAwaitingOpponent
	StateResolving
	StateSeriesCheck
	StateSeriesComplete
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingOpponent:
		return "awaiting_opponent"
	case StateResolving:
		return "resolving"
	case StateSeriesCheck:
		return "series_check"
	case StateSeriesComplete:
		return "series_complete"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
