package pipeline

// State is the orchestrator's position in a cycle.
type State int

const (
	Idle State = iota
	Cooldown
	Reading
	Parsed
	Resolved
	Written
	// Blocked is terminal: the external application could not be reached
	// during setup.
	Blocked
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Cooldown:
		return "cooldown"
	case Reading:
		return "reading"
	case Parsed:
		return "parsed"
	case Resolved:
		return "resolved"
	case Written:
		return "written"
	case Blocked:
		return "blocked"
	default:
		return "unknown"
	}
}

// Outcome reports how a cycle ended. State is Idle when the trigger was
// ignored or no usable capture appeared, Resolved when the record matched
// the last ledger row, and Written when a row was appended.
type Outcome struct {
	State    State
	Written  bool
	Sequence int
	Row      int
}
