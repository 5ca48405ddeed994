package executor

// State is the furthest point a run reached.
type State int

const (
	Idle State = iota
	Pecking
	Locked
	Planning
	Executing
	Committed
	RolledBack
)

func (s State) String() string {
	switch s {
	case Pecking:
		return "pecking"
	case Locked:
		return "locked"
	case Planning:
		return "planning"
	case Executing:
		return "executing"
	case Committed:
		return "committed"
	case RolledBack:
		return "rolled_back"
	default:
		return "idle"
	}
}
