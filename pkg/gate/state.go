package gate

// State is the position of one submission attempt in its lifecycle.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateBlocked
	StateAllowed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateBlocked:
		return "blocked"
	case StateAllowed:
		return "allowed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the attempt has resolved.
func (s State) Terminal() bool {
	return s == StateBlocked || s == StateAllowed
}
