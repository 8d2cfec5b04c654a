package memocache

// State is the lifecycle of a key: absent -> computing -> ready.
// A failed computation goes back to absent.
type State uint8

const (
	StateAbsent State = iota
	StateComputing
	StateReady
)

func (s State) String() string {
	switch s {
	case StateAbsent:
		return "absent"
	case StateComputing:
		return "computing"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}
