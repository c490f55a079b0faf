package cart

// State is where a cart store is in its sync lifecycle.
type State string

const (
	StateUninitialized State = "UNINITIALIZED"
	StateCreating      State = "CREATING"
	StateFetching      State = "FETCHING"
	StateSynced        State = "SYNCED"
	StateUpdating      State = "UPDATING"
)

var transitions = map[State][]State{
	StateUninitialized: {StateCreating, StateFetching, StateSynced},
	StateFetching:      {StateCreating, StateSynced, StateUninitialized},
	StateCreating:      {StateCreating, StateSynced, StateUninitialized},
	StateSynced:        {StateUpdating, StateUninitialized},
	StateUpdating:      {StateSynced, StateUninitialized},
}

// CanTransitionTo reports whether moving from one state to another is legal.
func CanTransitionTo(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func (s State) String() string {
	return string(s)
}
