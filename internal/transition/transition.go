// Package transition encodes the legal status changes per entity as data.
// An illegal transition is a no-op signalled to the caller, never an error
// thrown at the user.
package transition

// Table holds the allowed edges of a status machine.
type Table[S comparable] struct {
	allowed map[S]map[S]struct{}
}

// NewTable builds a table from a map of status to its legal successors.
func NewTable[S comparable](edges map[S][]S) Table[S] {
	allowed := make(map[S]map[S]struct{}, len(edges))
	for from, tos := range edges {
		set := make(map[S]struct{}, len(tos))
		for _, to := range tos {
			set[to] = struct{}{}
		}
		allowed[from] = set
	}
	return Table[S]{allowed: allowed}
}

// Can reports whether from may transition to to. A self-transition is never
// legal: re-applying a state is the caller's idempotence signal.
func (t Table[S]) Can(from, to S) bool {
	if from == to {
		return false
	}
	set, ok := t.allowed[from]
	if !ok {
		return false
	}
	_, ok = set[to]
	return ok
}

// Apply returns the resulting status and whether anything changed. Illegal
// requests return the current status unchanged.
func (t Table[S]) Apply(from, to S) (S, bool) {
	if !t.Can(from, to) {
		return from, false
	}
	return to, true
}

// Terminal reports whether no transition leaves the given status.
func (t Table[S]) Terminal(s S) bool {
	return len(t.allowed[s]) == 0
}
