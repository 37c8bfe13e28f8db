// Package derive recomputes dependent record fields from declared source
// fields. Rules are pure: an engine never persists, it returns an updated
// copy for the caller to save.
package derive

// Rule recomputes a single target field. Sources name the fields the target
// depends on; they drive selective recomputation and rule chaining.
type Rule[T any] struct {
	Target  string
	Sources []string
	Apply   func(T) T
}

// Engine applies rules in declaration order, so a rule may depend on the
// target of an earlier rule.
type Engine[T any] struct {
	rules []Rule[T]
}

// NewEngine builds an engine over the given rules.
func NewEngine[T any](rules ...Rule[T]) *Engine[T] {
	return &Engine[T]{rules: rules}
}

// Derive runs every rule and returns the updated record.
func (e *Engine[T]) Derive(record T) T {
	for _, r := range e.rules {
		record = r.Apply(record)
	}
	return record
}

// DeriveChanged runs only the rules reachable from the changed source
// fields, chaining through targets. With no changed fields it behaves like
// Derive.
func (e *Engine[T]) DeriveChanged(record T, changed ...string) T {
	if len(changed) == 0 {
		return e.Derive(record)
	}
	dirty := make(map[string]struct{}, len(changed))
	for _, f := range changed {
		dirty[f] = struct{}{}
	}
	for _, r := range e.rules {
		if !touches(r.Sources, dirty) {
			continue
		}
		record = r.Apply(record)
		dirty[r.Target] = struct{}{}
	}
	return record
}

// DeriveExcept runs every rule except those targeting a skipped field.
// Skipped targets still count as recomputed for downstream rules.
func (e *Engine[T]) DeriveExcept(record T, skip ...string) T {
	skipped := make(map[string]struct{}, len(skip))
	for _, f := range skip {
		skipped[f] = struct{}{}
	}
	for _, r := range e.rules {
		if _, ok := skipped[r.Target]; ok {
			continue
		}
		record = r.Apply(record)
	}
	return record
}

func touches(sources []string, dirty map[string]struct{}) bool {
	for _, s := range sources {
		if _, ok := dirty[s]; ok {
			return true
		}
	}
	return false
}
