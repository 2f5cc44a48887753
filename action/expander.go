package action

import (
	"sync"

	"github.com/pflow-xyz/go-ippddl/state"
)

// ForallAdjacent is the reserved effect sentinel. A proposition headed
// by this name does not describe a predicate; it expands during
// grounding to one proposition per object adjacent to the first bound
// parameter. The sentinel's first argument names the predicate to emit.
const ForallAdjacent = "forall-adjacent"

// ExpandFunc rewrites a sentinel effect proposition into the concrete
// propositions it stands for. sentinel is the unexpanded proposition,
// assignment the grounded parameter values in declaration order, and
// adjacency the per-problem object adjacency map (may be nil).
type ExpandFunc func(sentinel state.Proposition, assignment []string, adjacency map[string][]string) []state.Proposition

// ExpanderRegistry maps reserved effect names to expansion strategies,
// keeping the grounding path itself domain-agnostic.
type ExpanderRegistry struct {
	mu    sync.RWMutex
	funcs map[string]ExpandFunc
}

// NewExpanderRegistry creates an empty registry.
func NewExpanderRegistry() *ExpanderRegistry {
	return &ExpanderRegistry{funcs: make(map[string]ExpandFunc)}
}

// Register adds an expansion strategy under the given effect name.
func (r *ExpanderRegistry) Register(name string, fn ExpandFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[name] = fn
}

// Get returns the strategy for an effect name, or nil if none is
// registered.
func (r *ExpanderRegistry) Get(name string) ExpandFunc {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.funcs[name]
}

// DefaultExpanders is the registry used by Ground unless overridden.
// It carries the forall-adjacent strategy.
var DefaultExpanders = NewExpanderRegistry()

func init() {
	DefaultExpanders.Register(ForallAdjacent, expandForallAdjacent)
}

func expandForallAdjacent(sentinel state.Proposition, assignment []string, adjacency map[string][]string) []state.Proposition {
	if len(assignment) == 0 {
		return nil
	}
	predicate := "up"
	if len(sentinel) > 1 {
		predicate = sentinel[1]
	}
	neighbors := adjacency[assignment[0]]
	out := make([]state.Proposition, 0, len(neighbors))
	for _, n := range neighbors {
		out = append(out, state.Prop(predicate, n))
	}
	return out
}
