// Package action implements the grounding and probabilistic execution
// engine for planning actions. A schema declares typed parameters;
// grounding expands it over an object catalog into executable instances
// that can be tested for applicability, enumerated into outcomes, and
// sampled for successor states.
package action

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"github.com/pflow-xyz/go-ippddl/state"
)

// Parameter is one typed variable of an action schema.
type Parameter struct {
	Name string // variable token, e.g. "?from"
	Type string // declared type, e.g. "pos"
}

// Outcome is one possible result of executing an action: propositions
// added, propositions deleted, and the chance of this result occurring.
type Outcome struct {
	Add  state.Set
	Del  state.Set
	Prob Probability
}

// Action is an action schema or, after grounding, an executable
// instance. Arguments is nil for a schema; a grounded instance carries
// one bound object name per parameter, position-aligned with Parameters.
//
// All operations are pure except SettleProbabilities, which recomputes
// the settled values in place.
type Action struct {
	Name                  string
	Parameters            []Parameter
	Arguments             []string
	PositivePreconditions state.Set
	NegativePreconditions state.Set
	Outcomes              []Outcome

	// settled holds one point probability per outcome. Point outcomes
	// keep their declared value; interval outcomes start at their lower
	// bound until SettleProbabilities draws a value.
	settled []float64
}

// New creates an action schema. Settled probabilities are initialized
// from the outcome declarations: points as-is, intervals at their lower
// bound.
func New(name string, parameters []Parameter, positive, negative state.Set, outcomes []Outcome) *Action {
	a := &Action{
		Name:                  name,
		Parameters:            parameters,
		PositivePreconditions: positive,
		NegativePreconditions: negative,
		Outcomes:              outcomes,
	}
	a.settled = make([]float64, len(outcomes))
	for i, o := range outcomes {
		low, _ := o.Prob.Bounds()
		a.settled[i] = low
	}
	return a
}

// Deterministic creates a schema with a single outcome at probability 1.
func Deterministic(name string, parameters []Parameter, positive, negative, add, del state.Set) *Action {
	return New(name, parameters, positive, negative, []Outcome{
		{Add: add, Del: del, Prob: Point(1.0)},
	})
}

// Grounded reports whether every parameter is bound to an object.
func (a *Action) Grounded() bool {
	return len(a.Arguments) == len(a.Parameters)
}

// IsApplicable reports whether the action can execute in the given
// state: every positive precondition present, no negative precondition
// present.
func (a *Action) IsApplicable(world state.Set) bool {
	return world.ContainsAll(a.PositivePreconditions) && world.Disjoint(a.NegativePreconditions)
}

// SettleProbabilities resolves every outcome probability to a point
// value: points are copied unchanged, intervals are drawn uniformly.
// The outcome count never changes across calls; interval-derived values
// may (each call resamples).
func (a *Action) SettleProbabilities(rng *rand.Rand) {
	for i, o := range a.Outcomes {
		a.settled[i] = o.Prob.settle(rng)
	}
}

// SettledProbabilities returns a copy of the current settled values,
// one per outcome.
func (a *Action) SettledProbabilities() []float64 {
	out := make([]float64, len(a.settled))
	copy(out, a.settled)
	return out
}

// PossibleOutcomes returns every state reachable by executing the
// action in world, paired with its last-settled probability. An
// inapplicable action is a no-op: the input state at probability 1.
//
// The probabilities are not required to sum to 1; that is a property of
// the imprecise model. A caller needing a true distribution must
// renormalize or settle first.
func (a *Action) PossibleOutcomes(world state.Set) ([]state.Set, []float64) {
	if !a.IsApplicable(world) {
		return []state.Set{world}, []float64{1.0}
	}
	states := make([]state.Set, len(a.Outcomes))
	probs := make([]float64, len(a.Outcomes))
	for i, o := range a.Outcomes {
		states[i] = world.Difference(o.Del).Union(o.Add)
		probs[i] = a.settled[i]
	}
	return states, probs
}

// Apply samples one successor state of executing the action in world.
// Candidates are walked in ascending order of settled probability, with
// ties kept in outcome declaration order; a uniform draw selects the
// first candidate whose probability covers it, redrawing after each
// miss. Apply never fails: an inapplicable action or an exhausted walk
// returns the input state.
func (a *Action) Apply(world state.Set, rng *rand.Rand) state.Set {
	if !a.IsApplicable(world) {
		return world
	}
	states, probs := a.PossibleOutcomes(world)

	order := make([]int, len(states))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return probs[order[i]] < probs[order[j]]
	})

	u := rng.Float64()
	for _, idx := range order {
		if u <= probs[idx] {
			return states[idx]
		}
		u = rng.Float64()
	}
	return world
}

// String renders the action with its parameters, preconditions, and
// per-outcome effects.
func (a *Action) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "action: %s", a.Name)
	if a.Grounded() && len(a.Arguments) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(a.Arguments, " "))
	} else {
		for _, p := range a.Parameters {
			fmt.Fprintf(&b, " %s - %s", p.Name, p.Type)
		}
	}
	fmt.Fprintf(&b, "\n  positive preconditions: %s", a.PositivePreconditions.String())
	fmt.Fprintf(&b, "\n  negative preconditions: %s", a.NegativePreconditions.String())
	for i, o := range a.Outcomes {
		if o.Prob.IsInterval() {
			fmt.Fprintf(&b, "\n  outcome %s | current value: %.2f", o.Prob, a.settled[i])
		} else {
			fmt.Fprintf(&b, "\n  outcome %s", o.Prob)
		}
		fmt.Fprintf(&b, "\n    add: %s\n    del: %s", o.Add.String(), o.Del.String())
	}
	return b.String()
}
