package action

import (
	"iter"

	"github.com/pflow-xyz/go-ippddl/state"
)

// GroundOption configures a grounding pass.
type GroundOption func(*grounder)

// WithAdjacency supplies the object adjacency map consulted by sentinel
// effect expansion. Keys are object names, values the objects adjacent
// to them.
func WithAdjacency(adjacency map[string][]string) GroundOption {
	return func(g *grounder) {
		g.adjacency = adjacency
	}
}

// WithExpanders replaces the effect expander registry used during
// grounding. Defaults to DefaultExpanders.
func WithExpanders(reg *ExpanderRegistry) GroundOption {
	return func(g *grounder) {
		g.expanders = reg
	}
}

type grounder struct {
	adjacency map[string][]string
	expanders *ExpanderRegistry
}

// Ground expands the schema over the object catalog into grounded
// instances, as a lazy single-pass sequence. A zero-parameter schema
// yields itself unchanged as the sole element.
//
// objects maps a type name to the objects declared with that type;
// types maps a type name to its narrower types. Each parameter's domain
// is every object reachable from its declared type through the type
// hierarchy. The sequence is restartable from scratch; abandoning it
// mid-iteration has no side effects.
func (a *Action) Ground(objects, types map[string][]string, opts ...GroundOption) iter.Seq[*Action] {
	g := &grounder{expanders: DefaultExpanders}
	for _, opt := range opts {
		opt(g)
	}

	return func(yield func(*Action) bool) {
		if len(a.Parameters) == 0 {
			yield(a)
			return
		}

		domains := make([][]string, len(a.Parameters))
		variables := make([]string, len(a.Parameters))
		for i, p := range a.Parameters {
			domains[i] = reachableObjects(p.Type, objects, types)
			variables[i] = p.Name
		}
		for _, domain := range domains {
			if len(domain) == 0 {
				return
			}
		}

		// Odometer over the cartesian product, in declaration order.
		indices := make([]int, len(domains))
		assignment := make([]string, len(domains))
		for {
			for i, idx := range indices {
				assignment[i] = domains[i][idx]
			}
			if !yield(a.instantiate(variables, assignment, g)) {
				return
			}

			pos := len(indices) - 1
			for pos >= 0 {
				indices[pos]++
				if indices[pos] < len(domains[pos]) {
					break
				}
				indices[pos] = 0
				pos--
			}
			if pos < 0 {
				return
			}
		}
	}
}

// reachableObjects collects every object reachable from a declared type,
// walking the hierarchy with an explicit work stack to tolerate
// arbitrary depth.
func reachableObjects(typeName string, objects, types map[string][]string) []string {
	var items []string
	stack := []string{typeName}
	for len(stack) > 0 {
		t := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		items = append(items, objects[t]...)
		stack = append(stack, types[t]...)
	}
	return items
}

// instantiate binds assignment values to the schema's variables and
// returns the grounded instance.
func (a *Action) instantiate(variables, assignment []string, g *grounder) *Action {
	binding := make(map[string]string, len(variables))
	for i, v := range variables {
		binding[v] = assignment[i]
	}

	outcomes := make([]Outcome, len(a.Outcomes))
	for i, o := range a.Outcomes {
		outcomes[i] = Outcome{
			Add:  g.substituteEffects(o.Add, binding, assignment),
			Del:  g.substituteEffects(o.Del, binding, assignment),
			Prob: o.Prob,
		}
	}

	grounded := New(a.Name, a.Parameters,
		substitute(a.PositivePreconditions, binding),
		substitute(a.NegativePreconditions, binding),
		outcomes)
	grounded.Arguments = append([]string(nil), assignment...)
	return grounded
}

// substitute replaces variable tokens with their bound values. A token
// is replaced only when it exactly matches a declared parameter name;
// constants pass through unchanged.
func substitute(group state.Set, binding map[string]string) state.Set {
	props := group.Propositions()
	for _, p := range props {
		for i, tok := range p {
			if val, ok := binding[tok]; ok {
				p[i] = val
			}
		}
	}
	return state.NewSet(props...)
}

// substituteEffects substitutes an effect set, routing sentinel
// propositions through the expander registry instead of ordinary
// substitution.
func (g *grounder) substituteEffects(group state.Set, binding map[string]string, assignment []string) state.Set {
	var out []state.Proposition
	for _, p := range group.Propositions() {
		if expand := g.expanders.Get(p.Name()); expand != nil {
			out = append(out, expand(p, assignment, g.adjacency)...)
			continue
		}
		for i, tok := range p {
			if val, ok := binding[tok]; ok {
				p[i] = val
			}
		}
		out = append(out, p)
	}
	return state.NewSet(out...)
}
