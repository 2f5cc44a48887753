// Package state provides immutable proposition sets for planning models.
// A world state is a canonically ordered set of ground propositions;
// precondition and effect groups reuse the same set type with variable
// tokens still in place. Sets are value objects: every operation returns
// a fresh set and two sets with the same elements are always equal,
// independent of construction order.
package state

import (
	"sort"
	"strings"
)

// Proposition is a predicate application: the predicate name followed by
// its argument tokens. Arguments may be free variables before grounding
// or object names after.
type Proposition []string

// Prop builds a proposition from a predicate name and arguments.
func Prop(name string, args ...string) Proposition {
	p := make(Proposition, 0, len(args)+1)
	p = append(p, name)
	p = append(p, args...)
	return p
}

// Name returns the predicate name, or "" for an empty proposition.
func (p Proposition) Name() string {
	if len(p) == 0 {
		return ""
	}
	return p[0]
}

// Key returns a stable identity string. Atoms cannot contain whitespace
// or parentheses, so a space join is unambiguous.
func (p Proposition) Key() string {
	return strings.Join(p, " ")
}

// String renders the proposition in source form, e.g. "(at ana p1)".
func (p Proposition) String() string {
	return "(" + p.Key() + ")"
}

// Equal reports whether two propositions are identical.
func (p Proposition) Equal(other Proposition) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// clone returns an independent copy of p.
func (p Proposition) clone() Proposition {
	out := make(Proposition, len(p))
	copy(out, p)
	return out
}

// Set is an immutable set of propositions, held in sorted canonical
// order. The zero value is the empty set.
type Set struct {
	props []Proposition
	index map[string]struct{}
}

// NewSet builds a set from the given propositions, deduplicating and
// sorting them into canonical order.
func NewSet(props ...Proposition) Set {
	index := make(map[string]struct{}, len(props))
	kept := make([]Proposition, 0, len(props))
	for _, p := range props {
		key := p.Key()
		if _, ok := index[key]; ok {
			continue
		}
		index[key] = struct{}{}
		kept = append(kept, p.clone())
	}
	sort.Slice(kept, func(i, j int) bool {
		return kept[i].Key() < kept[j].Key()
	})
	return Set{props: kept, index: index}
}

// Len returns the number of propositions in the set.
func (s Set) Len() int {
	return len(s.props)
}

// Propositions returns the set contents in canonical order.
// The returned slice is a copy.
func (s Set) Propositions() []Proposition {
	out := make([]Proposition, len(s.props))
	for i, p := range s.props {
		out[i] = p.clone()
	}
	return out
}

// Contains reports whether p is in the set.
func (s Set) Contains(p Proposition) bool {
	_, ok := s.index[p.Key()]
	return ok
}

// ContainsAll reports whether every proposition of other is in s.
func (s Set) ContainsAll(other Set) bool {
	if other.Len() > s.Len() {
		return false
	}
	for _, p := range other.props {
		if !s.Contains(p) {
			return false
		}
	}
	return true
}

// Disjoint reports whether s and other share no propositions.
func (s Set) Disjoint(other Set) bool {
	small, large := s, other
	if large.Len() < small.Len() {
		small, large = large, small
	}
	for _, p := range small.props {
		if large.Contains(p) {
			return false
		}
	}
	return true
}

// Union returns a new set containing the propositions of both sets.
func (s Set) Union(other Set) Set {
	merged := make([]Proposition, 0, s.Len()+other.Len())
	merged = append(merged, s.props...)
	merged = append(merged, other.props...)
	return NewSet(merged...)
}

// Difference returns a new set with the propositions of other removed.
func (s Set) Difference(other Set) Set {
	kept := make([]Proposition, 0, s.Len())
	for _, p := range s.props {
		if !other.Contains(p) {
			kept = append(kept, p)
		}
	}
	return NewSet(kept...)
}

// Equal reports whether two sets contain the same propositions.
func (s Set) Equal(other Set) bool {
	if s.Len() != other.Len() {
		return false
	}
	return s.ContainsAll(other)
}

// Key returns a stable identity string for the whole set. Two sets built
// from the same propositions in any order produce the same key.
func (s Set) Key() string {
	keys := make([]string, len(s.props))
	for i, p := range s.props {
		keys[i] = p.Key()
	}
	return strings.Join(keys, "|")
}

// String renders the set in source form.
func (s Set) String() string {
	parts := make([]string, len(s.props))
	for i, p := range s.props {
		parts[i] = p.String()
	}
	return "{" + strings.Join(parts, " ") + "}"
}

// Goal pairs the propositions required true with those required false.
type Goal struct {
	Positive Set
	Negative Set
}

// Satisfied reports whether the goal holds in the given world state.
func (g Goal) Satisfied(world Set) bool {
	return world.ContainsAll(g.Positive) && world.Disjoint(g.Negative)
}
