package pddl

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/pflow-xyz/go-ippddl/action"
	"github.com/pflow-xyz/go-ippddl/sexpr"
	"github.com/pflow-xyz/go-ippddl/state"
)

func testdata(name string) string {
	return filepath.Join("testdata", name)
}

func atoms(names ...string) sexpr.List {
	list := make(sexpr.List, len(names))
	for i, name := range names {
		list[i] = sexpr.Atom(name)
	}
	return list
}

func TestParseDinnerDomain(t *testing.T) {
	p := New()
	if err := p.ParseDomainFile(testdata("dinner.pddl")); err != nil {
		t.Fatalf("ParseDomainFile failed: %v", err)
	}

	if p.DomainName != "dinner" {
		t.Errorf("Expected domain name dinner, got %s", p.DomainName)
	}
	if len(p.Requirements) != 1 || p.Requirements[0] != ":strips" {
		t.Errorf("Expected requirements [:strips], got %v", p.Requirements)
	}
	if len(p.Types) != 0 {
		t.Errorf("Expected no types, got %v", p.Types)
	}

	wantPreds := []string{"clean", "dinner", "quiet", "present", "garbage"}
	if len(p.Predicates) != len(wantPreds) {
		t.Fatalf("Expected %d predicates, got %d", len(wantPreds), len(p.Predicates))
	}
	for i, name := range wantPreds {
		if p.Predicates[i].Name != name {
			t.Errorf("Predicate %d: expected %s, got %s", i, name, p.Predicates[i].Name)
		}
	}

	if len(p.Actions) != 4 {
		t.Fatalf("Expected 4 actions, got %d", len(p.Actions))
	}
	carry := p.Actions[2]
	if carry.Name != "carry" {
		t.Errorf("Expected action carry, got %s", carry.Name)
	}
	if !carry.PositivePreconditions.Equal(state.NewSet(state.Prop("garbage"))) {
		t.Errorf("Expected precondition (garbage), got %s", carry.PositivePreconditions)
	}
	if len(carry.Outcomes) != 1 {
		t.Fatalf("Expected 1 outcome, got %d", len(carry.Outcomes))
	}
	wantDel := state.NewSet(state.Prop("garbage"), state.Prop("clean"))
	if !carry.Outcomes[0].Del.Equal(wantDel) {
		t.Errorf("Expected del effects %s, got %s", wantDel, carry.Outcomes[0].Del)
	}
	if lo, hi := carry.Outcomes[0].Prob.Bounds(); lo != 1.0 || hi != 1.0 {
		t.Errorf("Expected deterministic probability 1.0, got %s", carry.Outcomes[0].Prob)
	}
}

func TestParseDinnerProblem(t *testing.T) {
	p := New()
	if err := p.ParseDomainFile(testdata("dinner.pddl")); err != nil {
		t.Fatalf("ParseDomainFile failed: %v", err)
	}
	if err := p.ParseProblemFile(testdata("pb1.pddl")); err != nil {
		t.Fatalf("ParseProblemFile failed: %v", err)
	}

	if p.ProblemName != "pb1" {
		t.Errorf("Expected problem name pb1, got %s", p.ProblemName)
	}
	if len(p.Objects) != 0 {
		t.Errorf("Expected no objects, got %v", p.Objects)
	}
	wantInit := state.NewSet(state.Prop("garbage"), state.Prop("clean"), state.Prop("quiet"))
	if !p.Init.Equal(wantInit) {
		t.Errorf("Expected init %s, got %s", wantInit, p.Init)
	}
	wantPos := state.NewSet(state.Prop("dinner"), state.Prop("present"))
	if !p.PositiveGoals.Equal(wantPos) {
		t.Errorf("Expected positive goals %s, got %s", wantPos, p.PositiveGoals)
	}
	wantNeg := state.NewSet(state.Prop("garbage"))
	if !p.NegativeGoals.Equal(wantNeg) {
		t.Errorf("Expected negative goals %s, got %s", wantNeg, p.NegativeGoals)
	}
}

func TestParseProbabilisticDomain(t *testing.T) {
	p := NewProbabilistic()
	if err := p.ParseDomainFile(testdata("gridworld.pddl")); err != nil {
		t.Fatalf("ParseDomainFile failed: %v", err)
	}
	if err := p.ParseProblemFile(testdata("grid1.pddl")); err != nil {
		t.Fatalf("ParseProblemFile failed: %v", err)
	}

	if len(p.Actions) != 1 {
		t.Fatalf("Expected 1 action, got %d", len(p.Actions))
	}
	move := p.Actions[0]
	if len(move.Parameters) != 3 {
		t.Fatalf("Expected 3 parameters, got %d", len(move.Parameters))
	}
	if move.Parameters[1] != (action.Parameter{Name: "?from", Type: "pos"}) {
		t.Errorf("Expected parameter ?from - pos, got %v", move.Parameters[1])
	}
	if len(move.Outcomes) != 2 {
		t.Fatalf("Expected 2 outcomes, got %d", len(move.Outcomes))
	}
	if lo, hi := move.Outcomes[0].Prob.Bounds(); lo != 0.8 || hi != 0.8 {
		t.Errorf("Expected point probability 0.8, got %s", move.Outcomes[0].Prob)
	}
	if !move.Outcomes[1].Prob.IsInterval() {
		t.Errorf("Expected second outcome to carry an interval probability")
	}
	if lo, hi := move.Outcomes[1].Prob.Bounds(); lo != 0.1 || hi != 0.2 {
		t.Errorf("Expected interval [0.1, 0.2], got %s", move.Outcomes[1].Prob)
	}

	wantObjects := map[string][]string{
		"agent": {"ana", "bob"},
		"pos":   {"p1", "p2"},
	}
	for typ, want := range wantObjects {
		got := p.Objects[typ]
		if len(got) != len(want) {
			t.Fatalf("Expected objects %v for %s, got %v", want, typ, got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("Expected objects %v for %s, got %v", want, typ, got)
			}
		}
	}

	// Parsed entities ground and execute end to end.
	count := 0
	for range move.Ground(p.Objects, p.Types) {
		count++
	}
	if count != 8 {
		t.Errorf("Expected 8 grounded instances, got %d", count)
	}
}

func TestParseTypes(t *testing.T) {
	src := `(define (domain typed)
	  (:requirements :typing)
	  (:types
	    place locatable level - object
	    depot market - place
	    truck goods - locatable))`
	p := New()
	if err := p.ParseDomain(src); err != nil {
		t.Fatalf("ParseDomain failed: %v", err)
	}

	want := map[string][]string{
		"object":    {"place", "locatable", "level"},
		"place":     {"depot", "market"},
		"locatable": {"truck", "goods"},
	}
	for super, members := range want {
		got := p.Types[super]
		if len(got) != len(members) {
			t.Fatalf("Expected %v under %s, got %v", members, super, got)
		}
		for i := range members {
			if got[i] != members[i] {
				t.Errorf("Expected %v under %s, got %v", members, super, got)
			}
		}
	}
}

func TestParseUntypedTypesDefaultToObject(t *testing.T) {
	p := New()
	err := BuildHierarchy(atoms("location", "pile", "robot"), p.Types, ":types", true)
	if err != nil {
		t.Fatalf("BuildHierarchy failed: %v", err)
	}
	got := p.Types["object"]
	if len(got) != 3 || got[0] != "location" || got[2] != "robot" {
		t.Errorf("Expected untyped names under object, got %v", got)
	}
}

func TestTypeRedefinitionFails(t *testing.T) {
	// The check fires when a member name is already a supertype key, so
	// b - a must come first to establish a before a is redeclared.
	src := `(define (domain bad)
	  (:types b - a a - c))`
	p := New()
	if err := p.ParseDomain(src); !errors.Is(err, ErrRedefinition) {
		t.Errorf("Expected redefinition error, got %v", err)
	}

	// A repeated member under not-yet-seen supertypes is not a
	// redefinition: only existing keys are checked.
	p = New()
	if err := p.ParseDomain(`(define (domain ok) (:types a - object a - b))`); err != nil {
		t.Errorf("Expected repeated member under new supertypes to parse, got %v", err)
	}
	if got := p.Types["object"]; len(got) != 1 || got[0] != "a" {
		t.Errorf("Expected [a] under object, got %v", got)
	}
	if got := p.Types["b"]; len(got) != 1 || got[0] != "a" {
		t.Errorf("Expected [a] under b, got %v", got)
	}
}

func TestObjectRedefinitionAccumulates(t *testing.T) {
	p := New()
	tokens := atoms(
		"b", "-", "a",
		"a", "-", "a",
		"north", "south", "-", "direction",
		"element1", "-", "object",
		"element2")
	if err := BuildHierarchy(tokens, p.Objects, ":objects", false); err != nil {
		t.Fatalf("BuildHierarchy failed: %v", err)
	}

	if got := p.Objects["a"]; len(got) != 2 || got[0] != "b" || got[1] != "a" {
		t.Errorf("Expected [b a] under a, got %v", got)
	}
	if got := p.Objects["direction"]; len(got) != 2 {
		t.Errorf("Expected [north south] under direction, got %v", got)
	}
	if got := p.Objects["object"]; len(got) != 2 || got[0] != "element1" || got[1] != "element2" {
		t.Errorf("Expected [element1 element2] under object, got %v", got)
	}
}

func TestUnsupportedRequirement(t *testing.T) {
	src := `(define (domain bad) (:requirements :strips :universal-preconditions))`
	p := New()
	if err := p.ParseDomain(src); !errors.Is(err, ErrUnsupportedRequirement) {
		t.Errorf("Expected unsupported requirement error, got %v", err)
	}

	// The probabilistic dialect widens the set, but not arbitrarily.
	pp := NewProbabilistic()
	if err := pp.ParseDomain(`(define (domain ok) (:requirements :probabilistic-effects))`); err != nil {
		t.Errorf("Expected probabilistic requirement accepted, got %v", err)
	}
	pp = NewProbabilistic()
	if err := pp.ParseDomain(src); !errors.Is(err, ErrUnsupportedRequirement) {
		t.Errorf("Expected unsupported requirement error, got %v", err)
	}
}

func TestDuplicatePredicateFails(t *testing.T) {
	src := `(define (domain bad) (:predicates (p ?x) (p ?y)))`
	p := New()
	if err := p.ParseDomain(src); !errors.Is(err, ErrRedefinition) {
		t.Errorf("Expected redefinition error, got %v", err)
	}
}

func TestDuplicateActionFails(t *testing.T) {
	src := `(define (domain bad)
	  (:action go :precondition (a) :effect (b))
	  (:action go :precondition (c) :effect (d)))`
	p := New()
	if err := p.ParseDomain(src); !errors.Is(err, ErrRedefinition) {
		t.Errorf("Expected redefinition error, got %v", err)
	}
}

func TestMalformedNegation(t *testing.T) {
	src := `(define (domain bad)
	  (:action go :precondition (not (a) (b)) :effect (c)))`
	p := New()
	if err := p.ParseDomain(src); !errors.Is(err, ErrMalformedExpression) {
		t.Errorf("Expected malformed expression error, got %v", err)
	}
}

func TestDomainMismatchFails(t *testing.T) {
	p := New()
	if err := p.ParseDomainFile(testdata("dinner.pddl")); err != nil {
		t.Fatalf("ParseDomainFile failed: %v", err)
	}
	src := `(define (problem other) (:domain breakfast))`
	if err := p.ParseProblem(src); !errors.Is(err, ErrDomainMismatch) {
		t.Errorf("Expected domain mismatch error, got %v", err)
	}
}

func TestUnrecognizedClauseIsNonFatal(t *testing.T) {
	src := `(define (domain forward)
	  (:functions (total-cost))
	  (:action go :precondition (a) :effect (b)))`
	p := New()
	if err := p.ParseDomain(src); err != nil {
		t.Fatalf("Expected unrecognized clause to be ignored, got %v", err)
	}
	if len(p.Unrecognized) != 1 || p.Unrecognized[0] != ":functions" {
		t.Errorf("Expected :functions recorded as unrecognized, got %v", p.Unrecognized)
	}
}

func TestDomainHookConsumesClause(t *testing.T) {
	hooked := false
	p := New().WithHooks(Hooks{
		Domain: func(p *Parser, keyword string, clause sexpr.List) (bool, error) {
			hooked = keyword == ":functions"
			return true, nil
		},
	})
	src := `(define (domain forward) (:functions (total-cost)))`
	if err := p.ParseDomain(src); err != nil {
		t.Fatalf("ParseDomain failed: %v", err)
	}
	if !hooked {
		t.Errorf("Expected domain hook to see :functions")
	}
	if len(p.Unrecognized) != 0 {
		t.Errorf("Expected consumed clause not recorded, got %v", p.Unrecognized)
	}
}

func TestEqualityAugmentsInit(t *testing.T) {
	domain := `(define (domain eq)
	  (:requirements :strips :equality)
	  (:predicates (on ?a ?b)))`
	problem := `(define (problem eqp)
	  (:domain eq)
	  (:objects x y)
	  (:init (on x y))
	  (:goal (on y x)))`
	p := New()
	if err := p.ParseDomain(domain); err != nil {
		t.Fatalf("ParseDomain failed: %v", err)
	}
	if err := p.ParseProblem(problem); err != nil {
		t.Fatalf("ParseProblem failed: %v", err)
	}

	want := state.NewSet(
		state.Prop("on", "x", "y"),
		state.Prop("equal", "x", "x"),
		state.Prop("equal", "y", "y"))
	if !p.Init.Equal(want) {
		t.Errorf("Expected init %s, got %s", want, p.Init)
	}
}

func TestPredicateSignatureTypes(t *testing.T) {
	src := `(define (domain sig)
	  (:requirements :typing)
	  (:types agent pos)
	  (:predicates (at ?ag - agent ?p - pos) (flag ?x)))`
	p := New()
	if err := p.ParseDomain(src); err != nil {
		t.Fatalf("ParseDomain failed: %v", err)
	}

	at := p.Predicates[0]
	if at.Arguments[0] != (Argument{Name: "?ag", Type: "agent"}) {
		t.Errorf("Expected ?ag - agent, got %v", at.Arguments[0])
	}
	if at.String() != "(at ?ag - agent ?p - pos)" {
		t.Errorf("Unexpected signature rendering %s", at.String())
	}

	flag := p.Predicates[1]
	if flag.Arguments[0].Type != DefaultType {
		t.Errorf("Expected untyped argument to default to object, got %s", flag.Arguments[0].Type)
	}
}
