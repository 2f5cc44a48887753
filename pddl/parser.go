// Package pddl parses planning domain and problem definitions into
// executable model entities: type and object hierarchies, predicate
// signatures, action schemas, the initial state, and goals. The base
// grammar is deterministic STRIPS with typing; probabilistic dialect
// extensions attach through hooks.
package pddl

import (
	"fmt"
	"os"

	"github.com/pflow-xyz/go-ippddl/action"
	"github.com/pflow-xyz/go-ippddl/sexpr"
	"github.com/pflow-xyz/go-ippddl/state"
)

// BaseRequirements is the fixed set of capability flags the base parser
// accepts; anything else in :requirements is a hard error.
var BaseRequirements = []string{
	":strips", ":negative-preconditions", ":typing", ":equality", ":rewards",
}

// ProbabilisticRequirements widens the base set for the probabilistic
// dialect.
var ProbabilisticRequirements = []string{
	":probabilistic-effects", ":conditional-effects",
}

// Parser builds domain and problem entities from definition text.
// Parse a domain before its problem; the problem parse checks the
// domain name and accumulates objects alongside domain constants.
type Parser struct {
	DomainName   string
	Requirements []string
	Types        map[string][]string
	Objects      map[string][]string
	Predicates   []*Predicate
	Actions      []*action.Action

	ProblemName   string
	Init          state.Set
	PositiveGoals state.Set
	NegativeGoals state.Set

	// Unrecognized records clause keywords no handler consumed.
	// They are reported here rather than failing the parse.
	Unrecognized []string

	hooks     Hooks
	supported map[string]bool
}

// New creates a parser for the deterministic base grammar.
func New() *Parser {
	p := &Parser{
		Types:     make(map[string][]string),
		Objects:   make(map[string][]string),
		supported: make(map[string]bool),
	}
	for _, req := range BaseRequirements {
		p.supported[req] = true
	}
	return p
}

// NewProbabilistic creates a parser for the probabilistic dialect:
// probabilistic effect forms are parsed into weighted outcomes and the
// supported requirement set is widened accordingly.
func NewProbabilistic() *Parser {
	p := New()
	for _, req := range ProbabilisticRequirements {
		p.supported[req] = true
	}
	p.hooks.Effect = parseProbabilisticEffect
	return p
}

// WithHooks installs dialect extension hooks and returns the parser.
func (p *Parser) WithHooks(hooks Hooks) *Parser {
	p.hooks = hooks
	return p
}

// SupportRequirement adds a capability flag to the supported set.
func (p *Parser) SupportRequirement(req string) {
	p.supported[req] = true
}

// ParseDomainFile parses a domain definition from a file.
func (p *Parser) ParseDomainFile(path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading domain: %w", err)
	}
	return p.ParseDomain(string(src))
}

// ParseDomain parses a domain definition from source text.
func (p *Parser) ParseDomain(src string) error {
	form, err := sexpr.Scan(src)
	if err != nil {
		return err
	}
	if len(form) == 0 {
		return fmt.Errorf("%w: empty define form", ErrMalformedExpression)
	}
	if head, ok := sexpr.IsAtom(form[0]); !ok || head != "define" {
		return fmt.Errorf("%w: input does not match domain pattern", ErrMalformedExpression)
	}

	p.DomainName = ""
	p.Requirements = nil
	p.Predicates = nil
	p.Actions = nil

	for _, node := range form[1:] {
		group, ok := sexpr.IsList(node)
		if !ok || len(group) == 0 {
			return fmt.Errorf("%w: domain clause must be a non-empty list", ErrMalformedExpression)
		}
		keyword, ok := sexpr.IsAtom(group[0])
		if !ok {
			return fmt.Errorf("%w: domain clause must start with a keyword", ErrMalformedExpression)
		}

		switch keyword {
		case "domain":
			name, ok := atomAt(group, 1)
			if !ok {
				return fmt.Errorf("%w: domain clause missing name", ErrMalformedExpression)
			}
			p.DomainName = name
		case ":requirements":
			if err := p.parseRequirements(group[1:]); err != nil {
				return err
			}
		case ":constants":
			if err := BuildHierarchy(group[1:], p.Objects, keyword, false); err != nil {
				return err
			}
		case ":predicates":
			if err := p.parsePredicates(group[1:]); err != nil {
				return err
			}
		case ":types":
			if err := BuildHierarchy(group[1:], p.Types, keyword, true); err != nil {
				return err
			}
		case ":action":
			if err := p.parseAction(group[1:]); err != nil {
				return err
			}
		default:
			if err := p.handleUnrecognized(p.hooks.Domain, keyword, group); err != nil {
				return err
			}
		}
	}
	return nil
}

// ParseProblemFile parses a problem definition from a file.
func (p *Parser) ParseProblemFile(path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading problem: %w", err)
	}
	return p.ParseProblem(string(src))
}

// ParseProblem parses a problem definition from source text. The
// referenced :domain must match the already-parsed domain name.
func (p *Parser) ParseProblem(src string) error {
	form, err := sexpr.Scan(src)
	if err != nil {
		return err
	}
	if len(form) == 0 {
		return fmt.Errorf("%w: empty define form", ErrMalformedExpression)
	}
	if head, ok := sexpr.IsAtom(form[0]); !ok || head != "define" {
		return fmt.Errorf("%w: input does not match problem pattern", ErrMalformedExpression)
	}

	p.ProblemName = ""
	p.Init = state.Set{}
	p.PositiveGoals = state.Set{}
	p.NegativeGoals = state.Set{}

	for _, node := range form[1:] {
		group, ok := sexpr.IsList(node)
		if !ok || len(group) == 0 {
			return fmt.Errorf("%w: problem clause must be a non-empty list", ErrMalformedExpression)
		}
		keyword, ok := sexpr.IsAtom(group[0])
		if !ok {
			return fmt.Errorf("%w: problem clause must start with a keyword", ErrMalformedExpression)
		}

		switch keyword {
		case "problem":
			name, ok := atomAt(group, 1)
			if !ok {
				return fmt.Errorf("%w: problem clause missing name", ErrMalformedExpression)
			}
			p.ProblemName = name
		case ":domain":
			name, ok := atomAt(group, 1)
			if !ok || name != p.DomainName {
				return fmt.Errorf("%w: %q", ErrDomainMismatch, name)
			}
		case ":requirements":
			// Requirements are validated in the domain, not here.
		case ":objects":
			if err := BuildHierarchy(group[1:], p.Objects, keyword, false); err != nil {
				return err
			}
		case ":init":
			if err := p.parseInit(group[1:]); err != nil {
				return err
			}
		case ":goal":
			if len(group) < 2 {
				return fmt.Errorf("%w: :goal clause missing expression", ErrMalformedExpression)
			}
			pos, neg, err := splitPredicates(group[1], "goals")
			if err != nil {
				return err
			}
			p.PositiveGoals = state.NewSet(pos...)
			p.NegativeGoals = state.NewSet(neg...)
		default:
			if err := p.handleUnrecognized(p.hooks.Problem, keyword, group); err != nil {
				return err
			}
		}
	}
	return nil
}

// Goal returns the parsed goal sets as a single value.
func (p *Parser) Goal() state.Goal {
	return state.Goal{Positive: p.PositiveGoals, Negative: p.NegativeGoals}
}

// RequiresEquality reports whether the parsed domain declared :equality.
func (p *Parser) RequiresEquality() bool {
	for _, req := range p.Requirements {
		if req == ":equality" {
			return true
		}
	}
	return false
}

func (p *Parser) parseRequirements(group sexpr.List) error {
	for _, node := range group {
		req, ok := sexpr.IsAtom(node)
		if !ok {
			return fmt.Errorf("%w: requirement must be a name", ErrMalformedExpression)
		}
		if !p.supported[req] {
			return fmt.Errorf("%w: %s", ErrUnsupportedRequirement, req)
		}
		p.Requirements = append(p.Requirements, req)
	}
	return nil
}

func (p *Parser) parsePredicates(group sexpr.List) error {
	for _, node := range group {
		form, ok := sexpr.IsList(node)
		if !ok || len(form) == 0 {
			return fmt.Errorf("%w: predicate declaration must be a non-empty list", ErrMalformedExpression)
		}
		name, ok := sexpr.IsAtom(form[0])
		if !ok {
			return fmt.Errorf("%w: predicate name must be an atom", ErrMalformedExpression)
		}
		for _, existing := range p.Predicates {
			if existing.Name == name {
				return fmt.Errorf("%w: predicate %s", ErrRedefinition, name)
			}
		}
		args, err := parseTypedArguments(form[1:], "predicate "+name)
		if err != nil {
			return err
		}
		p.Predicates = append(p.Predicates, &Predicate{Name: name, Arguments: args})
	}
	return nil
}

// parseInit builds the initial state. With :equality declared, a
// reflexive equal proposition is added for every known object.
func (p *Parser) parseInit(group sexpr.List) error {
	var props []state.Proposition
	for _, node := range group {
		prop, err := propositionOf(node, ":init")
		if err != nil {
			return err
		}
		props = append(props, prop)
	}
	if p.RequiresEquality() {
		for _, objs := range p.Objects {
			for _, obj := range objs {
				props = append(props, state.Prop("equal", obj, obj))
			}
		}
	}
	p.Init = state.NewSet(props...)
	return nil
}

func (p *Parser) handleUnrecognized(hook ClauseHandler, keyword string, clause sexpr.List) error {
	if hook != nil {
		consumed, err := hook(p, keyword, clause)
		if err != nil {
			return err
		}
		if consumed {
			return nil
		}
	}
	p.Unrecognized = append(p.Unrecognized, keyword)
	return nil
}

func atomAt(group sexpr.List, i int) (string, bool) {
	if i >= len(group) {
		return "", false
	}
	return sexpr.IsAtom(group[i])
}
