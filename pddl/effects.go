package pddl

import (
	"fmt"
	"strconv"

	"github.com/pflow-xyz/go-ippddl/action"
	"github.com/pflow-xyz/go-ippddl/sexpr"
	"github.com/pflow-xyz/go-ippddl/state"
)

// parseAction assembles an action schema from an :action block.
func (p *Parser) parseAction(group sexpr.List) error {
	if len(group) == 0 {
		return fmt.Errorf("%w: action without name definition", ErrMalformedExpression)
	}
	name, ok := sexpr.IsAtom(group[0])
	if !ok {
		return fmt.Errorf("%w: action without name definition", ErrMalformedExpression)
	}
	for _, existing := range p.Actions {
		if existing.Name == name {
			return fmt.Errorf("%w: action %s", ErrRedefinition, name)
		}
	}

	var (
		params   []action.Parameter
		positive state.Set
		negative state.Set
		outcomes []action.Outcome
		deferred []deferredClause
		err      error
	)

	for i := 1; i < len(group); i++ {
		keyword, ok := sexpr.IsAtom(group[i])
		if !ok {
			return fmt.Errorf("%w: unexpected form in action %s", ErrMalformedExpression, name)
		}
		switch keyword {
		case ":parameters":
			form, ok := listAt(group, i+1)
			if !ok {
				return fmt.Errorf("%w: error with %s parameters", ErrMalformedExpression, name)
			}
			i++
			params, err = parseParameters(form, name)
			if err != nil {
				return err
			}
		case ":precondition":
			if i+1 >= len(group) {
				return fmt.Errorf("%w: error with %s preconditions", ErrMalformedExpression, name)
			}
			i++
			pos, neg, err := splitPredicates(group[i], name+" preconditions")
			if err != nil {
				return err
			}
			positive = state.NewSet(pos...)
			negative = state.NewSet(neg...)
		case ":effect":
			form, ok := listAt(group, i+1)
			if !ok {
				return fmt.Errorf("%w: error with %s effects", ErrMalformedExpression, name)
			}
			i++
			outcomes, err = p.parseEffect(name, form)
			if err != nil {
				return err
			}
		default:
			// Unknown clause: keep the keyword and its form, if any,
			// for the action extension hook.
			clause := deferredClause{keyword: keyword}
			if form, ok := listAt(group, i+1); ok {
				clause.form = form
				i++
			}
			deferred = append(deferred, clause)
		}
	}

	act := action.New(name, params, positive, negative, outcomes)
	for _, clause := range deferred {
		consumed := false
		if p.hooks.Action != nil {
			consumed, err = p.hooks.Action(p, act, clause.keyword, clause.form)
			if err != nil {
				return err
			}
		}
		if !consumed {
			p.Unrecognized = append(p.Unrecognized, clause.keyword)
		}
	}
	p.Actions = append(p.Actions, act)
	return nil
}

type deferredClause struct {
	keyword string
	form    sexpr.List
}

// parseEffect routes an :effect form through the dialect hook, falling
// back to a single deterministic outcome at probability 1.
func (p *Parser) parseEffect(actionName string, form sexpr.List) ([]action.Outcome, error) {
	if p.hooks.Effect != nil {
		outcomes, consumed, err := p.hooks.Effect(p, actionName, form)
		if err != nil {
			return nil, err
		}
		if consumed {
			return outcomes, nil
		}
	}
	pos, neg, err := splitPredicates(form, actionName+" effects")
	if err != nil {
		return nil, err
	}
	return []action.Outcome{{
		Add:  state.NewSet(pos...),
		Del:  state.NewSet(neg...),
		Prob: action.Point(1.0),
	}}, nil
}

// parseProbabilisticEffect is the probabilistic dialect's effect
// handler. A (probabilistic p1 eff1 p2 eff2 ...) form becomes one
// outcome per pair; anything else falls through to the deterministic
// default.
func parseProbabilisticEffect(p *Parser, actionName string, form sexpr.List) ([]action.Outcome, bool, error) {
	if len(form) == 0 {
		return nil, false, nil
	}
	head, ok := sexpr.IsAtom(form[0])
	if !ok || head != "probabilistic" {
		return nil, false, nil
	}
	rest := form[1:]
	if len(rest)%2 != 0 {
		return nil, false, fmt.Errorf("%w: probabilistic effect pairs in %s", ErrMalformedExpression, actionName)
	}

	var outcomes []action.Outcome
	for i := 0; i < len(rest); i += 2 {
		prob, err := parseProbabilitySpec(rest[i], actionName)
		if err != nil {
			return nil, false, err
		}
		pos, neg, err := splitPredicates(rest[i+1], actionName+" effects")
		if err != nil {
			return nil, false, err
		}
		outcomes = append(outcomes, action.Outcome{
			Add:  state.NewSet(pos...),
			Del:  state.NewSet(neg...),
			Prob: prob,
		})
	}
	return outcomes, true, nil
}

// parseProbabilitySpec reads a probability token: a bare number is a
// point value, a two-number list an imprecise interval.
func parseProbabilitySpec(node sexpr.Node, actionName string) (action.Probability, error) {
	if atom, ok := sexpr.IsAtom(node); ok {
		v, err := strconv.ParseFloat(atom, 64)
		if err != nil {
			return action.Probability{}, fmt.Errorf("%w: probability %q in %s", ErrMalformedExpression, atom, actionName)
		}
		return action.Point(v), nil
	}
	form, _ := sexpr.IsList(node)
	if len(form) == 2 {
		low, okLow := sexpr.IsAtom(form[0])
		high, okHigh := sexpr.IsAtom(form[1])
		if okLow && okHigh {
			lo, errLow := strconv.ParseFloat(low, 64)
			hi, errHigh := strconv.ParseFloat(high, 64)
			if errLow == nil && errHigh == nil {
				return action.Interval(lo, hi), nil
			}
		}
	}
	return action.Probability{}, fmt.Errorf("%w: probability spec in %s", ErrMalformedExpression, actionName)
}

// splitPredicates normalizes a proposition or and-conjunction into flat
// positive and negative proposition lists. A not-wrapped proposition
// must have exactly one inner argument.
func splitPredicates(node sexpr.Node, context string) (positive, negative []state.Proposition, err error) {
	group, ok := sexpr.IsList(node)
	if !ok {
		return nil, nil, fmt.Errorf("%w: error with %s", ErrMalformedExpression, context)
	}
	if len(group) == 0 {
		return nil, nil, nil
	}

	items := sexpr.List{node}
	if head, ok := sexpr.IsAtom(group[0]); ok && head == "and" {
		items = group[1:]
	}

	for _, item := range items {
		form, ok := sexpr.IsList(item)
		if !ok || len(form) == 0 {
			return nil, nil, fmt.Errorf("%w: error with %s", ErrMalformedExpression, context)
		}
		if head, ok := sexpr.IsAtom(form[0]); ok && head == "not" {
			if len(form) != 2 {
				return nil, nil, fmt.Errorf("%w: unexpected not in %s", ErrMalformedExpression, context)
			}
			prop, err := propositionOf(form[1], context)
			if err != nil {
				return nil, nil, err
			}
			negative = append(negative, prop)
			continue
		}
		prop, err := propositionOf(item, context)
		if err != nil {
			return nil, nil, err
		}
		positive = append(positive, prop)
	}
	return positive, negative, nil
}

// propositionOf converts a flat list of atoms into a proposition.
func propositionOf(node sexpr.Node, context string) (state.Proposition, error) {
	form, ok := sexpr.IsList(node)
	if !ok || len(form) == 0 {
		return nil, fmt.Errorf("%w: proposition in %s must be a non-empty list", ErrMalformedExpression, context)
	}
	prop := make(state.Proposition, 0, len(form))
	for _, n := range form {
		atom, ok := sexpr.IsAtom(n)
		if !ok {
			return nil, fmt.Errorf("%w: nested list in proposition in %s", ErrMalformedExpression, context)
		}
		prop = append(prop, atom)
	}
	return prop, nil
}

func listAt(group sexpr.List, i int) (sexpr.List, bool) {
	if i >= len(group) {
		return nil, false
	}
	return sexpr.IsList(group[i])
}
