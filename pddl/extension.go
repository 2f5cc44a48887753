package pddl

import (
	"github.com/pflow-xyz/go-ippddl/action"
	"github.com/pflow-xyz/go-ippddl/sexpr"
)

// ClauseHandler processes an unrecognized clause from a domain or
// problem block. It returns true when it consumed the clause; an
// unconsumed clause is recorded on the parser and ignored.
type ClauseHandler func(p *Parser, keyword string, clause sexpr.List) (bool, error)

// ActionClauseHandler processes an unrecognized clause from an :action
// block after the action has been assembled.
type ActionClauseHandler func(p *Parser, act *action.Action, keyword string, clause sexpr.List) (bool, error)

// EffectHandler parses a dialect-specific :effect form into outcomes.
// It returns consumed=false to fall back to the deterministic default.
type EffectHandler func(p *Parser, actionName string, form sexpr.List) (outcomes []action.Outcome, consumed bool, err error)

// Hooks collects the extension points for grammar dialects. Every field
// may be nil; unrecognized clauses are then recorded non-fatally,
// preserving forward compatibility.
type Hooks struct {
	Domain  ClauseHandler
	Action  ActionClauseHandler
	Problem ClauseHandler
	Effect  EffectHandler
}
