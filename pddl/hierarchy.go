package pddl

import (
	"fmt"

	"github.com/pflow-xyz/go-ippddl/action"
	"github.com/pflow-xyz/go-ippddl/sexpr"
)

// DefaultType is the implicit supertype absorbing untyped entries.
const DefaultType = "object"

// BuildHierarchy scans a flat hyphen-delimited token group into
// structure, mapping each supertype to its member names. Names before a
// hyphen belong to the supertype following it; names left over at the
// end fall under the implicit object supertype. When redefineChecked is
// set, a member name that is already a supertype key is a hard error.
//
// The same routine serves :types, :objects, and :constants; only the
// redefinition flag and target structure differ.
func BuildHierarchy(tokens sexpr.List, structure map[string][]string, context string, redefineChecked bool) error {
	var pending []string
	for i := 0; i < len(tokens); i++ {
		name, ok := sexpr.IsAtom(tokens[i])
		if !ok {
			return fmt.Errorf("%w: unexpected list in %s", ErrMalformedExpression, context)
		}
		if name == "-" {
			if len(pending) == 0 {
				return fmt.Errorf("%w: unexpected hyphen in %s", ErrMalformedExpression, context)
			}
			i++
			if i >= len(tokens) {
				return fmt.Errorf("%w: hyphen without supertype in %s", ErrMalformedExpression, context)
			}
			super, ok := sexpr.IsAtom(tokens[i])
			if !ok {
				return fmt.Errorf("%w: supertype must be a name in %s", ErrMalformedExpression, context)
			}
			structure[super] = append(structure[super], pending...)
			pending = nil
			continue
		}
		if redefineChecked {
			if _, exists := structure[name]; exists {
				return fmt.Errorf("%w: supertype of %s in %s", ErrRedefinition, name, context)
			}
		}
		pending = append(pending, name)
	}
	if len(pending) > 0 {
		structure[DefaultType] = append(structure[DefaultType], pending...)
	}
	return nil
}

// parseTypedArguments scans a hyphen-delimited name/type group into an
// ordered argument list, defaulting untyped names to object. Used for
// predicate signatures and action parameters.
func parseTypedArguments(tokens sexpr.List, context string) ([]Argument, error) {
	var args []Argument
	var pending []string
	flush := func(typ string) {
		for _, name := range pending {
			args = append(args, Argument{Name: name, Type: typ})
		}
		pending = nil
	}
	for i := 0; i < len(tokens); i++ {
		name, ok := sexpr.IsAtom(tokens[i])
		if !ok {
			return nil, fmt.Errorf("%w: unexpected list in %s", ErrMalformedExpression, context)
		}
		if name == "-" {
			if len(pending) == 0 {
				return nil, fmt.Errorf("%w: unexpected hyphen in %s", ErrMalformedExpression, context)
			}
			i++
			if i >= len(tokens) {
				return nil, fmt.Errorf("%w: hyphen without type in %s", ErrMalformedExpression, context)
			}
			typ, ok := sexpr.IsAtom(tokens[i])
			if !ok {
				return nil, fmt.Errorf("%w: type must be a name in %s", ErrMalformedExpression, context)
			}
			flush(typ)
			continue
		}
		pending = append(pending, name)
	}
	flush(DefaultType)
	return args, nil
}

// parseParameters scans an action's :parameters group into typed
// parameters in declaration order.
func parseParameters(tokens sexpr.List, actionName string) ([]action.Parameter, error) {
	args, err := parseTypedArguments(tokens, actionName+" parameters")
	if err != nil {
		return nil, err
	}
	params := make([]action.Parameter, len(args))
	for i, arg := range args {
		params[i] = action.Parameter{Name: arg.Name, Type: arg.Type}
	}
	return params, nil
}
