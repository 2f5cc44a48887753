package pddl

import "errors"

var (
	// ErrUnsupportedRequirement is returned when a :requirements entry is
	// outside the parser's supported set.
	ErrUnsupportedRequirement = errors.New("pddl: requirement not supported")

	// ErrRedefinition is returned for a duplicate predicate, action, or
	// supertype definition.
	ErrRedefinition = errors.New("pddl: redefinition")

	// ErrMalformedExpression is returned for a bad not/and shape or a
	// non-list where a list is required.
	ErrMalformedExpression = errors.New("pddl: malformed expression")

	// ErrDomainMismatch is returned when a problem references a domain
	// other than the one parsed.
	ErrDomainMismatch = errors.New("pddl: different domain specified in problem")
)
