package pddl

import (
	"fmt"
	"strings"
)

// Argument is one named, typed parameter of a predicate signature.
type Argument struct {
	Name string
	Type string
}

// Predicate is a declared predicate signature. It documents the
// predicate's arity and argument types; execution never consults it.
type Predicate struct {
	Name      string
	Arguments []Argument
}

// String renders the signature in source form.
func (p *Predicate) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "(%s", p.Name)
	for _, arg := range p.Arguments {
		fmt.Fprintf(&b, " %s - %s", arg.Name, arg.Type)
	}
	b.WriteString(")")
	return b.String()
}
