package sexpr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnexpectedClose is returned when a ) occurs with no open form.
	ErrUnexpectedClose = errors.New("sexpr: missing open parenthesis")

	// ErrUnbalanced is returned when input ends inside an open form.
	ErrUnbalanced = errors.New("sexpr: missing close parenthesis")

	// ErrMalformed is returned when input is not exactly one top-level form.
	ErrMalformed = errors.New("sexpr: malformed expression")
)

// Node is one element of a scanned expression tree: an Atom or a List.
type Node interface {
	node()
}

// Atom is a single word token.
type Atom string

// List is an ordered parenthesized sequence of nodes.
type List []Node

func (Atom) node() {}
func (List) node() {}

func (a Atom) String() string {
	return string(a)
}

func (l List) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for i, n := range l {
		if i > 0 {
			b.WriteByte(' ')
		}
		switch v := n.(type) {
		case Atom:
			b.WriteString(v.String())
		case List:
			b.WriteString(v.String())
		}
	}
	b.WriteByte(')')
	return b.String()
}

// IsAtom reports whether n is an Atom and returns its literal.
func IsAtom(n Node) (string, bool) {
	a, ok := n.(Atom)
	return string(a), ok
}

// IsList reports whether n is a List.
func IsList(n Node) (List, bool) {
	l, ok := n.(List)
	return l, ok
}

// Scan parses input into its single top-level form. Comments are stripped
// and atoms lowercased. Returns an error for unbalanced parentheses or
// when the input does not contain exactly one top-level list.
func Scan(input string) (List, error) {
	l := NewLexer(input)

	var top []Node
	for {
		tok := l.NextToken()
		switch tok.Type {
		case TokenEOF:
			if len(top) != 1 {
				return nil, fmt.Errorf("%w: expected exactly one top-level form, found %d", ErrMalformed, len(top))
			}
			form, ok := top[0].(List)
			if !ok {
				return nil, fmt.Errorf("%w: top-level form must be a list", ErrMalformed)
			}
			return form, nil
		case TokenRParen:
			return nil, fmt.Errorf("%w at offset %d", ErrUnexpectedClose, tok.Pos)
		case TokenLParen:
			form, err := scanList(l)
			if err != nil {
				return nil, err
			}
			top = append(top, form)
		case TokenAtom:
			top = append(top, Atom(tok.Literal))
		}
	}
}

// scanList consumes tokens after an opening paren up to and including the
// matching close paren, descending into nested forms.
func scanList(l *Lexer) (List, error) {
	list := List{}
	for {
		tok := l.NextToken()
		switch tok.Type {
		case TokenEOF:
			return nil, ErrUnbalanced
		case TokenRParen:
			return list, nil
		case TokenLParen:
			inner, err := scanList(l)
			if err != nil {
				return nil, err
			}
			list = append(list, inner)
		case TokenAtom:
			list = append(list, Atom(tok.Literal))
		}
	}
}
