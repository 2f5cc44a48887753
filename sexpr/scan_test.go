package sexpr

import (
	"errors"
	"testing"
)

func TestScanNested(t *testing.T) {
	input := `
	; a small domain
	(define (domain Dinner)
	  (:requirements :strips)
	  (:action cook :precondition (clean) :effect (dinner)))
	`
	form, err := Scan(input)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	want := "(define (domain dinner) (:requirements :strips) (:action cook :precondition (clean) :effect (dinner)))"
	if form.String() != want {
		t.Errorf("Expected %s, got %s", want, form.String())
	}
}

func TestScanCaseNormalization(t *testing.T) {
	form, err := Scan("(Define (DOMAIN Mixed-Case))")
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if form.String() != "(define (domain mixed-case))" {
		t.Errorf("Expected lowercased atoms, got %s", form.String())
	}
}

func TestScanCommentToEndOfLine(t *testing.T) {
	form, err := Scan("(a ; comment (ignored)\n b)")
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if form.String() != "(a b)" {
		t.Errorf("Expected (a b), got %s", form.String())
	}
}

func TestScanErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"missing close paren", "(a (b c)", ErrUnbalanced},
		{"missing open paren", "(a b))", ErrUnexpectedClose},
		{"close without open", ")", ErrUnexpectedClose},
		{"two top-level forms", "(a) (b)", ErrMalformed},
		{"bare atom", "a", ErrMalformed},
		{"empty input", "", ErrMalformed},
		{"comment only", "; nothing here", ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Scan(tt.input)
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected error %v, got %v", tt.want, err)
			}
		})
	}
}

func TestScanEmptyList(t *testing.T) {
	form, err := Scan("(and ())")
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(form) != 2 {
		t.Fatalf("Expected 2 elements, got %d", len(form))
	}
	inner, ok := IsList(form[1])
	if !ok || len(inner) != 0 {
		t.Errorf("Expected empty inner list, got %v", form[1])
	}
}

func TestLexerTokens(t *testing.T) {
	l := NewLexer("(at ?ag P1)")
	want := []Token{
		{Type: TokenLParen, Literal: "(", Pos: 0},
		{Type: TokenAtom, Literal: "at", Pos: 1},
		{Type: TokenAtom, Literal: "?ag", Pos: 4},
		{Type: TokenAtom, Literal: "p1", Pos: 8},
		{Type: TokenRParen, Literal: ")", Pos: 10},
		{Type: TokenEOF, Pos: 11},
	}
	for i, w := range want {
		got := l.NextToken()
		if got != w {
			t.Errorf("Token %d: expected %v, got %v", i, w, got)
		}
	}
}
