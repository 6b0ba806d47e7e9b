package conditionals

import "strings"

// FactView is the minimal view of collected evidence needed to evaluate a rule.
// Only the collected set matters: a removed letter and a never-seen letter look the same.
type FactView interface {
	HasLetter(letter string) bool
}

// Expr is a node of a compiled rule.
type Expr interface {
	Eval(facts FactView) bool
	String() string
}

// Literal is true when the letter is collected.
type Literal string

// Const is a fixed truth value (TRUE / FALSE tokens).
type Const bool

// Not inverts its operand.
type Not struct {
	X Expr
}

// And is true when every operand is true.
type And []Expr

// Or is true when any operand is true.
type Or []Expr

func (l Literal) Eval(facts FactView) bool {
	return facts != nil && facts.HasLetter(string(l))
}

func (l Literal) String() string { return string(l) }

func (c Const) Eval(FactView) bool { return bool(c) }

func (c Const) String() string {
	if c {
		return "TRUE"
	}
	return "FALSE"
}

func (n Not) Eval(facts FactView) bool { return !n.X.Eval(facts) }

func (n Not) String() string {
	switch n.X.(type) {
	case Literal, Const:
		return "NOT " + n.X.String()
	}
	return "NOT (" + n.X.String() + ")"
}

func (a And) Eval(facts FactView) bool {
	for _, e := range a {
		if !e.Eval(facts) {
			return false
		}
	}
	return true
}

func (a And) String() string { return join(a, " AND ") }

func (o Or) Eval(facts FactView) bool {
	for _, e := range o {
		if e.Eval(facts) {
			return true
		}
	}
	return false
}

func (o Or) String() string { return join(o, " OR ") }

func join(exprs []Expr, sep string) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		s := e.String()
		if _, isOr := e.(Or); isOr {
			s = "(" + s + ")"
		}
		parts[i] = s
	}
	return strings.Join(parts, sep)
}

// literals collects every letter token referenced by e.
func literals(e Expr, into map[string]struct{}) {
	switch n := e.(type) {
	case Literal:
		into[string(n)] = struct{}{}
	case Not:
		literals(n.X, into)
	case And:
		for _, x := range n {
			literals(x, into)
		}
	case Or:
		for _, x := range n {
			literals(x, into)
		}
	}
}
