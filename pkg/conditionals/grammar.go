package conditionals

import (
	"fmt"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// ruleLexer tokenizes an uppercased rule. "__" is the group marker; hyphens and spaces separate tokens.
var ruleLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{Name: "Group", Pattern: `__`, Action: nil},
		{Name: "Sep", Pattern: `[-\s]+`, Action: nil},
		{Name: "Word", Pattern: `[A-Z0-9]+`, Action: nil},
	},
})

// orNode is the lowest-precedence production: terms joined by OR.
type orNode struct {
	Terms []*andNode `parser:"@@ ( 'OR' @@ )*"`
}

type andNode struct {
	Factors []*unaryNode `parser:"@@ ( 'AND' @@ )*"`
}

type unaryNode struct {
	Not     *unaryNode   `parser:"  'NOT' @@"`
	Operand *operandNode `parser:"| @@"`
}

type operandNode struct {
	Const  *string `parser:"  @( 'TRUE' | 'FALSE' )"`
	Group  *orNode `parser:"| '__' @@ '__'"`
	Letter *string `parser:"| @Word"`
}

var ruleParser = participle.MustBuild[orNode](
	participle.Lexer(ruleLexer),
	participle.Elide("Sep"),
	participle.UseLookahead(2),
)

var keywords = map[string]bool{
	"AND":   true,
	"OR":    true,
	"NOT":   true,
	"TRUE":  true,
	"FALSE": true,
	"MORE":  true,
}

// parse turns normalized rule text into an expression tree.
func parse(text string) (Expr, error) {
	ast, err := ruleParser.ParseString("", text)
	if err != nil {
		return nil, err
	}
	return buildOr(ast, 0)
}

func buildOr(n *orNode, depth int) (Expr, error) {
	terms := make([]Expr, 0, len(n.Terms))
	for _, t := range n.Terms {
		e, err := buildAnd(t, depth)
		if err != nil {
			return nil, err
		}
		terms = append(terms, e)
	}
	if len(terms) == 1 {
		return terms[0], nil
	}
	return Or(terms), nil
}

func buildAnd(n *andNode, depth int) (Expr, error) {
	factors := make([]Expr, 0, len(n.Factors))
	for _, f := range n.Factors {
		e, err := buildUnary(f, depth)
		if err != nil {
			return nil, err
		}
		factors = append(factors, e)
	}
	if len(factors) == 1 {
		return factors[0], nil
	}
	return And(factors), nil
}

func buildUnary(n *unaryNode, depth int) (Expr, error) {
	if n.Not != nil {
		x, err := buildUnary(n.Not, depth)
		if err != nil {
			return nil, err
		}
		return Not{X: x}, nil
	}
	return buildOperand(n.Operand, depth)
}

func buildOperand(n *operandNode, depth int) (Expr, error) {
	switch {
	case n.Const != nil:
		return Const(*n.Const == "TRUE"), nil
	case n.Group != nil:
		// Markers pair left to right, so a group can never open inside another one.
		if depth > 0 {
			return nil, fmt.Errorf("nested group marker")
		}
		return buildOr(n.Group, depth+1)
	case n.Letter != nil:
		if keywords[*n.Letter] {
			return nil, fmt.Errorf("keyword %s used as a letter", *n.Letter)
		}
		return Literal(*n.Letter), nil
	}
	return nil, fmt.Errorf("empty operand")
}
