package conditionals

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrMalformedRule marks a gate rule that cannot be parsed. It points at a manifest authoring
// defect, not a player mistake.
var ErrMalformedRule = errors.New("malformed rule")

// Rule is a compiled gate rule.
type Rule struct {
	Source string `json:"source"`
	Expr   Expr   `json:"-"`
}

type compiled struct {
	rule *Rule
	err  error
}

// Rules are tied to static filenames, so each distinct text is parsed once per process.
var cache = struct {
	sync.RWMutex
	entries map[string]compiled
}{entries: make(map[string]compiled)}

// Normalize uppercases and trims rule text.
func Normalize(rule string) string {
	return strings.ToUpper(strings.TrimSpace(rule))
}

// Compile parses rule text into a Rule, reusing a cached result when the same text was seen before.
func Compile(rule string) (*Rule, error) {
	text := Normalize(rule)

	cache.RLock()
	c, ok := cache.entries[text]
	cache.RUnlock()
	if ok {
		return c.rule, c.err
	}

	c = compile(text)

	cache.Lock()
	cache.entries[text] = c
	cache.Unlock()

	return c.rule, c.err
}

func compile(text string) compiled {
	if text == "" {
		return compiled{err: fmt.Errorf("%w: empty rule", ErrMalformedRule)}
	}
	if strings.Count(text, "__")%2 != 0 {
		return compiled{err: fmt.Errorf("%w: unbalanced group markers in %q", ErrMalformedRule, text)}
	}

	expr, err := parse(text)
	if err != nil {
		return compiled{err: fmt.Errorf("%w: %q: %v", ErrMalformedRule, text, err)}
	}
	return compiled{rule: &Rule{Source: text, Expr: expr}}
}

// Eval evaluates the rule against the collected facts.
func (r *Rule) Eval(facts FactView) bool {
	return r.Expr.Eval(facts)
}

// Letters returns the distinct letter tokens the rule refers to, sorted.
func (r *Rule) Letters() []string {
	set := make(map[string]struct{})
	literals(r.Expr, set)

	out := make([]string, 0, len(set))
	for l := range set {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// Readable renders the rule for display.
func (r *Rule) Readable() string {
	return Readable(r.Source)
}

// Evaluate compiles rule and evaluates it against facts.
func Evaluate(rule string, facts FactView) (bool, error) {
	r, err := Compile(rule)
	if err != nil {
		return false, err
	}
	return r.Eval(facts), nil
}

// Readable converts group markers alternately to "(" and ")" from left to right and turns the
// remaining hyphens into spaces: "__A-OR-B__-AND-C" reads "(A OR B) AND C".
func Readable(rule string) string {
	var out strings.Builder
	open := true
	for i := 0; i < len(rule); i++ {
		switch {
		case rule[i] == '_' && i+1 < len(rule) && rule[i+1] == '_':
			if open {
				out.WriteByte('(')
			} else {
				out.WriteByte(')')
			}
			open = !open
			i++
		case rule[i] == '-':
			out.WriteByte(' ')
		default:
			out.WriteByte(rule[i])
		}
	}
	return out.String()
}
