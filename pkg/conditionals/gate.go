package conditionals

import (
	"fmt"
	"regexp"
	"strings"
)

// GateMarker separates the evidence name from its rule in a gated filename.
const GateMarker = "_req_"

const moreToken = "MORE"

var separators = regexp.MustCompile(`[-\s]+`)

// Gate describes the rule embedded in a gated filename, e.g. "NW-0237_req_A-OR-B.png".
type Gate struct {
	Filename string `json:"filename"`
	// RuleText is the text between the marker and the next '.' as written in the filename.
	RuleText string `json:"rule_text"`
	// More marks a one-shot reveal gate. Once opened it stays open while Requirement holds.
	More bool `json:"more"`
	// Requirement is the letter rule left after MORE tokens are stripped. Empty means none.
	Requirement string `json:"requirement"`
	Err         error  `json:"-"`
}

// IsGated reports whether filename carries the gate marker.
func IsGated(filename string) bool {
	return strings.Contains(strings.ToLower(filename), GateMarker)
}

// ParseGate extracts and classifies the gate rule from filename. The second result is false for
// plain evidence. A gated filename whose rule cannot be compiled is returned with Err set.
func ParseGate(filename string) (Gate, bool) {
	idx := strings.Index(strings.ToLower(filename), GateMarker)
	if idx < 0 {
		return Gate{}, false
	}

	g := Gate{Filename: filename}
	rest := filename[idx+len(GateMarker):]
	dot := strings.Index(rest, ".")
	if dot <= 0 {
		g.Err = fmt.Errorf("%w: no rule text in %q", ErrMalformedRule, filename)
		return g, true
	}
	g.RuleText = rest[:dot]

	g.Requirement, g.More = stripMore(Normalize(g.RuleText))
	if g.Requirement != "" {
		if _, err := Compile(g.Requirement); err != nil {
			g.Err = err
		}
	} else if !g.More {
		g.Err = fmt.Errorf("%w: empty rule in %q", ErrMalformedRule, filename)
	}
	return g, true
}

// stripMore removes every standalone MORE token together with one adjoining AND/OR connector,
// preferring the connector before it.
func stripMore(text string) (string, bool) {
	parts := separators.Split(text, -1)
	out := make([]string, 0, len(parts))
	more := false

	for i := 0; i < len(parts); i++ {
		if parts[i] != moreToken {
			if parts[i] != "" {
				out = append(out, parts[i])
			}
			continue
		}
		more = true
		if n := len(out); n > 0 && isConnector(out[n-1]) {
			out = out[:n-1]
			continue
		}
		if i+1 < len(parts) && isConnector(parts[i+1]) {
			i++
		}
	}

	if !more {
		return text, false
	}
	return strings.Join(out, "-"), true
}

func isConnector(s string) bool {
	return s == "AND" || s == "OR"
}

// Requires is the display form of the letter requirement.
func (g Gate) Requires() string {
	return Readable(g.Requirement)
}

// Label is the button text for the gate.
func (g Gate) Label() string {
	if g.More {
		if g.Requirement == "" {
			return "Reveal More"
		}
		return fmt.Sprintf("Reveal More (Requires: %s)", g.Requires())
	}
	return fmt.Sprintf("Open Clue (Requires: %s)", g.Requires())
}

// Satisfied evaluates the letter requirement now. A MORE gate with no requirement is always satisfied.
func (g Gate) Satisfied(facts FactView) (bool, error) {
	if g.Err != nil {
		return false, g.Err
	}
	if g.Requirement == "" {
		return true, nil
	}
	return Evaluate(g.Requirement, facts)
}
