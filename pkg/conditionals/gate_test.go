package conditionals

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGate(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		gated       bool
		ruleText    string
		more        bool
		requirement string
		label       string
		malformed   bool
	}{
		{
			name:     "plain evidence",
			filename: "NW-0237.png",
		},
		{
			name:        "or rule",
			filename:    "NW-0237_req_A-OR-B.png",
			gated:       true,
			ruleText:    "A-OR-B",
			requirement: "A-OR-B",
			label:       "Open Clue (Requires: A OR B)",
		},
		{
			name:        "marker case insensitive",
			filename:    "nw-0237_REQ_a-and-b.jpg",
			gated:       true,
			ruleText:    "a-and-b",
			requirement: "A-AND-B",
			label:       "Open Clue (Requires: A AND B)",
		},
		{
			name:        "grouped rule",
			filename:    "NW-0237b_req___A-OR-B__-AND-C.png",
			gated:       true,
			ruleText:    "__A-OR-B__-AND-C",
			requirement: "__A-OR-B__-AND-C",
			label:       "Open Clue (Requires: (A OR B) AND C)",
		},
		{
			name:     "more only",
			filename: "NW-0237_req_MORE.png",
			gated:    true,
			ruleText: "MORE",
			more:     true,
			label:    "Reveal More",
		},
		{
			name:        "more with trailing requirement",
			filename:    "NW-0237_req_A-AND-MORE.png",
			gated:       true,
			ruleText:    "A-AND-MORE",
			more:        true,
			requirement: "A",
			label:       "Reveal More (Requires: A)",
		},
		{
			name:        "more with leading connector",
			filename:    "NW-0237_req_MORE-OR-__A-AND-B__.png",
			gated:       true,
			ruleText:    "MORE-OR-__A-AND-B__",
			more:        true,
			requirement: "__A-AND-B__",
			label:       "Reveal More (Requires: (A AND B))",
		},
		{
			name:        "more is a whole word only",
			filename:    "NW-0237_req_MOREX.png",
			gated:       true,
			ruleText:    "MOREX",
			requirement: "MOREX",
			label:       "Open Clue (Requires: MOREX)",
		},
		{
			name:      "unbalanced groups",
			filename:  "NW-0237_req___A-OR-B.png",
			gated:     true,
			ruleText:  "__A-OR-B",
			malformed: true,
		},
		{
			name:      "no extension after marker",
			filename:  "NW-0237_req_A",
			gated:     true,
			malformed: true,
		},
		{
			name:      "empty rule",
			filename:  "NW-0237_req_.png",
			gated:     true,
			malformed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, gated := ParseGate(tt.filename)
			assert.Equal(t, tt.gated, gated)
			assert.Equal(t, tt.gated, IsGated(tt.filename))
			if !gated {
				return
			}
			if tt.malformed {
				assert.True(t, errors.Is(g.Err, ErrMalformedRule), "expected malformed, got %v", g.Err)
				return
			}
			require.NoError(t, g.Err)
			assert.Equal(t, tt.ruleText, g.RuleText)
			assert.Equal(t, tt.more, g.More)
			assert.Equal(t, tt.requirement, g.Requirement)
			assert.Equal(t, tt.label, g.Label())
		})
	}
}

func TestGate_Satisfied(t *testing.T) {
	g, _ := ParseGate("NW-0237_req_A-OR-B.png")

	ok, err := g.Satisfied(facts("A"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = g.Satisfied(facts())
	require.NoError(t, err)
	assert.False(t, ok)

	more, _ := ParseGate("NW-0237_req_MORE.png")
	ok, err = more.Satisfied(facts())
	require.NoError(t, err)
	assert.True(t, ok)

	bad, _ := ParseGate("NW-0237_req___A.png")
	_, err = bad.Satisfied(facts("A"))
	assert.ErrorIs(t, err, ErrMalformedRule)
}
