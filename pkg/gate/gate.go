package gate

import (
	"errors"
	"fmt"

	"github.com/jwebster45206/casefile/pkg/conditionals"
)

// ErrNotGated is returned when opening a file that has no gate rule.
var ErrNotGated = errors.New("evidence is not gated")

// Kind classifies a presentation unit.
type Kind string

const (
	KindPlain Kind = "plain"
	KindGated Kind = "gated"
	// KindInert is a gated file whose rule cannot be parsed. It renders without a button.
	KindInert Kind = "inert"
)

// Outcome is the result of trying to open a gate.
type Outcome string

const (
	OutcomeOpened            Outcome = "opened"
	OutcomeRequirementNotMet Outcome = "requirement_not_met"
)

// SessionView is what the resolver reads from the session.
type SessionView interface {
	conditionals.FactView
	IsMoreRevealed(filename string) bool
}

// Session is what opening a gate may change.
type Session interface {
	SessionView
	RecordMoreRevealed(filename string) bool
}

// Unit is one piece of evidence ready for display.
type Unit struct {
	Filename string `json:"filename"`
	Path     string `json:"path,omitempty"`
	Kind     Kind   `json:"kind"`
	Label    string `json:"label,omitempty"`
	Requires string `json:"requires,omitempty"`
	More     bool   `json:"more,omitempty"`
	Open     bool   `json:"open"`
	Error    string `json:"error,omitempty"`
}

// Resolve turns matched filenames into presentation units, keeping their order.
func Resolve(files []string, view SessionView) []Unit {
	units := make([]Unit, 0, len(files))
	for _, f := range files {
		units = append(units, resolveOne(f, view))
	}
	return units
}

func resolveOne(filename string, view SessionView) Unit {
	g, gated := conditionals.ParseGate(filename)
	if !gated {
		return Unit{Filename: filename, Kind: KindPlain, Open: true}
	}
	if g.Err != nil {
		return Unit{Filename: filename, Kind: KindInert, Error: g.Err.Error()}
	}

	u := Unit{
		Filename: filename,
		Kind:     KindGated,
		Label:    g.Label(),
		Requires: g.Requires(),
		More:     g.More,
	}

	// A revealed MORE gate re-gates while its letters are missing and reopens once they return.
	if g.More && view.IsMoreRevealed(filename) {
		ok, err := g.Satisfied(view)
		u.Open = err == nil && ok
	}
	return u
}

// Open tries to open the gate on filename against the facts as they are now.
// An unmet requirement returns OutcomeRequirementNotMet and leaves the session untouched.
func Open(filename string, session Session) (Outcome, error) {
	g, gated := conditionals.ParseGate(filename)
	if !gated {
		return "", fmt.Errorf("%w: %s", ErrNotGated, filename)
	}

	ok, err := g.Satisfied(session)
	if err != nil {
		return "", err
	}
	if !ok {
		return OutcomeRequirementNotMet, nil
	}

	if g.More {
		session.RecordMoreRevealed(filename)
	}
	return OutcomeOpened, nil
}

// Describe returns the readable requirement for filename, used in "not met" messages.
func Describe(filename string) string {
	g, gated := conditionals.ParseGate(filename)
	if !gated || g.Err != nil {
		return ""
	}
	return g.Requires()
}
