package manifest

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jwebster45206/casefile/pkg/conditionals"
)

// evidenceName is <LETTERS>-<4 digits><suffix><ext>.
var evidenceName = regexp.MustCompile(`(?i)^[A-Z]+-\d{4,}([^0-9].*)?\.(png|jpe?g)$`)

var singleLetter = regexp.MustCompile(`^[A-Z]$`)

// Validator collects every naming and rule problem in a manifest.
type Validator struct {
	errors []string
}

// Validate checks m and returns an error listing all problems, or nil.
func (v *Validator) Validate(m Manifest) error {
	v.errors = nil

	for _, caseID := range m.Cases() {
		if !v.isStandardCase(caseID) {
			v.addError(fmt.Sprintf("case id '%s' is not one of Case01..Case%02d", caseID, CaseCount))
		}
		seen := make(map[string]bool)
		for _, filename := range m[caseID] {
			if seen[filename] {
				v.addError(fmt.Sprintf("%s: duplicate file %s", caseID, filename))
			}
			seen[filename] = true
			v.validateFile(caseID, filename)
		}
	}

	if len(v.errors) > 0 {
		return fmt.Errorf("manifest has %d problem(s):\n%s", len(v.errors), strings.Join(v.errors, "\n"))
	}
	return nil
}

// Problems returns the messages from the last Validate call.
func (v *Validator) Problems() []string {
	return v.errors
}

func (v *Validator) validateFile(caseID, filename string) {
	if !evidenceName.MatchString(filename) {
		v.addError(fmt.Sprintf("%s: %s does not follow LETTERS-0000<suffix>.<ext>", caseID, filename))
	}

	g, gated := conditionals.ParseGate(filename)
	if !gated {
		return
	}
	if g.Err != nil {
		v.addError(fmt.Sprintf("%s: %s has a bad rule: %v", caseID, filename, g.Err))
		return
	}
	if g.Requirement == "" {
		return
	}

	rule, err := conditionals.Compile(g.Requirement)
	if err != nil {
		v.addError(fmt.Sprintf("%s: %s has a bad rule: %v", caseID, filename, err))
		return
	}
	for _, letter := range rule.Letters() {
		if !singleLetter.MatchString(letter) {
			v.addError(fmt.Sprintf("%s: %s refers to '%s', which players cannot collect", caseID, filename, letter))
		}
	}
}

func (v *Validator) isStandardCase(caseID string) bool {
	for _, id := range CaseIDs() {
		if id == caseID {
			return true
		}
	}
	return false
}

func (v *Validator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}
