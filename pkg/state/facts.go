package state

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidLetter is returned for anything other than a single letter A-Z.
	ErrInvalidLetter = errors.New("please enter a single letter A-Z")
	// ErrUnknownLetter is returned when crossing out or restoring a letter that was never added.
	ErrUnknownLetter = errors.New("letter has not been recorded")
)

// FactSet holds the letters the player collected and the ones they crossed out.
// A letter is in at most one of the two sets.
type FactSet struct {
	Collected Set
	Removed   Set
}

// NewFactSet returns an empty FactSet.
func NewFactSet() FactSet {
	return FactSet{Collected: NewSet(), Removed: NewSet()}
}

// NormalizeLetter uppercases and validates a single letter.
func NormalizeLetter(ch string) (string, error) {
	letter := strings.ToUpper(strings.TrimSpace(ch))
	if len(letter) != 1 || letter[0] < 'A' || letter[0] > 'Z' {
		return "", fmt.Errorf("%w: %q", ErrInvalidLetter, ch)
	}
	return letter, nil
}

// HasLetter reports whether letter is collected. Removed letters count as absent.
func (f FactSet) HasLetter(letter string) bool {
	return f.Collected.Has(strings.ToUpper(letter))
}

// Add collects a letter. It returns false when the letter was already collected.
func (f FactSet) Add(ch string) (bool, error) {
	letter, err := NormalizeLetter(ch)
	if err != nil {
		return false, err
	}
	f.Removed.Remove(letter)
	return f.Collected.Add(letter), nil
}

// CrossOut moves a collected letter to the removed set.
func (f FactSet) CrossOut(ch string) error {
	letter, err := NormalizeLetter(ch)
	if err != nil {
		return err
	}
	if f.Removed.Has(letter) {
		return nil
	}
	if !f.Collected.Remove(letter) {
		return fmt.Errorf("%w: %s", ErrUnknownLetter, letter)
	}
	f.Removed.Add(letter)
	return nil
}

// Restore moves a crossed-out letter back to the collected set.
func (f FactSet) Restore(ch string) error {
	letter, err := NormalizeLetter(ch)
	if err != nil {
		return err
	}
	if f.Collected.Has(letter) {
		return nil
	}
	if !f.Removed.Remove(letter) {
		return fmt.Errorf("%w: %s", ErrUnknownLetter, letter)
	}
	f.Collected.Add(letter)
	return nil
}

// LetterMark is one entry of the letters panel.
type LetterMark struct {
	Letter  string `json:"letter"`
	Removed bool   `json:"removed"`
}

// Seen lists every letter ever added, collected or crossed out, sorted.
func (f FactSet) Seen() []LetterMark {
	all := NewSet()
	for l := range f.Collected {
		all.Add(l)
	}
	for l := range f.Removed {
		all.Add(l)
	}

	marks := make([]LetterMark, 0, len(all))
	for _, l := range all.Sorted() {
		marks = append(marks, LetterMark{Letter: l, Removed: f.Removed.Has(l)})
	}
	return marks
}
