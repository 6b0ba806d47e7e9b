package state

import (
	"slices"
	"sort"
	"strings"

	"github.com/jwebster45206/casefile/pkg/lookup"
)

// Session is the persisted state of one player's investigation.
type Session struct {
	Case   string
	Found  Set
	Failed Set
	Facts  FactSet
	// Requirements are letters a player attached to a lead by hand. They are notes only and never
	// gate evidence.
	Requirements map[string][]string
	// MoreRevealed holds filenames whose MORE gate has been opened at least once.
	MoreRevealed Set
	// Displayed is the most recently shown file list, in display order.
	Displayed []string
}

// NewSession returns an empty session.
func NewSession() *Session {
	return &Session{
		Found:        NewSet(),
		Failed:       NewSet(),
		Facts:        NewFactSet(),
		Requirements: make(map[string][]string),
		MoreRevealed: NewSet(),
		Displayed:    make([]string, 0),
	}
}

// SetCase switches the active case.
func (s *Session) SetCase(caseID string) {
	s.Case = caseID
}

// SetDisplayed records the files currently on screen.
func (s *Session) SetDisplayed(files []string) {
	s.Displayed = append(make([]string, 0, len(files)), files...)
}

// RecordLeadFound marks a lead as found. Recording it again changes nothing.
func (s *Session) RecordLeadFound(code string) bool {
	return s.Found.Add(code)
}

// RecordLeadFailed marks a location visit that produced nothing.
func (s *Session) RecordLeadFailed(code string) bool {
	return s.Failed.Add(code)
}

// AddLetter collects a letter. It returns false when the letter was already recorded.
func (s *Session) AddLetter(ch string) (bool, error) {
	return s.Facts.Add(ch)
}

func (s *Session) CrossOutLetter(ch string) error {
	return s.Facts.CrossOut(ch)
}

func (s *Session) RestoreLetter(ch string) error {
	return s.Facts.Restore(ch)
}

// HasLetter implements conditionals.FactView.
func (s *Session) HasLetter(letter string) bool {
	return s.Facts.HasLetter(letter)
}

// AddLeadRequirement attaches a letter note to a lead, keeping the list sorted and unique.
func (s *Session) AddLeadRequirement(lead, ch string) (bool, error) {
	letter, err := NormalizeLetter(ch)
	if err != nil {
		return false, err
	}

	current := s.Requirements[lead]
	if slices.Contains(current, letter) {
		return false, nil
	}
	current = append(current, letter)
	sort.Strings(current)
	s.Requirements[lead] = current
	return true, nil
}

// RemoveLeadRequirement detaches a letter note. Leads left without notes are dropped.
func (s *Session) RemoveLeadRequirement(lead, ch string) bool {
	letter := strings.ToUpper(strings.TrimSpace(ch))
	current := s.Requirements[lead]
	idx := slices.Index(current, letter)
	if idx < 0 {
		return false
	}

	current = slices.Delete(current, idx, idx+1)
	if len(current) == 0 {
		delete(s.Requirements, lead)
	} else {
		s.Requirements[lead] = current
	}
	return true
}

// RecordMoreRevealed remembers that a MORE gate was opened.
func (s *Session) RecordMoreRevealed(filename string) bool {
	return s.MoreRevealed.Add(filename)
}

func (s *Session) IsMoreRevealed(filename string) bool {
	return s.MoreRevealed.Has(filename)
}

// SortedLeads lists found leads by their number, then letters.
func (s *Session) SortedLeads() []string {
	return sortLeads(s.Found)
}

// SortedFails lists failed visits the same way as SortedLeads.
func (s *Session) SortedFails() []string {
	return sortLeads(s.Failed)
}

// SeenLetters is the union of collected and crossed-out letters.
func (s *Session) SeenLetters() []LetterMark {
	return s.Facts.Seen()
}

func (s *Session) LeadCount() int {
	return len(s.Found)
}

func sortLeads(set Set) []string {
	leads := set.Sorted()
	sort.SliceStable(leads, func(i, j int) bool {
		return lookup.CompareLeads(leads[i], leads[j]) < 0
	})
	return leads
}
