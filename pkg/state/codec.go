package state

import (
	"encoding/json"
	"errors"

	"github.com/tidwall/gjson"
)

// ErrCorruptState is returned when a saved blob is not valid JSON.
var ErrCorruptState = errors.New("saved session is not valid JSON")

// blob is the persisted shape of a Session.
type blob struct {
	Case           string              `json:"case"`
	Leads          []string            `json:"leads"`
	Letters        []string            `json:"letters"`
	RemovedLetters []string            `json:"removedLetters"`
	Images         []string            `json:"images"`
	Reqs           map[string][]string `json:"reqs"`
	Fails          []string            `json:"fails"`
	MoreRevealed   []string            `json:"moreRevealed"`
}

// Marshal encodes the session as the saved blob.
func (s *Session) Marshal() ([]byte, error) {
	reqs := make(map[string][]string, len(s.Requirements))
	for lead, letters := range s.Requirements {
		reqs[lead] = append(make([]string, 0, len(letters)), letters...)
	}

	return json.Marshal(blob{
		Case:           s.Case,
		Leads:          s.Found.Sorted(),
		Letters:        s.Facts.Collected.Sorted(),
		RemovedLetters: s.Facts.Removed.Sorted(),
		Images:         append(make([]string, 0, len(s.Displayed)), s.Displayed...),
		Reqs:           reqs,
		Fails:          s.Failed.Sorted(),
		MoreRevealed:   s.MoreRevealed.Sorted(),
	})
}

// MarshalJSON implements json.Marshaler.
func (s *Session) MarshalJSON() ([]byte, error) {
	return s.Marshal()
}

// UnmarshalJSON implements json.Unmarshaler with the same leniency as Unmarshal.
func (s *Session) UnmarshalJSON(data []byte) error {
	decoded, err := Unmarshal(data)
	if err != nil {
		return err
	}
	*s = *decoded
	return nil
}

// Unmarshal decodes a saved blob. Each field is read on its own: missing or wrongly typed fields
// fall back to empty values and unknown fields are ignored. Only invalid JSON is an error.
func Unmarshal(data []byte) (*Session, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrCorruptState
	}

	doc := gjson.ParseBytes(data)
	s := NewSession()
	if !doc.IsObject() {
		return s, nil
	}

	if c := doc.Get("case"); c.Type == gjson.String {
		s.Case = c.String()
	}
	for _, lead := range stringList(doc.Get("leads")) {
		s.Found.Add(lead)
	}
	for _, lead := range stringList(doc.Get("fails")) {
		s.Failed.Add(lead)
	}
	for _, l := range stringList(doc.Get("removedLetters")) {
		if letter, err := NormalizeLetter(l); err == nil {
			s.Facts.Removed.Add(letter)
		}
	}
	for _, l := range stringList(doc.Get("letters")) {
		if letter, err := NormalizeLetter(l); err == nil {
			s.Facts.Removed.Remove(letter)
			s.Facts.Collected.Add(letter)
		}
	}
	s.Displayed = stringList(doc.Get("images"))
	for _, f := range stringList(doc.Get("moreRevealed")) {
		s.MoreRevealed.Add(f)
	}

	if reqs := doc.Get("reqs"); reqs.IsObject() {
		reqs.ForEach(func(lead, letters gjson.Result) bool {
			for _, l := range stringList(letters) {
				_, _ = s.AddLeadRequirement(lead.String(), l)
			}
			return true
		})
	}

	return s, nil
}

// stringList returns the string elements of a JSON array, skipping anything else.
func stringList(r gjson.Result) []string {
	out := make([]string, 0)
	if !r.IsArray() {
		return out
	}
	for _, item := range r.Array() {
		if item.Type == gjson.String {
			out = append(out, item.String())
		}
	}
	return out
}
