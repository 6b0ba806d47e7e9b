package lookup

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrInvalidFormat is returned when a query is neither <digits><letters> nor <letters><digits>.
var ErrInvalidFormat = errors.New("invalid location format")

// PadWidth is the width the digit run is zero-padded to in manifest filenames.
const PadWidth = 4

var (
	digitsFirst  = regexp.MustCompile(`^(\d+)([A-Z]+)$`)
	lettersFirst = regexp.MustCompile(`^([A-Z]+)(\d+)$`)
	upper        = cases.Upper(language.Und)
)

// Query is a parsed location entry. Both surface forms ("237NW", "NW237") produce the same Query.
type Query struct {
	Number  string `json:"number"`
	Letters string `json:"letters"`
}

// ParseQuery normalizes raw input and splits it into its digit and letter runs.
func ParseQuery(raw string) (Query, error) {
	input := upper.String(strings.TrimSpace(raw))
	if input == "" {
		return Query{}, fmt.Errorf("%w: empty query", ErrInvalidFormat)
	}

	if m := digitsFirst.FindStringSubmatch(input); m != nil {
		return Query{Number: m[1], Letters: m[2]}, nil
	}
	if m := lettersFirst.FindStringSubmatch(input); m != nil {
		return Query{Number: m[2], Letters: m[1]}, nil
	}
	return Query{}, fmt.Errorf("%w: %q", ErrInvalidFormat, raw)
}

// LeadCode is the canonical identity of the location: unpadded digits followed by letters.
func (q Query) LeadCode() string {
	return q.Number + q.Letters
}

// Prefix is the manifest filename prefix for the location, e.g. "NW-0237".
func (q Query) Prefix() string {
	number := q.Number
	if len(number) < PadWidth {
		number = strings.Repeat("0", PadWidth-len(number)) + number
	}
	return q.Letters + "-" + number
}

// Result is the outcome of a lookup. An empty Matches list means there is no lead at the location.
type Result struct {
	LeadCode string   `json:"lead_code"`
	Prefix   string   `json:"prefix"`
	Matches  []string `json:"matches"`
}

// Found reports whether any file matched.
func (r Result) Found() bool {
	return len(r.Matches) > 0
}

// Resolve parses raw and matches it against the files of one case, keeping manifest order.
func Resolve(raw string, files []string) (Result, error) {
	q, err := ParseQuery(raw)
	if err != nil {
		return Result{}, err
	}

	prefix := q.Prefix()
	return Result{
		LeadCode: q.LeadCode(),
		Prefix:   prefix,
		Matches:  Match(prefix, files),
	}, nil
}

// Match returns every file that starts with prefix (case-insensitive) where the next character,
// if present, is not a digit. "NW-0042" matches "NW-0042a.png" but never "NW-00425.png".
func Match(prefix string, files []string) []string {
	lowerPrefix := strings.ToLower(prefix)
	matches := make([]string, 0)

	for _, filename := range files {
		lowerName := strings.ToLower(filename)
		if !strings.HasPrefix(lowerName, lowerPrefix) {
			continue
		}
		if len(lowerName) > len(lowerPrefix) && isDigit(lowerName[len(lowerPrefix)]) {
			continue
		}
		matches = append(matches, filename)
	}
	return matches
}

// CompareLeads orders lead codes by their numeric part, then by letters.
// Codes without a leading number sort after numbered ones.
func CompareLeads(a, b string) int {
	na, la := splitLead(a)
	nb, lb := splitLead(b)

	switch {
	case na < 0 && nb >= 0:
		return 1
	case nb < 0 && na >= 0:
		return -1
	case na < nb:
		return -1
	case na > nb:
		return 1
	}
	return strings.Compare(la, lb)
}

func splitLead(code string) (int, string) {
	i := 0
	for i < len(code) && isDigit(code[i]) {
		i++
	}
	if i == 0 {
		return -1, code
	}
	n, err := strconv.Atoi(code[:i])
	if err != nil {
		return -1, code
	}
	return n, code[i:]
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
