package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

// ErrLoadFailure means the manifest could not be read. No search can run without one.
var ErrLoadFailure = errors.New("could not load case manifest")

// CaseCount is the number of case folders a manifest covers.
const CaseCount = 10

// LoadGuidance is shown to the operator when the manifest is missing.
const LoadGuidance = "run `casefile manifest generate` to create data.json"

// Manifest maps a case id (Case01..Case10) to its evidence filenames in display order.
type Manifest map[string][]string

// CaseIDs lists Case01 through Case10.
func CaseIDs() []string {
	ids := make([]string, 0, CaseCount)
	for i := 1; i <= CaseCount; i++ {
		ids = append(ids, fmt.Sprintf("Case%02d", i))
	}
	return ids
}

// CaseLabel turns "Case03" into "Case 3". Unknown shapes are returned unchanged.
func CaseLabel(caseID string) string {
	n, err := strconv.Atoi(strings.TrimPrefix(caseID, "Case"))
	if err != nil || !strings.HasPrefix(caseID, "Case") {
		return caseID
	}
	return fmt.Sprintf("Case %d", n)
}

// IsKnownCase reports whether caseID is one of the standard ids or present in m.
func (m Manifest) IsKnownCase(caseID string) bool {
	if _, ok := m[caseID]; ok {
		return true
	}
	for _, id := range CaseIDs() {
		if id == caseID {
			return true
		}
	}
	return false
}

// Files returns the files of a case. A missing case has no files.
func (m Manifest) Files(caseID string) []string {
	files, ok := m[caseID]
	if !ok {
		return []string{}
	}
	return files
}

// Cases lists the case ids present in the manifest, sorted.
func (m Manifest) Cases() []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Decode reads a manifest from JSON.
func Decode(r io.Reader) (Manifest, error) {
	var m Manifest
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadFailure, err)
	}
	if m == nil {
		m = Manifest{}
	}
	return m, nil
}

// Load reads the manifest file at path.
func Load(path string) (Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v (%s)", ErrLoadFailure, err, LoadGuidance)
	}
	defer func() {
		_ = f.Close()
	}()

	m, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Write encodes m as indented JSON.
func (m Manifest) Write(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(m)
}
