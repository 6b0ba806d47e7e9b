package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var imageExtensions = []string{".png", ".jpg", ".jpeg"}

// Report describes what Generate found per case folder.
type Report struct {
	Found   map[string]int
	Missing []string
}

// Generate scans baseDir/Case01..Case10 for images and builds a manifest with each list sorted.
// Missing folders are skipped and listed in the report.
func Generate(baseDir string) (Manifest, Report, error) {
	m := Manifest{}
	report := Report{Found: make(map[string]int)}

	for _, caseID := range CaseIDs() {
		casePath := filepath.Join(baseDir, caseID)
		entries, err := os.ReadDir(casePath)
		if err != nil {
			if os.IsNotExist(err) {
				report.Missing = append(report.Missing, caseID)
				continue
			}
			return nil, report, fmt.Errorf("failed to read %s: %w", casePath, err)
		}

		files := make([]string, 0, len(entries))
		for _, entry := range entries {
			if entry.IsDir() || !isImage(entry.Name()) {
				continue
			}
			files = append(files, entry.Name())
		}
		sort.Strings(files)

		m[caseID] = files
		report.Found[caseID] = len(files)
	}

	return m, report, nil
}

func isImage(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range imageExtensions {
		if ext == e {
			return true
		}
	}
	return false
}
