package manifest

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaseIDsAndLabels(t *testing.T) {
	ids := CaseIDs()
	require.Len(t, ids, 10)
	assert.Equal(t, "Case01", ids[0])
	assert.Equal(t, "Case10", ids[9])

	assert.Equal(t, "Case 1", CaseLabel("Case01"))
	assert.Equal(t, "Case 10", CaseLabel("Case10"))
	assert.Equal(t, "Bonus", CaseLabel("Bonus"))
}

func TestManifest_Files(t *testing.T) {
	m := Manifest{"Case01": {"NW-0237.png"}}
	assert.Equal(t, []string{"NW-0237.png"}, m.Files("Case01"))

	missing := m.Files("Case02")
	assert.NotNil(t, missing)
	assert.Empty(t, missing)

	assert.True(t, m.IsKnownCase("Case02"))
	assert.False(t, m.IsKnownCase("Case11"))
}

func TestDecodeAndWrite(t *testing.T) {
	m, err := Decode(strings.NewReader(`{"Case01":["NW-0237.png","NW-0237_req_A.png"],"Case02":[]}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"Case01", "Case02"}, m.Cases())

	var buf bytes.Buffer
	require.NoError(t, m.Write(&buf))

	again, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, m, again)
}

func TestLoad_Failures(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "data.json"))
	assert.True(t, errors.Is(err, ErrLoadFailure))
	assert.Contains(t, err.Error(), "casefile manifest generate")

	bad := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"Case01": [`), 0o644))
	_, err = Load(bad)
	assert.True(t, errors.Is(err, ErrLoadFailure))
}

func TestGenerate(t *testing.T) {
	base := t.TempDir()
	case1 := filepath.Join(base, "Case01")
	require.NoError(t, os.MkdirAll(filepath.Join(case1, "nested"), 0o755))
	for _, name := range []string{"NW-0237b.png", "NW-0237.PNG", "NW-0237a.jpeg", "notes.txt", "SE-0001.jpg"} {
		require.NoError(t, os.WriteFile(filepath.Join(case1, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.MkdirAll(filepath.Join(base, "Case03"), 0o755))

	m, report, err := Generate(base)
	require.NoError(t, err)

	assert.Equal(t, []string{"NW-0237.PNG", "NW-0237a.jpeg", "NW-0237b.png", "SE-0001.jpg"}, m["Case01"])
	assert.Empty(t, m["Case03"])
	_, hasCase2 := m["Case02"]
	assert.False(t, hasCase2)

	assert.Equal(t, 4, report.Found["Case01"])
	assert.Equal(t, 0, report.Found["Case03"])
	assert.Contains(t, report.Missing, "Case02")
	assert.NotContains(t, report.Missing, "Case01")
	assert.Len(t, report.Missing, 8)
}

func TestValidator(t *testing.T) {
	v := &Validator{}

	good := Manifest{
		"Case01": {"NW-0237.png", "NW-0237a.png", "NW-0237_req___A-OR-B__-AND-C.png", "NW-0237b_req_MORE.jpg"},
	}
	assert.NoError(t, v.Validate(good))
	assert.Empty(t, v.Problems())

	bad := Manifest{
		"Case01": {"NW237.png", "NW-0237_req___A.png", "NW-0237c_req_AB.png", "NW-0237.png", "NW-0237.png"},
		"Extra":  {},
	}
	err := v.Validate(bad)
	require.Error(t, err)
	assert.Len(t, v.Problems(), 5)
	assert.Contains(t, err.Error(), "NW237.png does not follow")
	assert.Contains(t, err.Error(), "bad rule")
	assert.Contains(t, err.Error(), "'AB'")
	assert.Contains(t, err.Error(), "duplicate file")
	assert.Contains(t, err.Error(), "case id 'Extra'")
}
