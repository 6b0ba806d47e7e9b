package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jwebster45206/casefile/internal/game"
	"github.com/jwebster45206/casefile/pkg/gate"
	"github.com/jwebster45206/casefile/pkg/manifest"
	"github.com/jwebster45206/casefile/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError, // Reduce noise in tests
	}))
}

func newTestEngine(m manifest.Manifest) (*game.Engine, *storage.MockStorage) {
	st := storage.NewMockStorage()
	return game.NewEngine(m, st, testLogger()), st
}

func testManifest() manifest.Manifest {
	return manifest.Manifest{
		"Case01": {"NW-0237.png", "NW-0237_req_A-OR-B.png", "SE-0012_req_MORE.png"},
	}
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeView(t *testing.T, rr *httptest.ResponseRecorder) game.View {
	t.Helper()
	var v game.View
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&v), rr.Body.String())
	return v
}

func createSession(t *testing.T, h http.Handler) string {
	t.Helper()
	rr := do(t, h, http.MethodPost, "/v1/sessions", "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	v := decodeView(t, rr)
	require.NotEqual(t, uuid.Nil, v.SessionID)
	assert.Equal(t, "/v1/sessions/"+v.SessionID.String(), rr.Header().Get("Location"))
	return "/v1/sessions/" + v.SessionID.String()
}

func TestSessionHandler_Scenario(t *testing.T) {
	engine, _ := newTestEngine(testManifest())
	h := NewSessionHandler(engine, testLogger())
	base := createSession(t, h)

	rr := do(t, h, http.MethodPut, base+"/case", `{"case":"Case01"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = do(t, h, http.MethodPost, base+"/search", `{"query":"237NW"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var search game.SearchResult
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&search))
	assert.True(t, search.Found)
	assert.Equal(t, "Found 2 file(s) for 237NW.", search.Message)
	require.Len(t, search.View.Evidence, 2)
	assert.Equal(t, "Open Clue (Requires: A OR B)", search.View.Evidence[1].Label)

	rr = do(t, h, http.MethodPost, base+"/gates/open", `{"filename":"NW-0237_req_A-OR-B.png"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	var open game.OpenResult
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&open))
	assert.Equal(t, gate.OutcomeRequirementNotMet, open.Outcome)

	rr = do(t, h, http.MethodPost, base+"/letters", `{"letter":"b"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Added letter: B", decodeView(t, rr).Message)

	rr = do(t, h, http.MethodPost, base+"/gates/open", `{"filename":"NW-0237_req_A-OR-B.png"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	open = game.OpenResult{}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&open))
	assert.Equal(t, gate.OutcomeOpened, open.Outcome)

	rr = do(t, h, http.MethodPost, base+"/letters/B/cross", "")
	require.Equal(t, http.StatusOK, rr.Code)
	v := decodeView(t, rr)
	require.Len(t, v.Letters, 1)
	assert.True(t, v.Letters[0].Removed)

	rr = do(t, h, http.MethodPost, base+"/letters/b/restore", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.False(t, decodeView(t, rr).Letters[0].Removed)

	rr = do(t, h, http.MethodPost, base+"/requirements", `{"lead":"237NW","letter":"C"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []string{"C"}, decodeView(t, rr).Requirements["237NW"])

	rr = do(t, h, http.MethodDelete, base+"/requirements", `{"lead":"237NW","letter":"C"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, decodeView(t, rr).Requirements)

	rr = do(t, h, http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []string{"237NW"}, decodeView(t, rr).Leads)

	rr = do(t, h, http.MethodPost, base+"/reset", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, decodeView(t, rr).Leads)

	rr = do(t, h, http.MethodDelete, base, "")
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = do(t, h, http.MethodGet, base, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestSessionHandler_Errors(t *testing.T) {
	engine, _ := newTestEngine(testManifest())
	h := NewSessionHandler(engine, testLogger())
	base := createSession(t, h)

	tests := []struct {
		name     string
		method   string
		path     string
		body     string
		status   int
		contains string
	}{
		{"search without case", http.MethodPost, base + "/search", `{"query":"237NW"}`, http.StatusConflict, "select a case"},
		{"bad session id", http.MethodGet, "/v1/sessions/not-a-uuid", "", http.StatusBadRequest, "Invalid session ID"},
		{"unknown session", http.MethodGet, "/v1/sessions/" + uuid.New().String(), "", http.StatusNotFound, "session not found"},
		{"bad json", http.MethodPost, base + "/letters", `{`, http.StatusBadRequest, "Invalid JSON"},
		{"bad letter", http.MethodPost, base + "/letters", `{"letter":"7"}`, http.StatusBadRequest, "single letter"},
		{"unknown letter", http.MethodPost, base + "/letters/Q/cross", "", http.StatusConflict, "not been recorded"},
		{"unknown case", http.MethodPut, base + "/case", `{"case":"Case42"}`, http.StatusBadRequest, "unknown case"},
		{"unknown lead", http.MethodPost, base + "/requirements", `{"lead":"1A","letter":"B"}`, http.StatusConflict, "lead has not been found"},
		{"missing filename", http.MethodPost, base + "/gates/open", `{}`, http.StatusBadRequest, "filename"},
		{"undisplayed file", http.MethodPost, base + "/gates/open", `{"filename":"x_req_A.png"}`, http.StatusConflict, "not on display"},
		{"wrong method", http.MethodGet, base + "/search", "", http.StatusMethodNotAllowed, "POST"},
		{"list sessions", http.MethodGet, "/v1/sessions", "", http.StatusMethodNotAllowed, "POST"},
		{"unknown route", http.MethodPost, base + "/teleport", "", http.StatusNotFound, "Unknown route"},
		{"unknown letter action", http.MethodPost, base + "/letters/A/burn", "", http.StatusNotFound, "Unknown route"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, h, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, rr.Code, rr.Body.String())
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

			var resp ErrorResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
			assert.Contains(t, resp.Error, tt.contains)
		})
	}
}

func TestSessionHandler_InvalidFormat(t *testing.T) {
	engine, st := newTestEngine(testManifest())
	h := NewSessionHandler(engine, testLogger())
	base := createSession(t, h)
	do(t, h, http.MethodPut, base+"/case", `{"case":"Case01"}`)
	calls := st.SetCalls

	rr := do(t, h, http.MethodPost, base+"/search", `{"query":"north west"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, invalidFormatMessage, resp.Error)
	assert.Equal(t, calls, st.SetCalls)
}

func TestSessionHandler_MalformedGate(t *testing.T) {
	engine, _ := newTestEngine(manifest.Manifest{"Case01": {"AB-0001_req_A-AND.png"}})
	h := NewSessionHandler(engine, testLogger())
	base := createSession(t, h)
	do(t, h, http.MethodPut, base+"/case", `{"case":"Case01"}`)

	rr := do(t, h, http.MethodPost, base+"/search", `{"query":"1AB"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, h, http.MethodPost, base+"/gates/open", `{"filename":"AB-0001_req_A-AND.png"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestSessionHandler_SaveFailure(t *testing.T) {
	engine, st := newTestEngine(testManifest())
	h := NewSessionHandler(engine, testLogger())
	base := createSession(t, h)

	st.SetSetError(errors.New("redis down"))
	rr := do(t, h, http.MethodPost, base+"/letters", `{"letter":"A"}`)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "Internal server error", resp.Error, "storage details stay hidden")
}

func TestSessionHandler_ManifestUnavailable(t *testing.T) {
	engine, _ := newTestEngine(nil)
	h := NewSessionHandler(engine, testLogger())

	rr := do(t, h, http.MethodPost, "/v1/sessions", "")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, manifest.LoadGuidance, resp.Guidance)
}

func TestCasesHandler(t *testing.T) {
	engine, _ := newTestEngine(testManifest())
	h := NewCasesHandler(engine, testLogger())

	rr := do(t, h, http.MethodGet, "/v1/cases", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp CasesResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.Len(t, resp.Cases, manifest.CaseCount)
	assert.Equal(t, "Case 1", resp.Cases[0].Label)
	assert.Equal(t, 3, resp.Cases[0].Files)

	rr = do(t, h, http.MethodPost, "/v1/cases", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)

	inert, _ := newTestEngine(nil)
	rr = do(t, NewCasesHandler(inert, testLogger()), http.MethodGet, "/v1/cases", "")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name           string
		manifest       manifest.Manifest
		pingErr        error
		expectedStatus int
		expectedBody   string
	}{
		{"healthy", testManifest(), nil, http.StatusOK, "healthy"},
		{"storage down", testManifest(), errors.New("connection refused"), http.StatusServiceUnavailable, "degraded"},
		{"manifest missing", nil, nil, http.StatusServiceUnavailable, "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, st := newTestEngine(tt.manifest)
			if tt.pingErr != nil {
				st.SetPingError(tt.pingErr)
			} else {
				st.SetPingSuccess()
			}
			h := NewHealthHandler(st, engine, testLogger())

			rr := do(t, h, http.MethodGet, "/health", "")
			assert.Equal(t, tt.expectedStatus, rr.Code)

			var resp HealthResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
			assert.Equal(t, tt.expectedBody, resp.Status)
			assert.Equal(t, "casefile", resp.Service)
			assert.Contains(t, resp.Components, "storage")
			assert.Contains(t, resp.Components, "manifest")
		})
	}
}

func TestFilesHandler(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "Case01"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Case01", "NW-0237.png"), []byte("png-bytes"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data.json"), []byte("{}"), 0o644))

	h := NewFilesHandler("/files/", dir)

	rr := do(t, h, http.MethodGet, "/files/Case01/NW-0237.png", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "png-bytes", rr.Body.String())

	rr = do(t, h, http.MethodGet, "/files/data.json", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, h, http.MethodGet, "/files/Case01/", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, h, http.MethodPost, "/files/Case01/NW-0237.png", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
