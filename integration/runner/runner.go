package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/jwebster45206/casefile/internal/game"
)

type ErrorHandlingMode string

const ErrorHandlingExit ErrorHandlingMode = "exit"
const ErrorHandlingContinue ErrorHandlingMode = "continue"

// Runner executes integration tests against a running casefile API
type Runner struct {
	BaseURL           string
	Client            *http.Client
	Logger            func(format string, args ...interface{})
	ErrorHandlingMode ErrorHandlingMode
	CaseOverride      string // If set, overrides the case for all test suites
	KeepSessions      bool   // Skip deleting sessions after a run
}

// NewRunner creates a new test runner
func NewRunner(baseURL string) *Runner {
	return &Runner{
		BaseURL:           strings.TrimSuffix(baseURL, "/"),
		Client:            &http.Client{Timeout: 30 * time.Second},
		Logger:            func(string, ...interface{}) {},
		ErrorHandlingMode: ErrorHandlingContinue,
	}
}

// LoadTestSuite loads a test suite from a JSON file
func LoadTestSuite(filename string) (TestSuite, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return TestSuite{}, fmt.Errorf("failed to read test file %s: %w", filename, err)
	}

	var suite TestSuite
	if err := json.Unmarshal(content, &suite); err != nil {
		return TestSuite{}, fmt.Errorf("failed to parse JSON in %s: %w", filename, err)
	}

	return suite, nil
}

// LoadTestSuiteWithExpansion loads a test suite and expands it if it's a sequence
// Returns a list of actual test suites (expanded from the sequence if needed)
func LoadTestSuiteWithExpansion(filename string, casesDir string) ([]TestJob, error) {
	suite, err := LoadTestSuite(filename)
	if err != nil {
		return nil, err
	}

	if !suite.IsSequence() {
		return []TestJob{{
			Name:     suite.Name,
			Suite:    suite,
			CaseFile: filename,
		}}, nil
	}

	var jobs []TestJob
	for _, caseFile := range suite.Cases {
		casePath := filepath.Join(casesDir, caseFile)

		// Recursively load (in case a sequence references another sequence)
		subJobs, err := LoadTestSuiteWithExpansion(casePath, casesDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load case '%s' referenced by sequence '%s': %w", caseFile, suite.Name, err)
		}

		jobs = append(jobs, subJobs...)
	}

	return jobs, nil
}

// RunSuite executes a complete test suite on a fresh session
func (r *Runner) RunSuite(ctx context.Context, suite TestSuite) (TestRunResult, error) {
	start := time.Now()
	result := TestRunResult{
		Job: TestJob{
			Name:  suite.Name,
			Suite: suite,
		},
		Results: make([]TestResult, 0, len(suite.Steps)),
	}

	sessionID, err := CreateSession(ctx, r.Client, r.BaseURL)
	if err != nil {
		result.Error = fmt.Errorf("failed to create session: %w", err)
		result.Duration = time.Since(start)
		return result, result.Error
	}
	result.SessionID = sessionID

	if !r.KeepSessions {
		defer func() {
			if err := DeleteSession(context.WithoutCancel(ctx), r.Client, r.BaseURL, sessionID); err != nil {
				r.Logger("    warning: failed to delete session %s: %v", sessionID, err)
			}
		}()
	}

	caseID := suite.Case
	if r.CaseOverride != "" {
		caseID = r.CaseOverride
	}
	if caseID != "" {
		status, body, err := DoJSON(ctx, r.Client, http.MethodPut, r.sessionURL(sessionID)+"/case", map[string]string{"case": caseID})
		if err == nil && status != http.StatusOK {
			err = fmt.Errorf("status %d: %s", status, gjson.GetBytes(body, "error").String())
		}
		if err != nil {
			result.Error = fmt.Errorf("failed to select case %s: %w", caseID, err)
			result.Duration = time.Since(start)
			return result, result.Error
		}
	}

	for i, step := range suite.Steps {
		r.Logger("    [%d/%d] Running step: %s", i+1, len(suite.Steps), step.name())
		stepResult := r.runStep(ctx, sessionID, step)
		stepResult.TestName = suite.Name
		result.Results = append(result.Results, stepResult)

		if stepResult.Error != nil {
			r.Logger("    [%d/%d] ✗ %s: %v", i+1, len(suite.Steps), step.name(), stepResult.Error)
			if result.Error == nil {
				result.Error = fmt.Errorf("step %d (%s) failed: %w", i, step.name(), stepResult.Error)
			}
			if r.ErrorHandlingMode == ErrorHandlingExit {
				break
			}
			continue
		}

		r.Logger("    [%d/%d] ✓ %s (%v)", i+1, len(suite.Steps), step.name(), stepResult.Duration)
	}

	result.Duration = time.Since(start)
	return result, result.Error
}

func (r *Runner) sessionURL(id uuid.UUID) string {
	return r.BaseURL + "/v1/sessions/" + id.String()
}

func (s TestStep) name() string {
	if s.Name != "" {
		return s.Name
	}
	if s.Input == "" {
		return s.Action
	}
	return s.Action + " " + s.Input
}

// runStep sends the step's request and checks its expectations
func (r *Runner) runStep(ctx context.Context, sessionID uuid.UUID, step TestStep) TestResult {
	start := time.Now()
	result := TestResult{
		StepName: step.name(),
		IsReset:  step.Action == ActionReset,
	}

	method, suffix, body, err := stepRequest(step)
	if err != nil {
		result.Error = err
		result.Duration = time.Since(start)
		return result
	}

	status, data, err := DoJSON(ctx, r.Client, method, r.sessionURL(sessionID)+suffix, body)
	if err != nil {
		result.Error = err
		result.Duration = time.Since(start)
		return result
	}
	result.StatusCode = status
	result.ResponseText = string(data)

	view, err := r.viewAfter(ctx, sessionID, status, data)
	if err != nil {
		result.Error = err
		result.Duration = time.Since(start)
		return result
	}

	if err := checkExpectations(step.Expectations, status, data, view); err != nil {
		result.Error = fmt.Errorf("expectation failed: %w", err)
		result.Duration = time.Since(start)
		return result
	}

	result.Success = true
	result.Duration = time.Since(start)
	return result
}

// viewAfter returns the view carried by the response, or fetches the session when the
// response has none (errors, or endpoints that return the view itself).
func (r *Runner) viewAfter(ctx context.Context, sessionID uuid.UUID, status int, data []byte) (*game.View, error) {
	raw := data
	if nested := gjson.GetBytes(data, "view"); nested.IsObject() {
		raw = []byte(nested.Raw)
	} else if status >= http.StatusBadRequest || !gjson.GetBytes(data, "session_id").Exists() {
		return GetView(ctx, r.Client, r.BaseURL, sessionID)
	}

	var v game.View
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("failed to decode view: %w", err)
	}
	return &v, nil
}

// checkExpectations validates a step's response and the session view that followed it
func checkExpectations(exp Expectations, status int, body []byte, view *game.View) error {
	wantStatus := http.StatusOK
	if exp.Status != nil {
		wantStatus = *exp.Status
	}
	if status != wantStatus {
		return fmt.Errorf("expected status %d, got %d: %s", wantStatus, status, string(body))
	}

	message := gjson.GetBytes(body, "message").String()
	if exp.Message != nil && message != *exp.Message {
		return fmt.Errorf("expected message %q, got %q", *exp.Message, message)
	}
	for _, want := range exp.MessageContains {
		if !strings.Contains(strings.ToLower(message), strings.ToLower(want)) {
			return fmt.Errorf("expected message to contain '%s', got %q", want, message)
		}
	}
	if exp.ErrorContains != "" {
		errText := gjson.GetBytes(body, "error").String()
		if !strings.Contains(strings.ToLower(errText), strings.ToLower(exp.ErrorContains)) {
			return fmt.Errorf("expected error to contain '%s', got %q", exp.ErrorContains, errText)
		}
	}
	if exp.Found != nil {
		found := gjson.GetBytes(body, "found")
		if !found.Exists() || found.Bool() != *exp.Found {
			return fmt.Errorf("expected found=%v, got %s", *exp.Found, found.Raw)
		}
	}
	if exp.Outcome != nil {
		if outcome := gjson.GetBytes(body, "outcome").String(); outcome != *exp.Outcome {
			return fmt.Errorf("expected outcome %s, got %q", *exp.Outcome, outcome)
		}
	}

	if exp.Case != nil && view.Case != *exp.Case {
		return fmt.Errorf("expected case %q, got %q", *exp.Case, view.Case)
	}
	if exp.Leads != nil && !slices.Equal(exp.Leads, view.Leads) {
		return fmt.Errorf("expected leads %v, got %v", exp.Leads, view.Leads)
	}
	if exp.Fails != nil && !slices.Equal(exp.Fails, view.Fails) {
		return fmt.Errorf("expected fails %v, got %v", exp.Fails, view.Fails)
	}

	var collected, removed []string
	for _, m := range view.Letters {
		if m.Removed {
			removed = append(removed, m.Letter)
		} else {
			collected = append(collected, m.Letter)
		}
	}
	if exp.Letters != nil {
		if err := sameSet("letters", exp.Letters, collected); err != nil {
			return err
		}
	}
	if exp.RemovedLetters != nil {
		if err := sameSet("removed letters", exp.RemovedLetters, removed); err != nil {
			return err
		}
	}

	for lead, want := range exp.Requirements {
		if err := sameSet("requirements for "+lead, want, view.Requirements[lead]); err != nil {
			return err
		}
	}

	if exp.EvidenceCount != nil && len(view.Evidence) != *exp.EvidenceCount {
		return fmt.Errorf("expected %d evidence units, got %d", *exp.EvidenceCount, len(view.Evidence))
	}
	for _, check := range exp.Evidence {
		if err := checkEvidence(check, view); err != nil {
			return err
		}
	}

	return nil
}

func checkEvidence(check EvidenceCheck, view *game.View) error {
	for _, u := range view.Evidence {
		if u.Filename != check.Filename {
			continue
		}
		if check.Kind != nil && string(u.Kind) != *check.Kind {
			return fmt.Errorf("evidence %s: expected kind %s, got %s", u.Filename, *check.Kind, u.Kind)
		}
		if check.Label != nil && u.Label != *check.Label {
			return fmt.Errorf("evidence %s: expected label %q, got %q", u.Filename, *check.Label, u.Label)
		}
		if check.Open != nil && u.Open != *check.Open {
			return fmt.Errorf("evidence %s: expected open=%v, got %v", u.Filename, *check.Open, u.Open)
		}
		return nil
	}
	return fmt.Errorf("expected evidence %s to be displayed", check.Filename)
}

// sameSet compares two string lists ignoring order
func sameSet(what string, expected, actual []string) error {
	want := slices.Clone(expected)
	got := slices.Clone(actual)
	sort.Strings(want)
	sort.Strings(got)
	if !slices.Equal(want, got) {
		return fmt.Errorf("expected %s %v, got %v", what, expected, actual)
	}
	return nil
}
