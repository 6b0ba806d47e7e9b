//go:build integration
// +build integration

package integration

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jwebster45206/casefile/integration/runner"
)

const casesDir = "cases"

var suiteFlag = flag.String("case", "", "Suite file(s) to run from integration/cases/, comma separated")
var errFlag = flag.String("err", "continue", "Error handling mode: 'continue' (run all steps) or 'exit' (stop on first failure)")
var caseIDFlag = flag.String("case-id", "", "Override the case selected by every suite (e.g. 'Case03')")
var keepFlag = flag.Bool("keep", false, "Keep sessions after the run for inspection")

func apiBaseURL() string {
	if url := os.Getenv("API_BASE_URL"); url != "" {
		return url
	}
	return "http://localhost:8080"
}

func TestMain(m *testing.M) {
	flag.Parse()
	fmt.Printf("Running Casefile Integration Tests\n")
	fmt.Printf("   API Base URL: %s\n", apiBaseURL())
	os.Exit(m.Run())
}

func newRunner(t *testing.T, mode runner.ErrorHandlingMode) *runner.Runner {
	t.Helper()
	r := runner.NewRunner(apiBaseURL())
	r.ErrorHandlingMode = mode
	r.CaseOverride = *caseIDFlag
	r.KeepSessions = *keepFlag
	r.Logger = func(format string, args ...interface{}) {
		fmt.Printf(format+"\n", args...)
	}
	if r.CaseOverride != "" {
		t.Logf("Case override enabled: %s", r.CaseOverride)
	}
	return r
}

// TestIntegrationSuites runs every suite in cases/. Sequence files only re-run suites that are
// already discovered, so they are skipped here.
func TestIntegrationSuites(t *testing.T) {
	if *suiteFlag != "" {
		t.Skip("Running selected suites only (see TestSelectedSuites)")
	}

	files, err := filepath.Glob(filepath.Join(casesDir, "*.json"))
	if err != nil {
		t.Fatalf("Failed to discover test files: %v", err)
	}

	var jobs []runner.TestJob
	for _, file := range files {
		suite, err := runner.LoadTestSuite(file)
		if err != nil {
			t.Errorf("Failed to load test suite %s: %v", file, err)
			continue
		}
		if suite.IsSequence() {
			continue
		}
		jobs = append(jobs, runner.TestJob{Name: suite.Name, Suite: suite, CaseFile: file})
	}
	if len(jobs) == 0 {
		t.Fatal("No test suites found in cases directory")
	}

	runJobs(t, newRunner(t, runner.ErrorHandlingContinue), jobs)
}

// TestSelectedSuites runs the suites named by -case, expanding sequences.
func TestSelectedSuites(t *testing.T) {
	if *suiteFlag == "" {
		t.Skip("Skipping selected suites (use -case flag to run)")
	}
	if *errFlag != "exit" && *errFlag != "continue" {
		t.Fatalf("Invalid -err flag value: %s (must be 'exit' or 'continue')", *errFlag)
	}

	var jobs []runner.TestJob
	for _, name := range strings.Split(*suiteFlag, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if !strings.HasSuffix(name, ".json") {
			name += ".json"
		}
		expanded, err := runner.LoadTestSuiteWithExpansion(filepath.Join(casesDir, name), casesDir)
		if err != nil {
			t.Fatalf("Failed to load test suite %s: %v", name, err)
		}
		jobs = append(jobs, expanded...)
	}

	runJobs(t, newRunner(t, runner.ErrorHandlingMode(*errFlag)), jobs)
}

func runJobs(t *testing.T, r *runner.Runner, jobs []runner.TestJob) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	var passed int
	var failed []string
	for i, job := range jobs {
		t.Logf("[%d/%d] Running test suite: %s (%d steps)", i+1, len(jobs), job.Name, len(job.Suite.Steps))

		result, err := r.RunSuite(ctx, job.Suite)
		t.Logf("Session ID: %s", result.SessionID)

		for _, step := range result.Results {
			switch {
			case step.IsReset && step.Success:
				t.Logf("   ↻ %s (%v)", step.StepName, step.Duration)
			case step.Success:
				t.Logf("   ✓ %s (%v)", step.StepName, step.Duration)
			default:
				t.Errorf("   ✗ %s: %v", step.StepName, step.Error)
			}
		}

		if err != nil {
			failed = append(failed, fmt.Sprintf("%s: %v", job.Name, err))
			if *errFlag == "exit" {
				break
			}
			continue
		}
		passed++
		t.Logf("[%d/%d] PASSED: %s in %v", i+1, len(jobs), job.Name, result.Duration)
	}

	t.Logf("Passed: %d, Failed: %d", passed, len(failed))
	if len(failed) > 0 {
		t.Fatalf("Integration tests failed:\n   - %s", strings.Join(failed, "\n   - "))
	}
}
