package runner

import (
	"time"

	"github.com/google/uuid"
)

// Step actions. Each maps to one API call on the suite's session.
const (
	ActionSearch  = "search"
	ActionCase    = "case"
	ActionLetter  = "letter"
	ActionCross   = "cross"
	ActionRestore = "restore"
	ActionReq     = "req"
	ActionUnreq   = "unreq"
	ActionOpen    = "open"
	ActionView    = "view"
	// ActionReset clears the session back to empty.
	ActionReset = "reset"
)

// TestSuite defines a complete integration test scenario
// Can either be a regular test with Steps, or a suite that references other Cases
type TestSuite struct {
	Name  string     `json:"name"`
	Case  string     `json:"case,omitempty"`  // Case selected before the first step
	Steps []TestStep `json:"steps,omitempty"` // Used for regular tests
	Cases []string   `json:"cases,omitempty"` // Used for suite tests (list of case files)
}

// IsSequence returns true if this is a suite that sequences other cases
func (ts *TestSuite) IsSequence() bool {
	return len(ts.Cases) > 0
}

// TestStep defines a single player action and its expected outcomes
type TestStep struct {
	Name         string       `json:"name,omitempty"`
	Action       string       `json:"action"`
	Input        string       `json:"input,omitempty"`
	Lead         string       `json:"lead,omitempty"` // For req/unreq
	Expectations Expectations `json:"expect"`
}

// Expectations defines what to check after a test step executes
type Expectations struct {
	// Response checks
	Status          *int     `json:"status,omitempty"` // Defaults to 200
	Message         *string  `json:"message,omitempty"`
	MessageContains []string `json:"message_contains,omitempty"`
	ErrorContains   string   `json:"error_contains,omitempty"`
	Found           *bool    `json:"found,omitempty"`
	Outcome         *string  `json:"outcome,omitempty"`

	// Session checks
	Case           *string             `json:"case,omitempty"`
	Leads          []string            `json:"leads,omitempty"` // Exact, in display order
	Fails          []string            `json:"fails,omitempty"`
	Letters        []string            `json:"letters,omitempty"`         // Collected (order independent)
	RemovedLetters []string            `json:"removed_letters,omitempty"` // Crossed out (order independent)
	Requirements   map[string][]string `json:"requirements,omitempty"`
	EvidenceCount  *int                `json:"evidence_count,omitempty"`
	Evidence       []EvidenceCheck     `json:"evidence,omitempty"`
}

// EvidenceCheck describes one expected presentation unit, matched by filename.
type EvidenceCheck struct {
	Filename string  `json:"filename"`
	Kind     *string `json:"kind,omitempty"`
	Label    *string `json:"label,omitempty"`
	Open     *bool   `json:"open,omitempty"`
}

// TestResult contains the outcome of running a test step
type TestResult struct {
	TestName     string
	StepName     string
	Success      bool
	Error        error
	Duration     time.Duration
	StatusCode   int
	ResponseText string
	IsReset      bool // True if this was a reset step
}

// TestJob represents a test suite to be executed
type TestJob struct {
	Name     string
	Suite    TestSuite
	CaseFile string
}

// TestRunResult contains the results of running an entire test suite
type TestRunResult struct {
	Job       TestJob
	Results   []TestResult
	Error     error
	Duration  time.Duration
	SessionID uuid.UUID // ID of the session used for this test
}
