package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jwebster45206/casefile/internal/logger"
	"github.com/jwebster45206/casefile/pkg/gate"
	"github.com/jwebster45206/casefile/pkg/lookup"
	"github.com/jwebster45206/casefile/pkg/manifest"
	"github.com/jwebster45206/casefile/pkg/state"
	"github.com/jwebster45206/casefile/pkg/storage"
)

var (
	// ErrManifestUnavailable means no manifest was loaded and the engine is inert.
	ErrManifestUnavailable = errors.New("case manifest is not loaded")
	ErrSessionNotFound     = errors.New("session not found")
	ErrNoCaseSelected      = errors.New("please select a case first")
	ErrUnknownCase         = errors.New("unknown case")
	// ErrUnknownLead is returned when annotating a lead that has not been found.
	ErrUnknownLead = errors.New("lead has not been found")
	// ErrUnknownEvidence is returned when opening a file that is not on display.
	ErrUnknownEvidence = errors.New("evidence is not on display")
)

// View is everything a renderer needs to draw a session.
type View struct {
	SessionID    uuid.UUID           `json:"session_id"`
	Case         string              `json:"case"`
	CaseLabel    string              `json:"case_label,omitempty"`
	Leads        []string            `json:"leads"`
	Fails        []string            `json:"fails"`
	Letters      []state.LetterMark  `json:"letters"`
	Requirements map[string][]string `json:"requirements"`
	Evidence     []gate.Unit         `json:"evidence"`
	Message      string              `json:"message,omitempty"`
}

// SearchResult is the outcome of a location search.
type SearchResult struct {
	LeadCode string `json:"lead_code"`
	Found    bool   `json:"found"`
	Message  string `json:"message"`
	View     *View  `json:"view"`
}

// OpenResult is the outcome of clicking a gate button.
type OpenResult struct {
	Filename string       `json:"filename"`
	Outcome  gate.Outcome `json:"outcome"`
	Message  string       `json:"message"`
	View     *View        `json:"view"`
}

// CaseInfo describes one case of the manifest.
type CaseInfo struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Files int    `json:"files"`
}

// Engine runs player operations against saved sessions. Each operation loads the session,
// mutates it, saves it and returns a fresh view. Operations run one at a time.
type Engine struct {
	manifest manifest.Manifest
	storage  storage.Storage
	logger   *slog.Logger
	mu       sync.Mutex
}

// NewEngine creates an engine. A nil manifest leaves the engine inert: every session
// operation returns ErrManifestUnavailable.
func NewEngine(m manifest.Manifest, st storage.Storage, logger *slog.Logger) *Engine {
	return &Engine{
		manifest: m,
		storage:  st,
		logger:   logger,
	}
}

// ManifestLoaded reports whether the engine has a manifest.
func (e *Engine) ManifestLoaded() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.manifest != nil
}

// SetManifest swaps in a reloaded manifest. Saved sessions are left as they are.
func (e *Engine) SetManifest(m manifest.Manifest) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.manifest = m
	e.logger.Info("Manifest updated", "cases", len(m))
}

// Cases lists Case01..Case10 plus any extra case the manifest carries.
func (e *Engine) Cases() ([]CaseInfo, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.manifest == nil {
		return nil, ErrManifestUnavailable
	}

	ids := manifest.CaseIDs()
	for _, id := range e.manifest.Cases() {
		if !containsString(ids, id) {
			ids = append(ids, id)
		}
	}

	cases := make([]CaseInfo, 0, len(ids))
	for _, id := range ids {
		cases = append(cases, CaseInfo{
			ID:    id,
			Label: manifest.CaseLabel(id),
			Files: len(e.manifest.Files(id)),
		})
	}
	return cases, nil
}

// NewSession creates and saves an empty session.
func (e *Engine) NewSession(ctx context.Context) (*View, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.manifest == nil {
		return nil, ErrManifestUnavailable
	}

	id := uuid.New()
	sess := state.NewSession()
	if err := e.save(ctx, id, sess); err != nil {
		return nil, err
	}

	logger.WithSession(e.logger, id).Info("Session created")
	return e.view(id, sess, ""), nil
}

// Resume loads the session saved under id, or creates it when there is none.
func (e *Engine) Resume(ctx context.Context, id uuid.UUID) (*View, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.manifest == nil {
		return nil, ErrManifestUnavailable
	}

	sess, found, err := storage.LoadSession(ctx, e.storage, id, e.logger)
	if err != nil {
		return nil, err
	}
	if found {
		return e.view(id, sess, "Previous session restored."), nil
	}

	if err := e.save(ctx, id, sess); err != nil {
		return nil, err
	}
	return e.view(id, sess, ""), nil
}

// View returns the current view of a session without changing it.
func (e *Engine) View(ctx context.Context, id uuid.UUID) (*View, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	sess, err := e.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return e.view(id, sess, ""), nil
}

// Reset discards all progress and leaves an empty session under the same id.
func (e *Engine) Reset(ctx context.Context, id uuid.UUID) (*View, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.load(ctx, id); err != nil {
		return nil, err
	}
	if err := storage.DeleteSession(ctx, e.storage, id); err != nil {
		return nil, err
	}

	sess := state.NewSession()
	if err := e.save(ctx, id, sess); err != nil {
		return nil, err
	}

	logger.WithSession(e.logger, id).Info("Session reset")
	return e.view(id, sess, "Progress cleared."), nil
}

// Delete removes a session.
func (e *Engine) Delete(ctx context.Context, id uuid.UUID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.load(ctx, id); err != nil {
		return err
	}
	return storage.DeleteSession(ctx, e.storage, id)
}

// SelectCase switches the active case. Switching to a different case clears the evidence on display.
func (e *Engine) SelectCase(ctx context.Context, id uuid.UUID, caseID string) (*View, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	sess, err := e.load(ctx, id)
	if err != nil {
		return nil, err
	}

	caseID = strings.TrimSpace(caseID)
	if !e.manifest.IsKnownCase(caseID) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCase, caseID)
	}

	if sess.Case != caseID {
		sess.SetCase(caseID)
		sess.SetDisplayed(nil)
	}
	if err := e.save(ctx, id, sess); err != nil {
		return nil, err
	}
	return e.view(id, sess, fmt.Sprintf("Selected %s.", manifest.CaseLabel(caseID))), nil
}

// Search looks up a location in the active case. Input that is not a location code returns
// lookup.ErrInvalidFormat and leaves the session unchanged.
func (e *Engine) Search(ctx context.Context, id uuid.UUID, raw string) (*SearchResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	sess, err := e.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.Case == "" {
		return nil, ErrNoCaseSelected
	}

	res, err := lookup.Resolve(raw, e.manifest.Files(sess.Case))
	if err != nil {
		return nil, err
	}

	var msg string
	if res.Found() {
		sess.RecordLeadFound(res.LeadCode)
		sess.SetDisplayed(res.Matches)
		msg = fmt.Sprintf("Found %d file(s) for %s.", len(res.Matches), res.LeadCode)
	} else {
		sess.RecordLeadFailed(res.LeadCode)
		sess.SetDisplayed(nil)
		msg = "There is no lead at this location."
	}

	if err := e.save(ctx, id, sess); err != nil {
		return nil, err
	}

	logger.WithSession(e.logger, id).Debug("Search completed",
		"case", sess.Case, "lead", res.LeadCode, "prefix", res.Prefix, "matches", len(res.Matches))

	return &SearchResult{
		LeadCode: res.LeadCode,
		Found:    res.Found(),
		Message:  msg,
		View:     e.view(id, sess, msg),
	}, nil
}

// AddLetter collects a letter.
func (e *Engine) AddLetter(ctx context.Context, id uuid.UUID, ch string) (*View, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	sess, err := e.load(ctx, id)
	if err != nil {
		return nil, err
	}

	added, err := sess.AddLetter(ch)
	if err != nil {
		return nil, err
	}
	letter, _ := state.NormalizeLetter(ch)
	if !added {
		return e.view(id, sess, fmt.Sprintf("Letter %s already recorded.", letter)), nil
	}

	if err := e.save(ctx, id, sess); err != nil {
		return nil, err
	}
	return e.view(id, sess, "Added letter: "+letter), nil
}

// CrossOutLetter marks a collected letter as removed. Gates that need it close again.
func (e *Engine) CrossOutLetter(ctx context.Context, id uuid.UUID, ch string) (*View, error) {
	return e.editLetter(ctx, id, ch, "Crossed out letter: ", (*state.Session).CrossOutLetter)
}

// RestoreLetter brings back a crossed-out letter.
func (e *Engine) RestoreLetter(ctx context.Context, id uuid.UUID, ch string) (*View, error) {
	return e.editLetter(ctx, id, ch, "Restored letter: ", (*state.Session).RestoreLetter)
}

func (e *Engine) editLetter(ctx context.Context, id uuid.UUID, ch, msg string, edit func(*state.Session, string) error) (*View, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	sess, err := e.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := edit(sess, ch); err != nil {
		return nil, err
	}
	if err := e.save(ctx, id, sess); err != nil {
		return nil, err
	}

	letter, _ := state.NormalizeLetter(ch)
	return e.view(id, sess, msg+letter), nil
}

// AddRequirement attaches a letter note to a found lead. Notes never gate evidence.
func (e *Engine) AddRequirement(ctx context.Context, id uuid.UUID, lead, ch string) (*View, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	sess, err := e.load(ctx, id)
	if err != nil {
		return nil, err
	}

	lead = normalizeLead(lead)
	if !sess.Found.Has(lead) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLead, lead)
	}

	added, err := sess.AddLeadRequirement(lead, ch)
	if err != nil {
		return nil, err
	}
	if added {
		if err := e.save(ctx, id, sess); err != nil {
			return nil, err
		}
	}

	letter, _ := state.NormalizeLetter(ch)
	return e.view(id, sess, fmt.Sprintf("Lead %s requires letter %s.", lead, letter)), nil
}

// RemoveRequirement detaches a letter note from a lead. Removing a missing note changes nothing.
func (e *Engine) RemoveRequirement(ctx context.Context, id uuid.UUID, lead, ch string) (*View, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	sess, err := e.load(ctx, id)
	if err != nil {
		return nil, err
	}

	lead = normalizeLead(lead)
	if sess.RemoveLeadRequirement(lead, ch) {
		if err := e.save(ctx, id, sess); err != nil {
			return nil, err
		}
	}
	return e.view(id, sess, ""), nil
}

// OpenGate clicks the gate button of a displayed file. The rule is checked against the letters
// held right now. An unmet rule returns gate.OutcomeRequirementNotMet and changes nothing.
func (e *Engine) OpenGate(ctx context.Context, id uuid.UUID, filename string) (*OpenResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	sess, err := e.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !containsString(sess.Displayed, filename) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEvidence, filename)
	}

	revealedBefore := sess.IsMoreRevealed(filename)
	outcome, err := gate.Open(filename, sess)
	if err != nil {
		return nil, err
	}

	if outcome == gate.OutcomeRequirementNotMet {
		msg := "You do not have the required evidence: " + gate.Describe(filename)
		return &OpenResult{
			Filename: filename,
			Outcome:  outcome,
			Message:  msg,
			View:     e.view(id, sess, msg),
		}, nil
	}

	if !revealedBefore && sess.IsMoreRevealed(filename) {
		if err := e.save(ctx, id, sess); err != nil {
			return nil, err
		}
	}

	v := e.view(id, sess, "")
	// Plain gates are not remembered; they stay open for this response only.
	for i := range v.Evidence {
		if v.Evidence[i].Filename == filename {
			v.Evidence[i].Open = true
		}
	}

	logger.WithSession(e.logger, id).Debug("Gate opened", "filename", filename)
	return &OpenResult{Filename: filename, Outcome: outcome, View: v}, nil
}

func (e *Engine) load(ctx context.Context, id uuid.UUID) (*state.Session, error) {
	if e.manifest == nil {
		return nil, ErrManifestUnavailable
	}

	sess, found, err := storage.LoadSession(ctx, e.storage, id, e.logger)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return sess, nil
}

func (e *Engine) save(ctx context.Context, id uuid.UUID, sess *state.Session) error {
	if err := storage.SaveSession(ctx, e.storage, id, sess); err != nil {
		logger.WithError(logger.WithSession(e.logger, id), err).Error("Failed to save session")
		return err
	}
	return nil
}

func (e *Engine) view(id uuid.UUID, sess *state.Session, msg string) *View {
	evidence := gate.Resolve(sess.Displayed, sess)
	for i := range evidence {
		evidence[i].Path = sess.Case + "/" + evidence[i].Filename
	}

	reqs := make(map[string][]string, len(sess.Requirements))
	for lead, letters := range sess.Requirements {
		reqs[lead] = append([]string(nil), letters...)
	}

	v := &View{
		SessionID:    id,
		Case:         sess.Case,
		Leads:        sess.SortedLeads(),
		Fails:        sess.SortedFails(),
		Letters:      sess.SeenLetters(),
		Requirements: reqs,
		Evidence:     evidence,
		Message:      msg,
	}
	if sess.Case != "" {
		v.CaseLabel = manifest.CaseLabel(sess.Case)
	}
	return v
}

// normalizeLead accepts either surface form of a lead code.
func normalizeLead(lead string) string {
	if q, err := lookup.ParseQuery(lead); err == nil {
		return q.LeadCode()
	}
	return strings.ToUpper(strings.TrimSpace(lead))
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
