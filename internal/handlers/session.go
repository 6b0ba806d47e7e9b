package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jwebster45206/casefile/internal/game"
)

// SelectCaseRequest is the body of PUT /v1/sessions/{id}/case
type SelectCaseRequest struct {
	Case string `json:"case"`
}

// SearchRequest is the body of POST /v1/sessions/{id}/search
type SearchRequest struct {
	Query string `json:"query"`
}

// LetterRequest is the body of POST /v1/sessions/{id}/letters
type LetterRequest struct {
	Letter string `json:"letter"`
}

// RequirementRequest is the body of POST and DELETE /v1/sessions/{id}/requirements
type RequirementRequest struct {
	Lead   string `json:"lead"`
	Letter string `json:"letter"`
}

// OpenGateRequest is the body of POST /v1/sessions/{id}/gates/open
type OpenGateRequest struct {
	Filename string `json:"filename"`
}

type SessionHandler struct {
	engine *game.Engine
	logger *slog.Logger
}

func NewSessionHandler(engine *game.Engine, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{engine: engine, logger: logger}
}

// ServeHTTP handles HTTP requests for session operations
// Routes:
// POST   /v1/sessions                              - Create new session
// GET    /v1/sessions/{id}                         - Read session view
// DELETE /v1/sessions/{id}                         - Delete session
// POST   /v1/sessions/{id}/reset                   - Clear all progress
// PUT    /v1/sessions/{id}/case                    - Select case
// POST   /v1/sessions/{id}/search                  - Search a location
// POST   /v1/sessions/{id}/letters                 - Add letter
// POST   /v1/sessions/{id}/letters/{L}/cross       - Cross out letter
// POST   /v1/sessions/{id}/letters/{L}/restore     - Restore letter
// POST   /v1/sessions/{id}/requirements            - Attach a letter note to a lead
// DELETE /v1/sessions/{id}/requirements            - Detach a letter note
// POST   /v1/sessions/{id}/gates/open              - Open a gated file
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/sessions"), "/")
	if path == "" {
		if r.Method != http.MethodPost {
			h.methodNotAllowed(w, r, "POST")
			return
		}
		h.handleCreate(w, r)
		return
	}

	parts := strings.Split(path, "/")
	sessionID, err := uuid.Parse(parts[0])
	if err != nil {
		h.logger.Warn("Invalid session ID", "id", parts[0], "error", err)
		writeError(w, h.logger, http.StatusBadRequest, ErrorResponse{Error: "Invalid session ID format"})
		return
	}

	route := strings.Join(parts[1:], "/")
	switch {
	case route == "":
		switch r.Method {
		case http.MethodGet:
			h.respond(w, r, func(ctx context.Context) (any, error) { return h.engine.View(ctx, sessionID) })
		case http.MethodDelete:
			h.handleDelete(w, r, sessionID)
		default:
			h.methodNotAllowed(w, r, "GET, DELETE")
		}

	case route == "reset":
		if !h.requireMethod(w, r, http.MethodPost) {
			return
		}
		h.respond(w, r, func(ctx context.Context) (any, error) { return h.engine.Reset(ctx, sessionID) })

	case route == "case":
		if !h.requireMethod(w, r, http.MethodPut) {
			return
		}
		var req SelectCaseRequest
		if !h.decode(w, r, &req) {
			return
		}
		h.respond(w, r, func(ctx context.Context) (any, error) { return h.engine.SelectCase(ctx, sessionID, req.Case) })

	case route == "search":
		if !h.requireMethod(w, r, http.MethodPost) {
			return
		}
		var req SearchRequest
		if !h.decode(w, r, &req) {
			return
		}
		h.respond(w, r, func(ctx context.Context) (any, error) { return h.engine.Search(ctx, sessionID, req.Query) })

	case route == "letters":
		if !h.requireMethod(w, r, http.MethodPost) {
			return
		}
		var req LetterRequest
		if !h.decode(w, r, &req) {
			return
		}
		h.respond(w, r, func(ctx context.Context) (any, error) { return h.engine.AddLetter(ctx, sessionID, req.Letter) })

	case len(parts) == 4 && parts[1] == "letters":
		if !h.requireMethod(w, r, http.MethodPost) {
			return
		}
		letter := parts[2]
		switch parts[3] {
		case "cross":
			h.respond(w, r, func(ctx context.Context) (any, error) { return h.engine.CrossOutLetter(ctx, sessionID, letter) })
		case "restore":
			h.respond(w, r, func(ctx context.Context) (any, error) { return h.engine.RestoreLetter(ctx, sessionID, letter) })
		default:
			h.notFound(w, r)
		}

	case route == "requirements":
		var req RequirementRequest
		switch r.Method {
		case http.MethodPost:
			if !h.decode(w, r, &req) {
				return
			}
			h.respond(w, r, func(ctx context.Context) (any, error) {
				return h.engine.AddRequirement(ctx, sessionID, req.Lead, req.Letter)
			})
		case http.MethodDelete:
			if !h.decode(w, r, &req) {
				return
			}
			h.respond(w, r, func(ctx context.Context) (any, error) {
				return h.engine.RemoveRequirement(ctx, sessionID, req.Lead, req.Letter)
			})
		default:
			h.methodNotAllowed(w, r, "POST, DELETE")
		}

	case route == "gates/open":
		if !h.requireMethod(w, r, http.MethodPost) {
			return
		}
		var req OpenGateRequest
		if !h.decode(w, r, &req) {
			return
		}
		if req.Filename == "" {
			writeError(w, h.logger, http.StatusBadRequest, ErrorResponse{Error: "filename field is required"})
			return
		}
		h.respond(w, r, func(ctx context.Context) (any, error) { return h.engine.OpenGate(ctx, sessionID, req.Filename) })

	default:
		h.notFound(w, r)
	}
}

func (h *SessionHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	h.logger.Debug("Creating new session")

	view, err := h.engine.NewSession(r.Context())
	if err != nil {
		writeEngineError(w, h.logger, err)
		return
	}
	w.Header().Set("Location", "/v1/sessions/"+view.SessionID.String())
	writeJSON(w, h.logger, http.StatusCreated, view)
}

func (h *SessionHandler) handleDelete(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	if err := h.engine.Delete(r.Context(), id); err != nil {
		writeEngineError(w, h.logger, err)
		return
	}
	h.logger.Info("Session deleted", "session_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// respond runs op and writes its result as JSON, or the mapped error.
func (h *SessionHandler) respond(w http.ResponseWriter, r *http.Request, op func(context.Context) (any, error)) {
	result, err := op(r.Context())
	if err != nil {
		h.logger.Debug("Session operation failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeEngineError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, result)
}

func (h *SessionHandler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.logger.Warn("Invalid JSON in request body", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON in request body"})
		return false
	}
	return true
}

func (h *SessionHandler) requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		h.methodNotAllowed(w, r, method)
		return false
	}
	return true
}

func (h *SessionHandler) methodNotAllowed(w http.ResponseWriter, r *http.Request, supported string) {
	h.logger.Warn("Method not allowed for session endpoint", "method", r.Method, "path", r.URL.Path)
	writeError(w, h.logger, http.StatusMethodNotAllowed, ErrorResponse{
		Error: "Method not allowed. Supported methods: " + supported,
	})
}

func (h *SessionHandler) notFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, h.logger, http.StatusNotFound, ErrorResponse{Error: "Unknown route: " + r.URL.Path})
}
