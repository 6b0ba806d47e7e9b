package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jwebster45206/casefile/internal/game"
	"github.com/jwebster45206/casefile/pkg/conditionals"
	"github.com/jwebster45206/casefile/pkg/gate"
	"github.com/jwebster45206/casefile/pkg/lookup"
	"github.com/jwebster45206/casefile/pkg/manifest"
	"github.com/jwebster45206/casefile/pkg/state"
)

type ErrorResponse struct {
	Error    string `json:"error"`
	Guidance string `json:"guidance,omitempty"`
}

// invalidFormatMessage is shown for anything that is not a location code.
const invalidFormatMessage = "Invalid format. Use Number then Letters (e.g., 237NW)."

// statusFor maps engine errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, game.ErrManifestUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, game.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, lookup.ErrInvalidFormat),
		errors.Is(err, state.ErrInvalidLetter),
		errors.Is(err, game.ErrUnknownCase),
		errors.Is(err, gate.ErrNotGated):
		return http.StatusBadRequest
	case errors.Is(err, game.ErrNoCaseSelected),
		errors.Is(err, game.ErrUnknownLead),
		errors.Is(err, game.ErrUnknownEvidence),
		errors.Is(err, state.ErrUnknownLetter):
		return http.StatusConflict
	case errors.Is(err, conditionals.ErrMalformedRule):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// writeEngineError writes the error response for an engine failure. Server errors are logged
// and hidden from the client.
func writeEngineError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := statusFor(err)
	resp := ErrorResponse{Error: err.Error()}

	switch {
	case status == http.StatusInternalServerError:
		logger.Error("Engine operation failed", "error", err)
		resp.Error = "Internal server error"
	case errors.Is(err, lookup.ErrInvalidFormat):
		resp.Error = invalidFormatMessage
	case errors.Is(err, game.ErrManifestUnavailable):
		resp.Guidance = manifest.LoadGuidance
	}

	writeError(w, logger, status, resp)
}

func writeError(w http.ResponseWriter, logger *slog.Logger, status int, resp ErrorResponse) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.Error("Failed to encode error response", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}
