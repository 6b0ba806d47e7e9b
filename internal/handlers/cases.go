package handlers

import (
	"log/slog"
	"net/http"

	"github.com/jwebster45206/casefile/internal/game"
)

type CasesResponse struct {
	Cases []game.CaseInfo `json:"cases"`
}

// CasesHandler lists the selectable cases.
type CasesHandler struct {
	engine *game.Engine
	logger *slog.Logger
}

func NewCasesHandler(engine *game.Engine, logger *slog.Logger) *CasesHandler {
	return &CasesHandler{engine: engine, logger: logger}
}

// ServeHTTP handles GET /v1/cases
func (h *CasesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		h.logger.Warn("Method not allowed for cases endpoint", "method", r.Method)
		writeError(w, h.logger, http.StatusMethodNotAllowed, ErrorResponse{
			Error: "Method not allowed. Supported methods: GET",
		})
		return
	}

	cases, err := h.engine.Cases()
	if err != nil {
		writeEngineError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, CasesResponse{Cases: cases})
}
