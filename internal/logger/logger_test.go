package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jwebster45206/casefile/internal/config"
)

func TestSetupWriter_ProductionJSON(t *testing.T) {
	var buf bytes.Buffer
	cfg := &config.Config{Environment: "production", LogLevel: slog.LevelInfo}

	log := SetupWriter(cfg, &buf)
	id := uuid.New()
	WithError(WithSession(log, id), errors.New("boom")).Info("hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON log line, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "hello" {
		t.Errorf("expected msg 'hello', got %v", entry["msg"])
	}
	if entry["session_id"] != id.String() {
		t.Errorf("expected session_id %s, got %v", id, entry["session_id"])
	}
	if entry["error"] != "boom" {
		t.Errorf("expected error 'boom', got %v", entry["error"])
	}
}

func TestSetupWriter_DevelopmentText(t *testing.T) {
	var buf bytes.Buffer
	cfg := &config.Config{Environment: "development", LogLevel: slog.LevelWarn}

	log := SetupWriter(cfg, &buf)
	log.Info("filtered")
	WithRequestID(log, "req-1").Warn("kept")

	out := buf.String()
	if strings.Contains(out, "filtered") {
		t.Errorf("info line should be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, "msg=kept") || !strings.Contains(out, "request_id=req-1") {
		t.Errorf("unexpected text output: %q", out)
	}
}
