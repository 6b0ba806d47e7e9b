package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jwebster45206/casefile/pkg/state"
)

// Storage is the key-value string store sessions are saved to.
// Durability and synchronization are up to the implementation.
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// Get returns the value stored under key, or "" when there is none.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	// Clear removes key. Clearing a missing key is not an error.
	Clear(ctx context.Context, key string) error
}

// SessionKey is the storage key of a session.
func SessionKey(id uuid.UUID) string {
	return "session:" + id.String()
}

// SaveSession serializes the whole session under its key.
func SaveSession(ctx context.Context, st Storage, id uuid.UUID, s *state.Session) error {
	if s == nil {
		return errors.New("session cannot be nil")
	}
	data, err := s.Marshal()
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := st.Set(ctx, SessionKey(id), string(data)); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// LoadSession reads a session. The bool result reports whether a saved blob was found.
// A missing blob gives a fresh session; a corrupt blob gives a fresh session and a warning.
func LoadSession(ctx context.Context, st Storage, id uuid.UUID, logger *slog.Logger) (*state.Session, bool, error) {
	data, err := st.Get(ctx, SessionKey(id))
	if err != nil {
		return nil, false, fmt.Errorf("failed to load session: %w", err)
	}
	if data == "" {
		return state.NewSession(), false, nil
	}

	s, err := state.Unmarshal([]byte(data))
	if err != nil {
		if logger != nil {
			logger.Warn("Discarding unreadable session", "session_id", id, "error", err)
		}
		return state.NewSession(), false, nil
	}
	return s, true, nil
}

// DeleteSession clears the saved blob.
func DeleteSession(ctx context.Context, st Storage, id uuid.UUID) error {
	if err := st.Clear(ctx, SessionKey(id)); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
