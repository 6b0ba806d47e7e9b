package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/jwebster45206/casefile/internal/game"
)

// DoJSON sends body (if any) as JSON and returns the status code and raw response.
func DoJSON(ctx context.Context, client *http.Client, method, url string, body any) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create %s request: %w", method, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to send %s %s: %w", method, url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, data, nil
}

// CreateSession creates a new session and returns its id.
func CreateSession(ctx context.Context, client *http.Client, baseURL string) (uuid.UUID, error) {
	status, data, err := DoJSON(ctx, client, http.MethodPost, baseURL+"/v1/sessions", nil)
	if err != nil {
		return uuid.Nil, err
	}
	if status != http.StatusCreated {
		return uuid.Nil, fmt.Errorf("create session returned %d: %s", status, string(data))
	}

	var v game.View
	if err := json.Unmarshal(data, &v); err != nil {
		return uuid.Nil, fmt.Errorf("failed to decode created session: %w", err)
	}
	return v.SessionID, nil
}

// GetView reads the current view of a session.
func GetView(ctx context.Context, client *http.Client, baseURL string, sessionID uuid.UUID) (*game.View, error) {
	status, data, err := DoJSON(ctx, client, http.MethodGet, baseURL+"/v1/sessions/"+sessionID.String(), nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("get session returned %d: %s", status, string(data))
	}

	var v game.View
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &v, nil
}

// DeleteSession removes a session created by the runner.
func DeleteSession(ctx context.Context, client *http.Client, baseURL string, sessionID uuid.UUID) error {
	status, data, err := DoJSON(ctx, client, http.MethodDelete, baseURL+"/v1/sessions/"+sessionID.String(), nil)
	if err != nil {
		return err
	}
	if status != http.StatusNoContent {
		return fmt.Errorf("delete session returned %d: %s", status, string(data))
	}
	return nil
}

// stepRequest maps a step to its method, path suffix and body.
func stepRequest(step TestStep) (string, string, any, error) {
	switch step.Action {
	case ActionSearch:
		return http.MethodPost, "/search", map[string]string{"query": step.Input}, nil
	case ActionCase:
		return http.MethodPut, "/case", map[string]string{"case": step.Input}, nil
	case ActionLetter:
		return http.MethodPost, "/letters", map[string]string{"letter": step.Input}, nil
	case ActionCross, ActionRestore:
		return http.MethodPost, "/letters/" + step.Input + "/" + step.Action, nil, nil
	case ActionReq:
		return http.MethodPost, "/requirements", map[string]string{"lead": step.Lead, "letter": step.Input}, nil
	case ActionUnreq:
		return http.MethodDelete, "/requirements", map[string]string{"lead": step.Lead, "letter": step.Input}, nil
	case ActionOpen:
		return http.MethodPost, "/gates/open", map[string]string{"filename": step.Input}, nil
	case ActionView:
		return http.MethodGet, "", nil, nil
	case ActionReset:
		return http.MethodPost, "/reset", nil, nil
	default:
		return "", "", nil, fmt.Errorf("unknown action %q", step.Action)
	}
}
