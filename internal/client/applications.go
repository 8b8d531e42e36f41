package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"tink/internal/model"
)

// DefaultErrorMessage is reported when the API gives no usable message
const DefaultErrorMessage = "Failed to apply resolution"

// maxMessageLength caps plain text error bodies surfaced to operators
const maxMessageLength = 300

// APIError is a non-success response from the Applications API
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// ApplicationsClient applies resolutions through the Applications API
type ApplicationsClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewApplicationsClient creates a client for the API at baseURL
func NewApplicationsClient(baseURL, token string, timeout time.Duration) *ApplicationsClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &ApplicationsClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// ApplyResolution performs the single state change a resolution stands for
func (c *ApplicationsClient) ApplyResolution(ctx context.Context, applicationID int64, action model.Action, roomID *int64) error {
	switch action {
	case model.ActionApprove:
		return c.post(ctx, fmt.Sprintf("/applications/%d/approve/", applicationID), nil)
	case model.ActionReject:
		return c.post(ctx, fmt.Sprintf("/applications/%d/reject/", applicationID), nil)
	case model.ActionAssignRoom:
		if roomID == nil {
			return fmt.Errorf("assign_room for application %d requires a room", applicationID)
		}
		return c.post(ctx, fmt.Sprintf("/applications/%d/assign-room/", applicationID),
			map[string]interface{}{"room_id": *roomID})
	default:
		return fmt.Errorf("unsupported action %q", action)
	}
}

func (c *ApplicationsClient) post(ctx context.Context, path string, payload interface{}) error {
	if payload == nil {
		payload = map[string]interface{}{}
	}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    extractMessage(body),
	}
}

// extractMessage pulls the operator facing message out of an error body
func extractMessage(body []byte) string {
	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err == nil {
		for _, key := range []string{"detail", "error", "message"} {
			if msg, ok := payload[key].(string); ok && strings.TrimSpace(msg) != "" {
				return msg
			}
		}
		// Field errors, e.g. {"room_id": ["Room is full."]}
		for _, v := range payload {
			if list, ok := v.([]interface{}); ok && len(list) > 0 {
				if msg, ok := list[0].(string); ok && msg != "" {
					return msg
				}
			}
		}
		return DefaultErrorMessage
	}

	text := strings.TrimSpace(string(body))
	if text == "" || len(text) > maxMessageLength || strings.HasPrefix(text, "<") {
		return DefaultErrorMessage
	}
	return text
}
