// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/danielhkuo/joke-survey/models"
)

// SubmissionsPath is the relay endpoint that accepts finished response sets.
const SubmissionsPath = "/api/submissions"

// RelayError is a non-2xx answer from the relay.
type RelayError struct {
	StatusCode int
	Message    string
}

func (e *RelayError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("Unable to submit survey (status %d).", e.StatusCode)
}

// Duplicate reports whether the relay already holds a submission for the session.
func (e *RelayError) Duplicate() bool {
	return e.StatusCode == http.StatusConflict
}

// RelayClient posts response sets to the upload relay.
type RelayClient struct {
	baseURL string
	client  *http.Client
}

func NewRelayClient(baseURL string, client *http.Client) *RelayClient {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &RelayClient{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

// Upload sends one submission. Any non-2xx status is returned as *RelayError.
func (c *RelayClient) Upload(ctx context.Context, sessionID string, responses []models.Response) (models.SubmissionResponse, error) {
	body, err := json.Marshal(models.SubmissionRequest{SessionID: sessionID, Responses: responses})
	if err != nil {
		return models.SubmissionResponse{}, fmt.Errorf("encode submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+SubmissionsPath, bytes.NewReader(body))
	if err != nil {
		return models.SubmissionResponse{}, fmt.Errorf("build submission request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return models.SubmissionResponse{}, fmt.Errorf("send submission: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errBody models.ErrorResponse
		_ = json.Unmarshal(raw, &errBody)
		msg := errBody.Message
		if msg == "" {
			msg = errBody.Error
		}
		return models.SubmissionResponse{}, &RelayError{StatusCode: resp.StatusCode, Message: msg}
	}

	var out models.SubmissionResponse
	if len(raw) > 0 {
		// A success body that cannot be decoded still counts as success.
		_ = json.Unmarshal(raw, &out)
	}
	out.OK = true
	return out, nil
}
