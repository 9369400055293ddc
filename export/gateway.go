// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package export

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/danielhkuo/joke-survey/models"
)

// Status is the state of the most recent submission attempt.
type Status int

const (
	StatusIdle Status = iota
	StatusUploading
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusUploading:
		return "uploading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

var (
	ErrSubmitInFlight   = errors.New("a submission is already in progress")
	ErrAlreadySubmitted = errors.New("responses have already been submitted")
	ErrMissingSession   = errors.New("missing session identifier")
	ErrNoResponses      = errors.New("no responses to submit")
	ErrNoUploader       = errors.New("submission is not configured")
)

// Messages shown to the respondent.
const (
	msgMissingSession = "Missing session identifier. Please refresh and try again."
	msgNoResponses    = "No responses found to submit."
	msgUnexpected     = "Unexpected error submitting survey."
	msgUnreachable    = "Unable to reach the submission server. Check your connection and try again."
)

// Uploader delivers a finished response set somewhere durable.
type Uploader interface {
	Upload(ctx context.Context, sessionID string, responses []models.Response) (models.SubmissionResponse, error)
}

// Gateway guards an Uploader against resubmission and keeps the
// user-facing outcome of the last attempt.
//
// A submission runs in three steps so that the upload itself can happen
// off the caller's thread: Begin checks the guards and marks the gateway
// as uploading, Upload performs the exchange without touching gateway
// state, and Finish records the outcome. Submit runs all three in order.
type Gateway struct {
	uploader  Uploader
	status    Status
	message   string
	url       string
	duplicate bool
}

func NewGateway(uploader Uploader) *Gateway {
	return &Gateway{uploader: uploader}
}

func (g *Gateway) Status() Status { return g.status }

// Message is the error shown to the respondent, empty unless Status is StatusError.
func (g *Gateway) Message() string { return g.message }

// URL is the stored file's location after a successful upload, if the relay reported one.
func (g *Gateway) URL() string { return g.url }

// Blocked reports whether another submission attempt would be refused.
func (g *Gateway) Blocked() bool {
	return g.status == StatusUploading || g.status == StatusSuccess || g.duplicate
}

// Begin validates a submission attempt and marks the gateway as uploading.
// Guard violations return an error without changing state. A missing
// session id or empty response set moves the gateway to StatusError.
func (g *Gateway) Begin(sessionID string, count int) error {
	switch {
	case g.status == StatusUploading:
		return ErrSubmitInFlight
	case g.status == StatusSuccess || g.duplicate:
		return ErrAlreadySubmitted
	}

	if strings.TrimSpace(sessionID) == "" {
		g.fail(msgMissingSession)
		return ErrMissingSession
	}
	if count == 0 {
		g.fail(msgNoResponses)
		return ErrNoResponses
	}

	g.status = StatusUploading
	g.message = ""
	g.url = ""
	return nil
}

// Upload performs the exchange with the underlying uploader.
func (g *Gateway) Upload(ctx context.Context, sessionID string, responses []models.Response) (models.SubmissionResponse, error) {
	if g.uploader == nil {
		return models.SubmissionResponse{}, ErrNoUploader
	}
	return g.uploader.Upload(ctx, sessionID, responses)
}

// Finish records the outcome of an Upload started with Begin.
func (g *Gateway) Finish(resp models.SubmissionResponse, err error) {
	if g.status != StatusUploading {
		return
	}
	if err != nil {
		var relayErr *RelayError
		if errors.As(err, &relayErr) {
			g.duplicate = relayErr.Duplicate()
			g.fail(relayErr.Error())
			return
		}
		// Only relay answers carry text meant for the respondent.
		slog.Error("submission failed", "error", err)
		if errors.Is(err, ErrNoUploader) {
			g.fail(msgUnexpected)
			return
		}
		g.fail(msgUnreachable)
		return
	}

	g.status = StatusSuccess
	g.message = ""
	if resp.HTMLURL != nil {
		g.url = *resp.HTMLURL
	}
}

// Submit runs a full submission synchronously.
func (g *Gateway) Submit(ctx context.Context, sessionID string, responses []models.Response) error {
	if err := g.Begin(sessionID, len(responses)); err != nil {
		return err
	}
	resp, err := g.Upload(ctx, sessionID, responses)
	g.Finish(resp, err)
	return err
}

// Reset returns the gateway to StatusIdle and lifts every guard.
func (g *Gateway) Reset() {
	*g = Gateway{uploader: g.uploader}
}

func (g *Gateway) fail(message string) {
	if message == "" {
		message = msgUnexpected
	}
	g.status = StatusError
	g.message = message
}
