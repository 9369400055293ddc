// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/danielhkuo/joke-survey/auth"
	"github.com/danielhkuo/joke-survey/cliparse"
	"github.com/danielhkuo/joke-survey/contentstore"
	"github.com/danielhkuo/joke-survey/db"
	"github.com/danielhkuo/joke-survey/export"
	"github.com/danielhkuo/joke-survey/metrics"
	"github.com/danielhkuo/joke-survey/middleware"
	"github.com/danielhkuo/joke-survey/models"
)

// MaxSubmissionBytes caps the request body of POST /api/submissions.
const MaxSubmissionBytes = 4 << 20

// SubmissionDir is the store directory submissions are written under.
const SubmissionDir = "submissions"

const msgDuplicate = "A submission for this session already exists."

type SubmissionHandler struct {
	db      *sql.DB
	store   contentstore.Store
	metrics *metrics.Metrics
	cfg     cliparse.Config
}

func NewSubmissionHandler(db *sql.DB, store contentstore.Store, m *metrics.Metrics, cfg cliparse.Config) *SubmissionHandler {
	return &SubmissionHandler{db: db, store: store, metrics: m, cfg: cfg}
}

// submissionPayload is decoded loosely so malformed fields get the same
// answers as missing ones.
type submissionPayload struct {
	SessionID any `json:"sessionId"`
	Responses any `json:"responses"`
}

// SubmissionPath is where the CSV for a sanitized session id is stored.
func SubmissionPath(sanitizedID string) string {
	return SubmissionDir + "/" + sanitizedID + ".csv"
}

// Submit handles POST /api/submissions
func (h *SubmissionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, MaxSubmissionBytes)

	var req submissionPayload
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		h.reject(w, "Invalid JSON payload.")
		return
	}

	sessionID, _ := req.SessionID.(string)
	rows := responseObjects(req.Responses)

	if strings.TrimSpace(sessionID) == "" {
		h.reject(w, "Session ID is required.")
		return
	}
	if len(rows) == 0 {
		h.reject(w, "No responses were provided.")
		return
	}

	sanitized, err := auth.SanitizeSessionID(sessionID)
	if err != nil {
		h.reject(w, "Session ID could not be sanitized.")
		return
	}

	csvText, err := export.SerializeLoose(rows)
	if err != nil {
		slog.Error("failed to serialize submission", "session_id", sanitized, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Unable to prepare submission.")
		return
	}

	path := SubmissionPath(sanitized)
	driver := h.store.Driver()

	// Claim the session in the ledger. The unique index on session_id makes
	// this the only step where two concurrent submissions can race.
	claimID := uuid.NewString()
	ipHash := auth.HashIP(middleware.GetClientIP(r), h.cfg.IPHashSalt)
	_, err = h.db.ExecContext(ctx, `
		INSERT INTO submission (id, session_id, path, status, driver, ip_hash, user_agent, row_count, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, claimID, sanitized, path, models.SubmissionPending, string(driver), ipHash, r.UserAgent(), len(rows), time.Now().UTC())
	if db.IsUniqueViolation(err) {
		h.duplicate(w, sanitized)
		return
	}
	if err != nil {
		slog.Error("failed to claim submission", "session_id", sanitized, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	// Files written outside the relay still count as taken.
	exists, err := h.store.Exists(ctx, path)
	if err != nil {
		h.release(claimID)
		h.storeFailure(w, err, verifyMessage(driver, err))
		return
	}
	if exists {
		h.markStored(claimID, "")
		h.duplicate(w, sanitized)
		return
	}

	start := time.Now()
	info, err := h.store.Create(ctx, path, []byte(csvText), "Add survey submission for "+sanitized)
	h.metrics.ObserveUpload(string(driver), time.Since(start))
	if errors.Is(err, contentstore.ErrExists) {
		h.markStored(claimID, "")
		h.duplicate(w, sanitized)
		return
	}
	if err != nil {
		h.release(claimID)
		h.storeFailure(w, err, uploadMessage(driver, err))
		return
	}

	h.markStored(claimID, info.URL)
	h.metrics.Submission(metrics.OutcomeStored)

	slog.Info("submission stored",
		"session_id", sanitized,
		"path", info.Path,
		"driver", driver,
		"rows", len(rows),
		"size", humanize.Bytes(uint64(len(csvText))),
		"request_id", middleware.RequestID(ctx),
	)

	resp := models.SubmissionResponse{OK: true, Path: path}
	if info.URL != "" {
		resp.HTMLURL = &info.URL
	}
	middleware.JSONResponse(w, http.StatusCreated, resp)
}

// Lookup handles GET /api/submissions/{sessionId}
func (h *SubmissionHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	sanitized, err := auth.SanitizeSessionID(r.PathValue("sessionId"))
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Session ID is required.")
		return
	}

	var rec models.SubmissionRecord
	var htmlURL sql.NullString
	err = h.db.QueryRowContext(r.Context(), `
		SELECT session_id, path, html_url, status, driver, row_count, submitted_at
		FROM submission
		WHERE session_id = $1
	`, sanitized).Scan(&rec.SessionID, &rec.Path, &htmlURL, &rec.Status, &rec.Driver, &rec.RowCount, &rec.SubmittedAt)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "No submission for this session.")
		return
	}
	if err != nil {
		slog.Error("failed to query submission", "session_id", sanitized, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if htmlURL.Valid && htmlURL.String != "" {
		rec.HTMLURL = &htmlURL.String
	}

	middleware.JSONResponse(w, http.StatusOK, rec)
}

func (h *SubmissionHandler) reject(w http.ResponseWriter, message string) {
	h.metrics.Submission(metrics.OutcomeInvalid)
	middleware.ErrorResponse(w, http.StatusBadRequest, message)
}

func (h *SubmissionHandler) duplicate(w http.ResponseWriter, sessionID string) {
	h.metrics.Submission(metrics.OutcomeDuplicate)
	slog.Info("duplicate submission rejected", "session_id", sessionID)
	middleware.ErrorResponse(w, http.StatusConflict, msgDuplicate)
}

// storeFailure answers 500 for configuration problems and 502 for upstream ones.
func (h *SubmissionHandler) storeFailure(w http.ResponseWriter, err error, upstreamMessage string) {
	var cfgErr *contentstore.ConfigError
	if errors.As(err, &cfgErr) {
		h.metrics.Submission(metrics.OutcomeMisconfigured)
		slog.Error("content store not configured", "driver", h.store.Driver(), "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, cfgErr.Message)
		return
	}

	var upErr *contentstore.UpstreamError
	if errors.As(err, &upErr) {
		h.metrics.Submission(metrics.OutcomeUpstreamError)
		slog.Error("content store request failed", "driver", h.store.Driver(), "status", upErr.StatusCode, "error", err)
		middleware.ErrorResponse(w, http.StatusBadGateway, upstreamMessage)
		return
	}

	h.metrics.Submission(metrics.OutcomeUpstreamError)
	slog.Error("unexpected content store error", "driver", h.store.Driver(), "error", err)
	middleware.ErrorResponse(w, http.StatusInternalServerError, fmt.Sprintf("Unexpected error uploading to %s.", h.store.Driver().Title()))
}

// release drops a pending claim so the respondent can retry.
func (h *SubmissionHandler) release(claimID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := h.db.ExecContext(ctx, `DELETE FROM submission WHERE id = $1 AND status = $2`, claimID, models.SubmissionPending)
	if err != nil {
		slog.Error("failed to release submission claim", "claim_id", claimID, "error", err)
	}
}

func (h *SubmissionHandler) markStored(claimID, htmlURL string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var url *string
	if htmlURL != "" {
		url = &htmlURL
	}
	_, err := h.db.ExecContext(ctx, `UPDATE submission SET status = $1, html_url = $2 WHERE id = $3`, models.SubmissionStored, url, claimID)
	if err != nil {
		slog.Error("failed to mark submission stored", "claim_id", claimID, "error", err)
	}
}

func verifyMessage(driver contentstore.Driver, err error) string {
	var upErr *contentstore.UpstreamError
	if errors.As(err, &upErr) && upErr.StatusCode != 0 {
		return fmt.Sprintf("Unable to verify existing submission (%s %d).", driver.Title(), upErr.StatusCode)
	}
	return fmt.Sprintf("Unable to verify existing submission (%s).", driver.Title())
}

func uploadMessage(driver contentstore.Driver, err error) string {
	var upErr *contentstore.UpstreamError
	if errors.As(err, &upErr) && upErr.Message != "" {
		return upErr.Message
	}
	return fmt.Sprintf("Failed to upload submission to %s.", driver.Title())
}

// responseObjects keeps the JSON objects of a decoded responses array.
func responseObjects(v any) []map[string]any {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	rows := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if obj, ok := item.(map[string]any); ok {
			rows = append(rows, obj)
		}
	}
	return rows
}
