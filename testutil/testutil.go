// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielhkuo/joke-survey/cliparse"
	"github.com/danielhkuo/joke-survey/db"
	"github.com/danielhkuo/joke-survey/models"
)

// SetupTestDB creates a fresh ledger database with the full schema in a
// temporary sqlite file. It is closed when the test ends.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	url := "file:" + filepath.Join(t.TempDir(), "ledger.db")
	conn, err := db.Open(db.TypeSQLite, url)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:         3318,
		DatabaseURL:  "file::memory:",
		DatabaseType: db.TypeSQLite,
		StoreDriver:  "memory",
		GitHubBranch: "main",
		IPHashSalt:   "test-ip-salt",
	}
}

// InsertTestSubmission writes a ledger row directly and returns its id.
// status should be "pending" or "stored".
func InsertTestSubmission(t *testing.T, conn *sql.DB, sessionID, status string) string {
	t.Helper()

	id := "test-" + sessionID
	_, err := conn.Exec(`
		INSERT INTO submission (id, session_id, path, status, driver, row_count, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, id, sessionID, "submissions/"+sessionID+".csv", status, "memory", 1, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test submission: %v", err)
	}

	return id
}

// TestResponses returns n valid responses for respondentID in presentation order.
func TestResponses(respondentID string, n int) []models.Response {
	out := make([]models.Response, n)
	for i := range out {
		out[i] = models.Response{
			RespondentID:         respondentID,
			Position:             i + 1,
			ItemID:               "J" + string(rune('1'+i)),
			ItemText:             "joke",
			TrueGroup:            "human",
			Funniness:            3,
			HumanLikeness:        4,
			GuessedSource:        models.GuessHuman,
			HumorType:            models.HumorPun,
			Theme:                "Animal",
			Appropriateness:      models.AppropriateYes,
			Offensiveness:        0,
			AttentionCheckResult: models.AttentionNotApplicable,
			LatencyMs:            1200,
		}
	}
	return out
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
