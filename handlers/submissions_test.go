// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/danielhkuo/joke-survey/contentstore"
	"github.com/danielhkuo/joke-survey/export"
	"github.com/danielhkuo/joke-survey/metrics"
	"github.com/danielhkuo/joke-survey/models"
	"github.com/danielhkuo/joke-survey/testutil"
)

// stubStore is a content store with scripted failures.
type stubStore struct {
	exists    bool
	existsErr error
	createErr error

	mu      sync.Mutex
	creates int
}

func (s *stubStore) Driver() contentstore.Driver { return contentstore.DriverGitHub }

func (s *stubStore) Exists(context.Context, string) (bool, error) {
	return s.exists, s.existsErr
}

func (s *stubStore) Create(_ context.Context, path string, _ []byte, _ string) (contentstore.Info, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creates++
	if s.createErr != nil {
		return contentstore.Info{}, s.createErr
	}
	return contentstore.Info{Path: path}, nil
}

func newTestHandler(t *testing.T, store contentstore.Store) (*SubmissionHandler, *sql.DB, *metrics.Metrics) {
	t.Helper()
	conn := testutil.SetupTestDB(t)
	m := metrics.New()
	return NewSubmissionHandler(conn, store, m, testutil.GetTestConfig()), conn, m
}

func postRaw(h *SubmissionHandler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/api/submissions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.Submit(w, req)
	return w
}

func postSubmission(h *SubmissionHandler, sessionID string, responses []models.Response) *httptest.ResponseRecorder {
	req := testutil.MakeRequest("POST", "/api/submissions", models.SubmissionRequest{
		SessionID: sessionID,
		Responses: responses,
	}, map[string]string{"User-Agent": "survey-test", "X-Forwarded-For": "203.0.113.7"})
	w := httptest.NewRecorder()
	h.Submit(w, req)
	return w
}

func ledgerCount(t *testing.T, conn *sql.DB) int {
	t.Helper()
	var n int
	if err := conn.QueryRow("SELECT COUNT(*) FROM submission").Scan(&n); err != nil {
		t.Fatalf("Failed to count ledger rows: %v", err)
	}
	return n
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp models.ErrorResponse
	testutil.AssertJSON(t, w, &resp)
	return resp.Message
}

func TestSubmit_Success(t *testing.T) {
	store := contentstore.NewMemory()
	h, conn, m := newTestHandler(t, store)

	w := postSubmission(h, "S300-ABCDEF", testutil.TestResponses("S300-ABCDEF", 2))
	testutil.AssertStatus(t, w, http.StatusCreated)

	var resp models.SubmissionResponse
	testutil.AssertJSON(t, w, &resp)
	if !resp.OK {
		t.Error("Expected ok=true")
	}
	if resp.Path != "submissions/S300-ABCDEF.csv" {
		t.Errorf("Expected path 'submissions/S300-ABCDEF.csv', got '%s'", resp.Path)
	}
	if resp.HTMLURL == nil || *resp.HTMLURL != "memory://submissions/S300-ABCDEF.csv" {
		t.Errorf("Expected html_url from store, got %v", resp.HTMLURL)
	}

	content, ok := store.Content("submissions/S300-ABCDEF.csv")
	if !ok {
		t.Fatal("Expected file in store")
	}
	rows, err := export.Parse(string(content))
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected 2 CSV rows, got %d", len(rows))
	}
	if rows[1]["joke_order"] != "2" || rows[0]["guess_source"] != "Human" || rows[0]["comments_optional"] != "" {
		t.Errorf("Unexpected CSV rows: %v", rows)
	}

	var status, ipHash, userAgent string
	var rowCount int
	var htmlURL sql.NullString
	err = conn.QueryRow(`SELECT status, ip_hash, user_agent, row_count, html_url FROM submission WHERE session_id = $1`, "S300-ABCDEF").
		Scan(&status, &ipHash, &userAgent, &rowCount, &htmlURL)
	if err != nil {
		t.Fatalf("Expected ledger row: %v", err)
	}
	if status != models.SubmissionStored {
		t.Errorf("Expected status 'stored', got '%s'", status)
	}
	if ipHash == "" || ipHash == "203.0.113.7" {
		t.Errorf("Expected hashed IP, got '%s'", ipHash)
	}
	if userAgent != "survey-test" || rowCount != 2 {
		t.Errorf("Unexpected ledger row: ua=%q rows=%d", userAgent, rowCount)
	}
	if htmlURL.String != "memory://submissions/S300-ABCDEF.csv" {
		t.Errorf("Expected html_url in ledger, got %q", htmlURL.String)
	}

	scrape := httptest.NewRecorder()
	m.Handler().ServeHTTP(scrape, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(scrape.Body)
	if !strings.Contains(string(body), `survey_submissions_total{outcome="stored"} 1`) {
		t.Error("Expected stored outcome to be counted")
	}
}

func TestSubmit_Validation(t *testing.T) {
	testCases := []struct {
		name    string
		body    string
		message string
	}{
		{"invalid JSON", `{"sessionId":`, "Invalid JSON payload."},
		{"missing session", `{"responses":[{"joke_id":"J1"}]}`, "Session ID is required."},
		{"blank session", `{"sessionId":"   ","responses":[{"joke_id":"J1"}]}`, "Session ID is required."},
		{"non-string session", `{"sessionId":42,"responses":[{"joke_id":"J1"}]}`, "Session ID is required."},
		{"missing responses", `{"sessionId":"S300-ABCDEF"}`, "No responses were provided."},
		{"empty responses", `{"sessionId":"S300-ABCDEF","responses":[]}`, "No responses were provided."},
		{"responses not a list", `{"sessionId":"S300-ABCDEF","responses":{"joke_id":"J1"}}`, "No responses were provided."},
		{"no objects in list", `{"sessionId":"S300-ABCDEF","responses":[1,"x",null]}`, "No responses were provided."},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			store := &stubStore{}
			h, conn, _ := newTestHandler(t, store)

			w := postRaw(h, tc.body)
			testutil.AssertStatus(t, w, http.StatusBadRequest)
			if msg := errorMessage(t, w); msg != tc.message {
				t.Errorf("Expected message '%s', got '%s'", tc.message, msg)
			}
			if store.creates != 0 {
				t.Error("Expected no store write for a rejected request")
			}
			if n := ledgerCount(t, conn); n != 0 {
				t.Errorf("Expected empty ledger, got %d rows", n)
			}
		})
	}
}

func TestSubmit_SanitizesSessionID(t *testing.T) {
	store := contentstore.NewMemory()
	h, _, _ := newTestHandler(t, store)

	w := postSubmission(h, "  my id/../x ", testutil.TestResponses("x", 1))
	testutil.AssertStatus(t, w, http.StatusCreated)

	var resp models.SubmissionResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Path != "submissions/my_id____x.csv" {
		t.Errorf("Expected sanitized path, got '%s'", resp.Path)
	}
}

func TestSubmit_LooseValues(t *testing.T) {
	store := contentstore.NewMemory()
	h, _, _ := newTestHandler(t, store)

	body := `{"sessionId":"S300-LOOSE2","responses":[{
		"respondent_id":"S300-LOOSE2","joke_order":1,"joke_id":"J1","joke_text":"a, \"quoted\" joke",
		"funniness_1_5":3,"human_likeness_1_5":null,"guess_source":true,
		"time_to_answer_ms":12.5,"device_tags":"phone"
	}]}`
	w := postRaw(h, body)
	testutil.AssertStatus(t, w, http.StatusCreated)

	content, _ := store.Content("submissions/S300-LOOSE2.csv")
	rows, err := export.Parse(string(content))
	if err != nil || len(rows) != 1 {
		t.Fatalf("Expected one row, got %v (%v)", rows, err)
	}
	row := rows[0]

	expected := map[string]string{
		"joke_order":         "1",
		"joke_text":          `a, "quoted" joke`,
		"human_likeness_1_5": "",
		"guess_source":       "true",
		"time_to_answer_ms":  "12.5",
		"theme":              "",
	}
	for col, want := range expected {
		if row[col] != want {
			t.Errorf("Column %s: expected '%s', got '%s'", col, want, row[col])
		}
	}
	if _, ok := row["device_tags"]; ok {
		t.Error("Expected unknown columns to be dropped")
	}
}

func TestSubmit_Duplicate(t *testing.T) {
	store := contentstore.NewMemory()
	h, _, _ := newTestHandler(t, store)

	first := postSubmission(h, "S300-ABCDEF", testutil.TestResponses("S300-ABCDEF", 1))
	testutil.AssertStatus(t, first, http.StatusCreated)
	original, _ := store.Content("submissions/S300-ABCDEF.csv")

	second := postSubmission(h, "S300-ABCDEF", testutil.TestResponses("S300-ABCDEF", 3))
	testutil.AssertStatus(t, second, http.StatusConflict)
	if msg := errorMessage(t, second); msg != msgDuplicate {
		t.Errorf("Expected duplicate message, got '%s'", msg)
	}

	after, _ := store.Content("submissions/S300-ABCDEF.csv")
	if string(after) != string(original) {
		t.Error("Expected stored file to be unchanged")
	}
}

func TestSubmit_PendingClaimBlocksSecondSubmission(t *testing.T) {
	store := &stubStore{}
	h, conn, _ := newTestHandler(t, store)
	testutil.InsertTestSubmission(t, conn, "S300-ABCDEF", models.SubmissionPending)

	w := postSubmission(h, "S300-ABCDEF", testutil.TestResponses("S300-ABCDEF", 1))
	testutil.AssertStatus(t, w, http.StatusConflict)
	if store.creates != 0 {
		t.Error("Expected no store write while another claim is pending")
	}
}

func TestSubmit_FileWrittenOutsideRelay(t *testing.T) {
	store := contentstore.NewMemory()
	if _, err := store.Create(context.Background(), "submissions/S300-ABCDEF.csv", []byte("x"), ""); err != nil {
		t.Fatal(err)
	}
	h, conn, _ := newTestHandler(t, store)

	w := postSubmission(h, "S300-ABCDEF", testutil.TestResponses("S300-ABCDEF", 1))
	testutil.AssertStatus(t, w, http.StatusConflict)

	var status string
	if err := conn.QueryRow(`SELECT status FROM submission WHERE session_id = $1`, "S300-ABCDEF").Scan(&status); err != nil {
		t.Fatal(err)
	}
	if status != models.SubmissionStored {
		t.Errorf("Expected existing file to be recorded as stored, got '%s'", status)
	}
}

func TestSubmit_StoreFailures(t *testing.T) {
	testCases := []struct {
		name     string
		store    contentstore.Store
		status   int
		message  string
		attempts int
	}{
		{
			name:    "not configured",
			store:   contentstore.Unavailable(contentstore.DriverGitHub, &contentstore.ConfigError{Message: "Server is not configured for GitHub uploads."}),
			status:  http.StatusInternalServerError,
			message: "Server is not configured for GitHub uploads.",
		},
		{
			name: "verify failed with status",
			store: &stubStore{existsErr: &contentstore.UpstreamError{
				Driver: contentstore.DriverGitHub, StatusCode: 403, Err: errors.New("forbidden"),
			}},
			status:  http.StatusBadGateway,
			message: "Unable to verify existing submission (GitHub 403).",
		},
		{
			name: "verify failed without response",
			store: &stubStore{existsErr: &contentstore.UpstreamError{
				Driver: contentstore.DriverGitHub, Err: errors.New("dial tcp: refused"),
			}},
			status:  http.StatusBadGateway,
			message: "Unable to verify existing submission (GitHub).",
		},
		{
			name: "upload failed with detail",
			store: &stubStore{createErr: &contentstore.UpstreamError{
				Driver: contentstore.DriverGitHub, StatusCode: 401, Message: "Bad credentials", Err: errors.New("401"),
			}},
			status:   http.StatusBadGateway,
			message:  "Bad credentials",
			attempts: 1,
		},
		{
			name: "upload failed without detail",
			store: &stubStore{createErr: &contentstore.UpstreamError{
				Driver: contentstore.DriverGitHub, StatusCode: 500, Err: errors.New("500"),
			}},
			status:   http.StatusBadGateway,
			message:  "Failed to upload submission to GitHub.",
			attempts: 1,
		},
		{
			name:     "unexpected error",
			store:    &stubStore{createErr: errors.New("boom")},
			status:   http.StatusInternalServerError,
			message:  "Unexpected error uploading to GitHub.",
			attempts: 1,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h, conn, _ := newTestHandler(t, tc.store)

			w := postSubmission(h, "S300-ABCDEF", testutil.TestResponses("S300-ABCDEF", 1))
			testutil.AssertStatus(t, w, tc.status)
			if msg := errorMessage(t, w); msg != tc.message {
				t.Errorf("Expected message '%s', got '%s'", tc.message, msg)
			}
			if stub, ok := tc.store.(*stubStore); ok && stub.creates != tc.attempts {
				t.Errorf("Expected %d create attempts, got %d", tc.attempts, stub.creates)
			}
			// The claim is released so the respondent can retry.
			if n := ledgerCount(t, conn); n != 0 {
				t.Errorf("Expected claim to be released, got %d rows", n)
			}
		})
	}
}

func TestSubmit_StoreReportsExistsOnCreate(t *testing.T) {
	store := &stubStore{createErr: contentstore.ErrExists}
	h, _, _ := newTestHandler(t, store)

	w := postSubmission(h, "S300-ABCDEF", testutil.TestResponses("S300-ABCDEF", 1))
	testutil.AssertStatus(t, w, http.StatusConflict)
}

func TestSubmit_RetryAfterFailure(t *testing.T) {
	store := &stubStore{createErr: &contentstore.UpstreamError{Driver: contentstore.DriverGitHub, StatusCode: 502, Err: errors.New("bad gateway")}}
	h, _, _ := newTestHandler(t, store)

	testutil.AssertStatus(t, postSubmission(h, "S300-ABCDEF", testutil.TestResponses("S300-ABCDEF", 1)), http.StatusBadGateway)

	store.createErr = nil
	testutil.AssertStatus(t, postSubmission(h, "S300-ABCDEF", testutil.TestResponses("S300-ABCDEF", 1)), http.StatusCreated)
}

func TestSubmit_ConcurrentSameSession(t *testing.T) {
	store := contentstore.NewMemory()
	h, _, _ := newTestHandler(t, store)

	const attempts = 8
	codes := make([]int, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			codes[i] = postSubmission(h, "S300-RACE22", testutil.TestResponses("S300-RACE22", 1)).Code
		}(i)
	}
	wg.Wait()

	created, conflicts := 0, 0
	for _, c := range codes {
		switch c {
		case http.StatusCreated:
			created++
		case http.StatusConflict:
			conflicts++
		default:
			t.Errorf("Unexpected status %d", c)
		}
	}
	if created != 1 || conflicts != attempts-1 {
		t.Errorf("Expected 1 created and %d conflicts, got %d and %d", attempts-1, created, conflicts)
	}
}

func TestLookup(t *testing.T) {
	store := contentstore.NewMemory()
	h, _, _ := newTestHandler(t, store)
	testutil.AssertStatus(t, postSubmission(h, "S300-ABCDEF", testutil.TestResponses("S300-ABCDEF", 2)), http.StatusCreated)

	t.Run("found", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/submissions/S300-ABCDEF", nil)
		req.SetPathValue("sessionId", "S300-ABCDEF")
		w := httptest.NewRecorder()
		h.Lookup(w, req)

		testutil.AssertStatus(t, w, http.StatusOK)
		var rec models.SubmissionRecord
		testutil.AssertJSON(t, w, &rec)
		if rec.SessionID != "S300-ABCDEF" || rec.Status != models.SubmissionStored || rec.RowCount != 2 {
			t.Errorf("Unexpected record: %+v", rec)
		}
		if rec.HTMLURL == nil || *rec.HTMLURL != "memory://submissions/S300-ABCDEF.csv" {
			t.Errorf("Expected html_url, got %v", rec.HTMLURL)
		}
		if rec.SubmittedAt.IsZero() {
			t.Error("Expected submitted_at to be set")
		}
	})

	t.Run("not found", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/submissions/S300-ZZZZZZ", nil)
		req.SetPathValue("sessionId", "S300-ZZZZZZ")
		w := httptest.NewRecorder()
		h.Lookup(w, req)
		testutil.AssertStatus(t, w, http.StatusNotFound)
	})

	t.Run("blank id", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/submissions/", nil)
		req.SetPathValue("sessionId", " ")
		w := httptest.NewRecorder()
		h.Lookup(w, req)
		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})
}
