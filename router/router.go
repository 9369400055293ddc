// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/joke-survey/cliparse"
	"github.com/danielhkuo/joke-survey/contentstore"
	"github.com/danielhkuo/joke-survey/handlers"
	"github.com/danielhkuo/joke-survey/metrics"
	"github.com/danielhkuo/joke-survey/middleware"
)

// Banner is served at GET /.
const Banner = "joke-survey relay v1"

func NewRouter(db *sql.DB, store contentstore.Store, m *metrics.Metrics, cfg cliparse.Config) http.Handler {
	mux := http.NewServeMux()

	// Initialize handlers
	submissionHandler := handlers.NewSubmissionHandler(db, store, m, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Submissions
	mux.HandleFunc("POST /api/submissions", middleware.WithLogging(submissionHandler.Submit))
	mux.HandleFunc("GET /api/submissions/{sessionId}", middleware.WithLogging(submissionHandler.Lookup))

	// Metrics
	if m != nil {
		mux.Handle("GET /metrics", m.Handler())
	}

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(Banner))
	})

	return middleware.CORS(cfg.AllowedOrigin, mux)
}
