// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the survey upload relay.

# Route Registration

NewRouter returns the relay's handler, already wrapped in CORS:

	handler := router.NewRouter(db, store, metrics, cfg)

# Endpoints

	GET  /health                        - Liveness
	GET  /                              - Banner
	GET  /metrics                       - Prometheus exposition
	POST /api/submissions               - Store a finished response set
	GET  /api/submissions/{sessionId}   - Ledger entry for a session

Submission routes are wrapped in middleware.WithLogging.
*/
package router
