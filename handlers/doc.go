// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers implements the relay's HTTP handlers.

# Submissions

SubmissionHandler accepts a finished response set and writes it once, as
CSV, to submissions/<sanitized session id>.csv in the configured content
store.

	POST /api/submissions
	{"sessionId": "S300-K7QX2M", "responses": [ ... ]}

Responses are read as loose JSON objects and rendered column by column, so
a client sending numbers as strings, or extra keys, still produces a valid
file.

# Status Codes

	201 {"ok": true, "path": ..., "html_url": ...}
	400 invalid JSON, missing session id, no responses
	409 a submission for this session already exists
	500 content store not configured
	502 content store failed to verify or write the file

# Ledger

Every attempt first claims the session in the submission table. The unique
index on session_id turns concurrent submissions for one session into a
single winner; the others get 409 without touching the store. A claim is
released when the store write fails so the respondent can retry.

	GET /api/submissions/{sessionId}

returns the ledger entry, or 404.
*/
package handlers
