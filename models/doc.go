// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines the domain, request, and response types shared by
the survey client and the upload relay.

# Domain Types

  - Item: one joke from the catalog (joke_id, text, group_true, theme, attention_check)
  - Response: one respondent's complete answer to one item

JSON tags on Response match the exported CSV column names, so the relay
can treat a response object and a CSV row interchangeably.

# Enumerations

Guessed source:

	GuessHuman  = "Human"
	GuessAI     = "AI"
	GuessUnsure = "Can't tell"

Humor type (first member is the fallback for unrecognized stored values):

	"Pun/Wordplay", "Observational", "Situational/Narrative",
	"Absurd/Surreal", "One-liner/Anti-joke", "Unsure"

Appropriateness: "Yes" | "No".

Attention-check result: "Yes" | "No" | "NA".

# Relay Types

  - SubmissionRequest: sessionId, responses
  - SubmissionResponse: ok, path, html_url
  - SubmissionRecord: ledger entry returned by the lookup endpoint
  - ErrorResponse: error, message
*/
package models
