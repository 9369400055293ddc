// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package survey implements the respondent session: start, answer each item
// in a random order, finish, and hand the responses to an export gateway.
//
// State moves NotStarted -> InProgress -> Finished. Reset returns to
// NotStarted from anywhere. Every transition is mirrored to a Persister so a
// restarted client resumes where the respondent left off; persistence
// failures are logged and never interrupt the survey.
//
// Answers are gated on readiness: all seven required fields must be set.
// Offensiveness 0 and appropriateness "No" count as set.
package survey
