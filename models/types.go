// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// DefaultTheme is assigned to items whose catalog row has no theme.
const DefaultTheme = "Other"

// CommentMaxLen is the maximum length of an optional comment, in characters.
const CommentMaxLen = 120

// GuessSource is the respondent's guess of who wrote an item.
type GuessSource string

const (
	GuessHuman  GuessSource = "Human"
	GuessAI     GuessSource = "AI"
	GuessUnsure GuessSource = "Can't tell"
)

var GuessSources = []GuessSource{GuessHuman, GuessAI, GuessUnsure}

func (g GuessSource) Valid() bool {
	for _, v := range GuessSources {
		if g == v {
			return true
		}
	}
	return false
}

// HumorType classifies the style of an item.
type HumorType string

const (
	HumorPun           HumorType = "Pun/Wordplay"
	HumorObservational HumorType = "Observational"
	HumorSituational   HumorType = "Situational/Narrative"
	HumorAbsurd        HumorType = "Absurd/Surreal"
	HumorOneLiner      HumorType = "One-liner/Anti-joke"
	HumorUnsure        HumorType = "Unsure"
)

// HumorTypes is ordered; the first member is the fallback for unknown values.
var HumorTypes = []HumorType{
	HumorPun,
	HumorObservational,
	HumorSituational,
	HumorAbsurd,
	HumorOneLiner,
	HumorUnsure,
}

func (h HumorType) Valid() bool {
	for _, v := range HumorTypes {
		if h == v {
			return true
		}
	}
	return false
}

// Appropriateness answers "is this appropriate for a classroom".
type Appropriateness string

const (
	AppropriateYes Appropriateness = "Yes"
	AppropriateNo  Appropriateness = "No"
)

func (a Appropriateness) Valid() bool {
	return a == AppropriateYes || a == AppropriateNo
}

// AttentionResult is the scored outcome of an attention-check item.
type AttentionResult string

const (
	AttentionPass          AttentionResult = "Yes"
	AttentionFail          AttentionResult = "No"
	AttentionNotApplicable AttentionResult = "NA"
)

func (a AttentionResult) Valid() bool {
	return a == AttentionPass || a == AttentionFail || a == AttentionNotApplicable
}

// Themes offered to the respondent when classifying an item.
var Themes = []string{"Animal", "School/Work", "Everyday life", "Relationships", "Food", DefaultTheme}

// Domain types

// Item is one joke from the catalog. Items are immutable once loaded.
type Item struct {
	ID               string `json:"joke_id"`
	Text             string `json:"text"`
	TrueGroup        string `json:"group_true,omitempty"` // hidden from respondents, exported only
	Theme            string `json:"theme"`
	IsAttentionCheck bool   `json:"attention_check"`
}

// Response is the complete answer to one item.
type Response struct {
	RespondentID         string          `json:"respondent_id"`
	Position             int             `json:"joke_order"` // 1-based
	ItemID               string          `json:"joke_id"`
	ItemText             string          `json:"joke_text"`
	TrueGroup            string          `json:"group_true"`
	Funniness            int             `json:"funniness_1_5"`
	HumanLikeness        int             `json:"human_likeness_1_5"`
	GuessedSource        GuessSource     `json:"guess_source"`
	HumorType            HumorType       `json:"humor_type"`
	Theme                string          `json:"theme"`
	Appropriateness      Appropriateness `json:"appropriateness_class"`
	Offensiveness        int             `json:"offensiveness_0_2"`
	AttentionCheckResult AttentionResult `json:"attention_check_pass"`
	LatencyMs            int64           `json:"time_to_answer_ms"`
	Comment              string          `json:"comments_optional,omitempty"`
}

// Relay request types

type SubmissionRequest struct {
	SessionID string     `json:"sessionId"`
	Responses []Response `json:"responses"`
}

// Relay response types

type SubmissionResponse struct {
	OK      bool    `json:"ok"`
	Path    string  `json:"path"`
	HTMLURL *string `json:"html_url"`
}

// Submission statuses recorded in the ledger
const (
	SubmissionPending = "pending"
	SubmissionStored  = "stored"
)

type SubmissionRecord struct {
	SessionID   string    `json:"session_id"`
	Path        string    `json:"path"`
	HTMLURL     *string   `json:"html_url,omitempty"`
	Status      string    `json:"status"`
	Driver      string    `json:"driver"`
	RowCount    int       `json:"row_count"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
