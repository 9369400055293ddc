// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package progress

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/danielhkuo/joke-survey/catalog"
	"github.com/danielhkuo/joke-survey/models"
)

// fields is a JSON object whose members are validated one at a time.
type fields map[string]json.RawMessage

func (f fields) present(key string) bool {
	raw, ok := f[key]
	return ok && !bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func (f fields) str(key string) (string, bool) {
	var s string
	if !f.present(key) || json.Unmarshal(f[key], &s) != nil {
		return "", false
	}
	return s, true
}

// text accepts a string or a number and returns its textual form.
func (f fields) text(key string) (string, bool) {
	if s, ok := f.str(key); ok {
		return s, true
	}
	var n json.Number
	if !f.present(key) || json.Unmarshal(f[key], &n) != nil {
		return "", false
	}
	return n.String(), true
}

// integer accepts a JSON number or a numeric string, rounding fractions.
func (f fields) integer(key string) (int64, bool) {
	if !f.present(key) {
		return 0, false
	}
	var v float64
	if err := json.Unmarshal(f[key], &v); err != nil {
		s, ok := f.str(key)
		if !ok {
			return 0, false
		}
		if v, err = strconv.ParseFloat(s, 64); err != nil {
			return 0, false
		}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return int64(math.Round(v)), true
}

func (f fields) boolean(key string) (value bool, ok bool) {
	if !f.present(key) || json.Unmarshal(f[key], &value) != nil {
		return false, false
	}
	return value, true
}

func (f fields) list(key string) ([]json.RawMessage, bool) {
	var l []json.RawMessage
	if !f.present(key) || json.Unmarshal(f[key], &l) != nil {
		return nil, false
	}
	return l, true
}

func reconcile(raw []byte, items []models.Item, respondentID string) (Restored, error) {
	var top fields
	if err := json.Unmarshal(raw, &top); err != nil {
		return Restored{}, fmt.Errorf("parse stored progress: %w", err)
	}

	stored, hasSig := top.str("jokeSignature")
	current := catalog.Signature(items)
	if hasSig && stored != "" && current != "" && stored != current {
		return Restored{}, ErrSignatureMismatch
	}

	order, err := restoreOrder(top, items)
	if err != nil {
		return Restored{}, err
	}

	position := 0
	if idx, ok := top.integer("idx"); ok && idx >= 0 && len(order) > 0 {
		position = int(min(idx, int64(len(order)-1)))
	}

	responses := []models.Response{}
	if list, ok := top.list("responses"); ok {
		textByID := make(map[string]string, len(items))
		for _, item := range items {
			textByID[item.ID] = item.Text
		}
		for _, entry := range list {
			var rf fields
			if json.Unmarshal(entry, &rf) != nil || rf == nil {
				continue
			}
			responses = append(responses, repairResponse(rf, len(responses), respondentID, textByID))
		}
	}

	finished, _ := top.boolean("finished")
	startedFlag, hasStarted := top.boolean("started")
	if !hasStarted {
		startedFlag = len(responses) > 0
	}
	started := !finished && len(order) > 0 && startedFlag

	restored := Restored{
		Snapshot: Snapshot{
			RespondentID: respondentID,
			Order:        order,
			Position:     position,
			Responses:    responses,
			Started:      started,
			Finished:     finished,
		},
	}
	if savedAt, ok := top.str("savedAt"); ok {
		if t, err := time.Parse(time.RFC3339Nano, savedAt); err == nil {
			restored.SavedAt = t
		}
	}
	return restored, nil
}

// restoreOrder maps stored item ids back to live catalog indices. Any id that
// no longer exists, or that maps to an index already used, invalidates the
// whole snapshot. Raw indices are used only
// when no id list was stored, and only if every index is in range.
func restoreOrder(top fields, items []models.Item) ([]int, error) {
	if ids, ok := top.list("orderIds"); ok && len(ids) > 0 {
		byID := catalog.IndexByID(items)
		order := make([]int, 0, len(ids))
		used := make(map[int]bool, len(ids))
		for _, raw := range ids {
			var entry fields = fields{"id": raw}
			id, ok := entry.text("id")
			if !ok {
				return nil, ErrOrderDrift
			}
			idx, ok := byID[id]
			if !ok || used[idx] {
				return nil, ErrOrderDrift
			}
			used[idx] = true
			order = append(order, idx)
		}
		return order, nil
	}

	legacy, ok := top.list("order")
	if !ok || len(legacy) == 0 {
		return []int{}, nil
	}
	order := make([]int, 0, len(legacy))
	seen := make(map[int]bool, len(legacy))
	for _, raw := range legacy {
		var n int
		if json.Unmarshal(raw, &n) != nil || n < 0 || n >= len(items) || seen[n] {
			return []int{}, nil
		}
		seen[n] = true
		order = append(order, n)
	}
	return order, nil
}

// repairResponse rebuilds one stored response. Every field has a fallback, so
// a response is never dropped for a recoverable problem. The respondent id is
// always the live identity, and fields no longer in the schema are ignored.
func repairResponse(f fields, index int, respondentID string, textByID map[string]string) models.Response {
	r := models.Response{RespondentID: respondentID}

	if pos, ok := f.integer("joke_order"); ok && pos >= 1 {
		r.Position = int(pos)
	} else {
		r.Position = index + 1
	}

	r.ItemID, _ = f.text("joke_id")
	if text, ok := f.str("joke_text"); ok {
		r.ItemText = text
	} else {
		r.ItemText = textByID[r.ItemID]
	}
	r.TrueGroup, _ = f.text("group_true")

	if v, ok := f.integer("funniness_1_5"); ok {
		r.Funniness = int(clamp(v, 1, 5))
	}
	if v, ok := f.integer("human_likeness_1_5"); ok {
		r.HumanLikeness = int(clamp(v, 1, 5))
	}

	r.GuessedSource = models.GuessUnsure
	if s, ok := f.str("guess_source"); ok && models.GuessSource(s).Valid() {
		r.GuessedSource = models.GuessSource(s)
	}

	r.HumorType = models.HumorTypes[0]
	if s, ok := f.str("humor_type"); ok && models.HumorType(s).Valid() {
		r.HumorType = models.HumorType(s)
	}

	r.Theme, _ = f.str("theme")

	if s, ok := f.str("appropriateness_class"); ok && models.Appropriateness(s).Valid() {
		r.Appropriateness = models.Appropriateness(s)
	}

	if v, ok := f.integer("offensiveness_0_2"); ok {
		r.Offensiveness = int(clamp(v, 0, 2))
	}

	r.AttentionCheckResult = models.AttentionNotApplicable
	if s, ok := f.str("attention_check_pass"); ok && models.AttentionResult(s).Valid() {
		r.AttentionCheckResult = models.AttentionResult(s)
	}

	if v, ok := f.integer("time_to_answer_ms"); ok && v > 0 {
		r.LatencyMs = v
	}

	if s, ok := f.str("comments_optional"); ok {
		r.Comment = truncateRunes(s, models.CommentMaxLen)
	}
	return r
}

func clamp(v, lo, hi int64) int64 {
	return max(lo, min(v, hi))
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
