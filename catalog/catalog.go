// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package catalog

import (
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/danielhkuo/joke-survey/models"
)

// Recognized catalog columns
const (
	ColumnID             = "joke_id"
	ColumnText           = "text"
	ColumnTrueGroup      = "group_true"
	ColumnTheme          = "theme"
	ColumnAttentionCheck = "attention_check"
)

// Parse converts delimited catalog text into items.
//
// Parsing is best-effort: absent fields fall back to defaults and a malformed
// tail is dropped rather than failing the whole catalog. Rows with empty text
// are kept here; use Usable to filter them.
func Parse(content string) []models.Item {
	r := csv.NewReader(strings.NewReader(content))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return []models.Item{}
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := columns[name]; !dup {
			columns[name] = i
		}
	}

	items := []models.Item{}
	for row := 0; ; row++ {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}
		items = append(items, parseRow(columns, record, row))
	}
	return items
}

func parseRow(columns map[string]int, record []string, row int) models.Item {
	field := func(name string) (string, bool) {
		i, ok := columns[name]
		if !ok || i >= len(record) {
			return "", false
		}
		return record[i], true
	}

	item := models.Item{
		ID:    "J" + strconv.Itoa(row+1),
		Theme: models.DefaultTheme,
	}
	if id, ok := field(ColumnID); ok && strings.TrimSpace(id) != "" {
		item.ID = strings.TrimSpace(id)
	}
	if text, ok := field(ColumnText); ok {
		item.Text = strings.TrimSpace(text)
	}
	if group, ok := field(ColumnTrueGroup); ok {
		item.TrueGroup = strings.TrimSpace(group)
	}
	if theme, ok := field(ColumnTheme); ok && strings.TrimSpace(theme) != "" {
		item.Theme = strings.TrimSpace(theme)
	}
	if flag, ok := field(ColumnAttentionCheck); ok {
		item.IsAttentionCheck = strings.EqualFold(strings.TrimSpace(flag), "true")
	}
	return item
}

// Usable drops items that have no text to show, and any later item that
// repeats the id of one already kept. Item ids are unique in the result.
func Usable(items []models.Item) []models.Item {
	out := make([]models.Item, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		if item.Text == "" || seen[item.ID] {
			continue
		}
		seen[item.ID] = true
		out = append(out, item)
	}
	return out
}

// Signature fingerprints the set of item ids, independent of row order.
// An empty catalog has an empty signature.
func Signature(items []models.Item) string {
	if len(items) == 0 {
		return ""
	}
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	sort.Strings(ids)
	sum := sha256.Sum256([]byte(strings.Join(ids, "|")))
	return hex.EncodeToString(sum[:])
}

// IndexByID maps item ids to their position in items.
func IndexByID(items []models.Item) map[string]int {
	idx := make(map[string]int, len(items))
	for i, item := range items {
		if _, dup := idx[item.ID]; !dup {
			idx[item.ID] = i
		}
	}
	return idx
}
