// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/danielhkuo/joke-survey/auth"
	"github.com/danielhkuo/joke-survey/models"
)

// Columns is the fixed header of every exported file, in order.
var Columns = []string{
	"respondent_id",
	"joke_order",
	"joke_id",
	"joke_text",
	"group_true",
	"funniness_1_5",
	"human_likeness_1_5",
	"guess_source",
	"humor_type",
	"theme",
	"appropriateness_class",
	"offensiveness_0_2",
	"attention_check_pass",
	"time_to_answer_ms",
	"comments_optional",
}

// Record renders one response in Columns order.
func Record(r models.Response) []string {
	return []string{
		r.RespondentID,
		strconv.Itoa(r.Position),
		r.ItemID,
		r.ItemText,
		r.TrueGroup,
		strconv.Itoa(r.Funniness),
		strconv.Itoa(r.HumanLikeness),
		string(r.GuessedSource),
		string(r.HumorType),
		r.Theme,
		string(r.Appropriateness),
		strconv.Itoa(r.Offensiveness),
		string(r.AttentionCheckResult),
		strconv.FormatInt(r.LatencyMs, 10),
		r.Comment,
	}
}

// Serialize renders responses as CSV with a header row.
func Serialize(responses []models.Response) (string, error) {
	rows := make([][]string, len(responses))
	for i, r := range responses {
		rows[i] = Record(r)
	}
	return write(rows)
}

// SerializeLoose renders loosely typed response objects, such as decoded
// request bodies, column by column. Unknown keys are ignored.
func SerializeLoose(rows []map[string]any) (string, error) {
	records := make([][]string, len(rows))
	for i, row := range rows {
		rec := make([]string, len(Columns))
		for j, col := range Columns {
			rec[j] = FormatValue(row[col])
		}
		records[i] = rec
	}
	return write(records)
}

// FormatValue renders a single decoded JSON value as cell text. Missing
// values become empty and finite numbers pass through unchanged.
func FormatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case json.Number:
		return v.String()
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Sprint(v)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		if b, err := json.Marshal(v); err == nil {
			return string(b)
		}
		return fmt.Sprint(v)
	}
}

func write(records [][]string) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.UseCRLF = true
	if err := w.Write(Columns); err != nil {
		return "", fmt.Errorf("write header: %w", err)
	}
	if err := w.WriteAll(records); err != nil {
		return "", fmt.Errorf("write rows: %w", err)
	}
	// No trailing line break after the last row.
	return strings.TrimSuffix(buf.String(), "\r\n"), nil
}

// Parse reads exported CSV back into column-keyed rows.
func Parse(content string) ([]map[string]string, error) {
	r := csv.NewReader(strings.NewReader(content))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return []map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	rows := []map[string]string{}
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(rows)+1, err)
		}
		row := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(rec) {
				row[name] = rec[i]
			} else {
				row[name] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// FileName is the download name for a respondent's results. The id is
// sanitized the same way the relay sanitizes storage paths.
func FileName(respondentID string) string {
	safe, err := auth.SanitizeSessionID(respondentID)
	if err != nil {
		safe = "anonymous"
	}
	return "responses_" + safe + ".csv"
}

// WriteFile serializes responses into dir and returns the file path.
func WriteFile(dir, respondentID string, responses []models.Response) (string, error) {
	content, err := Serialize(responses)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(dir, FileName(respondentID))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return path, nil
}
