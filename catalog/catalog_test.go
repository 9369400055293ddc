// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/danielhkuo/joke-survey/models"
)

const sampleCSV = `joke_id,text,group_true,theme,attention_check
H1,"A horse walks into a bar. Bartender says: Why the long face?",H,Other,false
A1,"I would tell you a UDP joke but you might not get it.",AI_N,Technology,false
ATT,"(Attention check)",AI_N,Other,true`

func TestParse_Sample(t *testing.T) {
	items := Parse(sampleCSV)
	if len(items) != 3 {
		t.Fatalf("Expected 3 items, got %d", len(items))
	}
	if items[0].ID != "H1" {
		t.Errorf("Expected first id H1, got %s", items[0].ID)
	}
	if items[1].Theme != "Technology" {
		t.Errorf("Expected theme Technology, got %s", items[1].Theme)
	}
	if items[1].TrueGroup != "AI_N" {
		t.Errorf("Expected group AI_N, got %s", items[1].TrueGroup)
	}
	if !items[2].IsAttentionCheck {
		t.Error("Expected ATT to be an attention check")
	}
	if items[0].IsAttentionCheck {
		t.Error("Expected H1 not to be an attention check")
	}
}

func TestParse_Defaults(t *testing.T) {
	items := Parse("joke_id,text\nJ1,\"Hi\"")
	if len(items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(items))
	}
	if items[0].Theme != models.DefaultTheme {
		t.Errorf("Expected default theme %q, got %q", models.DefaultTheme, items[0].Theme)
	}
	if items[0].IsAttentionCheck {
		t.Error("Expected attention_check to default to false")
	}
	if items[0].Text != "Hi" {
		t.Errorf("Expected text Hi, got %q", items[0].Text)
	}
}

func TestParse_AttentionCheckCoercion(t *testing.T) {
	tests := []struct {
		literal string
		want    bool
	}{
		{"true", true},
		{"TRUE", true},
		{"True", true},
		{" true ", true},
		{"false", false},
		{"yes", false},
		{"1", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.literal, func(t *testing.T) {
			items := Parse("joke_id,text,attention_check\nX,hello," + tt.literal)
			if len(items) != 1 {
				t.Fatalf("Expected 1 item, got %d", len(items))
			}
			if items[0].IsAttentionCheck != tt.want {
				t.Errorf("attention_check %q: expected %v, got %v", tt.literal, tt.want, items[0].IsAttentionCheck)
			}
		})
	}
}

func TestParse_SynthesizesMissingIDs(t *testing.T) {
	items := Parse("text\nfirst\n\nsecond\n")
	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(items))
	}
	if items[0].ID != "J1" || items[1].ID != "J2" {
		t.Errorf("Expected J1, J2, got %s, %s", items[0].ID, items[1].ID)
	}
}

func TestParse_ShortRowsDegradeToDefaults(t *testing.T) {
	items := Parse("joke_id,text,group_true,theme,attention_check\nK9,  padded text  ")
	if len(items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(items))
	}
	item := items[0]
	if item.Text != "padded text" {
		t.Errorf("Expected trimmed text, got %q", item.Text)
	}
	if item.Theme != models.DefaultTheme || item.TrueGroup != "" || item.IsAttentionCheck {
		t.Errorf("Expected defaults, got %+v", item)
	}
}

func TestParse_EmptyInput(t *testing.T) {
	if items := Parse(""); len(items) != 0 {
		t.Errorf("Expected no items, got %d", len(items))
	}
}

func TestUsable_DropsBlankText(t *testing.T) {
	items := Parse("joke_id,text\nA,hello\nB,   \nC,world")
	if len(items) != 3 {
		t.Fatalf("Expected parser to keep 3 rows, got %d", len(items))
	}
	usable := Usable(items)
	if len(usable) != 2 {
		t.Fatalf("Expected 2 usable items, got %d", len(usable))
	}
	if usable[0].ID != "A" || usable[1].ID != "C" {
		t.Errorf("Unexpected usable items: %+v", usable)
	}
}

func TestUsable_DropsRepeatedIDs(t *testing.T) {
	usable := Usable(Parse("joke_id,text\nA,first\nA,second\nB,third\nC,  \nC,fourth"))

	if len(usable) != 3 {
		t.Fatalf("Expected 3 usable items, got %d: %+v", len(usable), usable)
	}
	if usable[0].ID != "A" || usable[0].Text != "first" {
		t.Errorf("Expected the first A row to win, got %+v", usable[0])
	}
	if usable[2].ID != "C" || usable[2].Text != "fourth" {
		t.Errorf("Expected a blank row not to claim its id, got %+v", usable[2])
	}
	if len(IndexByID(usable)) != len(usable) {
		t.Error("Expected every usable item to have a distinct id")
	}
}

func TestSignature(t *testing.T) {
	abc := []models.Item{{ID: "A"}, {ID: "B"}, {ID: "C"}}
	cba := []models.Item{{ID: "C"}, {ID: "B"}, {ID: "A"}}
	abd := []models.Item{{ID: "A"}, {ID: "B"}, {ID: "D"}}

	if Signature(abc) != Signature(cba) {
		t.Error("Signature should not depend on order")
	}
	if Signature(abc) == Signature(abd) {
		t.Error("Signature should change when the id set changes")
	}
	if Signature(nil) != "" {
		t.Error("Empty catalog should have empty signature")
	}
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jokes.csv")
	if err := os.WriteFile(path, []byte(sampleCSV+"\nBLANK,   ,H,Other,false"), 0o644); err != nil {
		t.Fatal(err)
	}

	items, err := Load(context.Background(), path, nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(items) != 3 {
		t.Errorf("Expected 3 usable items, got %d", len(items))
	}
	if _, ok := IndexByID(items)["BLANK"]; ok {
		t.Error("Blank row should have been dropped")
	}
}

func TestLoad_FromHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/jokes.csv" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(sampleCSV))
	}))
	defer srv.Close()

	items, err := Load(context.Background(), srv.URL+"/jokes.csv", srv.Client())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(items) != 3 {
		t.Errorf("Expected 3 items, got %d", len(items))
	}

	if _, err := Load(context.Background(), srv.URL+"/missing.csv", srv.Client()); err == nil {
		t.Error("Expected error for 404 catalog")
	}
}

func TestLoad_NoUsableItems(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := os.WriteFile(path, []byte("joke_id,text\nA,\nB,  "), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(context.Background(), path, nil)
	if !errors.Is(err, ErrNoItems) {
		t.Errorf("Expected ErrNoItems, got %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope.csv"), nil)
	if err == nil {
		t.Error("Expected error for missing file")
	}
}
