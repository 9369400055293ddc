// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package progress

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/danielhkuo/joke-survey/catalog"
	"github.com/danielhkuo/joke-survey/kvstore"
	"github.com/danielhkuo/joke-survey/models"
)

// StorageKey holds the serialized session snapshot.
const StorageKey = "survey_progress_v1"

var (
	ErrSignatureMismatch = errors.New("stored progress does not match current dataset")
	ErrOrderDrift        = errors.New("failed to reconcile stored order with current jokes")
)

// Snapshot is everything needed to rebuild a session.
type Snapshot struct {
	RespondentID string
	Order        []int // indices into the item catalog
	Position     int
	Responses    []models.Response
	Started      bool
	Finished     bool
}

// HasProgress reports whether the snapshot is worth keeping.
func (s Snapshot) HasProgress() bool {
	return s.Started || s.Finished || len(s.Responses) > 0 || len(s.Order) > 0
}

// Restored is a reconciled snapshot plus the time it was written.
type Restored struct {
	Snapshot
	SavedAt time.Time
}

// record is the persisted layout. Order is stored both as item ids, which
// survive catalog reordering, and as raw indices for older readers.
type record struct {
	RespondentID  string            `json:"respondentId"`
	Order         []int             `json:"order"`
	OrderIDs      []string          `json:"orderIds"`
	Idx           int               `json:"idx"`
	Responses     []models.Response `json:"responses"`
	Started       bool              `json:"started"`
	Finished      bool              `json:"finished"`
	JokeSignature string            `json:"jokeSignature"`
	SavedAt       time.Time         `json:"savedAt"`
}

// Store mirrors session snapshots into a kvstore.Store.
type Store struct {
	kv     kvstore.Store
	logger *slog.Logger
	now    func() time.Time
}

func New(kv kvstore.Store, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{kv: kv, logger: logger, now: time.Now}
}

// Save writes snap, or clears storage when snap carries no progress.
func (s *Store) Save(items []models.Item, snap Snapshot) error {
	if !snap.HasProgress() {
		return s.Clear()
	}

	orderIDs := make([]string, len(snap.Order))
	for i, idx := range snap.Order {
		if idx >= 0 && idx < len(items) {
			orderIDs[i] = items[idx].ID
		}
	}
	responses := snap.Responses
	if responses == nil {
		responses = []models.Response{}
	}

	b, err := json.Marshal(record{
		RespondentID:  snap.RespondentID,
		Order:         snap.Order,
		OrderIDs:      orderIDs,
		Idx:           snap.Position,
		Responses:     responses,
		Started:       snap.Started,
		Finished:      snap.Finished,
		JokeSignature: catalog.Signature(items),
		SavedAt:       s.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal progress: %w", err)
	}
	if err := s.kv.Set(StorageKey, string(b)); err != nil {
		return fmt.Errorf("persist progress: %w", err)
	}
	return nil
}

// Clear removes any stored snapshot.
func (s *Store) Clear() error {
	if err := s.kv.Remove(StorageKey); err != nil {
		return fmt.Errorf("clear progress: %w", err)
	}
	return nil
}

// Load restores a snapshot saved against items. Anything that cannot be
// reconciled is logged, removed from storage, and reported as ok=false so
// the caller starts fresh.
func (s *Store) Load(items []models.Item, respondentID string) (Restored, bool) {
	raw, ok, err := s.kv.Get(StorageKey)
	if err != nil {
		s.logger.Warn("failed to read survey progress", "error", err)
		return Restored{}, false
	}
	if !ok || raw == "" {
		return Restored{}, false
	}

	restored, err := reconcile([]byte(raw), items, respondentID)
	if err != nil {
		s.logger.Warn("failed to restore survey progress", "error", err)
		if clearErr := s.Clear(); clearErr != nil {
			s.logger.Warn("failed to discard survey progress", "error", clearErr)
		}
		return Restored{}, false
	}

	s.logger.Info("survey progress restored",
		"position", restored.Position,
		"responses", len(restored.Responses),
		"started", restored.Started,
		"finished", restored.Finished,
	)
	return restored, true
}
