// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package survey

import (
	"context"
	"errors"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/danielhkuo/joke-survey/export"
	"github.com/danielhkuo/joke-survey/models"
	"github.com/danielhkuo/joke-survey/progress"
	"github.com/danielhkuo/joke-survey/randomize"
)

// State is the position of a session in its lifecycle.
type State int

const (
	NotStarted State = iota
	InProgress
	Finished
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case InProgress:
		return "in_progress"
	case Finished:
		return "finished"
	default:
		return "unknown"
	}
}

var (
	ErrEmptyCatalog   = errors.New("no items available")
	ErrAlreadyStarted = errors.New("survey already started")
	ErrNotInProgress  = errors.New("survey is not in progress")
	ErrNotFinished    = errors.New("survey is not finished")
	ErrNotReady       = errors.New("answer is missing required fields")
	ErrInvalidAnswer  = errors.New("answer has out-of-range values")
)

// Persister mirrors session state to durable storage.
type Persister interface {
	Save(items []models.Item, snap progress.Snapshot) error
	Load(items []models.Item, respondentID string) (progress.Restored, bool)
	Clear() error
}

// Session drives one respondent through the item catalog. It is not safe
// for concurrent use; every transition is expected to come from a single
// event loop.
type Session struct {
	items        []models.Item
	respondentID string
	store        Persister
	gateway      *export.Gateway
	logger       *slog.Logger
	now          func() time.Time

	order     []int
	position  int
	responses []models.Response
	started   bool
	finished  bool
	shownAt   time.Time

	restoreAttempted bool
}

// Option configures a Session.
type Option func(*Session)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

// New creates a session over items. A nil gateway disables submission.
func New(items []models.Item, respondentID string, store Persister, gateway *export.Gateway, opts ...Option) *Session {
	s := &Session{
		items:        items,
		respondentID: respondentID,
		store:        store,
		gateway:      gateway,
		logger:       slog.Default(),
		now:          time.Now,
		order:        []int{},
		responses:    []models.Response{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.gateway == nil {
		s.gateway = export.NewGateway(nil)
	}
	return s
}

// Restore loads stored progress, if any survives reconciliation against
// the current catalog. It must run before Reset is honored.
func (s *Session) Restore() (progress.Restored, bool) {
	s.restoreAttempted = true
	if s.store == nil {
		return progress.Restored{}, false
	}

	restored, ok := s.store.Load(s.items, s.respondentID)
	if !ok {
		return progress.Restored{}, false
	}

	s.order = restored.Order
	s.position = restored.Position
	s.responses = restored.Responses
	s.started = restored.Started
	s.finished = restored.Finished
	if s.started && !s.finished {
		s.shownAt = s.now()
	}
	return restored, true
}

// Start begins a fresh pass over every item in a new random order.
func (s *Session) Start() error {
	if len(s.items) == 0 {
		return ErrEmptyCatalog
	}
	if s.State() != NotStarted {
		return ErrAlreadyStarted
	}

	s.clearStore()
	s.order = randomize.Permutation(len(s.items))
	s.position = 0
	s.responses = []models.Response{}
	s.started = true
	s.finished = false
	s.gateway.Reset()
	s.shownAt = s.now()

	s.logger.Info("survey started", "respondent_id", s.respondentID, "items", len(s.order))
	s.persist()
	return nil
}

// RecordAnswer completes the current item and advances. The session is
// left untouched when the answer is rejected.
func (s *Session) RecordAnswer(a Answer) error {
	if s.State() != InProgress {
		return ErrNotInProgress
	}
	if !a.Ready() {
		return ErrNotReady
	}
	if !a.Valid() {
		return ErrInvalidAnswer
	}
	item, ok := s.Current()
	if !ok {
		return ErrNotInProgress
	}

	elapsed := max(0, s.now().Sub(s.shownAt).Round(time.Millisecond).Milliseconds())

	s.responses = append(s.responses, models.Response{
		RespondentID:         s.respondentID,
		Position:             s.position + 1,
		ItemID:               item.ID,
		ItemText:             item.Text,
		TrueGroup:            item.TrueGroup,
		Funniness:            *a.Funniness,
		HumanLikeness:        *a.HumanLikeness,
		GuessedSource:        *a.GuessedSource,
		HumorType:            *a.HumorType,
		Theme:                *a.Theme,
		Appropriateness:      *a.Appropriateness,
		Offensiveness:        *a.Offensiveness,
		AttentionCheckResult: ScoreAttention(item, *a.Funniness, *a.GuessedSource),
		LatencyMs:            elapsed,
		Comment:              truncate(a.Comment, models.CommentMaxLen),
	})

	if s.position+1 >= len(s.order) {
		s.finished = true
		s.started = false
		s.gateway.Reset()
		s.logger.Info("survey finished", "respondent_id", s.respondentID, "responses", len(s.responses))
	} else {
		s.position++
		s.shownAt = s.now()
	}

	s.persist()
	return nil
}

// ScoreAttention grades an answer against the attention-check key.
func ScoreAttention(item models.Item, funniness int, guess models.GuessSource) models.AttentionResult {
	if !item.IsAttentionCheck {
		return models.AttentionNotApplicable
	}
	if funniness == 3 && guess == models.GuessAI {
		return models.AttentionPass
	}
	return models.AttentionFail
}

// Reset discards the session and stored progress. When progress exists
// and confirm is non-nil, confirm must approve. Reset is ignored until
// Restore has run. It reports whether the session was reset.
func (s *Session) Reset(confirm func() bool) bool {
	if !s.restoreAttempted {
		return false
	}
	if s.HasProgress() && confirm != nil && !confirm() {
		return false
	}

	s.clearStore()
	s.order = []int{}
	s.position = 0
	s.responses = []models.Response{}
	s.started = false
	s.finished = false
	s.shownAt = time.Time{}
	s.gateway.Reset()

	s.logger.Info("survey reset", "respondent_id", s.respondentID)
	return true
}

// BeginSubmit validates a submission attempt of the finished response set.
// The caller then runs Upload on the returned gateway and reports back
// through its Finish method.
func (s *Session) BeginSubmit() (*export.Gateway, error) {
	if s.State() != Finished {
		return nil, ErrNotFinished
	}
	if err := s.gateway.Begin(s.respondentID, len(s.responses)); err != nil {
		return nil, err
	}
	return s.gateway, nil
}

// Submit uploads the finished response set and waits for the outcome.
func (s *Session) Submit(ctx context.Context) error {
	g, err := s.BeginSubmit()
	if err != nil {
		return err
	}
	resp, err := g.Upload(ctx, s.respondentID, s.Responses())
	g.Finish(resp, err)
	if err != nil {
		s.logger.Warn("survey submission failed", "respondent_id", s.respondentID, "error", err)
	} else {
		s.logger.Info("survey submitted", "respondent_id", s.respondentID, "path", resp.Path)
	}
	return err
}

func (s *Session) State() State {
	switch {
	case s.finished:
		return Finished
	case s.started:
		return InProgress
	default:
		return NotStarted
	}
}

// Current returns the item being asked, if the survey is in progress.
func (s *Session) Current() (models.Item, bool) {
	if s.State() != InProgress || s.position >= len(s.order) {
		return models.Item{}, false
	}
	idx := s.order[s.position]
	if idx < 0 || idx >= len(s.items) {
		return models.Item{}, false
	}
	return s.items[idx], true
}

// Position is the zero-based index into the presentation order.
func (s *Session) Position() int { return s.position }

func (s *Session) Total() int {
	if len(s.order) > 0 {
		return len(s.order)
	}
	return len(s.items)
}

func (s *Session) Order() []int { return append([]int(nil), s.order...) }

func (s *Session) Responses() []models.Response {
	return append([]models.Response(nil), s.responses...)
}

func (s *Session) RespondentID() string { return s.respondentID }

func (s *Session) Items() []models.Item { return s.items }

// Submission exposes the outcome of the most recent submission attempt.
func (s *Session) Submission() *export.Gateway { return s.gateway }

// CanReset reports whether Reset would be honored.
func (s *Session) CanReset() bool { return s.restoreAttempted }

// HasProgress reports whether there is anything worth confirming before a reset.
func (s *Session) HasProgress() bool {
	return s.snapshot().HasProgress()
}

// ShownAt is when the current item became current.
func (s *Session) ShownAt() time.Time { return s.shownAt }

func (s *Session) snapshot() progress.Snapshot {
	return progress.Snapshot{
		RespondentID: s.respondentID,
		Order:        s.order,
		Position:     s.position,
		Responses:    s.responses,
		Started:      s.started,
		Finished:     s.finished,
	}
}

func (s *Session) persist() {
	if s.store == nil {
		return
	}
	if err := s.store.Save(s.items, s.snapshot()); err != nil {
		s.logger.Warn("failed to persist survey progress", "error", err)
	}
}

func (s *Session) clearStore() {
	if s.store == nil {
		return
	}
	if err := s.store.Clear(); err != nil {
		s.logger.Warn("failed to clear survey progress", "error", err)
	}
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
