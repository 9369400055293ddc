// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/joke-survey/export"
	"github.com/danielhkuo/joke-survey/models"
	"github.com/danielhkuo/joke-survey/progress"
	"github.com/danielhkuo/joke-survey/survey"
)

// Screen is the page the respondent is looking at.
type Screen int

const (
	ScreenLoading Screen = iota
	ScreenError
	ScreenIntro
	ScreenItem
	ScreenFinished
)

// UploadTimeout bounds a single upload attempt.
const UploadTimeout = 45 * time.Second

// Options wires the model to the rest of the client.
type Options struct {
	// Load builds the session. It runs once, off the UI loop.
	Load func(ctx context.Context) (*survey.Session, error)
	// DownloadDir is where "download CSV" writes files.
	DownloadDir string
	// NoConfirm skips the y/n prompt before a reset.
	NoConfirm bool
	Now       func() time.Time
}

type loadedMsg struct {
	session  *survey.Session
	restored progress.Restored
	resumed  bool
	err      error
}

type uploadDoneMsg struct {
	resp models.SubmissionResponse
	err  error
}

// Model is the bubbletea model of the survey client.
type Model struct {
	opts    Options
	screen  Screen
	session *survey.Session
	form    ItemForm
	spinner spinner.Model

	loadErr    error
	notice     string // one-line status under the current screen
	confirming bool   // waiting for y/n before a reset
	width      int
}

func NewModel(opts Options) Model {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.DownloadDir == "" {
		opts.DownloadDir = "."
	}
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = accentStyle
	return Model{opts: opts, screen: ScreenLoading, spinner: s, form: NewItemForm()}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.load)
}

// load builds the session and restores saved progress.
func (m Model) load() tea.Msg {
	if m.opts.Load == nil {
		return loadedMsg{err: errors.New("no catalog configured")}
	}
	session, err := m.opts.Load(context.Background())
	if err != nil {
		return loadedMsg{err: err}
	}
	restored, ok := session.Restore()
	return loadedMsg{session: session, restored: restored, resumed: ok}
}

func (m Model) upload(g *export.Gateway) tea.Cmd {
	id := m.session.RespondentID()
	responses := m.session.Responses()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), UploadTimeout)
		defer cancel()
		resp, err := g.Upload(ctx, id, responses)
		return uploadDoneMsg{resp: resp, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case loadedMsg:
		if msg.err != nil {
			m.loadErr = msg.err
			m.screen = ScreenError
			return m, nil
		}
		m.session = msg.session
		if msg.resumed {
			m.notice = resumeNotice(msg.restored, m.opts.Now())
		}
		m.syncScreen()
		return m, nil

	case uploadDoneMsg:
		if m.session == nil {
			return m, nil
		}
		m.session.Submission().Finish(msg.resp, msg.err)
		m.notice = ""
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.screen == ScreenItem {
		var cmd tea.Cmd
		m.form, cmd = m.form.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m, tea.Quit
	}

	if m.confirming {
		switch key {
		case "y", "Y":
			m.confirming = false
			m.reset(func() bool { return true })
		case "n", "N", "esc":
			m.confirming = false
			m.notice = "Reset cancelled."
		}
		return m, nil
	}

	if key == "ctrl+r" {
		return m.requestReset()
	}

	// While typing a comment, printable keys belong to the input.
	typing := m.screen == ScreenItem && m.form.Focused() == rowComment
	if key == "q" && !typing {
		return m, tea.Quit
	}

	switch m.screen {
	case ScreenIntro:
		if key == "s" || key == "enter" {
			if err := m.session.Start(); err != nil {
				m.notice = "Unable to start: " + err.Error()
				return m, nil
			}
			m.notice = ""
			m.syncScreen()
		}
		return m, nil

	case ScreenItem:
		if key == "enter" {
			return m.submitAnswer()
		}
		var cmd tea.Cmd
		m.form, cmd = m.form.Update(msg)
		return m, cmd

	case ScreenFinished:
		switch key {
		case "u":
			return m.startUpload()
		case "d":
			m.download()
		}
		return m, nil
	}
	return m, nil
}

func (m Model) submitAnswer() (tea.Model, tea.Cmd) {
	answer := m.form.Answer()
	if missing := answer.Missing(); len(missing) > 0 {
		m.notice = "Still needed: " + strings.Join(missing, ", ") + "."
		return m, nil
	}
	if err := m.session.RecordAnswer(answer); err != nil {
		m.notice = "Answer not saved: " + err.Error()
		return m, nil
	}
	m.notice = ""
	m.syncScreen()
	return m, nil
}

func (m Model) startUpload() (tea.Model, tea.Cmd) {
	g, err := m.session.BeginSubmit()
	switch {
	case errors.Is(err, export.ErrSubmitInFlight):
		return m, nil
	case errors.Is(err, export.ErrAlreadySubmitted):
		m.notice = "Your responses have already been submitted."
		return m, nil
	case err != nil:
		// The gateway already holds the message for the respondent.
		m.notice = ""
		return m, nil
	}
	m.notice = ""
	return m, m.upload(g)
}

func (m *Model) download() {
	path, err := export.WriteFile(m.opts.DownloadDir, m.session.RespondentID(), m.session.Responses())
	if err != nil {
		m.notice = "Download failed: " + err.Error()
		return
	}
	m.notice = "Saved " + path
}

func (m Model) requestReset() (tea.Model, tea.Cmd) {
	if m.session == nil || !m.session.CanReset() {
		return m, nil
	}
	if m.session.Submission().Status() == export.StatusUploading {
		m.notice = "Wait for the upload to finish before resetting."
		return m, nil
	}
	if m.opts.NoConfirm || !m.session.HasProgress() {
		m.reset(nil)
		return m, nil
	}
	m.confirming = true
	return m, nil
}

func (m *Model) reset(confirm func() bool) {
	if m.session.Reset(confirm) {
		m.notice = "Progress cleared."
		m.syncScreen()
	}
}

// syncScreen shows the page matching the session state and clears the
// form whenever a new item becomes current.
func (m *Model) syncScreen() {
	switch m.session.State() {
	case survey.NotStarted:
		m.screen = ScreenIntro
	case survey.InProgress:
		m.screen = ScreenItem
		m.form = NewItemForm()
	case survey.Finished:
		m.screen = ScreenFinished
	}
}

// Screen reports the current page.
func (m Model) Screen() Screen { return m.screen }

// Notice is the status line under the current page.
func (m Model) Notice() string { return m.notice }

// Session is nil until loading completes.
func (m Model) Session() *survey.Session { return m.session }

func resumeNotice(r progress.Restored, now time.Time) string {
	answered := len(r.Responses)
	when := "earlier"
	if !r.SavedAt.IsZero() {
		when = humanize.RelTime(r.SavedAt, now, "ago", "from now")
	}
	if r.Finished {
		return fmt.Sprintf("Welcome back. You finished the survey %s.", when)
	}
	return fmt.Sprintf("Welcome back. Resuming progress saved %s (%d answered).", when, answered)
}
