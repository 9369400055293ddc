// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/danielhkuo/joke-survey/models"
	"github.com/danielhkuo/joke-survey/survey"
)

// question is one required multiple-choice row of the item form.
type question struct {
	label    string
	options  []string
	selected int // -1 means unanswered
}

// Rows of the item form, in display order. The comment input follows them.
const (
	rowFunniness = iota
	rowHumanLikeness
	rowSource
	rowHumorType
	rowTheme
	rowAppropriateness
	rowOffensiveness
	rowComment
)

// ItemForm collects the answer to a single item.
type ItemForm struct {
	questions []question
	comment   textinput.Model
	focus     int
}

func NewItemForm() ItemForm {
	ti := textinput.New()
	ti.Placeholder = "Optional comment"
	ti.CharLimit = models.CommentMaxLen
	ti.Width = 60
	ti.Prompt = "> "

	return ItemForm{
		questions: []question{
			{label: "How funny is it?", options: []string{"1", "2", "3", "4", "5"}, selected: -1},
			{label: "How human does it sound?", options: []string{"1", "2", "3", "4", "5"}, selected: -1},
			{label: "Who wrote it?", options: guessOptions(), selected: -1},
			{label: "Humor type", options: humorOptions(), selected: -1},
			{label: "Theme", options: append([]string(nil), models.Themes...), selected: -1},
			{label: "Appropriate for a classroom?", options: []string{string(models.AppropriateYes), string(models.AppropriateNo)}, selected: -1},
			{label: "How offensive? (0 none, 2 very)", options: []string{"0", "1", "2"}, selected: -1},
		},
		comment: ti,
	}
}

func guessOptions() []string {
	out := make([]string, len(models.GuessSources))
	for i, g := range models.GuessSources {
		out[i] = string(g)
	}
	return out
}

func humorOptions() []string {
	out := make([]string, len(models.HumorTypes))
	for i, h := range models.HumorTypes {
		out[i] = string(h)
	}
	return out
}

// Focused is the index of the focused row.
func (f ItemForm) Focused() int { return f.focus }

// Select answers the question on row with its option at index opt.
func (f *ItemForm) Select(row, opt int) {
	if row < 0 || row >= len(f.questions) {
		return
	}
	q := &f.questions[row]
	if opt < 0 || opt >= len(q.options) {
		return
	}
	q.selected = opt
}

// Answer converts the form into a survey answer. Unanswered rows stay nil.
func (f ItemForm) Answer() survey.Answer {
	a := survey.Answer{Comment: strings.TrimSpace(f.comment.Value())}
	pick := func(row int) (string, bool) {
		q := f.questions[row]
		if q.selected < 0 {
			return "", false
		}
		return q.options[q.selected], true
	}
	number := func(row int) *int {
		v, ok := pick(row)
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil
		}
		return &n
	}

	a.Funniness = number(rowFunniness)
	a.HumanLikeness = number(rowHumanLikeness)
	a.Offensiveness = number(rowOffensiveness)
	if v, ok := pick(rowSource); ok {
		a.GuessedSource = survey.Ptr(models.GuessSource(v))
	}
	if v, ok := pick(rowHumorType); ok {
		a.HumorType = survey.Ptr(models.HumorType(v))
	}
	if v, ok := pick(rowTheme); ok {
		a.Theme = survey.Ptr(v)
	}
	if v, ok := pick(rowAppropriateness); ok {
		a.Appropriateness = survey.Ptr(models.Appropriateness(v))
	}
	return a
}

func (f *ItemForm) setFocus(row int) {
	if row < 0 {
		row = rowComment
	}
	if row > rowComment {
		row = 0
	}
	f.focus = row
	if row == rowComment {
		f.comment.Focus()
	} else {
		f.comment.Blur()
	}
}

// Update handles navigation and selection. Enter is left to the caller.
func (f ItemForm) Update(msg tea.Msg) (ItemForm, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		f.comment, cmd = f.comment.Update(msg)
		return f, cmd
	}

	switch key.String() {
	case "tab", "down":
		f.setFocus(f.focus + 1)
		return f, nil
	case "shift+tab", "up":
		f.setFocus(f.focus - 1)
		return f, nil
	}

	if f.focus == rowComment {
		var cmd tea.Cmd
		f.comment, cmd = f.comment.Update(msg)
		return f, cmd
	}

	q := &f.questions[f.focus]
	switch key.String() {
	case "left", "h":
		if q.selected > 0 {
			q.selected--
		} else if q.selected < 0 {
			q.selected = 0
		}
	case "right", "l":
		if q.selected < len(q.options)-1 {
			q.selected++
		}
	default:
		if len(key.Runes) == 1 {
			if opt, ok := q.optionForDigit(key.Runes[0]); ok {
				q.selected = opt
				// Move on once a row is answered.
				f.setFocus(f.focus + 1)
			}
		}
	}
	return f, nil
}

// optionForDigit maps a typed digit to an option. Numeric scales match the
// value itself; other rows use the 1-based position shown on screen.
func (q question) optionForDigit(r rune) (int, bool) {
	if r < '0' || r > '9' {
		return 0, false
	}
	for i, o := range q.options {
		if o == string(r) {
			return i, true
		}
	}
	opt := int(r - '1')
	if opt < 0 || opt >= len(q.options) || isNumeric(q.options) {
		return 0, false
	}
	return opt, true
}

func isNumeric(options []string) bool {
	for _, o := range options {
		if _, err := strconv.Atoi(o); err != nil {
			return false
		}
	}
	return true
}
