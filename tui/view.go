// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/danielhkuo/joke-survey/export"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	accentStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	dimStyle      = lipgloss.NewStyle().Faint(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	successStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	focusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	jokeStyle     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(1, 2)
	hintStyle = lipgloss.NewStyle().Reverse(true).Padding(0, 1)
)

func (m Model) View() string {
	var b strings.Builder

	switch m.screen {
	case ScreenLoading:
		fmt.Fprintf(&b, "%s Loading jokes...\n", m.spinner.View())
	case ScreenError:
		b.WriteString(errorStyle.Render("The survey cannot start."))
		b.WriteString("\n\n")
		b.WriteString(m.loadErr.Error())
		b.WriteString("\n\n")
		b.WriteString(hintStyle.Render("[q]uit"))
		return b.String()
	case ScreenIntro:
		b.WriteString(m.introView())
	case ScreenItem:
		b.WriteString(m.itemView())
	case ScreenFinished:
		b.WriteString(m.finishedView())
	}

	if m.confirming {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("Discard all progress and start over? [y/n]"))
		b.WriteString("\n")
	} else if m.notice != "" {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render(m.notice))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) introView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Joke Survey"))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "You will rate %d jokes, one at a time.\n", m.session.Total())
	b.WriteString("Some were written by people and some by AI.\n\n")
	fmt.Fprintf(&b, "Session ID: %s\n", accentStyle.Render(m.session.RespondentID()))
	b.WriteString(dimStyle.Render("Keep this ID if you need to contact the researchers."))
	b.WriteString("\n\n")
	b.WriteString(hintStyle.Render("[s]tart  [ctrl+r] reset  [q]uit"))
	b.WriteString("\n")
	return b.String()
}

func (m Model) itemView() string {
	item, ok := m.session.Current()
	if !ok {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n\n",
		titleStyle.Render(fmt.Sprintf("Joke %d of %d", m.session.Position()+1, m.session.Total())),
		dimStyle.Render(m.session.RespondentID()),
	)
	width := 70
	if m.width > 10 && m.width-6 < width {
		width = m.width - 6
	}
	b.WriteString(jokeStyle.Width(width).Render(item.Text))
	b.WriteString("\n\n")

	for i, q := range m.form.questions {
		label := q.label
		if i == m.form.focus {
			label = focusStyle.Render("> " + label)
		} else {
			label = "  " + label
		}
		b.WriteString(label)
		b.WriteString("\n    ")
		opts := make([]string, len(q.options))
		for j, o := range q.options {
			text := fmt.Sprintf("[%d] %s", j+1, o)
			if isNumeric(q.options) {
				text = "[" + o + "]"
			}
			if j == q.selected {
				text = selectedStyle.Render(text)
			}
			opts[j] = text
		}
		b.WriteString(strings.Join(opts, "  "))
		b.WriteString("\n")
	}

	commentLabel := "  Comment (optional)"
	if m.form.focus == rowComment {
		commentLabel = focusStyle.Render("> Comment (optional)")
	}
	b.WriteString(commentLabel)
	b.WriteString("\n    ")
	b.WriteString(m.form.comment.View())
	b.WriteString("\n\n")

	b.WriteString(hintStyle.Render("[tab/↑↓] move  [←→/digits] choose  [enter] next  [ctrl+r] reset  [ctrl+c] quit"))
	b.WriteString("\n")
	return b.String()
}

func (m Model) finishedView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Thank you!"))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "You answered %d jokes.\n", len(m.session.Responses()))
	fmt.Fprintf(&b, "Session ID: %s\n\n", accentStyle.Render(m.session.RespondentID()))

	g := m.session.Submission()
	switch g.Status() {
	case export.StatusIdle:
		b.WriteString("Press u to submit your responses.\n")
	case export.StatusUploading:
		fmt.Fprintf(&b, "%s Submitting...\n", m.spinner.View())
	case export.StatusSuccess:
		b.WriteString(successStyle.Render("Responses submitted."))
		b.WriteString("\n")
		if g.URL() != "" {
			b.WriteString(dimStyle.Render(g.URL()))
			b.WriteString("\n")
		}
	case export.StatusError:
		b.WriteString(errorStyle.Render(g.Message()))
		b.WriteString("\n")
		if !g.Blocked() {
			b.WriteString("Press u to try again.\n")
		}
	}

	b.WriteString("\n")
	hints := []string{"[d]ownload CSV", "[ctrl+r] reset", "[q]uit"}
	if !g.Blocked() {
		hints = append([]string{"[u]pload"}, hints...)
	}
	b.WriteString(hintStyle.Render(strings.Join(hints, "  ")))
	b.WriteString("\n")
	return b.String()
}
