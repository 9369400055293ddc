// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package tui is the terminal front end of the survey client.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Start runs the survey on the alternate screen until the respondent quits.
func Start(opts Options) error {
	program := tea.NewProgram(NewModel(opts), tea.WithAltScreen())
	_, err := program.Run()
	return err
}
