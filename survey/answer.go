// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package survey

import (
	"strings"

	"github.com/danielhkuo/joke-survey/models"
)

// Answer holds the respondent's in-progress input for the current item.
// Nil means "not answered yet"; zero values such as an offensiveness of 0
// are real answers.
type Answer struct {
	Funniness       *int
	HumanLikeness   *int
	GuessedSource   *models.GuessSource
	HumorType       *models.HumorType
	Theme           *string
	Appropriateness *models.Appropriateness
	Offensiveness   *int
	Comment         string
}

// Ready reports whether every required field has been set.
func (a Answer) Ready() bool {
	return len(a.Missing()) == 0
}

// Missing names the required fields that are still unset, in form order.
func (a Answer) Missing() []string {
	var missing []string
	if a.Funniness == nil {
		missing = append(missing, "funniness")
	}
	if a.HumanLikeness == nil {
		missing = append(missing, "human-likeness")
	}
	if a.GuessedSource == nil {
		missing = append(missing, "source")
	}
	if a.HumorType == nil {
		missing = append(missing, "humor type")
	}
	if a.Theme == nil || strings.TrimSpace(*a.Theme) == "" {
		missing = append(missing, "theme")
	}
	if a.Appropriateness == nil {
		missing = append(missing, "appropriateness")
	}
	if a.Offensiveness == nil {
		missing = append(missing, "offensiveness")
	}
	return missing
}

// Valid reports whether every set field holds an allowed value.
func (a Answer) Valid() bool {
	switch {
	case a.Funniness != nil && (*a.Funniness < 1 || *a.Funniness > 5):
		return false
	case a.HumanLikeness != nil && (*a.HumanLikeness < 1 || *a.HumanLikeness > 5):
		return false
	case a.GuessedSource != nil && !a.GuessedSource.Valid():
		return false
	case a.HumorType != nil && !a.HumorType.Valid():
		return false
	case a.Appropriateness != nil && !a.Appropriateness.Valid():
		return false
	case a.Offensiveness != nil && (*a.Offensiveness < 0 || *a.Offensiveness > 2):
		return false
	}
	return true
}

// Ptr returns a pointer to v, for filling in an Answer.
func Ptr[T any](v T) *T { return &v }
