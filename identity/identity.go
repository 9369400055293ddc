// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package identity keeps the respondent's session id for the lifetime of the
// local state directory.
package identity

import (
	"fmt"
	"strings"

	"github.com/danielhkuo/joke-survey/auth"
	"github.com/danielhkuo/joke-survey/kvstore"
)

// StorageKey is independent of the survey progress key, so resetting
// progress never changes who the respondent is.
const StorageKey = "respondent_id"

// Load returns the stored session id, generating and persisting one on first use.
// A stored id is reused as-is, even if it predates the current id format.
func Load(store kvstore.Store) (string, error) {
	stored, ok, err := store.Get(StorageKey)
	if err != nil {
		return "", fmt.Errorf("read respondent id: %w", err)
	}
	if ok && strings.TrimSpace(stored) != "" {
		return strings.TrimSpace(stored), nil
	}

	id, err := auth.GenerateSessionID()
	if err != nil {
		return "", err
	}
	if err := store.Set(StorageKey, id); err != nil {
		return "", fmt.Errorf("persist respondent id: %w", err)
	}
	return id, nil
}
