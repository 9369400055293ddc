// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// SessionPrefix starts every generated respondent session id.
const SessionPrefix = "S300-"

// SessionAlphabet omits I, O, 0 and 1 so ids survive being read aloud or copied by hand.
const SessionAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// SessionSuffixLen is the number of random symbols after the prefix.
const SessionSuffixLen = 6

var (
	ErrEmptySessionID = errors.New("session id is empty")

	sessionIDPattern = regexp.MustCompile(`^S300-[ABCDEFGHJKLMNPQRSTUVWXYZ23456789]{6}$`)
	whitespaceRun    = regexp.MustCompile(`\s+`)
	unsafeChars      = regexp.MustCompile(`[^A-Za-z0-9\-_]`)
)

// GenerateSessionID creates a human-transcribable respondent id such as S300-K7QX2M.
// It is a correlation token, not a credential.
func GenerateSessionID() (string, error) {
	var b strings.Builder
	b.Grow(len(SessionPrefix) + SessionSuffixLen)
	b.WriteString(SessionPrefix)

	// Bytes at or above limit are redrawn so every symbol is equally likely.
	limit := 256 - 256%len(SessionAlphabet)
	buf := make([]byte, 1)
	for b.Len() < len(SessionPrefix)+SessionSuffixLen {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("failed to generate session id: %w", err)
		}
		if int(buf[0]) >= limit {
			continue
		}
		b.WriteByte(SessionAlphabet[int(buf[0])%len(SessionAlphabet)])
	}
	return b.String(), nil
}

// ValidSessionID reports whether id has the generated S300-XXXXXX shape.
func ValidSessionID(id string) bool {
	return sessionIDPattern.MatchString(id)
}

// SanitizeSessionID makes a caller-supplied session id safe to use as a file name.
// Whitespace runs become "_" and anything outside [A-Za-z0-9_-] becomes "_".
func SanitizeSessionID(sessionID string) (string, error) {
	s := strings.TrimSpace(sessionID)
	s = whitespaceRun.ReplaceAllString(s, "_")
	s = unsafeChars.ReplaceAllString(s, "_")
	if s == "" {
		return "", ErrEmptySessionID
	}
	return s, nil
}

// HashIP creates a one-way hash of an IP address for privacy
// Includes salt to prevent rainbow table attacks
func HashIP(ip, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(ip))
	sum := h.Sum(nil)
	// Return first 16 hex chars (64 bits) - enough for deduplication
	return hex.EncodeToString(sum[:8])
}
