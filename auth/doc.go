// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth generates and checks the identifiers that travel between the
survey client and the relay.

# Session IDs

Each respondent's local state directory gets one
session id on first use:

	id, err := auth.GenerateSessionID() // e.g. "S300-K7QX2M"

The six symbols after the prefix come from a 32-symbol alphabet of
uppercase letters and digits without I, O, 0 and 1, so ids can be read
over the phone or copied from a screen. They are correlation tokens, not
secrets.

# Sanitization

The relay never trusts a session id as a path segment:

	safe, err := auth.SanitizeSessionID(raw)

Whitespace runs become "_" and any character outside [A-Za-z0-9_-] is
replaced by "_". A blank result returns ErrEmptySessionID.

# IP Hashing

For privacy-preserving abuse tracking in the submission ledger:

	hash := auth.HashIP(ipAddress, salt)

Returns first 8 bytes (16 hex chars) of HMAC-SHA256.
*/
package auth
