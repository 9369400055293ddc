// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"errors"
	"regexp"
	"strings"
	"testing"
)

func TestGenerateSessionID(t *testing.T) {
	format := regexp.MustCompile(`^S300-[A-Z2-9]{6}$`)

	for i := 0; i < 200; i++ {
		id, err := GenerateSessionID()
		if err != nil {
			t.Fatalf("GenerateSessionID() error = %v", err)
		}
		if !format.MatchString(id) {
			t.Fatalf("GenerateSessionID() = %q, does not match S300-XXXXXX", id)
		}
		for _, c := range strings.TrimPrefix(id, SessionPrefix) {
			if strings.ContainsRune("IO01", c) {
				t.Errorf("GenerateSessionID() = %q contains ambiguous char %c", id, c)
			}
			if !strings.ContainsRune(SessionAlphabet, c) {
				t.Errorf("GenerateSessionID() = %q contains char %c outside alphabet", id, c)
			}
		}
		if !ValidSessionID(id) {
			t.Errorf("ValidSessionID(%q) = false", id)
		}
	}
}

func TestGenerateSessionID_Randomness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, err := GenerateSessionID()
		if err != nil {
			t.Fatalf("GenerateSessionID() error on iteration %d: %v", i, err)
		}
		if seen[id] {
			t.Errorf("GenerateSessionID() produced duplicate id: %s", id)
		}
		seen[id] = true
	}
}

func TestValidSessionID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"S300-ABC234", true},
		{"S300-ABCDEF", true},
		{"S300-ABC10O", false},
		{"S300-abcdef", false},
		{"S300-ABCDE", false},
		{"S301-ABCDEF", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := ValidSessionID(tt.id); got != tt.want {
			t.Errorf("ValidSessionID(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestSanitizeSessionID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"already safe", "S300-ABCDEF", "S300-ABCDEF", false},
		{"surrounding space", "  S300-ABCDEF  ", "S300-ABCDEF", false},
		{"inner whitespace run", "my  session\tid", "my_session_id", false},
		{"path traversal", "../etc/passwd", "___etc_passwd", false},
		{"unicode", "séance", "s_ance", false},
		{"blank", "   ", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeSessionID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SanitizeSessionID() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrEmptySessionID) {
				t.Errorf("SanitizeSessionID() error = %v, want %v", err, ErrEmptySessionID)
			}
			if got != tt.want {
				t.Errorf("SanitizeSessionID(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestHashIP(t *testing.T) {
	tests := []struct {
		name string
		ip   string
		salt string
	}{
		{"IPv4", "192.168.1.1", "ip-salt"},
		{"IPv6", "2001:0db8:85a3::8a2e:0370:7334", "ip-salt"},
		{"localhost", "127.0.0.1", "ip-salt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash := HashIP(tt.ip, tt.salt)

			// Should be 16 hex characters (8 bytes * 2)
			if len(hash) != 16 {
				t.Errorf("HashIP() length = %d, want 16", len(hash))
			}

			for _, c := range hash {
				if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
					t.Errorf("HashIP() contains invalid hex char: %c", c)
				}
			}

			if hash != HashIP(tt.ip, tt.salt) {
				t.Error("HashIP() is not deterministic")
			}
		})
	}

	if HashIP("192.168.1.1", "salt") == HashIP("192.168.1.2", "salt") {
		t.Error("HashIP() produced same hash for different IPs")
	}
	if HashIP("192.168.1.1", "salt1") == HashIP("192.168.1.1", "salt2") {
		t.Error("HashIP() produced same hash for different salts")
	}
}

func BenchmarkGenerateSessionID(b *testing.B) {
	for i := 0; i < b.N; i++ {
		GenerateSessionID()
	}
}
