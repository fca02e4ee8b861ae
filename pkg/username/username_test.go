// Copyright (c) 2026 MyTube. All rights reserved.
// Author: rishabh.bhardwaj.rb@gmail.com

package username

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonical(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"already canonical", "alice", "alice"},
		{"uppercase folded", "Alice", "alice"},
		{"mixed case", "AlIcE_01", "alice_01"},
		{"surrounding whitespace trimmed", "  alice  ", "alice"},
		{"full-width compatibility form", "ａｌｉｃｅ", "alice"},
		{"email casing", "Alice@Example.COM", "alice@example.com"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Canonical(tt.input))
		})
	}
}

func TestCanonicalIdempotent(t *testing.T) {
	inputs := []string{"Alice", "BOB_99", "  Carol.D  ", "ｄａｖｅ"}

	for _, input := range inputs {
		once := Canonical(input)
		assert.Equal(t, once, Canonical(once), "canonical form must be a fixed point for %q", input)
	}
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"simple", "alice", true},
		{"uppercase accepted via folding", "Alice", true},
		{"digits and separators", "a.b_c-1", true},
		{"too short", "ab", false},
		{"too long", "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", false},
		{"spaces rejected", "al ice", false},
		{"symbols rejected", "alice!", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsValid(tt.input))
		})
	}
}
