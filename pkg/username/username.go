// Copyright (c) 2026 MyTube. All rights reserved.
// Author: rishabh.bhardwaj.rb@gmail.com

// Package username canonicalizes user-supplied identifiers for lookup and
// uniqueness checks.
//
// # Usage
//
// Usernames and email addresses are unique case-insensitively. This package
// produces the single canonical form that both the unique indexes and every
// lookup query agree on, so "Alice" and "alice" resolve to the same account.
package username

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// validUsername matches the accepted username shape: ASCII letters, digits,
// dots, underscores, and hyphens.
var validUsername = regexp.MustCompile(`^[a-z0-9._-]+$`)

// Canonical converts an identifier into its canonical lookup form.
//
// # Transformation Pipeline
//
// 1. Trims surrounding whitespace.
// 2. Normalizes to NFKC (folds compatibility variants: ﬁ → fi, full-width → ASCII).
// 3. Applies Unicode case folding (İ and i compare equal).
func Canonical(s string) string {
	trimmed := strings.TrimSpace(s)
	normalized := norm.NFKC.String(trimmed)
	return cases.Fold().String(normalized)
}

// IsValid reports whether the canonical form of s is an acceptable username.
func IsValid(s string) bool {
	canonical := Canonical(s)
	if len(canonical) < 3 || len(canonical) > 30 {
		return false
	}
	return validUsername.MatchString(canonical)
}
