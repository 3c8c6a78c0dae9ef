// Package keywords turns free-form keyword strings into provider-safe queries.
//
// Model output and user edits both produce comma/space separated keyword
// lists of arbitrary length. Stock media search APIs reject long queries, so
// every outbound search goes through NormalizeQuery first.
package keywords

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Default bounds for media search queries.
const (
	DefaultMaxTerms  = 8
	DefaultMaxLength = 100
)

// separators matches one or more commas and/or whitespace characters.
var separators = regexp.MustCompile(`[,\s]+`)

// NormalizeQuery splits raw on commas and whitespace, keeps the first
// maxTerms non-empty tokens, joins them with single spaces and truncates the
// result to maxLength characters.
//
// Truncation happens after the join and may cut the last token in half.
// Non-positive bounds produce an empty query.
func NormalizeQuery(raw string, maxTerms, maxLength int) string {
	if maxTerms <= 0 || maxLength <= 0 {
		return ""
	}

	terms := make([]string, 0, maxTerms)
	for _, tok := range separators.Split(raw, -1) {
		if tok == "" {
			continue
		}
		terms = append(terms, tok)
		if len(terms) == maxTerms {
			break
		}
	}

	return truncate(strings.Join(terms, " "), maxLength)
}

// Normalize applies the default bounds.
func Normalize(raw string) string {
	return NormalizeQuery(raw, DefaultMaxTerms, DefaultMaxLength)
}

// truncate cuts s to at most n characters without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

// Split breaks a comma separated keyword list into trimmed, non-empty entries.
// Unlike NormalizeQuery it keeps multi-word phrases together.
func Split(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Join renders a keyword list back into the comma separated form stored on a scene.
func Join(keywords []string) string {
	return strings.Join(Clean(keywords), ", ")
}

// Clean trims entries, drops empties and removes case-insensitive duplicates
// while keeping first-seen order. It never returns nil.
func Clean(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	seen := make(map[string]bool, len(keywords))
	for _, k := range keywords {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		key := strings.ToLower(k)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, k)
	}
	return out
}
