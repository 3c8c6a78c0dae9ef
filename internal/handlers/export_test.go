// export_test.go contains tests for the export handler helpers.
//
// Go Pattern: Table-driven tests are the standard Go testing pattern.
// You define a slice of test cases (each with a name, inputs, and expected
// outputs), then loop through them. This makes it easy to add new cases
// and keeps the test logic DRY.
package handlers

import (
	"strings"
	"testing"
	"unicode/utf8"
)

// TestSanitizeFilename verifies filename sanitization.
func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "clean filename",
			input:    "Coffee Shop Launch",
			expected: "Coffee Shop Launch",
		},
		{
			name:     "slashes and colons",
			input:    "Part 1/2: The Beginning",
			expected: "Part 1-2- The Beginning",
		},
		{
			name:     "special characters",
			input:    "What is Go? <A Guide>",
			expected: "What is Go- -A Guide-",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "long title gets truncated",
			input:    strings.Repeat("a", 200),
			expected: strings.Repeat("a", 100),
		},
		{
			name:     "long accented title keeps whole runes",
			input:    strings.Repeat("é", 150),
			expected: strings.Repeat("é", 100),
		},
		{
			name:     "long japanese title keeps whole runes",
			input:    strings.Repeat("夜明け", 40),
			expected: string([]rune(strings.Repeat("夜明け", 40))[:100]),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := sanitizeFilename(tt.input)
			if result != tt.expected {
				t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.input, result, tt.expected)
			}
			if !utf8.ValidString(result) {
				t.Errorf("sanitizeFilename(%q) produced invalid UTF-8", tt.input)
			}
		})
	}
}
