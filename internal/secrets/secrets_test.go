package secrets

import (
	"errors"
	"strings"
	"testing"
)

func TestSealOpen(t *testing.T) {
	s, err := NewSealer("correct horse battery staple")
	if err != nil {
		t.Fatal(err)
	}

	sealed, err := s.Seal("AIza-secret-value")
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}
	if !IsSealed(sealed) || strings.Contains(sealed, "AIza") {
		t.Errorf("Seal() = %q, want opaque sealed value", sealed)
	}

	again, _ := s.Seal("AIza-secret-value")
	if again == sealed {
		t.Error("two seals of the same value should use different nonces")
	}

	plain, err := s.Open(sealed)
	if err != nil || plain != "AIza-secret-value" {
		t.Errorf("Open() = %q, %v", plain, err)
	}
}

func TestSealPassthrough(t *testing.T) {
	s, _ := NewSealer("k")

	if got, err := s.Seal(""); err != nil || got != "" {
		t.Errorf("Seal(\"\") = %q, %v", got, err)
	}
	if got, _ := s.Open("legacy-plaintext"); got != "legacy-plaintext" {
		t.Errorf("Open(plaintext) = %q", got)
	}
}

func TestSealPrefixedInputRoundTrips(t *testing.T) {
	s, _ := NewSealer("k")

	input := Prefix + "my-pixabay-key"
	sealed, err := s.Seal(input)
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}
	if sealed == input {
		t.Fatal("prefixed input was stored unsealed")
	}

	plain, err := s.Open(sealed)
	if err != nil || plain != input {
		t.Errorf("Open() = %q, %v, want %q", plain, err, input)
	}
}

func TestOpenWithWrongKey(t *testing.T) {
	a, _ := NewSealer("key-a")
	b, _ := NewSealer("key-b")

	sealed, _ := a.Seal("value")

	tests := []struct {
		name  string
		input string
	}{
		{"wrong key", sealed},
		{"bad base64", Prefix + "%%%"},
		{"too short", Prefix + "AAAA"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := b.Open(tt.input); !errors.Is(err, ErrCorrupt) {
				t.Errorf("Open() error = %v, want ErrCorrupt", err)
			}
		})
	}
}

func TestNewSealerRejectsEmptyKey(t *testing.T) {
	if _, err := NewSealer("  "); err == nil {
		t.Error("expected error for empty key")
	}
}
