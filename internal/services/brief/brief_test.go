package brief

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/Shimizu-Technology/storyboard-api/internal/apperr"
)

func TestValidatePDF(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want bool
	}{
		{"pdf header", []byte("%PDF-1.7\n..."), true},
		{"too short", []byte("%PD"), false},
		{"png", []byte("\x89PNG\r\n"), false},
		{"empty", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidatePDF(tt.data); got != tt.want {
				t.Errorf("ValidatePDF() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractRejectsNonPDF(t *testing.T) {
	_, err := Extract([]byte("just some text"))
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("KindOf(%v) = %s, want validation", err, apperr.KindOf(err))
	}
}

func TestExtractRejectsCorruptPDF(t *testing.T) {
	_, err := Extract([]byte("%PDF-1.4\nnot really a pdf"))
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("KindOf(%v) = %s, want validation", err, apperr.KindOf(err))
	}
}

func TestPrompt(t *testing.T) {
	b := &Brief{Text: "Launch video\n\nfor our   new\thiking boots."}

	got, err := b.Prompt("")
	if err != nil {
		t.Fatal(err)
	}
	if got != "Launch video for our new hiking boots." {
		t.Errorf("Prompt() = %q", got)
	}

	got, _ = b.Prompt("Make it upbeat.")
	if !strings.HasPrefix(got, "Make it upbeat.") || !strings.HasSuffix(got, "hiking boots.") {
		t.Errorf("Prompt(direction) = %q", got)
	}
}

func TestPromptBounds(t *testing.T) {
	long := &Brief{Text: strings.Repeat("ñandú ", 2000)}
	got, err := long.Prompt("")
	if err != nil {
		t.Fatal(err)
	}
	if n := utf8.RuneCountInString(got); n != MaxPromptRunes {
		t.Errorf("rune count = %d, want %d", n, MaxPromptRunes)
	}
	if !utf8.ValidString(got) {
		t.Error("truncation split a UTF-8 sequence")
	}

	if _, err := (&Brief{Text: " \n\t "}).Prompt("direction"); apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("empty brief error kind = %s", apperr.KindOf(err))
	}
}
