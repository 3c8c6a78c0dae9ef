// Package brief turns an uploaded PDF brief into a storyboard prompt.
//
// We use the ledongthuc/pdf library for text extraction.
// It's a pure Go implementation — no CGO or external dependencies required.
package brief

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"github.com/Shimizu-Technology/storyboard-api/internal/apperr"
)

// MaxPromptRunes caps how much of a brief is sent to the model.
const MaxPromptRunes = 4000

// Brief is the text pulled out of a PDF.
type Brief struct {
	Text      string
	PageCount int
	WordCount int
}

// Extract reads a PDF held in memory and returns its text.
//
// Go Pattern: We take []byte instead of a filename because the data comes
// from an HTTP upload, not a file on disk. The pdf library needs an
// io.ReaderAt for random access, which bytes.Reader provides.
func Extract(data []byte) (b *Brief, err error) {
	// The pdf library panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			b, err = nil, apperr.Validation("could not read PDF: %v", r)
		}
	}()

	if !ValidatePDF(data) {
		return nil, apperr.Validation("uploaded file is not a PDF")
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, apperr.Validation("could not read PDF: %v", err)
	}

	var text strings.Builder
	pages := reader.NumPage()
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		// Image-only pages have no text; skip them.
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		text.WriteString(strings.TrimSpace(content))
		text.WriteString("\n")
	}

	extracted := strings.TrimSpace(text.String())
	return &Brief{
		Text:      extracted,
		PageCount: pages,
		WordCount: len(strings.Fields(extracted)),
	}, nil
}

// ValidatePDF checks the "%PDF-" magic bytes.
func ValidatePDF(data []byte) bool {
	return len(data) >= 5 && string(data[:5]) == "%PDF-"
}

// Prompt builds a scene plan prompt from the brief: whitespace collapsed,
// optional extra direction prepended, capped at MaxPromptRunes.
func (b *Brief) Prompt(direction string) (string, error) {
	body := strings.Join(strings.Fields(b.Text), " ")
	if body == "" {
		return "", apperr.Validation("the PDF contains no extractable text")
	}

	prompt := body
	if d := strings.TrimSpace(direction); d != "" {
		prompt = fmt.Sprintf("%s\n\nBrief:\n%s", d, body)
	}

	if utf8.RuneCountInString(prompt) > MaxPromptRunes {
		prompt = string([]rune(prompt)[:MaxPromptRunes])
	}
	return prompt, nil
}
