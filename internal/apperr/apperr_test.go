package apperr

import (
	"errors"
	"fmt"
	"io"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"validation", Validation("prompt too short"), KindValidation},
		{"configuration", Configuration("geminiApiKey is not set"), KindConfiguration},
		{"generation", Generation(io.EOF, "empty plan"), KindGeneration},
		{"provider", Provider(503, nil, "pixabay returned 503"), KindProvider},
		{"persistence", Persistence(io.ErrUnexpectedEOF, "save project"), KindPersistence},
		{"not found", NotFound("project %s", "abc"), KindNotFound},
		{"wrapped", fmt.Errorf("create project: %w", Validation("bad")), KindValidation},
		{"plain error", errors.New("boom"), KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorUnwrapAndMessage(t *testing.T) {
	err := Persistence(io.ErrClosedPipe, "failed to save project")

	if !errors.Is(err, io.ErrClosedPipe) {
		t.Error("expected cause to be reachable through Unwrap")
	}
	if got := Message(fmt.Errorf("outer: %w", err)); got != "failed to save project" {
		t.Errorf("Message() = %q", got)
	}
	if got := err.Error(); got != "failed to save project: io: read/write on closed pipe" {
		t.Errorf("Error() = %q", got)
	}
	if Is(nil, KindPersistence) {
		t.Error("nil error must not match any kind")
	}
}
