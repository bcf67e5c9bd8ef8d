package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"direct validation", Validation("bad input"), KindValidation},
		{"direct not found", NotFound("missing"), KindNotFound},
		{"wrapped timeout", fmt.Errorf("outer: %w", Timeout("slow", errors.New("deadline"))), KindTimeout},
		{"deeply wrapped", fmt.Errorf("a: %w", fmt.Errorf("b: %w", UpstreamUnavailable("down", nil))), KindUpstreamUnavailable},
		{"untyped", errors.New("plain"), KindInternal},
		{"nil cause preserved", Authentication("no token"), KindAuthentication},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErrorMessageIncludesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := UpstreamUnavailable("retrieval service unreachable", cause)

	if got := err.Error(); got != "retrieval service unreachable: connection refused" {
		t.Errorf("unexpected message: %s", got)
	}
	if !errors.Is(err, cause) {
		t.Error("cause should be reachable through Unwrap")
	}
}
