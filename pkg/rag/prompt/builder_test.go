package prompt

import (
	"strings"
	"testing"

	"docuchat-be/internal/constant"
	"docuchat-be/pkg/ragie"
)

func TestBuildModeInstructions(t *testing.T) {
	b := NewBuilder()
	page := 3
	chunks := []ragie.Chunk{
		{Text: "Alpha passage", Score: 0.9, DocumentName: "handbook.pdf", PageNumber: &page},
		{Text: "Beta passage", Score: 0.5, DocumentName: "policy.md"},
	}

	tests := []struct {
		name         string
		mode         string
		wantPhrase   string
		rejectPhrase string
	}{
		{
			name:         "strict forbids outside knowledge",
			mode:         constant.ResponseModeStrict,
			wantPhrase:   "Do not use outside knowledge",
			rejectPhrase: "general knowledge",
		},
		{
			name:       "balanced allows brief context",
			mode:       constant.ResponseModeBalanced,
			wantPhrase: "do not contradict the sources",
		},
		{
			name:       "creative allows synthesis",
			mode:       constant.ResponseModeCreative,
			wantPhrase: "synthesize",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := b.Build(tt.mode, chunks)
			if !strings.Contains(got, tt.wantPhrase) {
				t.Errorf("prompt for mode %s missing %q", tt.mode, tt.wantPhrase)
			}
			if tt.rejectPhrase != "" && strings.Contains(got, tt.rejectPhrase) {
				t.Errorf("prompt for mode %s should not contain %q", tt.mode, tt.rejectPhrase)
			}
		})
	}
}

func TestBuildNumbersSourcesInOrder(t *testing.T) {
	b := NewBuilder()
	page := 12
	chunks := []ragie.Chunk{
		{Text: "first", Score: 0.91, DocumentName: "a.pdf", PageNumber: &page},
		{Text: "second", Score: 0.42, DocumentName: "b.pdf"},
	}

	got := b.Build(constant.ResponseModeBalanced, chunks)

	first := strings.Index(got, "[1] a.pdf (page 12)")
	second := strings.Index(got, "[2] b.pdf")
	if first == -1 || second == -1 {
		t.Fatalf("numbered source headers missing:\n%s", got)
	}
	if first > second {
		t.Error("sources not rendered in relevance order")
	}
}

func TestBuildWithoutSources(t *testing.T) {
	b := NewBuilder()
	got := b.Build(constant.ResponseModeStrict, nil)

	if !strings.Contains(got, "No sources were found") {
		t.Errorf("empty retrieval should be called out, got:\n%s", got)
	}
	if strings.Contains(got, "Sources:") {
		t.Error("no sources block expected for empty retrieval")
	}
}

func TestBuildUnknownModeFallsBackToBalanced(t *testing.T) {
	b := NewBuilder()
	got := b.Build("whatever", nil)
	if !strings.Contains(got, "do not contradict the sources") {
		t.Error("unknown mode should render balanced instructions")
	}
}
