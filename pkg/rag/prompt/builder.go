package prompt

import (
	"fmt"
	"strings"

	"docuchat-be/internal/constant"
	"docuchat-be/pkg/ragie"
)

// Builder assembles the system prompt that grounds the model in the
// retrieved passages. The response mode controls how tightly the model
// must stick to the sources.
type Builder struct{}

func NewBuilder() *Builder {
	return &Builder{}
}

const basePreamble = `You are a knowledgeable assistant that answers questions about the user's documents.
Answer in the same language the question was asked in.
When you use information from a source, cite it inline as [1], [2] and so on, matching the numbered sources below.`

func modeInstructions(mode string) string {
	switch mode {
	case constant.ResponseModeStrict:
		return `Answer ONLY from the sources below. Do not use outside knowledge and do not extrapolate.
If the sources do not contain the answer, say so plainly instead of guessing.`
	case constant.ResponseModeCreative:
		return `Use the sources below as grounding, but you may synthesize, draw connections and
add helpful context from general knowledge. Make clear which parts go beyond the sources.`
	default: // balanced
		return `Base your answer on the sources below. You may add brief clarifying context from
general knowledge, but do not contradict the sources. If the sources do not cover the
question, say what is missing.`
	}
}

// Build renders the full system prompt for a question given its retrieved
// chunks. Chunks are expected in descending relevance order; their 1-based
// position here matches the citation numbers and the persisted source rows.
func (b *Builder) Build(mode string, chunks []ragie.Chunk) string {
	var sb strings.Builder

	sb.WriteString(basePreamble)
	sb.WriteString("\n\n")
	sb.WriteString(modeInstructions(mode))

	if len(chunks) == 0 {
		sb.WriteString("\n\nNo sources were found for this question. Tell the user that nothing relevant was found in their documents.")
		return sb.String()
	}

	sb.WriteString("\n\nSources:\n")
	for i, chunk := range chunks {
		sb.WriteString(fmt.Sprintf("\n[%d] %s", i+1, chunk.DocumentName))
		if chunk.PageNumber != nil {
			sb.WriteString(fmt.Sprintf(" (page %d)", *chunk.PageNumber))
		}
		sb.WriteString("\n")
		sb.WriteString(strings.TrimSpace(chunk.Text))
		sb.WriteString("\n")
	}

	return sb.String()
}
