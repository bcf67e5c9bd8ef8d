package factory

import (
	"fmt"

	"docuchat-be/pkg/llm"
	"docuchat-be/pkg/llm/ollama"
)

// NewProvider selects the LLM backend by name. Only Ollama-compatible
// backends are supported right now; the factory exists so new providers
// slot in without touching the container.
func NewProvider(provider, model, ollamaBaseURL string) (llm.Provider, error) {
	switch provider {
	case "ollama", "":
		return ollama.NewOllamaProvider(ollamaBaseURL, model), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", provider)
	}
}
