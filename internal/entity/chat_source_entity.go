package entity

import (
	"time"

	"github.com/google/uuid"
)

// ChatSource is one citation attached to a completed assistant message.
// Position preserves the descending relevance order assigned at generation
// time.
type ChatSource struct {
	Id              uuid.UUID
	ChatMessageId   uuid.UUID
	RagieDocumentId string
	DocumentName    string
	PageNumber      *int
	ChunkText       string
	RelevanceScore  float64
	Position        int
	Metadata        map[string]interface{}
	CreatedAt       time.Time
}
