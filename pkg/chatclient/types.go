package chatclient

import (
	"time"

	"github.com/google/uuid"
)

// Session mirrors the server's chat session representation.
type Session struct {
	Id             uuid.UUID  `json:"id"`
	UserId         uuid.UUID  `json:"user_id"`
	OrganizationId uuid.UUID  `json:"organization_id"`
	Title          string     `json:"title"`
	IsActive       bool       `json:"is_active"`
	IsArchived     bool       `json:"is_archived"`
	Temperature    float64    `json:"temperature"`
	ModelName      string     `json:"model_name"`
	MessageCount   int        `json:"message_count"`
	LastMessageAt  *time.Time `json:"last_message_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`
}

// Source is one citation attached to an assistant message, ordered by
// descending relevance.
type Source struct {
	Id              uuid.UUID `json:"id"`
	RagieDocumentId string    `json:"ragie_document_id"`
	DocumentName    string    `json:"document_name"`
	PageNumber      *int      `json:"page_number,omitempty"`
	ChunkText       string    `json:"chunk_text"`
	RelevanceScore  float64   `json:"relevance_score"`
}

type Message struct {
	Id            uuid.UUID `json:"id"`
	ChatSessionId uuid.UUID `json:"session_id"`
	Role          string    `json:"role"`
	Content       string    `json:"content"`
	Status        string    `json:"status"`
	ErrorMessage  string    `json:"error_message,omitempty"`
	TokensTotal   *int      `json:"tokens_total,omitempty"`
	ProcessingMs  *int64    `json:"processing_time_ms,omitempty"`
	Sources       []Source  `json:"sources,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Message lifecycle states as reported by the server.
const (
	StatusPending   = "pending"
	StatusStreaming = "streaming"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Response modes accepted by SendMessage.
const (
	ModeStrict   = "strict"
	ModeBalanced = "balanced"
	ModeCreative = "creative"
)

// SendMessageRequest carries a question and optional generation overrides.
type SendMessageRequest struct {
	Question string `json:"question"`
	Mode     string `json:"mode,omitempty"`
	Model    string `json:"model,omitempty"`
}

// Exchange is the result of sending a message: the session it landed in,
// the stored user message, and the assistant reply (pending when the server
// generates asynchronously).
type Exchange struct {
	Session *Session `json:"session"`
	Sent    *Message `json:"sent"`
	Reply   *Message `json:"reply"`
}

// MessagesPage is one page of session history plus the cursor for the next.
type MessagesPage struct {
	Messages   []*Message `json:"messages"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

type envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data,omitempty"`
}

type errorBody struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	ErrorType string `json:"error_type,omitempty"`
}
