package dto

import (
	"time"

	"github.com/google/uuid"
)

type ChatSessionResponse struct {
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

type ChatSourceResponse struct {
	Id              uuid.UUID `json:"id"`
	RagieDocumentId string    `json:"ragie_document_id"`
	DocumentName    string    `json:"document_name"`
	PageNumber      *int      `json:"page_number,omitempty"`
	ChunkText       string    `json:"chunk_text"`
	RelevanceScore  float64   `json:"relevance_score"`
}

type ChatMessageResponse struct {
	Id            uuid.UUID            `json:"id"`
	ChatSessionId uuid.UUID            `json:"session_id"`
	Role          string               `json:"role"`
	Content       string               `json:"content"`
	Status        string               `json:"status"`
	ErrorMessage  string               `json:"error_message,omitempty"`
	TokensTotal   *int                 `json:"tokens_total,omitempty"`
	ProcessingMs  *int64               `json:"processing_time_ms,omitempty"`
	Sources       []ChatSourceResponse `json:"sources,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
}

type SendMessageRequest struct {
	Question string `json:"question" validate:"required"`
	Mode     string `json:"mode,omitempty"`
	Model    string `json:"model,omitempty"`
}

// SendMessageResponse returns both halves of the exchange so the UI can
// render the user bubble and the (possibly still pending) assistant bubble
// from a single round trip.
type SendMessageResponse struct {
	Session *ChatSessionResponse `json:"session"`
	Sent    *ChatMessageResponse `json:"sent"`
	Reply   *ChatMessageResponse `json:"reply"`
}

type SessionMessagesResponse struct {
	Messages   []*ChatMessageResponse `json:"messages"`
	NextCursor string                 `json:"next_cursor,omitempty"`
}

type RenameSessionRequest struct {
	Title string `json:"title" validate:"required,max=200"`
}

// GenerateReplyJob is the payload published to the generation queue when a
// message is accepted asynchronously.
type GenerateReplyJob struct {
	MessageId      uuid.UUID `json:"message_id"`
	ChatSessionId  uuid.UUID `json:"chat_session_id"`
	UserId         uuid.UUID `json:"user_id"`
	OrganizationId uuid.UUID `json:"organization_id"`
	Question       string    `json:"question"`
	Mode           string    `json:"mode"`
	Model          string    `json:"model"`
	Temperature    float64   `json:"temperature"`
}
