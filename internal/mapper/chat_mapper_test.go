package mapper

import (
	"testing"
	"time"

	"docuchat-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatSessionMapping(t *testing.T) {
	m := NewChatMapper()
	now := time.Now()
	lastMsg := now.Add(-time.Minute)

	e := &entity.ChatSession{
		Id:             uuid.New(),
		UserId:         uuid.New(),
		OrganizationId: uuid.New(),
		Title:          "Quarterly report questions",
		IsActive:       true,
		Temperature:    0.4,
		ModelName:      "llama3",
		MessageCount:   7,
		LastMessageAt:  &lastMsg,
		CreatedAt:      now,
	}

	back := m.ChatSessionToEntity(m.ChatSessionToModel(e))
	require.NotNil(t, back)

	assert.Equal(t, e.Id, back.Id)
	assert.Equal(t, e.OrganizationId, back.OrganizationId)
	assert.Equal(t, e.Title, back.Title)
	assert.True(t, back.IsActive)
	assert.False(t, back.IsArchived)
	assert.Equal(t, 7, back.MessageCount)
	assert.False(t, back.IsDeleted)
}

func TestChatSessionSoftDeleteFlag(t *testing.T) {
	m := NewChatMapper()
	deletedAt := time.Now()

	e := &entity.ChatSession{
		Id:        uuid.New(),
		DeletedAt: &deletedAt,
		CreatedAt: time.Now(),
	}

	mod := m.ChatSessionToModel(e)
	assert.True(t, mod.DeletedAt.Valid)

	back := m.ChatSessionToEntity(mod)
	assert.True(t, back.IsDeleted)
	require.NotNil(t, back.DeletedAt)
}

func TestChatSourceMetadataRoundTrip(t *testing.T) {
	m := NewChatMapper()
	page := 9

	e := &entity.ChatSource{
		Id:              uuid.New(),
		ChatMessageId:   uuid.New(),
		RagieDocumentId: "doc-123",
		DocumentName:    "handbook.pdf",
		PageNumber:      &page,
		ChunkText:       "Relevant passage",
		RelevanceScore:  0.87,
		Position:        1,
		Metadata: map[string]interface{}{
			"source_url": "https://example.com/handbook.pdf",
			"page_count": float64(42),
		},
		CreatedAt: time.Now(),
	}

	back := m.ChatSourceToEntity(m.ChatSourceToModel(e))
	require.NotNil(t, back)

	assert.Equal(t, e.RagieDocumentId, back.RagieDocumentId)
	assert.Equal(t, 0.87, back.RelevanceScore)
	assert.Equal(t, 1, back.Position)
	require.NotNil(t, back.PageNumber)
	assert.Equal(t, 9, *back.PageNumber)
	assert.Equal(t, "https://example.com/handbook.pdf", back.Metadata["source_url"])
}

func TestChatSourceNilMetadata(t *testing.T) {
	m := NewChatMapper()

	e := &entity.ChatSource{
		Id:            uuid.New(),
		ChatMessageId: uuid.New(),
		CreatedAt:     time.Now(),
	}

	back := m.ChatSourceToEntity(m.ChatSourceToModel(e))
	require.NotNil(t, back)
	assert.Nil(t, back.Metadata)
}

func TestNilSafety(t *testing.T) {
	m := NewChatMapper()
	assert.Nil(t, m.ChatSessionToEntity(nil))
	assert.Nil(t, m.ChatSessionToModel(nil))
	assert.Nil(t, m.ChatMessageToEntity(nil))
	assert.Nil(t, m.ChatMessageToModel(nil))
	assert.Nil(t, m.ChatSourceToEntity(nil))
	assert.Nil(t, m.ChatSourceToModel(nil))
}
