package mapper

import (
	"encoding/json"
	"time"

	"docuchat-be/internal/entity"
	"docuchat-be/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

// Session Mappers

func (m *ChatMapper) ChatSessionToEntity(s *model.ChatSession) *entity.ChatSession {
	if s == nil {
		return nil
	}

	var deletedAt *time.Time
	if s.DeletedAt.Valid {
		t := s.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		updatedAt = &t
	}

	return &entity.ChatSession{
		Id:             s.Id,
		UserId:         s.UserId,
		OrganizationId: s.OrganizationId,
		Title:          s.Title,
		IsActive:       s.IsActive,
		IsArchived:     s.IsArchived,
		Temperature:    s.Temperature,
		ModelName:      s.ModelName,
		MessageCount:   s.MessageCount,
		LastMessageAt:  s.LastMessageAt,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      updatedAt,
		DeletedAt:      deletedAt,
		IsDeleted:      s.DeletedAt.Valid,
	}
}

func (m *ChatMapper) ChatSessionToModel(s *entity.ChatSession) *model.ChatSession {
	if s == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if s.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *s.DeletedAt, Valid: true}
	} else if s.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if s.UpdatedAt != nil {
		updatedAt = *s.UpdatedAt
	}

	return &model.ChatSession{
		Id:             s.Id,
		UserId:         s.UserId,
		OrganizationId: s.OrganizationId,
		Title:          s.Title,
		IsActive:       s.IsActive,
		IsArchived:     s.IsArchived,
		Temperature:    s.Temperature,
		ModelName:      s.ModelName,
		MessageCount:   s.MessageCount,
		LastMessageAt:  s.LastMessageAt,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      updatedAt,
		DeletedAt:      deletedAt,
	}
}

// Message Mappers

func (m *ChatMapper) ChatMessageToEntity(msg *model.ChatMessage) *entity.ChatMessage {
	if msg == nil {
		return nil
	}

	var deletedAt *time.Time
	if msg.DeletedAt.Valid {
		t := msg.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !msg.UpdatedAt.IsZero() {
		t := msg.UpdatedAt
		updatedAt = &t
	}

	return &entity.ChatMessage{
		Id:            msg.Id,
		ChatSessionId: msg.ChatSessionId,
		Role:          msg.Role,
		Content:       msg.Content,
		Status:        msg.Status,
		ErrorMessage:  msg.ErrorMessage,
		TokensTotal:   msg.TokensTotal,
		ProcessingMs:  msg.ProcessingMs,
		CreatedAt:     msg.CreatedAt,
		UpdatedAt:     updatedAt,
		DeletedAt:     deletedAt,
		IsDeleted:     msg.DeletedAt.Valid,
	}
}

func (m *ChatMapper) ChatMessageToModel(msg *entity.ChatMessage) *model.ChatMessage {
	if msg == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if msg.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *msg.DeletedAt, Valid: true}
	} else if msg.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if msg.UpdatedAt != nil {
		updatedAt = *msg.UpdatedAt
	}

	return &model.ChatMessage{
		Id:            msg.Id,
		ChatSessionId: msg.ChatSessionId,
		Role:          msg.Role,
		Content:       msg.Content,
		Status:        msg.Status,
		ErrorMessage:  msg.ErrorMessage,
		TokensTotal:   msg.TokensTotal,
		ProcessingMs:  msg.ProcessingMs,
		CreatedAt:     msg.CreatedAt,
		UpdatedAt:     updatedAt,
		DeletedAt:     deletedAt,
	}
}

// Source Mappers

func (m *ChatMapper) ChatSourceToEntity(s *model.ChatSource) *entity.ChatSource {
	if s == nil {
		return nil
	}

	var metadata map[string]interface{}
	if len(s.Metadata) > 0 {
		// Metadata is display-only; a corrupt blob should not fail the read.
		_ = json.Unmarshal(s.Metadata, &metadata)
	}

	return &entity.ChatSource{
		Id:              s.Id,
		ChatMessageId:   s.ChatMessageId,
		RagieDocumentId: s.RagieDocumentId,
		DocumentName:    s.DocumentName,
		PageNumber:      s.PageNumber,
		ChunkText:       s.ChunkText,
		RelevanceScore:  s.RelevanceScore,
		Position:        s.Position,
		Metadata:        metadata,
		CreatedAt:       s.CreatedAt,
	}
}

func (m *ChatMapper) ChatSourceToModel(s *entity.ChatSource) *model.ChatSource {
	if s == nil {
		return nil
	}

	var metadata datatypes.JSON
	if len(s.Metadata) > 0 {
		if b, err := json.Marshal(s.Metadata); err == nil {
			metadata = b
		}
	}

	return &model.ChatSource{
		Id:              s.Id,
		ChatMessageId:   s.ChatMessageId,
		RagieDocumentId: s.RagieDocumentId,
		DocumentName:    s.DocumentName,
		PageNumber:      s.PageNumber,
		ChunkText:       s.ChunkText,
		RelevanceScore:  s.RelevanceScore,
		Position:        s.Position,
		Metadata:        metadata,
		CreatedAt:       s.CreatedAt,
	}
}
