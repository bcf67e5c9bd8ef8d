package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ChatSource struct {
	Id              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ChatMessageId   uuid.UUID `gorm:"type:uuid;not null;index"`
	RagieDocumentId string    `gorm:"type:varchar(100);not null"`
	DocumentName    string    `gorm:"type:text;not null"`
	PageNumber      *int
	ChunkText       string         `gorm:"type:text;not null"`
	RelevanceScore  float64        `gorm:"not null"`
	Position        int            `gorm:"not null;default:0"`
	Metadata        datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt       time.Time      `gorm:"autoCreateTime"`

	// Relationships
	ChatMessage *ChatMessage `gorm:"foreignKey:ChatMessageId;references:Id;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func (ChatSource) TableName() string {
	return "chat_sources"
}
