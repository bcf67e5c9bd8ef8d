package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChatSession struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId         uuid.UUID `gorm:"type:uuid;not null;index:idx_chat_sessions_owner"`
	OrganizationId uuid.UUID `gorm:"type:uuid;not null;index:idx_chat_sessions_owner"`
	Title          string    `gorm:"type:text;not null"`
	IsActive       bool      `gorm:"not null;default:false;index"`
	IsArchived     bool      `gorm:"not null;default:false"`
	Temperature    float64   `gorm:"not null;default:0.7"`
	ModelName      string    `gorm:"type:varchar(100);not null"`
	MessageCount   int       `gorm:"not null;default:0"`
	LastMessageAt  *time.Time
	CreatedAt      time.Time      `gorm:"autoCreateTime"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime"`
	DeletedAt      gorm.DeletedAt `gorm:"index"`
}

func (ChatSession) TableName() string {
	return "chat_sessions"
}
