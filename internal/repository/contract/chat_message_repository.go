package contract

import (
	"context"

	"docuchat-be/internal/entity"
	"docuchat-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ChatMessageRepository interface {
	Create(ctx context.Context, message *entity.ChatMessage) error
	Update(ctx context.Context, message *entity.ChatMessage) error
	DeleteByChatSessionIdUnscoped(ctx context.Context, sessionId uuid.UUID) error // Hard delete, cascade
	CreateSources(ctx context.Context, sources []*entity.ChatSource) error
	FindSourcesByMessageIds(ctx context.Context, messageIds []uuid.UUID) ([]*entity.ChatSource, error)
	DeleteSourcesByChatSessionIdUnscoped(ctx context.Context, sessionId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatMessage, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
