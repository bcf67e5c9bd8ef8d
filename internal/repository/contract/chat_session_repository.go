package contract

import (
	"context"

	"docuchat-be/internal/entity"
	"docuchat-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ChatSessionRepository interface {
	Create(ctx context.Context, session *entity.ChatSession) error
	Update(ctx context.Context, session *entity.ChatSession) error
	DeleteUnscoped(ctx context.Context, id uuid.UUID) error // Hard delete
	DeactivateAll(ctx context.Context, userId, organizationId uuid.UUID) error
	TouchLastMessage(ctx context.Context, id uuid.UUID) error // bump count + last_message_at
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatSession, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatSession, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
