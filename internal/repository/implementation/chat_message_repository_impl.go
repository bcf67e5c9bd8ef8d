package implementation

import (
	"context"
	"errors"

	"docuchat-be/internal/entity"
	"docuchat-be/internal/mapper"
	"docuchat-be/internal/model"
	"docuchat-be/internal/repository/contract"
	"docuchat-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChatMessageRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewChatMessageRepository(db *gorm.DB) contract.ChatMessageRepository {
	return &ChatMessageRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *ChatMessageRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ChatMessageRepositoryImpl) Create(ctx context.Context, message *entity.ChatMessage) error {
	m := r.mapper.ChatMessageToModel(message)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	sources := message.Sources
	*message = *r.mapper.ChatMessageToEntity(m)
	message.Sources = sources
	return nil
}

func (r *ChatMessageRepositoryImpl) Update(ctx context.Context, message *entity.ChatMessage) error {
	m := r.mapper.ChatMessageToModel(message)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	sources := message.Sources
	*message = *r.mapper.ChatMessageToEntity(m)
	message.Sources = sources
	return nil
}

func (r *ChatMessageRepositoryImpl) DeleteByChatSessionIdUnscoped(ctx context.Context, sessionId uuid.UUID) error {
	return r.db.WithContext(ctx).Unscoped().
		Where("chat_session_id = ?", sessionId).
		Delete(&model.ChatMessage{}).Error
}

func (r *ChatMessageRepositoryImpl) DeleteSourcesByChatSessionIdUnscoped(ctx context.Context, sessionId uuid.UUID) error {
	subQuery := r.db.Table("chat_messages").Select("id").Where("chat_session_id = ?", sessionId)
	return r.db.WithContext(ctx).Unscoped().
		Where("chat_message_id IN (?)", subQuery).
		Delete(&model.ChatSource{}).Error
}

func (r *ChatMessageRepositoryImpl) CreateSources(ctx context.Context, sources []*entity.ChatSource) error {
	if len(sources) == 0 {
		return nil
	}
	models := make([]*model.ChatSource, len(sources))
	for i, s := range sources {
		models[i] = r.mapper.ChatSourceToModel(s)
	}
	return r.db.WithContext(ctx).Create(models).Error
}

// FindSourcesByMessageIds loads citations for a batch of messages, most
// relevant first within each message.
func (r *ChatMessageRepositoryImpl) FindSourcesByMessageIds(ctx context.Context, messageIds []uuid.UUID) ([]*entity.ChatSource, error) {
	if len(messageIds) == 0 {
		return []*entity.ChatSource{}, nil
	}

	var models []*model.ChatSource
	err := r.db.WithContext(ctx).
		Where("chat_message_id IN ?", messageIds).
		Order("chat_message_id, relevance_score DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	entities := make([]*entity.ChatSource, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ChatSourceToEntity(m)
	}
	return entities, nil
}

func (r *ChatMessageRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatMessage, error) {
	var m model.ChatMessage
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ChatMessageToEntity(&m), nil
}

func (r *ChatMessageRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error) {
	var models []*model.ChatMessage
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.ChatMessage, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ChatMessageToEntity(m)
	}
	return entities, nil
}

func (r *ChatMessageRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.ChatMessage{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
