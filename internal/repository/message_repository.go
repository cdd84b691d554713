package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/gigstage/console/chat-bridge/internal/domain"
)

type gormMessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &gormMessageRepository{db: db}
}

func (r *gormMessageRepository) Create(ctx context.Context, msg *domain.Message) error {
	model := MessageDomainToModel(msg)
	return r.db.WithContext(ctx).Create(model).Error
}

func (r *gormMessageRepository) GetByID(ctx context.Context, id string) (*domain.Message, error) {
	var model MessageModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return MessageModelToDomain(&model), nil
}

func (r *gormMessageRepository) GetByConversation(ctx context.Context, conversationID string, limit, offset int) ([]*domain.Message, error) {
	var models []MessageModel
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	messages := make([]*domain.Message, len(models))
	for i := range models {
		messages[i] = MessageModelToDomain(&models[i])
	}
	return messages, nil
}

func (r *gormMessageRepository) CountByConversation(ctx context.Context, conversationID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&MessageModel{}).
		Where("conversation_id = ?", conversationID).
		Count(&count).Error
	return count, err
}

func (r *gormMessageRepository) LatestByConversation(ctx context.Context, conversationID string) (*domain.Message, error) {
	var model MessageModel
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at DESC").
		First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return MessageModelToDomain(&model), nil
}

func (r *gormMessageRepository) Update(ctx context.Context, msg *domain.Message) error {
	model := MessageDomainToModel(msg)
	return r.db.WithContext(ctx).
		Model(&MessageModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"content":    model.Content,
			"updated_at": model.UpdatedAt,
		}).Error
}

func (r *gormMessageRepository) UpdateReadStatus(ctx context.Context, ids []string, isRead bool) error {
	return r.db.WithContext(ctx).
		Model(&MessageModel{}).
		Where("id IN ?", ids).
		Update("is_read", isRead).Error
}

func (r *gormMessageRepository) MarkConversationRead(ctx context.Context, conversationID string) error {
	return r.db.WithContext(ctx).
		Model(&MessageModel{}).
		Where("conversation_id = ? AND is_read = ?", conversationID, false).
		Update("is_read", true).Error
}

func (r *gormMessageRepository) Search(ctx context.Context, query, conversationID string, limit int) ([]*domain.Message, error) {
	like := "%" + escapeLike(query) + "%"

	q := r.db.WithContext(ctx).
		Where("content LIKE ? ESCAPE '\\'", like)
	if conversationID != "" {
		q = q.Where("conversation_id = ?", conversationID)
	}

	var models []MessageModel
	err := q.Order("created_at DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	messages := make([]*domain.Message, len(models))
	for i := range models {
		messages[i] = MessageModelToDomain(&models[i])
	}
	return messages, nil
}

func (r *gormMessageRepository) DeleteByID(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&MessageModel{}).Error
}

func (r *gormMessageRepository) DeleteByConversation(ctx context.Context, conversationID string) error {
	return r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Delete(&MessageModel{}).Error
}
