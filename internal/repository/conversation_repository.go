package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gigstage/console/chat-bridge/internal/domain"
)

type gormConversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &gormConversationRepository{db: db}
}

func (r *gormConversationRepository) Upsert(ctx context.Context, conv *domain.Conversation) error {
	model := ConversationDomainToModel(conv)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(model).Error
}

func (r *gormConversationRepository) GetByID(ctx context.Context, id string) (*domain.Conversation, error) {
	var model ConversationModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return ConversationModelToDomain(&model), nil
}

func (r *gormConversationRepository) List(ctx context.Context, filter ListFilter) ([]*domain.Conversation, int64, error) {
	query := r.db.WithContext(ctx).Model(&ConversationModel{})

	if filter.Search != "" {
		like := "%" + escapeLike(filter.Search) + "%"
		query = query.Where(
			"group_name LIKE ? ESCAPE '\\' OR participant_names LIKE ? ESCAPE '\\' OR participants LIKE ? ESCAPE '\\'",
			like, like, like,
		)
	}
	if filter.UnreadOnly {
		query = query.Where("unread_count > 0")
	}
	if filter.Participant != "" {
		query = query.Where("participants LIKE ? ESCAPE '\\'", "%"+escapeLike(filter.Participant)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("updated_at DESC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit).Offset(filter.Offset)
	}

	var models []ConversationModel
	if err := query.Find(&models).Error; err != nil {
		return nil, 0, err
	}

	conversations := make([]*domain.Conversation, len(models))
	for i := range models {
		conversations[i] = ConversationModelToDomain(&models[i])
	}
	return conversations, total, nil
}

func (r *gormConversationRepository) SetUnreadCount(ctx context.Context, id string, count int) error {
	return r.db.WithContext(ctx).
		Model(&ConversationModel{}).
		Where("id = ?", id).
		Update("unread_count", count).Error
}

func (r *gormConversationRepository) IncrementUnreadCount(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&ConversationModel{}).
		Where("id = ?", id).
		UpdateColumn("unread_count", gorm.Expr("unread_count + ?", 1)).Error
}

func (r *gormConversationRepository) Touch(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&ConversationModel{}).
		Where("id = ?", id).
		Update("updated_at", at).Error
}

func (r *gormConversationRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&ConversationModel{}).Error
}

// escapeLike escapes LIKE special characters in user-supplied search text.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, "%", "\\%")
	return strings.ReplaceAll(s, "_", "\\_")
}
