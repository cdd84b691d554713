package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gigstage/console/chat-bridge/internal/domain"
)

type gormUserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &gormUserRepository{db: db}
}

func (r *gormUserRepository) Upsert(ctx context.Context, user *domain.User) error {
	model := UserDomainToModel(user)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(model).Error
}

func (r *gormUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var model UserModel
	if err := r.db.WithContext(ctx).First(&model, "email = ?", email).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return UserModelToDomain(&model), nil
}

func (r *gormUserRepository) Search(ctx context.Context, query string) ([]*domain.User, error) {
	q := r.db.WithContext(ctx).Model(&UserModel{})
	if query != "" {
		like := "%" + escapeLike(query) + "%"
		q = q.Where("name LIKE ? ESCAPE '\\' OR email LIKE ? ESCAPE '\\'", like, like)
	}

	var models []UserModel
	if err := q.Order("name ASC").Find(&models).Error; err != nil {
		return nil, err
	}

	users := make([]*domain.User, len(models))
	for i := range models {
		users[i] = UserModelToDomain(&models[i])
	}
	return users, nil
}
