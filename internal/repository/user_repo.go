package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/tgo/embedhub/internal/model"
)

type UserRepository struct {
	BaseRepository[model.User]
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{BaseRepository: BaseRepository[model.User]{DB: db}}
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	if err := r.DB.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindActiveByID returns the user unless it is missing or suspended.
func (r *UserRepository) FindActiveByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := r.DB.WithContext(ctx).Where("id = ? AND suspended = ?", id, false).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

type APIKeyRepository struct {
	BaseRepository[model.APIKey]
}

func NewAPIKeyRepository(db *gorm.DB) *APIKeyRepository {
	return &APIKeyRepository{BaseRepository: BaseRepository[model.APIKey]{DB: db}}
}

func (r *APIKeyRepository) FindBySecret(ctx context.Context, secret string) (*model.APIKey, error) {
	var key model.APIKey
	if err := r.DB.WithContext(ctx).Where("secret = ?", secret).First(&key).Error; err != nil {
		return nil, err
	}
	return &key, nil
}
