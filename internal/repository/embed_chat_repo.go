package repository

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/tgo/embedhub/internal/model"
)

type EmbedChatRepository struct {
	db *gorm.DB
}

func NewEmbedChatRepository(db *gorm.DB) *EmbedChatRepository {
	return &EmbedChatRepository{db: db}
}

func (r *EmbedChatRepository) Create(ctx context.Context, chat *model.EmbedChat) error {
	return r.db.WithContext(ctx).Create(chat).Error
}

func (r *EmbedChatRepository) Get(ctx context.Context, where Clause) *model.EmbedChat {
	var chat model.EmbedChat
	if err := applyClause(r.db.WithContext(ctx), where).First(&chat).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logrus.WithError(err).Error("Failed to fetch embed chat")
		}
		return nil
	}
	return &chat
}

// Where lists chats matching where. Failures yield an empty list.
func (r *EmbedChatRepository) Where(ctx context.Context, where Clause, limit, offset int, order *OrderBy) []model.EmbedChat {
	chats := []model.EmbedChat{}
	query := applyPaging(applyClause(r.db.WithContext(ctx), where), limit, order)
	if offset > 0 {
		query = query.Offset(offset)
	}
	if err := query.Find(&chats).Error; err != nil {
		logrus.WithError(err).Error("Failed to list embed chats")
		return []model.EmbedChat{}
	}
	return chats
}

// WhereWithEmbedAndWorkspace is Where with each chat's embed and that embed's
// workspace loaded.
func (r *EmbedChatRepository) WhereWithEmbedAndWorkspace(ctx context.Context, where Clause, limit, offset int, order *OrderBy) []model.EmbedChat {
	chats := []model.EmbedChat{}
	query := applyPaging(applyClause(r.db.WithContext(ctx).Preload("Embed.Workspace"), where), limit, order)
	if offset > 0 {
		query = query.Offset(offset)
	}
	if err := query.Find(&chats).Error; err != nil {
		logrus.WithError(err).Error("Failed to list embed chats with embed")
		return []model.EmbedChat{}
	}
	return chats
}

func (r *EmbedChatRepository) Count(ctx context.Context, where Clause) int64 {
	var total int64
	if err := applyClause(r.db.WithContext(ctx).Model(&model.EmbedChat{}), where).Count(&total).Error; err != nil {
		logrus.WithError(err).Error("Failed to count embed chats")
		return 0
	}
	return total
}

// Delete removes every chat matching where. An empty clause deletes nothing.
func (r *EmbedChatRepository) Delete(ctx context.Context, where Clause) bool {
	if len(where) == 0 {
		return false
	}
	if err := r.db.WithContext(ctx).Where(map[string]interface{}(where)).Delete(&model.EmbedChat{}).Error; err != nil {
		logrus.WithError(err).Error("Failed to delete embed chats")
		return false
	}
	return true
}
