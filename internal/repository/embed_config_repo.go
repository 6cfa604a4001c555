package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tgo/embedhub/internal/model"
	"github.com/tgo/embedhub/internal/pkg/metrics"
)

var (
	ErrNoValidFields     = errors.New("no valid fields to update")
	ErrMissingEmbedID    = errors.New("no embed id provided for update")
	ErrInvalidWorkspace  = errors.New("a valid workspace_id is required")
	ErrWorkspaceNotFound = errors.New("workspace not found")
	ErrEmbedNotFound     = errors.New("embed not found")
)

// Clause is a set of column/value pairs joined with AND.
type Clause map[string]interface{}

// OrderBy sorts list queries by a single column.
type OrderBy struct {
	Column string
	Desc   bool
}

func applyClause(db *gorm.DB, where Clause) *gorm.DB {
	if len(where) == 0 {
		return db
	}
	return db.Where(map[string]interface{}(where))
}

func applyPaging(db *gorm.DB, limit int, order *OrderBy) *gorm.DB {
	if order != nil && order.Column != "" {
		db = db.Order(clause.OrderByColumn{Column: clause.Column{Name: order.Column}, Desc: order.Desc})
	}
	if limit > 0 {
		db = db.Limit(limit)
	}
	return db
}

const embedChatCountSelect = "embed_configs.*, " +
	"(SELECT COUNT(*) FROM embed_chats WHERE embed_chats.embed_id = embed_configs.id) AS chat_count"

type EmbedConfigRepository struct {
	db      *gorm.DB
	newUUID func() string
}

func NewEmbedConfigRepository(db *gorm.DB) *EmbedConfigRepository {
	return &EmbedConfigRepository{db: db, newUUID: uuid.NewString}
}

// Create validates data and inserts a new enabled embed for the workspace named
// by data["workspace_id"]. The row and its validated fields are written in one
// transaction, so a failure leaves nothing behind.
func (r *EmbedConfigRepository) Create(ctx context.Context, data map[string]interface{}, creatorID *uint) (*model.EmbedConfig, error) {
	validated := ValidateEmbedFields(data)
	workspaceID, ok := validated["workspace_id"].(int64)
	if !ok {
		metrics.RecordEmbedOperation("create", false)
		return nil, ErrInvalidWorkspace
	}
	delete(validated, "workspace_id")

	embed := &model.EmbedConfig{
		UUID:        r.newUUID(),
		Enabled:     true,
		ChatMode:    model.DefaultChatMode,
		WorkspaceID: uint(workspaceID),
		CreatedBy:   creatorID,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Workspace{}).Where("id = ?", workspaceID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrWorkspaceNotFound
		}
		if err := tx.Create(embed).Error; err != nil {
			return err
		}
		if len(validated) == 0 {
			return nil
		}
		return tx.Model(&model.EmbedConfig{}).Where("id = ?", embed.ID).Updates(validated).Error
	})
	if err != nil {
		logrus.WithError(err).WithField("workspace_id", workspaceID).Error("Failed to create embed")
		metrics.RecordEmbedOperation("create", false)
		return nil, err
	}

	var created model.EmbedConfig
	if err := r.db.WithContext(ctx).First(&created, embed.ID).Error; err != nil {
		logrus.WithError(err).WithField("embed_id", embed.ID).Error("Failed to reload created embed")
		metrics.RecordEmbedOperation("create", false)
		return nil, err
	}
	metrics.RecordEmbedOperation("create", true)
	return &created, nil
}

// Update validates data and applies the surviving fields to embed id in a
// single UPDATE. ErrNoValidFields is returned without touching the database
// when nothing survives validation.
func (r *EmbedConfigRepository) Update(ctx context.Context, id uint, data map[string]interface{}) (*model.EmbedConfig, error) {
	if id == 0 {
		return nil, ErrMissingEmbedID
	}

	validated := ValidateEmbedFields(data)
	if len(validated) == 0 {
		metrics.RecordEmbedOperation("update", false)
		return nil, ErrNoValidFields
	}

	result := r.db.WithContext(ctx).Model(&model.EmbedConfig{}).Where("id = ?", id).Updates(validated)
	if result.Error != nil {
		logrus.WithError(result.Error).WithField("embed_id", id).Error("Failed to update embed")
		metrics.RecordEmbedOperation("update", false)
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		metrics.RecordEmbedOperation("update", false)
		return nil, ErrEmbedNotFound
	}

	var updated model.EmbedConfig
	if err := r.db.WithContext(ctx).First(&updated, id).Error; err != nil {
		logrus.WithError(err).WithField("embed_id", id).Error("Failed to reload updated embed")
		metrics.RecordEmbedOperation("update", false)
		return nil, err
	}
	metrics.RecordEmbedOperation("update", true)
	return &updated, nil
}

// Get returns the first embed matching where, or nil. Storage errors are
// logged and reported as nil as well.
func (r *EmbedConfigRepository) Get(ctx context.Context, where Clause) *model.EmbedConfig {
	return first(r.db.WithContext(ctx), where)
}

// GetWithWorkspace is Get with the owning workspace loaded.
func (r *EmbedConfigRepository) GetWithWorkspace(ctx context.Context, where Clause) *model.EmbedConfig {
	return first(r.db.WithContext(ctx).Preload("Workspace"), where)
}

func first(db *gorm.DB, where Clause) *model.EmbedConfig {
	var embed model.EmbedConfig
	err := applyClause(db, where).First(&embed).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logrus.WithError(err).Error("Failed to fetch embed")
		}
		return nil
	}
	return &embed
}

// Where lists embeds matching where. Failures yield an empty list.
func (r *EmbedConfigRepository) Where(ctx context.Context, where Clause, limit int, order *OrderBy) []model.EmbedConfig {
	embeds := []model.EmbedConfig{}
	query := applyPaging(applyClause(r.db.WithContext(ctx), where), limit, order)
	if err := query.Find(&embeds).Error; err != nil {
		logrus.WithError(err).Error("Failed to list embeds")
		return []model.EmbedConfig{}
	}
	return embeds
}

// WhereWithWorkspace lists embeds with their workspace and ChatCount filled in.
func (r *EmbedConfigRepository) WhereWithWorkspace(ctx context.Context, where Clause, limit int, order *OrderBy) []model.EmbedConfig {
	embeds := []model.EmbedConfig{}
	query := r.db.WithContext(ctx).
		Model(&model.EmbedConfig{}).
		Select(embedChatCountSelect).
		Preload("Workspace")
	query = applyPaging(applyClause(query, where), limit, order)
	if err := query.Find(&embeds).Error; err != nil {
		logrus.WithError(err).Error("Failed to list embeds with workspace")
		return []model.EmbedConfig{}
	}
	return embeds
}

// Delete removes the single embed matching where. Chats go with it through
// the foreign key cascade. Returns false when nothing matched or on failure.
func (r *EmbedConfigRepository) Delete(ctx context.Context, where Clause) bool {
	if len(where) == 0 {
		return false
	}

	var embed model.EmbedConfig
	if err := applyClause(r.db.WithContext(ctx), where).First(&embed).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logrus.WithError(err).Error("Failed to look up embed for delete")
		}
		metrics.RecordEmbedOperation("delete", false)
		return false
	}

	if err := r.db.WithContext(ctx).Delete(&model.EmbedConfig{}, embed.ID).Error; err != nil {
		logrus.WithError(err).WithField("embed_id", embed.ID).Error("Failed to delete embed")
		metrics.RecordEmbedOperation("delete", false)
		return false
	}
	metrics.RecordEmbedOperation("delete", true)
	return true
}

// ParseAllowedHosts decodes the embed's allowlist.
//
// A nil result means the embed has no allowlist and host checks are skipped.
// A stored value that cannot be decoded yields an empty, non-nil list so that
// every origin is refused rather than allowed.
func ParseAllowedHosts(embed *model.EmbedConfig) []string {
	if embed == nil || !embed.HasAllowlist() {
		return nil
	}

	var hosts []string
	if err := json.Unmarshal([]byte(*embed.AllowlistDomains), &hosts); err != nil || hosts == nil {
		logrus.Errorf("Failed to parse allowlist_domains for Embed %d!", embed.ID)
		return []string{}
	}
	return hosts
}
