package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/tgo/embedhub/internal/model"
)

type WorkspaceRepository struct {
	BaseRepository[model.Workspace]
}

func NewWorkspaceRepository(db *gorm.DB) *WorkspaceRepository {
	return &WorkspaceRepository{BaseRepository: BaseRepository[model.Workspace]{DB: db}}
}

func (r *WorkspaceRepository) List(ctx context.Context) ([]model.Workspace, error) {
	workspaces := []model.Workspace{}
	err := r.DB.WithContext(ctx).Order("name ASC").Find(&workspaces).Error
	return workspaces, err
}
