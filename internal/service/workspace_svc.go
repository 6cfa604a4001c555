package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/tgo/embedhub/internal/model"
	"github.com/tgo/embedhub/internal/repository"
)

type WorkspaceService struct {
	repo *repository.WorkspaceRepository
}

func NewWorkspaceService(repo *repository.WorkspaceRepository) *WorkspaceService {
	return &WorkspaceService{repo: repo}
}

func (s *WorkspaceService) List(ctx context.Context) ([]model.Workspace, error) {
	return s.repo.List(ctx)
}

// Get returns repository.ErrWorkspaceNotFound for unknown ids.
func (s *WorkspaceService) Get(ctx context.Context, id uint) (*model.Workspace, error) {
	workspace, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrWorkspaceNotFound
	}
	return workspace, err
}

type CreateWorkspaceRequest struct {
	Name string `json:"name" binding:"required"`
	Slug string `json:"slug" binding:"required"`
}

func (s *WorkspaceService) Create(ctx context.Context, req *CreateWorkspaceRequest) (*model.Workspace, error) {
	workspace := &model.Workspace{Name: req.Name, Slug: req.Slug}
	if err := s.repo.Create(ctx, workspace); err != nil {
		return nil, err
	}
	return workspace, nil
}
