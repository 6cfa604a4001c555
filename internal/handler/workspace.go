package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tgo/embedhub/internal/pkg/response"
	"github.com/tgo/embedhub/internal/repository"
	"github.com/tgo/embedhub/internal/service"
)

type WorkspaceHandler struct {
	svc *service.WorkspaceService
}

func NewWorkspaceHandler(svc *service.WorkspaceService) *WorkspaceHandler {
	return &WorkspaceHandler{svc: svc}
}

func (h *WorkspaceHandler) List(c *gin.Context) {
	workspaces, err := h.svc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c, "Failed to list workspaces")
		return
	}
	response.Success(c, gin.H{"workspaces": workspaces})
}

func (h *WorkspaceHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("workspaceId"), 10, 64)
	if err != nil || id == 0 {
		response.BadRequest(c, "Invalid workspace id")
		return
	}
	workspace, err := h.svc.Get(c.Request.Context(), uint(id))
	if errors.Is(err, repository.ErrWorkspaceNotFound) {
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Workspace not found", nil)
		return
	}
	if err != nil {
		response.InternalError(c, "Failed to get workspace")
		return
	}
	response.Success(c, gin.H{"workspace": workspace})
}

func (h *WorkspaceHandler) Create(c *gin.Context) {
	var req service.CreateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	workspace, err := h.svc.Create(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, http.StatusConflict, "WORKSPACE_CONFLICT", err.Error(), nil)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"workspace": workspace})
}
