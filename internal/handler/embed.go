package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/tgo/embedhub/internal/middleware"
	"github.com/tgo/embedhub/internal/repository"
	"github.com/tgo/embedhub/internal/service"
)

type EmbedHandler struct {
	svc *service.EmbedService
}

func NewEmbedHandler(svc *service.EmbedService) *EmbedHandler {
	return &EmbedHandler{svc: svc}
}

func (h *EmbedHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"embeds": h.svc.List(c.Request.Context())})
}

func (h *EmbedHandler) Create(c *gin.Context) {
	var data map[string]interface{}
	if err := c.ShouldBindJSON(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"embed": nil, "error": "invalid request body"})
		return
	}

	embed, err := h.svc.Create(c.Request.Context(), data, middleware.CurrentUserID(c))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repository.ErrInvalidWorkspace) || errors.Is(err, repository.ErrWorkspaceNotFound) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"embed": nil, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"embed": service.NewEmbedView(embed), "error": nil})
}

// Update expects ValidEmbedConfigID to have run.
func (h *EmbedHandler) Update(c *gin.Context) {
	embed := middleware.CurrentEmbed(c)
	if embed == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Embed not found"})
		return
	}

	var data map[string]interface{}
	if err := c.ShouldBindJSON(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
		return
	}

	_, err := h.svc.Update(c.Request.Context(), embed.ID, data, middleware.CurrentUserID(c))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"success": true, "error": nil})
	case errors.Is(err, repository.ErrEmbedNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Embed not found"})
	case errors.Is(err, repository.ErrNoValidFields):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
	default:
		logrus.WithError(err).WithField("embed_id", embed.ID).Error("Embed update failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
	}
}

func (h *EmbedHandler) Delete(c *gin.Context) {
	embed := middleware.CurrentEmbed(c)
	if embed == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Embed not found"})
		return
	}

	if !h.svc.Delete(c.Request.Context(), embed.ID, middleware.CurrentUserID(c)) {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to delete embed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "error": nil})
}
