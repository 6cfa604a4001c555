package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tgo/embedhub/internal/service"
)

type EmbedChatHandler struct {
	svc *service.EmbedChatService
}

func NewEmbedChatHandler(svc *service.EmbedChatService) *EmbedChatHandler {
	return &EmbedChatHandler{svc: svc}
}

func (h *EmbedChatHandler) List(c *gin.Context) {
	req := struct {
		Offset int `json:"offset"`
		Limit  int `json:"limit"`
	}{Offset: 0, Limit: 20}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}

	c.JSON(http.StatusOK, h.svc.Page(c.Request.Context(), req.Offset, req.Limit))
}

func (h *EmbedChatHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("chatId"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid chat id"})
		return
	}
	if !h.svc.Delete(c.Request.Context(), uint(id)) {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to delete chat"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "error": nil})
}
