package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tgo/embedhub/internal/service"
)

// EmbedAPIHandler serves the API-key protected /v1 embed endpoints.
type EmbedAPIHandler struct {
	embeds *service.EmbedService
	chats  *service.EmbedChatService
}

func NewEmbedAPIHandler(embeds *service.EmbedService, chats *service.EmbedChatService) *EmbedAPIHandler {
	return &EmbedAPIHandler{embeds: embeds, chats: chats}
}

func (h *EmbedAPIHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"embeds": h.embeds.PublicList(c.Request.Context())})
}

func (h *EmbedAPIHandler) Get(c *gin.Context) {
	view, ok := h.embeds.PublicGet(c.Request.Context(), c.Param("uuid"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "Embed not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"embed": view})
}

func (h *EmbedAPIHandler) Chats(c *gin.Context) {
	embed := h.embeds.FindByUUID(c.Request.Context(), c.Param("uuid"))
	if embed == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Embed not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"chats": h.chats.ForEmbed(c.Request.Context(), embed.ID)})
}

func (h *EmbedAPIHandler) SessionChats(c *gin.Context) {
	embed := h.embeds.FindByUUID(c.Request.Context(), c.Param("uuid"))
	if embed == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Embed not found"})
		return
	}
	chats := h.chats.ForSession(c.Request.Context(), embed.ID, c.Param("sessionUuid"))
	if len(chats) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No chats found for this session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"chats": chats})
}
