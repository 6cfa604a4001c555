package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tgo/embedhub/internal/model"
	"github.com/tgo/embedhub/internal/service"
)

const ContextEmbed = "embed"

// ValidEmbedConfigID loads the embed named by the :embedId path parameter and
// answers 404 when it does not exist.
func ValidEmbedConfigID(embeds *service.EmbedService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("embedId"), 10, 64)
		if err != nil || id == 0 {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"success": false, "error": "Embed not found"})
			return
		}
		embed := embeds.Get(c.Request.Context(), uint(id))
		if embed == nil {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"success": false, "error": "Embed not found"})
			return
		}
		c.Set(ContextEmbed, embed)
		c.Next()
	}
}

// CurrentEmbed returns the embed loaded by ValidEmbedConfigID.
func CurrentEmbed(c *gin.Context) *model.EmbedConfig {
	if v, ok := c.Get(ContextEmbed); ok {
		if embed, ok := v.(*model.EmbedConfig); ok {
			return embed
		}
	}
	return nil
}

// ChatHistoryViewable rejects every request when chat history viewing has
// been turned off for this deployment.
func ChatHistoryViewable(disabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if disabled {
			c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": "This feature has been disabled by the administrator."})
			return
		}
		c.Next()
	}
}
