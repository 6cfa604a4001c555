package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/tgo/embedhub/internal/middleware"
	"github.com/tgo/embedhub/internal/service"
)

// multipartOverhead leaves room for boundaries and headers around the file.
const multipartOverhead = 64 << 10

type EmbedUploadHandler struct {
	svc *service.UploadService
}

func NewEmbedUploadHandler(svc *service.UploadService) *EmbedUploadHandler {
	return &EmbedUploadHandler{svc: svc}
}

// Upload returns a handler storing the multipart file named field and
// pointing the embed's field at it.
func (h *EmbedUploadHandler) Upload(field string) gin.HandlerFunc {
	return func(c *gin.Context) {
		embed := middleware.CurrentEmbed(c)
		if embed == nil {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Embed not found"})
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.svc.MaxSize()+multipartOverhead)
		file, header, err := c.Request.FormFile(field)
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				c.JSON(http.StatusRequestEntityTooLarge, gin.H{"success": false, "error": service.ErrFileTooLarge.Error()})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "File upload failed."})
			return
		}
		defer file.Close()

		imageURL, _, err := h.svc.UploadAsset(c.Request.Context(), embed.ID, field, header.Filename, header.Size, file)
		switch {
		case err == nil:
			c.JSON(http.StatusOK, gin.H{"success": true, "imageUrl": imageURL})
		case errors.Is(err, service.ErrFileTooLarge):
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"success": false, "error": err.Error()})
		case errors.Is(err, service.ErrEmptyFile), errors.Is(err, service.ErrUnsupportedAsset), errors.Is(err, service.ErrNotUploadableField):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		default:
			logrus.WithError(err).WithFields(logrus.Fields{"embed_id": embed.ID, "field": field}).Error("Asset upload failed")
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Internal server error."})
		}
	}
}
