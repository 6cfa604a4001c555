package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/tgo/embedhub/internal/model"
	"github.com/tgo/embedhub/internal/pkg/metrics"
	"github.com/tgo/embedhub/internal/repository"
)

// AssetURLPrefix is the public path uploaded assets are served under.
const AssetURLPrefix = "/assets/"

var (
	ErrFileTooLarge       = errors.New("file exceeds the maximum upload size")
	ErrEmptyFile          = errors.New("file upload failed")
	ErrUnsupportedAsset   = errors.New("unsupported image type")
	ErrNotUploadableField = errors.New("field does not accept uploads")
)

// UploadableFields are the embed fields an image can be uploaded to.
var UploadableFields = []string{"assistantIcon", "brandImageUrl"}

var allowedAssetExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".svg": true, ".webp": true, ".ico": true,
}

type UploadService struct {
	embeds      *EmbedService
	storagePath string
	maxSize     int64
}

func NewUploadService(embeds *EmbedService, storagePath string, maxSize int64) *UploadService {
	return &UploadService{embeds: embeds, storagePath: storagePath, maxSize: maxSize}
}

// StoragePath is the directory served under AssetURLPrefix.
func (s *UploadService) StoragePath() string {
	return s.storagePath
}

func (s *UploadService) MaxSize() int64 {
	return s.maxSize
}

// UploadAsset stores an image for embedID and points field at it. The size
// limit is checked before anything is written.
func (s *UploadService) UploadAsset(ctx context.Context, embedID uint, field, filename string, size int64, reader io.Reader) (string, *model.EmbedConfig, error) {
	if !isUploadableField(field) {
		return "", nil, ErrNotUploadableField
	}
	if size <= 0 {
		return "", nil, ErrEmptyFile
	}
	if size > s.maxSize {
		return "", nil, ErrFileTooLarge
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedAssetExtensions[ext] {
		return "", nil, ErrUnsupportedAsset
	}

	if err := os.MkdirAll(s.storagePath, 0755); err != nil {
		return "", nil, err
	}
	storedName := uuid.New().String() + ext
	storagePath := filepath.Join(s.storagePath, storedName)

	dst, err := os.Create(storagePath)
	if err != nil {
		return "", nil, err
	}
	// Read one byte past the limit so a lying Content-Length is still caught.
	written, err := io.Copy(dst, io.LimitReader(reader, s.maxSize+1))
	dst.Close()
	if err != nil {
		os.Remove(storagePath)
		return "", nil, fmt.Errorf("failed to store upload: %w", err)
	}
	if written > s.maxSize {
		os.Remove(storagePath)
		return "", nil, ErrFileTooLarge
	}

	imageURL := AssetURLPrefix + storedName
	embed, err := s.embeds.UpdateField(ctx, embedID, field, imageURL)
	if err != nil {
		os.Remove(storagePath)
		return "", nil, err
	}

	metrics.UploadBytes.Observe(float64(written))
	logrus.WithFields(logrus.Fields{"embed_id": embedID, "field": field, "file": storedName}).Info("Stored embed asset")
	return imageURL, embed, nil
}

func isUploadableField(field string) bool {
	for _, f := range UploadableFields {
		if f == field && repository.IsWritableEmbedField(f) {
			return true
		}
	}
	return false
}
