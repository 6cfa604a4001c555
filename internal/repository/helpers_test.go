package repository

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tgo/embedhub/internal/model"
	"github.com/tgo/embedhub/internal/pkg/db"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gormDB, err := db.NewGormDB(filepath.Join(t.TempDir(), "embedhub.db"), false)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(gormDB))
	t.Cleanup(func() {
		if sqlDB, err := gormDB.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gormDB
}

func seedWorkspace(t *testing.T, gormDB *gorm.DB, slug string) *model.Workspace {
	t.Helper()
	ws := &model.Workspace{Name: "Workspace " + slug, Slug: slug}
	require.NoError(t, gormDB.Create(ws).Error)
	return ws
}

func seedChat(t *testing.T, gormDB *gorm.DB, embedID uint, session string) *model.EmbedChat {
	t.Helper()
	chat := &model.EmbedChat{EmbedID: embedID, SessionID: session, Prompt: "hi", Response: "hello", Include: true}
	require.NoError(t, gormDB.Create(chat).Error)
	return chat
}
