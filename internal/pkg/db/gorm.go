package db

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tgo/embedhub/internal/model"
)

const sqlitePrefix = "sqlite://"

// NewGormDB opens the database named by databaseURL. postgres:// and
// postgresql:// URLs use the postgres driver; sqlite://<path> or a bare file
// path uses sqlite.
func NewGormDB(databaseURL string, verbose bool) (*gorm.DB, error) {
	logLevel := logger.Warn
	if verbose {
		logLevel = logger.Info
	}
	gormCfg := &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	}

	if strings.HasPrefix(databaseURL, "postgres://") || strings.HasPrefix(databaseURL, "postgresql://") {
		return gorm.Open(postgres.Open(databaseURL), gormCfg)
	}

	path := strings.TrimPrefix(databaseURL, sqlitePrefix)
	if path == "" {
		return nil, fmt.Errorf("empty sqlite path in DATABASE_URL")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	// Foreign keys must be on for embed chats to cascade with their embed.
	dsn := path + "?_busy_timeout=5000&_foreign_keys=1"
	return gorm.Open(sqlite.Open(dsn), gormCfg)
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.APIKey{},
		&model.Workspace{},
		&model.EmbedConfig{},
		&model.EmbedChat{},
		&model.EventLog{},
	)
}
