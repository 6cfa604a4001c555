package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tgo/embedhub/internal/model"
	"github.com/tgo/embedhub/internal/pkg/db"
	"github.com/tgo/embedhub/internal/repository"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gormDB, err := db.NewGormDB(filepath.Join(t.TempDir(), "embedhub.db"), false)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(gormDB))
	return gormDB
}

type fakePublisher struct {
	mu       sync.Mutex
	streams  []string
	payloads []interface{}
	err      error
}

func (p *fakePublisher) Publish(_ context.Context, stream string, payload interface{}) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return "", p.err
	}
	p.streams = append(p.streams, stream)
	p.payloads = append(p.payloads, payload)
	return "1-0", nil
}

func (p *fakePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.payloads)
}

type fixture struct {
	db        *gorm.DB
	workspace *model.Workspace
	events    *EventLogService
	embeds    *EmbedService
	chats     *EmbedChatService
	publisher *fakePublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gormDB := newTestDB(t)
	ws := &model.Workspace{Name: "Docs", Slug: "docs"}
	require.NoError(t, gormDB.Create(ws).Error)

	publisher := &fakePublisher{}
	events := NewEventLogService(repository.NewEventLogRepository(gormDB), publisher, "test:events")
	return &fixture{
		db:        gormDB,
		workspace: ws,
		events:    events,
		embeds:    NewEmbedService(repository.NewEmbedConfigRepository(gormDB), events),
		chats:     NewEmbedChatService(repository.NewEmbedChatRepository(gormDB)),
		publisher: publisher,
	}
}

func (f *fixture) createEmbed(t *testing.T, data map[string]interface{}) *model.EmbedConfig {
	t.Helper()
	if data == nil {
		data = map[string]interface{}{}
	}
	data["workspace_id"] = f.workspace.ID
	embed, err := f.embeds.Create(context.Background(), data, nil)
	require.NoError(t, err)
	return embed
}
