package service

import (
	"context"
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgo/embedhub/internal/model"
	"github.com/tgo/embedhub/internal/repository"
)

func TestEmbedService_CreateLogsEvent(t *testing.T) {
	f := newFixture(t)
	embed := f.createEmbed(t, map[string]interface{}{"assistantName": "Ada"})

	assert.Eventually(t, func() bool { return f.publisher.count() == 1 }, 2*time.Second, 20*time.Millisecond)
	msg := f.publisher.payloads[0].(EventMessage)
	assert.Equal(t, model.EventEmbedCreated, msg.Event)
	assert.Equal(t, embed.ID, msg.Metadata["embedId"])
}

func TestEmbedService_UpdateMissingEmbed(t *testing.T) {
	f := newFixture(t)

	_, err := f.embeds.Update(context.Background(), 42, map[string]interface{}{"enabled": true}, nil)
	assert.ErrorIs(t, err, repository.ErrEmbedNotFound)
}

func TestEmbedService_ListDecodesJSONColumns(t *testing.T) {
	f := newFixture(t)
	embed := f.createEmbed(t, map[string]interface{}{
		"allowlist_domains": "a.com",
		"defaultMessages":   `["Hello"]`,
	})
	require.NoError(t, f.db.Create(&model.EmbedChat{EmbedID: embed.ID, SessionID: "s", Prompt: "p", Response: "r"}).Error)

	views := f.embeds.List(context.Background())
	require.Len(t, views, 1)

	data, err := json.Marshal(views[0])
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, []interface{}{"https://a.com"}, decoded["allowlist_domains"])
	assert.Equal(t, []interface{}{"Hello"}, decoded["defaultMessages"])
	assert.Equal(t, map[string]interface{}{"embed_chats": float64(1)}, decoded["_count"])
	assert.Equal(t, map[string]interface{}{"id": float64(f.workspace.ID), "name": "Docs"}, decoded["workspace"])
	assert.Equal(t, embed.UUID, decoded["uuid"])
}

func TestEmbedService_PublicViews(t *testing.T) {
	f := newFixture(t)
	embed := f.createEmbed(t, map[string]interface{}{"buttonColor": "#000"})

	list := f.embeds.PublicList(context.Background())
	require.Len(t, list, 1)
	require.NotNil(t, list[0].ChatCount)
	assert.Zero(t, *list[0].ChatCount)
	assert.Equal(t, []string{}, list[0].DefaultMessages)

	view, ok := f.embeds.PublicGet(context.Background(), embed.UUID)
	require.True(t, ok)
	assert.Nil(t, view.ChatCount)
	require.NotNil(t, view.Workspace)
	assert.Equal(t, "Docs", view.Workspace.Name)
	require.NotNil(t, view.ButtonColor)
	assert.Equal(t, "#000", *view.ButtonColor)

	_, ok = f.embeds.PublicGet(context.Background(), "nope")
	assert.False(t, ok)
}

func TestEmbedChatService_Page(t *testing.T) {
	f := newFixture(t)
	embed := f.createEmbed(t, nil)
	for i := 0; i < 5; i++ {
		require.NoError(t, f.db.Create(&model.EmbedChat{EmbedID: embed.ID, SessionID: "s", Prompt: "p", Response: "r"}).Error)
	}

	first := f.chats.Page(context.Background(), 0, 2)
	assert.Len(t, first.Chats, 2)
	assert.True(t, first.HasPages)
	assert.Equal(t, int64(5), first.TotalChats)
	require.NotNil(t, first.Chats[0].Embed)
	assert.Equal(t, embed.UUID, first.Chats[0].Embed.UUID)

	last := f.chats.Page(context.Background(), 2, 2)
	assert.Len(t, last.Chats, 1)
	assert.False(t, last.HasPages)

	sessions := f.chats.ForSession(context.Background(), embed.ID, "s")
	assert.Len(t, sessions, 5)
	assert.Empty(t, sessions[0].SessionID)
	assert.Empty(t, f.chats.ForSession(context.Background(), embed.ID, "other"))
}

func TestEmbedChatService_PageBounds(t *testing.T) {
	f := newFixture(t)
	embed := f.createEmbed(t, nil)
	for i := 0; i < 105; i++ {
		require.NoError(t, f.db.Create(&model.EmbedChat{EmbedID: embed.ID, SessionID: "s", Prompt: "p", Response: "r"}).Error)
	}

	capped := f.chats.Page(context.Background(), 0, 1000)
	assert.Len(t, capped.Chats, 100)
	assert.True(t, capped.HasPages)

	far := f.chats.Page(context.Background(), math.MaxInt, 10)
	assert.Empty(t, far.Chats)
	assert.False(t, far.HasPages)
	assert.Equal(t, int64(105), far.TotalChats)
}
