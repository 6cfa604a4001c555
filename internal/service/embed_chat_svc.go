package service

import (
	"context"
	"math"
	"time"

	"github.com/tgo/embedhub/internal/model"
	"github.com/tgo/embedhub/internal/repository"
)

const (
	defaultChatPageSize = 20
	maxChatPageSize     = 100
)

type EmbedChatService struct {
	chats *repository.EmbedChatRepository
}

func NewEmbedChatService(chats *repository.EmbedChatRepository) *EmbedChatService {
	return &EmbedChatService{chats: chats}
}

// ChatWithEmbed is a chat as listed for administrators.
type ChatWithEmbed struct {
	model.EmbedChat
	Embed *ChatEmbedRef `json:"embed_config"`
}

type ChatEmbedRef struct {
	ID        uint                `json:"id"`
	UUID      string              `json:"uuid"`
	Workspace *model.WorkspaceRef `json:"workspace"`
}

type ChatPage struct {
	Chats      []ChatWithEmbed `json:"chats"`
	HasPages   bool            `json:"hasPages"`
	TotalChats int64           `json:"totalChats"`
}

// Page lists chats across all embeds, newest first. offset counts pages, not rows.
func (s *EmbedChatService) Page(ctx context.Context, offset, limit int) ChatPage {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = defaultChatPageSize
	}
	if limit > maxChatPageSize {
		limit = maxChatPageSize
	}
	// Keep (offset+1)*limit inside int32 so row offsets never overflow.
	if maxOffset := math.MaxInt32/limit - 1; offset > maxOffset {
		offset = maxOffset
	}

	chats := s.chats.WhereWithEmbedAndWorkspace(ctx, nil, limit, offset*limit, &repository.OrderBy{Column: "id", Desc: true})
	total := s.chats.Count(ctx, nil)

	items := make([]ChatWithEmbed, 0, len(chats))
	for _, chat := range chats {
		item := ChatWithEmbed{EmbedChat: chat}
		if chat.Embed != nil {
			item.Embed = &ChatEmbedRef{ID: chat.Embed.ID, UUID: chat.Embed.UUID, Workspace: chat.Embed.Workspace.Ref()}
		}
		items = append(items, item)
	}
	return ChatPage{
		Chats:      items,
		HasPages:   total > int64((offset+1)*limit),
		TotalChats: total,
	}
}

func (s *EmbedChatService) Delete(ctx context.Context, id uint) bool {
	return s.chats.Delete(ctx, repository.Clause{"id": id})
}

type PublicChatView struct {
	ID        uint      `json:"id"`
	SessionID string    `json:"session_id,omitempty"`
	Prompt    string    `json:"prompt"`
	Response  string    `json:"response"`
	CreatedAt time.Time `json:"createdAt"`
}

// ForEmbed lists every chat of an embed in creation order.
func (s *EmbedChatService) ForEmbed(ctx context.Context, embedID uint) []PublicChatView {
	chats := s.chats.Where(ctx, repository.Clause{"embed_id": embedID}, 0, 0, &repository.OrderBy{Column: "id"})
	return toPublicChats(chats, true)
}

// ForSession lists the chats of one session of an embed.
func (s *EmbedChatService) ForSession(ctx context.Context, embedID uint, sessionID string) []PublicChatView {
	chats := s.chats.Where(ctx, repository.Clause{"embed_id": embedID, "session_id": sessionID}, 0, 0, &repository.OrderBy{Column: "id"})
	return toPublicChats(chats, false)
}

func toPublicChats(chats []model.EmbedChat, withSession bool) []PublicChatView {
	views := make([]PublicChatView, 0, len(chats))
	for _, chat := range chats {
		view := PublicChatView{ID: chat.ID, Prompt: chat.Prompt, Response: chat.Response, CreatedAt: chat.CreatedAt}
		if withSession {
			view.SessionID = chat.SessionID
		}
		views = append(views, view)
	}
	return views
}
