package service

import (
	"context"
	"time"

	"github.com/tgo/embedhub/internal/model"
	"github.com/tgo/embedhub/internal/repository"
)

var newestFirst = &repository.OrderBy{Column: "createdAt", Desc: true}

type EmbedService struct {
	repo   *repository.EmbedConfigRepository
	events *EventLogService
}

func NewEmbedService(repo *repository.EmbedConfigRepository, events *EventLogService) *EmbedService {
	return &EmbedService{repo: repo, events: events}
}

type EmbedChatCount struct {
	EmbedChats int64 `json:"embed_chats"`
}

// EmbedView is the management representation of an embed: every column, with
// the JSON text columns decoded.
type EmbedView struct {
	*model.EmbedConfig
	AllowlistDomains []string            `json:"allowlist_domains"`
	DefaultMessages  []string            `json:"defaultMessages"`
	Count            EmbedChatCount      `json:"_count"`
	Workspace        *model.WorkspaceRef `json:"workspace"`
}

func NewEmbedView(embed *model.EmbedConfig) EmbedView {
	return EmbedView{
		EmbedConfig:      embed,
		AllowlistDomains: repository.ParseAllowedHosts(embed),
		DefaultMessages:  embed.DefaultMessageList(),
		Count:            EmbedChatCount{EmbedChats: embed.ChatCount},
		Workspace:        embed.Workspace.Ref(),
	}
}

// PublicEmbedView is what API key holders see.
type PublicEmbedView struct {
	ID               uint                `json:"id"`
	UUID             string              `json:"uuid"`
	Enabled          bool                `json:"enabled"`
	ChatMode         string              `json:"chat_mode"`
	CreatedAt        time.Time           `json:"createdAt"`
	Workspace        *model.WorkspaceRef `json:"workspace"`
	ChatCount        *int64              `json:"chat_count,omitempty"`
	ChatIcon         *string             `json:"chatIcon"`
	ButtonColor      *string             `json:"buttonColor"`
	UserBgColor      *string             `json:"userBgColor"`
	AssistantBgColor *string             `json:"assistantBgColor"`
	BrandImageURL    *string             `json:"brandImageUrl"`
	AssistantName    *string             `json:"assistantName"`
	AssistantIcon    *string             `json:"assistantIcon"`
	Position         *string             `json:"position"`
	WindowHeight     *string             `json:"windowHeight"`
	WindowWidth      *string             `json:"windowWidth"`
	TextSize         *string             `json:"textSize"`
	SupportEmail     *string             `json:"supportEmail"`
	DefaultMessages  []string            `json:"defaultMessages"`
}

// NewPublicEmbedView converts embed. withCount controls whether chat_count is
// included, which only list queries compute.
func NewPublicEmbedView(embed *model.EmbedConfig, withCount bool) PublicEmbedView {
	view := PublicEmbedView{
		ID:               embed.ID,
		UUID:             embed.UUID,
		Enabled:          embed.Enabled,
		ChatMode:         embed.ChatMode,
		CreatedAt:        embed.CreatedAt,
		Workspace:        embed.Workspace.Ref(),
		ChatIcon:         embed.ChatIcon,
		ButtonColor:      embed.ButtonColor,
		UserBgColor:      embed.UserBgColor,
		AssistantBgColor: embed.AssistantBgColor,
		BrandImageURL:    embed.BrandImageURL,
		AssistantName:    embed.AssistantName,
		AssistantIcon:    embed.AssistantIcon,
		Position:         embed.Position,
		WindowHeight:     embed.WindowHeight,
		WindowWidth:      embed.WindowWidth,
		TextSize:         embed.TextSize,
		SupportEmail:     embed.SupportEmail,
		DefaultMessages:  embed.DefaultMessageList(),
	}
	if withCount {
		count := embed.ChatCount
		view.ChatCount = &count
	}
	return view
}

// List returns every embed, newest first.
func (s *EmbedService) List(ctx context.Context) []EmbedView {
	embeds := s.repo.WhereWithWorkspace(ctx, nil, 0, newestFirst)
	views := make([]EmbedView, 0, len(embeds))
	for i := range embeds {
		views = append(views, NewEmbedView(&embeds[i]))
	}
	return views
}

func (s *EmbedService) Get(ctx context.Context, id uint) *model.EmbedConfig {
	return s.repo.Get(ctx, repository.Clause{"id": id})
}

func (s *EmbedService) Create(ctx context.Context, data map[string]interface{}, userID *uint) (*model.EmbedConfig, error) {
	embed, err := s.repo.Create(ctx, data, userID)
	if err != nil {
		return nil, err
	}
	s.events.LogEventAsync(model.EventEmbedCreated, map[string]interface{}{"embedId": embed.ID}, userID)
	return embed, nil
}

// Update applies data to an existing embed. ErrEmbedNotFound is returned when
// the embed does not exist.
func (s *EmbedService) Update(ctx context.Context, id uint, data map[string]interface{}, userID *uint) (*model.EmbedConfig, error) {
	if s.repo.Get(ctx, repository.Clause{"id": id}) == nil {
		return nil, repository.ErrEmbedNotFound
	}
	embed, err := s.repo.Update(ctx, id, data)
	if err != nil {
		return nil, err
	}
	s.events.LogEventAsync(model.EventEmbedUpdated, map[string]interface{}{"embedId": id}, userID)
	return embed, nil
}

// UpdateField writes a single field through the same validation as Update.
func (s *EmbedService) UpdateField(ctx context.Context, id uint, field string, value interface{}) (*model.EmbedConfig, error) {
	return s.repo.Update(ctx, id, map[string]interface{}{field: value})
}

func (s *EmbedService) Delete(ctx context.Context, id uint, userID *uint) bool {
	if !s.repo.Delete(ctx, repository.Clause{"id": id}) {
		return false
	}
	s.events.LogEventAsync(model.EventEmbedDeleted, map[string]interface{}{"embedId": id}, userID)
	return true
}

func (s *EmbedService) PublicList(ctx context.Context) []PublicEmbedView {
	embeds := s.repo.WhereWithWorkspace(ctx, nil, 0, nil)
	views := make([]PublicEmbedView, 0, len(embeds))
	for i := range embeds {
		views = append(views, NewPublicEmbedView(&embeds[i], true))
	}
	return views
}

// PublicGet looks an embed up by its public UUID.
func (s *EmbedService) PublicGet(ctx context.Context, uuid string) (*PublicEmbedView, bool) {
	embed := s.repo.GetWithWorkspace(ctx, repository.Clause{"uuid": uuid})
	if embed == nil {
		return nil, false
	}
	view := NewPublicEmbedView(embed, false)
	return &view, true
}

// FindByUUID returns the embed with its workspace, or nil.
func (s *EmbedService) FindByUUID(ctx context.Context, uuid string) *model.EmbedConfig {
	return s.repo.GetWithWorkspace(ctx, repository.Clause{"uuid": uuid})
}
