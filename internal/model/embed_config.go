package model

import (
	"encoding/json"
	"time"
)

// Chat modes an embed may run in.
const (
	ChatModeChat  = "chat"
	ChatModeQuery = "query"
)

// ValidChatModes lists every accepted chat_mode value.
var ValidChatModes = []string{ChatModeChat, ChatModeQuery}

// DefaultChatMode is used whenever chat_mode is missing or not recognized.
const DefaultChatMode = ChatModeQuery

// EmbedConfig is an embeddable chat widget bound to a workspace.
//
// AllowlistDomains and DefaultMessages are stored as JSON text. Nothing outside
// this file and the repository's field normalizers should read the raw
// columns; use AllowedHosts and DefaultMessageList instead.
type EmbedConfig struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	UUID    string `gorm:"column:uuid;size:36;uniqueIndex;not null" json:"uuid"`
	Enabled bool   `gorm:"column:enabled;not null" json:"enabled"`

	ChatMode                 string  `gorm:"column:chat_mode;size:20;not null;default:'query'" json:"chat_mode"`
	AllowlistDomains         *string `gorm:"column:allowlist_domains;type:text" json:"-"`
	AllowModelOverride       bool    `gorm:"column:allow_model_override;not null" json:"allow_model_override"`
	AllowTemperatureOverride bool    `gorm:"column:allow_temperature_override;not null" json:"allow_temperature_override"`
	AllowPromptOverride      bool    `gorm:"column:allow_prompt_override;not null" json:"allow_prompt_override"`
	MaxChatsPerDay           *int64  `gorm:"column:max_chats_per_day" json:"max_chats_per_day"`
	MaxChatsPerSession       *int64  `gorm:"column:max_chats_per_session" json:"max_chats_per_session"`

	// Appearance
	ChatIcon         *string `gorm:"column:chatIcon;size:255" json:"chatIcon"`
	ButtonColor      *string `gorm:"column:buttonColor;size:255" json:"buttonColor"`
	UserBgColor      *string `gorm:"column:userBgColor;size:255" json:"userBgColor"`
	AssistantBgColor *string `gorm:"column:assistantBgColor;size:255" json:"assistantBgColor"`
	BrandImageURL    *string `gorm:"column:brandImageUrl;size:255" json:"brandImageUrl"`
	AssistantName    *string `gorm:"column:assistantName;size:255" json:"assistantName"`
	AssistantIcon    *string `gorm:"column:assistantIcon;size:255" json:"assistantIcon"`
	Position         *string `gorm:"column:position;size:255" json:"position"`
	WindowHeight     *string `gorm:"column:windowHeight;size:255" json:"windowHeight"`
	WindowWidth      *string `gorm:"column:windowWidth;size:255" json:"windowWidth"`
	TextSize         *string `gorm:"column:textSize;size:255" json:"textSize"`
	SupportEmail     *string `gorm:"column:supportEmail;size:255" json:"supportEmail"`
	DefaultMessages  *string `gorm:"column:defaultMessages;type:text" json:"-"`

	WorkspaceID uint      `gorm:"column:workspace_id;not null;index" json:"workspace_id"`
	CreatedBy   *uint     `gorm:"column:createdBy" json:"createdBy"`
	CreatedAt   time.Time `gorm:"column:createdAt;autoCreateTime" json:"createdAt"`

	// Relations
	Workspace *Workspace  `gorm:"foreignKey:WorkspaceID;constraint:OnDelete:CASCADE" json:"-"`
	Chats     []EmbedChat `gorm:"foreignKey:EmbedID;constraint:OnDelete:CASCADE" json:"-"`

	// Filled by list queries that count related chats; never persisted.
	ChatCount int64 `gorm:"column:chat_count;->;-:migration" json:"-"`
}

func (EmbedConfig) TableName() string {
	return "embed_configs"
}

// HasAllowlist reports whether host checking applies to this embed at all.
func (e *EmbedConfig) HasAllowlist() bool {
	return e.AllowlistDomains != nil && *e.AllowlistDomains != ""
}

// DefaultMessageList decodes DefaultMessages. Unset or undecodable values
// yield an empty list.
func (e *EmbedConfig) DefaultMessageList() []string {
	messages := []string{}
	if e.DefaultMessages == nil || *e.DefaultMessages == "" {
		return messages
	}
	if err := json.Unmarshal([]byte(*e.DefaultMessages), &messages); err != nil {
		return []string{}
	}
	return messages
}
