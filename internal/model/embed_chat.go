package model

import "time"

// EmbedChat is one prompt/response exchange made through an embed.
type EmbedChat struct {
	ID                    uint      `gorm:"primaryKey" json:"id"`
	Prompt                string    `gorm:"type:text;not null" json:"prompt"`
	Response              string    `gorm:"type:text;not null" json:"response"`
	SessionID             string    `gorm:"column:session_id;size:255;not null;index" json:"session_id"`
	Include               bool      `gorm:"not null;default:true" json:"include"`
	ConnectionInformation *string   `gorm:"column:connection_information;type:text" json:"connection_information,omitempty"`
	EmbedID               uint      `gorm:"column:embed_id;not null;index" json:"embed_id"`
	UserID                *uint     `gorm:"column:usersId" json:"usersId,omitempty"`
	CreatedAt             time.Time `gorm:"column:createdAt;autoCreateTime" json:"createdAt"`

	Embed *EmbedConfig `gorm:"foreignKey:EmbedID;constraint:OnDelete:CASCADE" json:"-"`
}

func (EmbedChat) TableName() string {
	return "embed_chats"
}
