package model

import "time"

// Event names recorded for embed management.
const (
	EventEmbedCreated = "embed_created"
	EventEmbedUpdated = "embed_updated"
	EventEmbedDeleted = "embed_deleted"
)

type EventLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Event      string    `gorm:"size:100;not null;index" json:"event"`
	Metadata   *string   `gorm:"type:text" json:"metadata,omitempty"`
	UserID     *uint     `gorm:"column:userId" json:"userId,omitempty"`
	OccurredAt time.Time `gorm:"column:occurredAt;autoCreateTime" json:"occurredAt"`
}

func (EventLog) TableName() string {
	return "event_logs"
}
