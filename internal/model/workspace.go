package model

import "time"

// Workspace is the owner of embeds. Only the identity and display name are
// needed here; the rest of the workspace lives in the host application.
type Workspace struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Slug      string    `gorm:"size:255;uniqueIndex;not null" json:"slug"`
	CreatedAt time.Time `gorm:"column:createdAt;autoCreateTime" json:"createdAt"`
}

func (Workspace) TableName() string {
	return "workspaces"
}

// WorkspaceRef is the slice of a workspace exposed next to an embed.
type WorkspaceRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func (w *Workspace) Ref() *WorkspaceRef {
	if w == nil {
		return nil
	}
	return &WorkspaceRef{ID: w.ID, Name: w.Name}
}
