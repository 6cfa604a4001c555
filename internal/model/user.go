package model

import "time"

// Roles
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleDefault = "default"
)

func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleManager, RoleDefault:
		return true
	}
	return false
}

type User struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Username      string    `gorm:"size:100;uniqueIndex;not null" json:"username"`
	PasswordHash  string    `gorm:"column:password;size:255;not null" json:"-"`
	Role          string    `gorm:"size:20;not null;default:'default'" json:"role"`
	Suspended     bool      `gorm:"not null;default:false" json:"suspended"`
	CreatedAt     time.Time `gorm:"column:createdAt;autoCreateTime" json:"createdAt"`
	LastUpdatedAt time.Time `gorm:"column:lastUpdatedAt;autoUpdateTime" json:"lastUpdatedAt"`
}

func (User) TableName() string {
	return "users"
}

// APIKey authorizes calls to the public /v1 API.
type APIKey struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Secret    string    `gorm:"size:255;uniqueIndex;not null" json:"secret"`
	CreatedBy *uint     `gorm:"column:createdBy" json:"createdBy"`
	CreatedAt time.Time `gorm:"column:createdAt;autoCreateTime" json:"createdAt"`
}

func (APIKey) TableName() string {
	return "api_keys"
}
