package model

import (
	"time"

	"gorm.io/gorm"
)

type WorkspaceStatus string

const (
	WorkspaceStatusActive   WorkspaceStatus = "ACTIVE"
	WorkspaceStatusInactive WorkspaceStatus = "INACTIVE"
	WorkspaceStatusArchived WorkspaceStatus = "ARCHIVED"
)

// Valid сообщает, известен ли статус.
func (s WorkspaceStatus) Valid() bool {
	switch s {
	case WorkspaceStatusActive, WorkspaceStatusInactive, WorkspaceStatusArchived:
		return true
	}
	return false
}

// WorkspaceRole — роль участника внутри workspace.
type WorkspaceRole string

const (
	WorkspaceRoleOwner  WorkspaceRole = "OWNER"
	WorkspaceRoleAdmin  WorkspaceRole = "ADMIN"
	WorkspaceRoleMember WorkspaceRole = "MEMBER"
	WorkspaceRoleViewer WorkspaceRole = "VIEWER"
)

// Workspace — граница тенанта. Владелец всегда имеет членство с ролью OWNER.
type Workspace struct {
	ID          int64           `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"not null" json:"name"`
	Description string          `json:"description"`
	Status      WorkspaceStatus `gorm:"type:varchar(16);not null" json:"status"`

	OwnerID int64 `gorm:"not null;index" json:"ownerId"`
	Owner   *User `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`

	Users []WorkspaceUser `gorm:"foreignKey:WorkspaceID" json:"users,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (w *Workspace) BeforeCreate(*gorm.DB) error {
	if w.Status == "" {
		w.Status = WorkspaceStatusActive
	}
	return nil
}

// WorkspaceUser — членство пользователя в workspace, пара (workspace, user) уникальна.
type WorkspaceUser struct {
	ID          int64         `gorm:"primaryKey" json:"id"`
	WorkspaceID int64         `gorm:"not null;uniqueIndex:idx_workspace_user" json:"workspaceId"`
	UserID      int64         `gorm:"not null;uniqueIndex:idx_workspace_user" json:"userId"`
	Role        WorkspaceRole `gorm:"type:varchar(16);not null" json:"role"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}
