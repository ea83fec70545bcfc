package model

import (
	"time"

	"gorm.io/gorm"
)

type CaseStatus string

const (
	CaseStatusOpen       CaseStatus = "OPEN"
	CaseStatusInProgress CaseStatus = "IN_PROGRESS"
	CaseStatusClosed     CaseStatus = "CLOSED"
)

func (s CaseStatus) Valid() bool {
	switch s {
	case CaseStatusOpen, CaseStatusInProgress, CaseStatusClosed:
		return true
	}
	return false
}

type CasePriority string

const (
	CasePriorityLow    CasePriority = "LOW"
	CasePriorityMedium CasePriority = "MEDIUM"
	CasePriorityHigh   CasePriority = "HIGH"
	CasePriorityUrgent CasePriority = "URGENT"
)

func (p CasePriority) Valid() bool {
	switch p {
	case CasePriorityLow, CasePriorityMedium, CasePriorityHigh, CasePriorityUrgent:
		return true
	}
	return false
}

// Case — единица работы внутри workspace.
type Case struct {
	ID          int64        `gorm:"primaryKey" json:"id"`
	Title       string       `gorm:"not null" json:"title"`
	Description string       `json:"description"`
	Status      CaseStatus   `gorm:"type:varchar(16);not null" json:"status"`
	Priority    CasePriority `gorm:"type:varchar(16);not null" json:"priority"`
	WorkspaceID int64        `gorm:"not null;index" json:"workspaceId"`

	Tags []Tag `gorm:"many2many:case_tags" json:"tags"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (c *Case) BeforeCreate(*gorm.DB) error {
	if c.Status == "" {
		c.Status = CaseStatusOpen
	}
	if c.Priority == "" {
		c.Priority = CasePriorityMedium
	}
	return nil
}

// CaseTag — связь case ↔ tag, пара уникальна (составной первичный ключ).
type CaseTag struct {
	CaseID int64 `gorm:"primaryKey" json:"caseId"`
	TagID  int64 `gorm:"primaryKey" json:"tagId"`
}
