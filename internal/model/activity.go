package model

import (
	"time"

	"gorm.io/datatypes"
)

// Типы записей журнала активности.
const (
	ActivityWorkspaceCreated     = "WORKSPACE_CREATED"
	ActivityCaseCreated          = "CASE_CREATED"
	ActivityCaseUpdated          = "CASE_UPDATED"
	ActivityCaseDeleted          = "CASE_DELETED"
	ActivityDocumentUploaded     = "DOCUMENT_UPLOADED"
	ActivityDocumentDeleted      = "DOCUMENT_DELETED"
	ActivityCommentCreated       = "COMMENT_CREATED"
	ActivityCalendarEventCreated = "CALENDAR_EVENT_CREATED"
	ActivityCalendarEventUpdated = "CALENDAR_EVENT_UPDATED"
	ActivityCalendarEventDeleted = "CALENDAR_EVENT_DELETED"
	ActivityCalendarReminder     = "CALENDAR_REMINDER"
	ActivityCalendarEventExpired = "CALENDAR_EVENT_EXPIRED"
)

// Activity — запись журнала, только добавление.
// EventID дублирует eventId из Metadata и служит индексируемым ключом дедупликации.
type Activity struct {
	ID          int64          `gorm:"primaryKey" json:"id"`
	Type        string         `gorm:"type:varchar(64);not null;index:idx_activity_dedup" json:"type"`
	Description string         `json:"description"`
	UserID      int64          `gorm:"not null;index;index:idx_activity_dedup" json:"userId"`
	EventID     *int64         `gorm:"index:idx_activity_dedup" json:"eventId,omitempty"`
	Metadata    datatypes.JSON `json:"metadata"`
	CreatedAt   time.Time      `gorm:"autoCreateTime;index" json:"createdAt"`
}
