package model

// Tag общий для кейсов и документов одного workspace.
type Tag struct {
	ID          int64  `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"not null" json:"name"`
	Color       string `gorm:"not null" json:"color"`
	WorkspaceID int64  `gorm:"not null;index" json:"workspaceId"`
}
