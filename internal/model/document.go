package model

import "time"

// Document — метаданные загруженного файла. Сам файл лежит в Path.
type Document struct {
	ID           int64  `gorm:"primaryKey" json:"id"`
	Name         string `gorm:"not null" json:"name"`
	OriginalName string `gorm:"not null" json:"originalName"`
	MimeType     string `json:"mimeType"`
	Size         int64  `json:"size"`
	Path         string `gorm:"not null" json:"path"`

	CaseID int64 `gorm:"not null;index" json:"caseId"`
	UserID int64 `gorm:"not null;index" json:"userId"`

	User     *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Tags     []Tag     `gorm:"many2many:document_tags" json:"tags"`
	Comments []Comment `gorm:"foreignKey:DocumentID" json:"comments,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// DocumentTag — связь document ↔ tag.
type DocumentTag struct {
	DocumentID int64 `gorm:"primaryKey" json:"documentId"`
	TagID      int64 `gorm:"primaryKey" json:"tagId"`
}

// Comment к документу. Править и удалять может автор либо OWNER/ADMIN.
type Comment struct {
	ID         int64  `gorm:"primaryKey" json:"id"`
	Content    string `gorm:"not null" json:"content"`
	DocumentID int64  `gorm:"not null;index" json:"documentId"`
	UserID     int64  `gorm:"not null;index" json:"userId"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}
