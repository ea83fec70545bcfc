package model

import (
	"time"

	"gorm.io/gorm"
)

// UserRole — глобальная роль пользователя (не путать с ролью в workspace).
type UserRole string

const (
	UserRoleAdmin  UserRole = "ADMIN"
	UserRoleEditor UserRole = "EDITOR"
	UserRoleUser   UserRole = "USER"
)

// User — учётная запись. Password пустой у пользователей без пароля (magic link, OAuth).
type User struct {
	ID    int64  `gorm:"primaryKey" json:"id"`
	Email string `gorm:"uniqueIndex;not null" json:"email"`
	Name  string `gorm:"not null" json:"name"`

	Password           string   `gorm:"not null" json:"-"`
	Role               UserRole `gorm:"type:varchar(16);not null" json:"role"`
	HashedRefreshToken *string  `json:"-"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// BeforeCreate проставляет роль по умолчанию.
func (u *User) BeforeCreate(*gorm.DB) error {
	if u.Role == "" {
		u.Role = UserRoleUser
	}
	return nil
}
