package model

import "time"

// MagicLink — одноразовый токен входа. На один email не больше одного активного токена.
type MagicLink struct {
	ID        int64     `gorm:"primaryKey"`
	Email     string    `gorm:"uniqueIndex;not null"`
	Token     string    `gorm:"uniqueIndex;not null"`
	Expires   time.Time `gorm:"not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}
