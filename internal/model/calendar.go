package model

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const EventStatusScheduled = "scheduled"

// Reminder — настройки напоминаний события. Times — смещения в минутах до начала.
type Reminder struct {
	Enabled      bool  `json:"enabled"`
	Times        []int `json:"times"`
	SoundEnabled bool  `json:"soundEnabled"`
	EmailEnabled bool  `json:"emailEnabled"`
}

// CalendarEvent — событие календаря пользователя.
type CalendarEvent struct {
	ID     int64      `gorm:"primaryKey" json:"id"`
	Title  string     `gorm:"not null" json:"title"`
	Start  time.Time  `gorm:"not null;index" json:"start"`
	End    *time.Time `json:"end,omitempty"`
	Status string     `gorm:"not null" json:"status"`
	Notes  string     `json:"notes,omitempty"`

	// NULL, если напоминания не настроены
	Reminders datatypes.JSON `json:"reminders"`

	UserID int64 `gorm:"not null;index" json:"userId"`
	User   *User `gorm:"foreignKey:UserID" json:"-"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (e *CalendarEvent) BeforeCreate(*gorm.DB) error {
	if e.Status == "" {
		e.Status = EventStatusScheduled
	}
	return nil
}

// ReminderConfig разбирает JSON напоминаний; nil, если их нет.
func (e *CalendarEvent) ReminderConfig() (*Reminder, error) {
	if len(e.Reminders) == 0 || string(e.Reminders) == "null" {
		return nil, nil
	}
	var r Reminder
	if err := json.Unmarshal(e.Reminders, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// SetReminderConfig сериализует настройки; nil очищает колонку.
func (e *CalendarEvent) SetReminderConfig(r *Reminder) error {
	if r == nil {
		e.Reminders = nil
		return nil
	}
	b, err := json.Marshal(r)
	if err != nil {
		return err
	}
	e.Reminders = datatypes.JSON(b)
	return nil
}
