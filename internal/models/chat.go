package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChatChannel is a course-scoped message board.
type ChatChannel struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID    string    `gorm:"type:uuid;not null;index" json:"course_id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func (c *ChatChannel) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// Message is one chat entry inside a channel.
type Message struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	ChannelID string    `gorm:"type:uuid;not null;index" json:"channel_id"`
	SenderID  string    `gorm:"type:uuid;not null;index" json:"sender_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`

	Sender *User `gorm:"foreignKey:SenderID" json:"-"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
