package models

import "time"

// MaxMessageLength bounds Message.Content, counted in characters.
const MaxMessageLength = 1000

// Message is a note exchanged on an application. Sender and recipient are
// the two parties of that application.
type Message struct {
	ID            uint       `gorm:"primaryKey;column:id" json:"id"`
	ApplicationID uint       `gorm:"column:application_id;not null;index:idx_messages_application_created,priority:1" json:"application_id"`
	SenderID      uint       `gorm:"column:sender_id;not null" json:"sender_id"`
	RecipientID   uint       `gorm:"column:recipient_id;not null;index:idx_messages_recipient_read,priority:1" json:"recipient_id"`
	Content       string     `gorm:"column:content;size:1000;not null" json:"content"`
	IsRead        bool       `gorm:"column:is_read;not null;index:idx_messages_recipient_read,priority:2" json:"is_read"`
	ReadAt        *time.Time `gorm:"column:read_at" json:"read_at,omitempty"`
	CreatedAt     time.Time  `gorm:"column:created_at;index:idx_messages_application_created,priority:2" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"column:updated_at" json:"updated_at"`

	// Relations
	Application *Application `gorm:"foreignKey:ApplicationID" json:"-"`
	Sender      *User        `gorm:"foreignKey:SenderID" json:"-"`
	Recipient   *User        `gorm:"foreignKey:RecipientID" json:"-"`
}

func (Message) TableName() string {
	return "messages"
}
