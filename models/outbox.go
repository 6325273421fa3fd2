package models

import (
	"time"

	"gorm.io/datatypes"
)

type OutboxStatus string

const (
	OutboxPending    OutboxStatus = "pending"
	OutboxDispatched OutboxStatus = "dispatched"
	OutboxFailed     OutboxStatus = "failed"
	// OutboxCancelled events were withdrawn together with the record they point at.
	OutboxCancelled  OutboxStatus = "cancelled"
)

// OutboxEvent is written in the same transaction as the state change that
// produced it and delivered later by the dispatcher.
type OutboxEvent struct {
	ID           uint           `gorm:"primaryKey;column:id" json:"id"`
	Topic        string         `gorm:"column:topic;size:100;not null" json:"topic"`
	Payload      datatypes.JSON `gorm:"column:payload;not null" json:"payload"`
	Ref          string         `gorm:"column:ref;size:64;index" json:"ref,omitempty"`
	Status       OutboxStatus   `gorm:"column:status;size:20;not null;index:idx_outbox_status_available,priority:1" json:"status"`
	Attempts     int            `gorm:"column:attempts;not null;default:0" json:"attempts"`
	LastError    *string        `gorm:"column:last_error;type:text" json:"last_error,omitempty"`
	AvailableAt  time.Time      `gorm:"column:available_at;not null;index:idx_outbox_status_available,priority:2" json:"available_at"`
	DispatchedAt *time.Time     `gorm:"column:dispatched_at" json:"dispatched_at,omitempty"`
	CreatedAt    time.Time      `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"column:updated_at" json:"updated_at"`
}

func (OutboxEvent) TableName() string { return "notification_outbox" }
