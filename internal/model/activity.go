package model

import "time"

// Activity actions recorded by the audit worker.
const (
	ActionItemCreated = "item.created"
	ActionItemUpdated = "item.updated"
	ActionItemDeleted = "item.deleted"
)

type Activity struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	Action      string    `gorm:"size:32;not null;index" json:"action"`
	ItemID      uint      `gorm:"not null" json:"item_id"`
	ItemKind    string    `gorm:"size:16;not null" json:"item_kind"`
	Title       string    `gorm:"size:255" json:"title"`
	CreatedDate time.Time `json:"created_date"`
}
