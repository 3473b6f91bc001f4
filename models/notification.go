package models

import (
	"time"

	"gorm.io/gorm"
)

// Notification types.
const (
	NotificationTypeOrderStatus = "order_status"
	NotificationTypeMessage     = "message"
	NotificationTypeSystem      = "system"
)

// Notification is a recipient-addressed alert record, distinct from a
// conversational Message. Created as a side effect of order lifecycle
// events or admin messages; the only mutation is flipping IsRead to true.
type Notification struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"not null;index" json:"user_id"` // recipient, foreign key to users table
	User      User           `gorm:"foreignKey:UserID" json:"-"`
	Title     string         `gorm:"not null" json:"title"`
	Message   string         `gorm:"type:text;not null" json:"message"`
	IsRead    bool           `gorm:"not null;default:false" json:"is_read"`
	Type      string         `gorm:"not null" json:"type"` // order_status, message or system
	OrderID   *uint          `gorm:"index" json:"order_id,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Notification model
func (Notification) TableName() string {
	return "notifications"
}
