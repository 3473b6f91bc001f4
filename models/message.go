package models

import (
	"time"

	"gorm.io/gorm"
)

// Message represents a message in an order conversation. Messages are
// created by the owning customer or by an admin and are never updated or
// deleted.
type Message struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	OrderID   uint           `gorm:"not null;index" json:"order_id"` // foreign key to orders table
	Order     Order          `gorm:"foreignKey:OrderID" json:"-"`    // don't include full order in JSON
	SenderID  uint           `gorm:"not null;index" json:"sender_id"` // foreign key to users table
	Sender    User           `gorm:"foreignKey:SenderID" json:"sender"`
	Content   string         `gorm:"type:text;not null" json:"content"`
	IsRead    bool           `gorm:"not null;default:false" json:"is_read"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Message model
func (Message) TableName() string {
	return "messages"
}
