package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Order represents a custom metal-fabrication order in the system
type Order struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	OrderNumber string `gorm:"uniqueIndex;not null" json:"order_number"` // ORD-<year>-<NN>, assigned once at creation
	CustomerID  uint   `gorm:"not null;index" json:"customer_id"`        // foreign key to users table
	Customer    User   `gorm:"foreignKey:CustomerID" json:"customer"`
	Status      string `gorm:"not null;default:'pending'" json:"status"` // see status.go for the fixed state set

	// Product specification, immutable after creation (no edit operation exists)
	ProductType            string  `gorm:"not null" json:"product_type"`
	MetalType              string  `gorm:"not null" json:"metal_type"`
	Thickness              float64 `gorm:"not null" json:"thickness"`
	Width                  float64 `gorm:"not null" json:"width"`
	Height                 float64 `gorm:"not null" json:"height"`
	Quantity               int     `gorm:"not null;check:quantity > 0" json:"quantity"`
	Color                  string  `gorm:"not null" json:"color"`
	AdditionalRequirements string  `json:"additional_requirements"`

	// Document references are opaque storage keys resolved by the document store
	DesignFile string  `gorm:"not null" json:"design_file"`
	TestReport *string `json:"test_report"` // nullable, uploaded by admin post-creation
	Invoice    *string `json:"invoice"`     // nullable, uploaded by admin post-creation

	ExpectedDeliveryDate *time.Time `json:"expected_delivery_date"` // set by admin during approval or status update

	Version   uint           `gorm:"not null;default:1" json:"-"` // optimistic concurrency counter for transitions
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// BeforeCreate assigns the human-readable order number. The sequence is the
// 1-based count of orders created in the same calendar year, padded to at
// least two digits. The count runs inside the insert transaction; the
// unique index on order_number catches concurrent creates and the service
// layer retries on collision.
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.OrderNumber != "" {
		return nil
	}

	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now()
	}

	year := o.CreatedAt.Year()
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, o.CreatedAt.Location())
	end := start.AddDate(1, 0, 0)

	var count int64
	if err := tx.Model(&Order{}).
		Where("created_at >= ? AND created_at < ?", start, end).
		Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count orders for numbering: %w", err)
	}

	o.OrderNumber = fmt.Sprintf("ORD-%d-%02d", year, count+1)
	return nil
}
