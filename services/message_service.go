package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vee4/vee4-order-api/models"
	"gorm.io/gorm"
)

// MessageService creates conversation messages tied to orders and derives
// the customer notifications admin messages produce.
type MessageService struct {
	db *gorm.DB
}

// NewMessageService creates a MessageService on the given database handle.
func NewMessageService(db *gorm.DB) *MessageService {
	return &MessageService{db: db}
}

// PostMessage records a message on an order. Customers may only message on
// their own orders; admins may message on any. An admin message also
// creates a 'message' notification for the order's customer, in the same
// transaction. Customer messages create no notification: there is no staff
// recipient model, admins read threads through the order detail.
func (s *MessageService) PostMessage(sender *models.User, orderID uint, content string) (*models.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, &ValidationError{Field: "content", Message: "must not be empty"}
	}

	var order models.Order
	if err := s.db.First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}

	if !sender.IsAdmin() && order.CustomerID != sender.ID {
		return nil, ErrForbidden
	}

	message := models.Message{
		OrderID:  order.ID,
		SenderID: sender.ID,
		Content:  content,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&message).Error; err != nil {
			return fmt.Errorf("failed to create message: %w", err)
		}

		if sender.IsAdmin() {
			notification := models.Notification{
				UserID:  order.CustomerID,
				Title:   "New Message",
				Message: fmt.Sprintf("Admin has sent you a message regarding order #%s", order.OrderNumber),
				Type:    models.NotificationTypeMessage,
				OrderID: &order.ID,
			}
			if err := tx.Create(&notification).Error; err != nil {
				return fmt.Errorf("failed to create notification: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.db.Preload("Sender").First(&message, message.ID).Error; err != nil {
		return nil, fmt.Errorf("failed to load message details: %w", err)
	}
	return &message, nil
}
