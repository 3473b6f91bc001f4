package services

import (
	"errors"
	"fmt"

	"github.com/vee4/vee4-order-api/models"
	"gorm.io/gorm"
)

// NotificationService lists and marks a recipient's notifications.
// Notifications are created by the order and message services; the only
// mutation here is flipping is_read to true.
type NotificationService struct {
	db *gorm.DB
}

// NewNotificationService creates a NotificationService on the given
// database handle.
func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// List returns the recipient's notifications, newest first.
func (s *NotificationService) List(recipientID uint) ([]models.Notification, error) {
	var notifications []models.Notification
	err := s.db.Where("user_id = ?", recipientID).
		Order("created_at DESC").
		Find(&notifications).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

// MarkRead flips a notification to read. Marking an already-read
// notification is a no-op, not an error.
func (s *NotificationService) MarkRead(notificationID, recipientID uint) (*models.Notification, error) {
	var notification models.Notification
	if err := s.db.First(&notification, notificationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load notification: %w", err)
	}

	if notification.UserID != recipientID {
		return nil, ErrForbidden
	}

	if notification.IsRead {
		return &notification, nil
	}

	if err := s.db.Model(&notification).Update("is_read", true).Error; err != nil {
		return nil, fmt.Errorf("failed to mark notification read: %w", err)
	}
	return &notification, nil
}

// MarkAllRead flips every unread notification owned by the recipient.
// Calling it with nothing unread is a no-op.
func (s *NotificationService) MarkAllRead(recipientID uint) error {
	err := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", recipientID, false).
		Update("is_read", true).Error
	if err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}
