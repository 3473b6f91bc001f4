package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vee4/vee4-order-api/models"
	"gorm.io/gorm"
)

func createTestNotification(t *testing.T, db *gorm.DB, userID uint, title string) *models.Notification {
	notification := models.Notification{
		UserID:  userID,
		Title:   title,
		Message: "test notification body",
		Type:    models.NotificationTypeSystem,
	}
	require.NoError(t, db.Create(&notification).Error)
	return &notification
}

func TestNotificationService_List(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := NewNotificationService(db)
	customer := createTestCustomer(t, db)
	other := createTestCustomer(t, db)

	first := createTestNotification(t, db, customer.ID, "First")
	second := createTestNotification(t, db, customer.ID, "Second")
	createTestNotification(t, db, other.ID, "Not yours")

	require.NoError(t, db.Model(first).Update("created_at", time.Now().Add(-time.Hour)).Error)

	notifications, err := svc.List(customer.ID)
	require.NoError(t, err)

	// Own notifications only, newest first.
	require.Len(t, notifications, 2)
	assert.Equal(t, second.ID, notifications[0].ID)
	assert.Equal(t, first.ID, notifications[1].ID)
}

func TestNotificationService_MarkRead(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := NewNotificationService(db)
	customer := createTestCustomer(t, db)
	notification := createTestNotification(t, db, customer.ID, "Order Approved")

	marked, err := svc.MarkRead(notification.ID, customer.ID)
	require.NoError(t, err)
	assert.True(t, marked.IsRead)

	var loaded models.Notification
	require.NoError(t, db.First(&loaded, notification.ID).Error)
	assert.True(t, loaded.IsRead)
}

func TestNotificationService_MarkRead_AlreadyRead(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := NewNotificationService(db)
	customer := createTestCustomer(t, db)
	notification := createTestNotification(t, db, customer.ID, "Order Approved")

	_, err := svc.MarkRead(notification.ID, customer.ID)
	require.NoError(t, err)

	// Marking twice is a no-op, not an error.
	marked, err := svc.MarkRead(notification.ID, customer.ID)
	require.NoError(t, err)
	assert.True(t, marked.IsRead)
}

func TestNotificationService_MarkRead_NotRecipient(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := NewNotificationService(db)
	owner := createTestCustomer(t, db)
	other := createTestCustomer(t, db)
	notification := createTestNotification(t, db, owner.ID, "Order Approved")

	_, err := svc.MarkRead(notification.ID, other.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	var loaded models.Notification
	require.NoError(t, db.First(&loaded, notification.ID).Error)
	assert.False(t, loaded.IsRead)
}

func TestNotificationService_MarkRead_NotFound(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := NewNotificationService(db)
	customer := createTestCustomer(t, db)

	_, err := svc.MarkRead(555, customer.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNotificationService_MarkAllRead(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := NewNotificationService(db)
	customer := createTestCustomer(t, db)
	other := createTestCustomer(t, db)

	createTestNotification(t, db, customer.ID, "One")
	createTestNotification(t, db, customer.ID, "Two")
	untouched := createTestNotification(t, db, other.ID, "Other")

	require.NoError(t, svc.MarkAllRead(customer.ID))

	var unread int64
	db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", customer.ID, false).
		Count(&unread)
	assert.Zero(t, unread)

	// Only the caller's notifications are touched.
	var loaded models.Notification
	require.NoError(t, db.First(&loaded, untouched.ID).Error)
	assert.False(t, loaded.IsRead)

	// A second call with nothing unread succeeds.
	require.NoError(t, svc.MarkAllRead(customer.ID))
}
