package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vee4/vee4-order-api/models"
)

func TestMessageService_PostMessage_AsCustomer(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := NewMessageService(db)
	customer := createTestCustomer(t, db)
	order := createTestOrder(t, db, customer.ID, models.StatusFabrication)

	message, err := svc.PostMessage(customer, order.ID, "When will powder coating start?")
	require.NoError(t, err)

	assert.Equal(t, order.ID, message.OrderID)
	assert.Equal(t, customer.ID, message.SenderID)
	assert.Equal(t, "When will powder coating start?", message.Content)
	assert.False(t, message.IsRead)
	assert.Equal(t, customer.Name, message.Sender.Name)

	// Customer messages have no staff recipient, so no notification is created.
	var count int64
	db.Model(&models.Notification{}).Count(&count)
	assert.Zero(t, count)
}

func TestMessageService_PostMessage_AsAdmin(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := NewMessageService(db)
	admin := createTestAdmin(t, db)
	customer := createTestCustomer(t, db)
	order := createTestOrder(t, db, customer.ID, models.StatusApproved)

	message, err := svc.PostMessage(admin, order.ID, "Material arrives on Friday.")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, message.SenderID)

	// An admin message notifies the order's customer.
	var notification models.Notification
	require.NoError(t, db.Where("user_id = ?", customer.ID).First(&notification).Error)
	assert.Equal(t, "New Message", notification.Title)
	assert.Equal(t, fmt.Sprintf("Admin has sent you a message regarding order #%s", order.OrderNumber), notification.Message)
	assert.Equal(t, models.NotificationTypeMessage, notification.Type)
	require.NotNil(t, notification.OrderID)
	assert.Equal(t, order.ID, *notification.OrderID)
}

func TestMessageService_PostMessage_OtherCustomerForbidden(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := NewMessageService(db)
	owner := createTestCustomer(t, db)
	other := createTestCustomer(t, db)
	order := createTestOrder(t, db, owner.ID, models.StatusPending)

	_, err := svc.PostMessage(other, order.ID, "Hello?")
	assert.ErrorIs(t, err, ErrForbidden)

	var count int64
	db.Model(&models.Message{}).Count(&count)
	assert.Zero(t, count)
}

func TestMessageService_PostMessage_EmptyContent(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := NewMessageService(db)
	customer := createTestCustomer(t, db)
	order := createTestOrder(t, db, customer.ID, models.StatusPending)

	for _, content := range []string{"", "   ", "\n\t"} {
		_, err := svc.PostMessage(customer, order.ID, content)
		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "content", validationErr.Field)
	}
}

func TestMessageService_PostMessage_OrderNotFound(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := NewMessageService(db)
	customer := createTestCustomer(t, db)

	_, err := svc.PostMessage(customer, 777, "Anyone home?")
	assert.ErrorIs(t, err, ErrNotFound)
}
