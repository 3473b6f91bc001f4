package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vee4/vee4-order-api/models"
	"gorm.io/gorm"
)

// deliveryDateLayout is the long-form date used in customer-facing
// notification text, e.g. "Monday, June 1, 2026".
const deliveryDateLayout = "Monday, January 2, 2006"

// defaultDeliveryDays is how far out the expected delivery date is set when
// an order is approved without an explicit date.
const defaultDeliveryDays = 14

// orderNumberRetries is how many times Create retries when a concurrent
// create claims the same order number.
const orderNumberRetries = 3

// welcomeMessage seeds every new order's thread so the customer's first
// detail view already shows a reply.
const welcomeMessage = "Thank you for your order. We are currently reviewing your specifications and will update you soon."

// OrderService owns order records and enforces the status state machine.
// Every transition applies its order mutation and its message/notification
// fan-out inside a single database transaction.
type OrderService struct {
	db     *gorm.DB
	strict bool // forward-only status updates when true
}

// NewOrderService creates an OrderService on the given database handle.
func NewOrderService(db *gorm.DB, strictTransitions bool) *OrderService {
	return &OrderService{db: db, strict: strictTransitions}
}

// CreateOrderInput carries the immutable product specification for a new
// order. DesignFile is the storage key of the already-uploaded design PDF.
type CreateOrderInput struct {
	ProductType            string
	MetalType              string
	Thickness              float64
	Width                  float64
	Height                 float64
	Quantity               int
	Color                  string
	AdditionalRequirements string
	DesignFile             string
}

func (in *CreateOrderInput) validate() error {
	required := []struct {
		field string
		ok    bool
	}{
		{"productType", in.ProductType != ""},
		{"metalType", in.MetalType != ""},
		{"thickness", in.Thickness > 0},
		{"width", in.Width > 0},
		{"height", in.Height > 0},
		{"color", in.Color != ""},
		{"designFile", in.DesignFile != ""},
	}
	for _, r := range required {
		if !r.ok {
			return &ValidationError{Field: r.field, Message: "is required"}
		}
	}
	if in.Quantity <= 0 {
		return &ValidationError{Field: "quantity", Message: "must be greater than zero"}
	}
	return nil
}

// Create places a new order for the customer. The order starts in pending
// and receives its ORD-<year>-<NN> number inside the insert transaction;
// a collision with a concurrent create is retried against the unique index.
// The order's message thread is seeded with a welcome reply in the same
// transaction.
func (s *OrderService) Create(customer *models.User, in CreateOrderInput) (*models.Order, error) {
	if customer.Role != models.RoleCustomer {
		return nil, ErrForbidden
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt <= orderNumberRetries; attempt++ {
		order := models.Order{
			CustomerID:             customer.ID,
			Status:                 models.StatusPending,
			ProductType:            in.ProductType,
			MetalType:              in.MetalType,
			Thickness:              in.Thickness,
			Width:                  in.Width,
			Height:                 in.Height,
			Quantity:               in.Quantity,
			Color:                  in.Color,
			AdditionalRequirements: in.AdditionalRequirements,
			DesignFile:             in.DesignFile,
		}

		err := s.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&order).Error; err != nil {
				return err
			}
			// The ordering customer stands in as sender; there is no
			// designated staff account to attribute the welcome to.
			welcome := models.Message{
				OrderID:  order.ID,
				SenderID: customer.ID,
				Content:  welcomeMessage,
			}
			return tx.Create(&welcome).Error
		})
		if err != nil {
			if isUniqueViolation(err) {
				lastErr = err
				continue
			}
			return nil, fmt.Errorf("failed to create order: %w", err)
		}

		if err := s.db.Preload("Customer").First(&order, order.ID).Error; err != nil {
			return nil, fmt.Errorf("failed to load created order: %w", err)
		}
		return &order, nil
	}
	return nil, fmt.Errorf("failed to assign order number: %w", lastErr)
}

// TransitionOptions carries the optional parameters shared by the
// transition operations.
type TransitionOptions struct {
	ExpectedDeliveryDate *time.Time
	NotifyCustomer       bool
	Message              string
}

// Approve moves a pending order to approved. When no expected delivery
// date is supplied it defaults to the order's creation time plus 14 days.
// With NotifyCustomer set, a staff message and an order_status notification
// carrying the formatted delivery date are created in the same transaction.
func (s *OrderService) Approve(admin *models.User, orderID uint, opts TransitionOptions) (*models.Order, error) {
	if !admin.IsAdmin() {
		return nil, ErrForbidden
	}

	order, err := s.getOrder(orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != models.StatusPending {
		return nil, ErrInvalidTransition
	}

	delivery := opts.ExpectedDeliveryDate
	if delivery == nil {
		d := order.CreatedAt.AddDate(0, 0, defaultDeliveryDays)
		delivery = &d
	}
	formattedDate := delivery.Format(deliveryDateLayout)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.applyTransition(tx, order, map[string]interface{}{
			"status":                 models.StatusApproved,
			"expected_delivery_date": delivery,
		}); err != nil {
			return err
		}

		if opts.NotifyCustomer {
			content := opts.Message
			if content == "" {
				content = fmt.Sprintf("Your order has been approved and will move to production shortly. Expected delivery date: %s.", formattedDate)
			}
			return createFanout(tx, order, admin.ID, content,
				"Order Approved",
				fmt.Sprintf("Your order #%s has been approved with expected delivery on %s", order.OrderNumber, formattedDate),
				models.NotificationTypeOrderStatus)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.getOrder(orderID)
}

// Reject moves a pending order to the terminal rejected state.
func (s *OrderService) Reject(admin *models.User, orderID uint, opts TransitionOptions) (*models.Order, error) {
	if !admin.IsAdmin() {
		return nil, ErrForbidden
	}

	order, err := s.getOrder(orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != models.StatusPending {
		return nil, ErrInvalidTransition
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.applyTransition(tx, order, map[string]interface{}{
			"status": models.StatusRejected,
		}); err != nil {
			return err
		}

		if opts.NotifyCustomer {
			content := opts.Message
			if content == "" {
				content = "Your order has been rejected. Please contact us for more information."
			}
			return createFanout(tx, order, admin.ID, content,
				"Order Rejected",
				fmt.Sprintf("Your order #%s has been rejected", order.OrderNumber),
				models.NotificationTypeOrderStatus)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.getOrder(orderID)
}

// UpdateStatus is the generic transition used for pipeline steps after
// approval. Any member of the state set is accepted unless strict
// transitions are enabled, in which case only the next forward state is.
// Fan-out happens only when both NotifyCustomer and a message are given,
// matching the original behavior.
func (s *OrderService) UpdateStatus(admin *models.User, orderID uint, status string, opts TransitionOptions) (*models.Order, error) {
	if !admin.IsAdmin() {
		return nil, ErrForbidden
	}
	if !models.IsValidStatus(status) {
		return nil, ErrInvalidStatus
	}

	order, err := s.getOrder(orderID)
	if err != nil {
		return nil, err
	}
	if s.strict && !models.CanTransitionForward(order.Status, status) {
		return nil, ErrInvalidTransition
	}

	updates := map[string]interface{}{"status": status}
	if opts.ExpectedDeliveryDate != nil {
		updates["expected_delivery_date"] = opts.ExpectedDeliveryDate
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.applyTransition(tx, order, updates); err != nil {
			return err
		}

		if opts.NotifyCustomer && opts.Message != "" {
			notificationText := fmt.Sprintf("Your order #%s status has been updated to '%s'", order.OrderNumber, status)
			delivery := opts.ExpectedDeliveryDate
			if delivery == nil {
				delivery = order.ExpectedDeliveryDate
			}
			if delivery != nil {
				notificationText += fmt.Sprintf(" with expected delivery on %s", delivery.Format(deliveryDateLayout))
			}
			return createFanout(tx, order, admin.ID, opts.Message,
				"Order Status Updated", notificationText,
				models.NotificationTypeOrderStatus)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.getOrder(orderID)
}

// Document types accepted by AttachDocument.
const (
	DocumentTypeTestReport = "test-report"
	DocumentTypeInvoice    = "invoice"
	DocumentTypeDesign     = "design"
)

// AttachDocument records an uploaded test report or invoice on the order.
// The document write committed to external storage before this call, so the
// order mutation and the optional fan-out run as two steps; a fan-out
// failure after the committed mutation surfaces as PartialFanoutError
// alongside the updated order.
func (s *OrderService) AttachDocument(admin *models.User, orderID uint, documentType, key string, notifyCustomer bool) (*models.Order, error) {
	if !admin.IsAdmin() {
		return nil, ErrForbidden
	}

	var column, label, title string
	switch documentType {
	case DocumentTypeTestReport:
		column, label, title = "test_report", "test report", "New Test Report Available"
	case DocumentTypeInvoice:
		column, label, title = "invoice", "invoice", "New Invoice Available"
	default:
		return nil, &ValidationError{Field: "documentType", Message: "must be test-report or invoice"}
	}
	if key == "" {
		return nil, &ValidationError{Field: "file", Message: "is required"}
	}

	order, err := s.getOrder(orderID)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(order).Update(column, key).Error; err != nil {
		return nil, fmt.Errorf("failed to attach %s: %w", label, err)
	}

	updated, err := s.getOrder(orderID)
	if err != nil {
		return nil, err
	}

	if notifyCustomer {
		fanoutErr := s.db.Transaction(func(tx *gorm.DB) error {
			return createFanout(tx, order, admin.ID,
				fmt.Sprintf("A new %s has been uploaded for your order.", label),
				title,
				fmt.Sprintf("A new %s is available for your order #%s", label, order.OrderNumber),
				models.NotificationTypeOrderStatus)
		})
		if fanoutErr != nil {
			return updated, &PartialFanoutError{Op: "document upload", Err: fanoutErr}
		}
	}

	return updated, nil
}

// OrderFilters narrows the admin order listing.
type OrderFilters struct {
	Status    string
	Customer  string // case-insensitive substring on customer name or company
	StartDate *time.Time
	EndDate   *time.Time // inclusive
}

// ListForCustomer returns the customer's own orders, newest first.
func (s *OrderService) ListForCustomer(customerID uint) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// ListAll returns all orders matching the filters, newest first, with the
// customer relation loaded. A customer filter that matches no customer
// yields an empty list, not an error.
func (s *OrderService) ListAll(admin *models.User, filters OrderFilters) ([]models.Order, error) {
	if !admin.IsAdmin() {
		return nil, ErrForbidden
	}

	query := s.db.Model(&models.Order{})

	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.StartDate != nil {
		query = query.Where("created_at >= ?", *filters.StartDate)
	}
	if filters.EndDate != nil {
		query = query.Where("created_at <= ?", *filters.EndDate)
	}

	if filters.Customer != "" {
		pattern := "%" + strings.ToLower(filters.Customer) + "%"
		var customerIDs []uint
		err := s.db.Model(&models.User{}).
			Where("role = ? AND (LOWER(name) LIKE ? OR LOWER(company) LIKE ?)",
				models.RoleCustomer, pattern, pattern).
			Pluck("id", &customerIDs).Error
		if err != nil {
			return nil, fmt.Errorf("failed to match customers: %w", err)
		}
		if len(customerIDs) == 0 {
			return []models.Order{}, nil
		}
		query = query.Where("customer_id IN ?", customerIDs)
	}

	var orders []models.Order
	if err := query.Preload("Customer").Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// OrderDetail is the full read-side view of one order: the order itself,
// its message thread in chronological order and the derived progress view.
type OrderDetail struct {
	Order    models.Order
	Messages []models.Message
	Progress models.Progress
}

// Detail returns the full view of an order. Customers may only fetch their
// own orders; admins may fetch any.
func (s *OrderService) Detail(caller *models.User, orderID uint) (*OrderDetail, error) {
	var order models.Order
	if err := s.db.Preload("Customer").First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}

	if !caller.IsAdmin() && order.CustomerID != caller.ID {
		return nil, ErrForbidden
	}

	var messages []models.Message
	err := s.db.Where("order_id = ?", order.ID).
		Preload("Sender").
		Order("created_at ASC").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}

	return &OrderDetail{
		Order:    order,
		Messages: messages,
		Progress: models.ProgressFor(order.Status),
	}, nil
}

// DocumentKey resolves a document type to the order's storage key. The
// caller must be the owning customer or an admin.
func (s *OrderService) DocumentKey(caller *models.User, orderID uint, documentType string) (string, *models.Order, error) {
	var order models.Order
	if err := s.db.First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrNotFound
		}
		return "", nil, fmt.Errorf("failed to load order: %w", err)
	}

	if !caller.IsAdmin() && order.CustomerID != caller.ID {
		return "", nil, ErrForbidden
	}

	var key string
	switch documentType {
	case DocumentTypeDesign:
		key = order.DesignFile
	case DocumentTypeTestReport:
		if order.TestReport != nil {
			key = *order.TestReport
		}
	case DocumentTypeInvoice:
		if order.Invoice != nil {
			key = *order.Invoice
		}
	default:
		return "", nil, &ValidationError{Field: "documentType", Message: "must be design, test-report or invoice"}
	}

	if key == "" {
		return "", nil, ErrNotFound
	}
	return key, &order, nil
}

// CustomerSummary is one row of the admin customer listing.
type CustomerSummary struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Company     string    `json:"company"`
	Phone       string    `json:"phone"`
	OrdersCount int64     `json:"ordersCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ListCustomers returns every customer with their order count, newest
// customers first.
func (s *OrderService) ListCustomers(admin *models.User) ([]CustomerSummary, error) {
	if !admin.IsAdmin() {
		return nil, ErrForbidden
	}

	var customers []models.User
	err := s.db.Where("role = ?", models.RoleCustomer).
		Order("created_at DESC").
		Find(&customers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}

	summaries := make([]CustomerSummary, 0, len(customers))
	for _, customer := range customers {
		var count int64
		if err := s.db.Model(&models.Order{}).
			Where("customer_id = ?", customer.ID).
			Count(&count).Error; err != nil {
			return nil, fmt.Errorf("failed to count orders for customer %d: %w", customer.ID, err)
		}
		summaries = append(summaries, CustomerSummary{
			ID:          customer.ID,
			Name:        customer.Name,
			Email:       customer.Email,
			Company:     customer.Company,
			Phone:       customer.Phone,
			OrdersCount: count,
			CreatedAt:   customer.CreatedAt,
		})
	}
	return summaries, nil
}

// getOrder loads an order by ID, mapping a missing row to ErrNotFound.
func (s *OrderService) getOrder(orderID uint) (*models.Order, error) {
	var order models.Order
	if err := s.db.First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	return &order, nil
}

// applyTransition performs a compare-and-swap status update keyed on the
// version the order was loaded with. Zero affected rows means another
// transition won the race.
func (s *OrderService) applyTransition(tx *gorm.DB, order *models.Order, updates map[string]interface{}) error {
	updates["version"] = order.Version + 1

	result := tx.Model(&models.Order{}).
		Where("id = ? AND version = ?", order.ID, order.Version).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update order: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}

// createFanout records the staff message and customer notification that a
// lifecycle event produces, as one unit with the surrounding transaction.
func createFanout(tx *gorm.DB, order *models.Order, senderID uint, content, title, notificationText, notificationType string) error {
	message := models.Message{
		OrderID:  order.ID,
		SenderID: senderID,
		Content:  content,
	}
	if err := tx.Create(&message).Error; err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}

	orderID := order.ID
	notification := models.Notification{
		UserID:  order.CustomerID,
		Title:   title,
		Message: notificationText,
		Type:    notificationType,
		OrderID: &orderID,
	}
	if err := tx.Create(&notification).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}
