package services

import (
	"school-fundraiser-platform/internal/models"
)

// FundraiserRepository interface for fundraiser data operations
type FundraiserRepository interface {
	GetByID(id int) (*models.Fundraiser, error)
}

// StudentRepository interface for student data operations
type StudentRepository interface {
	GetByID(id int) (*models.Student, error)
	GetByUserID(userID int) (*models.Student, error)
}

// PendingOrderRepository interface for checkout session persistence
type PendingOrderRepository interface {
	Create(order *models.PendingOrder) (*models.PendingOrder, error)
	GetBySessionID(sessionID string) (*models.PendingOrder, error)
	UpdateStatus(sessionID string, status models.CheckoutStatus) error
}

// PurchaseRepository interface for ticket purchase persistence
type PurchaseRepository interface {
	RecordCheckout(sessionID string, purchases []*models.TicketPurchase) ([]*models.TicketPurchase, error)
	GetByReference(paymentIntentID string) ([]*models.TicketPurchase, error)
}

// CheckoutServiceInterface defines the checkout session builder
type CheckoutServiceInterface interface {
	BuildOrder(items []models.CartItem, customer models.CustomerInfo) (*models.ComputedOrder, error)
	CreateSession(order *models.ComputedOrder, method models.PaymentMethod, purchaserStudentID *int) (*models.PendingOrder, error)
}

// PaymentServiceInterface defines verification and recording across all rails
type PaymentServiceInterface interface {
	ConfirmCardPayment(intent *PaymentIntent) ([]*models.TicketPurchase, error)
	ConfirmPaystackPayment(reference string) ([]*models.TicketPurchase, error)
	RecordCashCheckout(order *models.PendingOrder) ([]*models.TicketPurchase, error)
	CancelCheckout(sessionID string) error
}

// PaystackVerifier is the server-side transaction re-fetch used during
// alternate-gateway verification.
type PaystackVerifier interface {
	VerifyTransaction(reference string) (*TransactionVerification, error)
}

// NotificationService is the fire-and-forget email side-channel
type NotificationService interface {
	SendNotificationEmail(toEmail, title, message string) bool
}
