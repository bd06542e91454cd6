package models

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// Email validation regex for checkout
var customerEmailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// CustomerInfo holds the buyer contact details captured once per checkout
type CustomerInfo struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone,omitempty"`
	StudentEmail string `json:"student_email,omitempty"`
	TicketInfo   string `json:"ticket_info,omitempty"`
}

// Validate validates the customer contact details
func (c *CustomerInfo) Validate() error {
	if strings.TrimSpace(c.Name) == "" || strings.TrimSpace(c.Email) == "" {
		return ErrInvalidCustomerInfo
	}

	if len(c.Name) > 255 {
		return errors.New("customer name must be less than 255 characters")
	}

	if len(c.Email) > 255 {
		return errors.New("customer email must be less than 255 characters")
	}

	if !customerEmailRegex.MatchString(c.Email) {
		return errors.New("customer email format is invalid")
	}

	return nil
}

// OrderItem is one priced line of a computed order
type OrderItem struct {
	FundraiserID       int          `json:"fundraiser_id"`
	FundraiserName     string       `json:"fundraiser_name"`
	Quantity           int          `json:"quantity"`
	UnitAmount         int          `json:"unit_amount"` // in cents
	Amount             int          `json:"amount"`      // quantity * unit amount, in cents
	ReferringStudentID *int         `json:"referring_student_id,omitempty"`
	ReferralKind       ReferralKind `json:"referral_kind,omitempty"`
}

// ComputedOrder is a priced checkout, built once and consumed by exactly one
// payment rail.
type ComputedOrder struct {
	Items       []OrderItem  `json:"items"`
	TotalAmount int          `json:"total_amount"` // in cents
	Customer    CustomerInfo `json:"customer"`
}

// CheckoutStatus represents the state of a checkout session
type CheckoutStatus string

const (
	CheckoutPending   CheckoutStatus = "pending"
	CheckoutRecorded  CheckoutStatus = "recorded"
	CheckoutCancelled CheckoutStatus = "cancelled"
	CheckoutFailed    CheckoutStatus = "failed"
)

// PendingOrder is a persisted checkout session. Provider metadata carries
// only the session ID; the order itself is re-loaded from here at
// verification time.
type PendingOrder struct {
	ID                 int            `json:"id" db:"id"`
	SessionID          string         `json:"session_id" db:"session_id"`
	Items              []OrderItem    `json:"items" db:"items"` // Stored as JSONB
	TotalAmount        int            `json:"total_amount" db:"total_amount"`
	Customer           CustomerInfo   `json:"customer" db:"customer"` // Stored as JSONB
	PaymentMethod      PaymentMethod  `json:"payment_method" db:"payment_method"`
	PurchaserStudentID *int           `json:"purchaser_student_id,omitempty" db:"purchaser_student_id"`
	Status             CheckoutStatus `json:"status" db:"status"`
	CreatedAt          time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at" db:"updated_at"`
}

// IsPending returns true if the session can still move to a terminal state
func (p *PendingOrder) IsPending() bool {
	return p.Status == CheckoutPending
}

// CanBeCancelled returns true if the session can be cancelled
func (p *PendingOrder) CanBeCancelled() bool {
	return p.Status == CheckoutPending
}

// Validate validates the pending order
func (p *PendingOrder) Validate() error {
	if p.SessionID == "" {
		return errors.New("checkout session id is required")
	}

	if len(p.Items) == 0 {
		return ErrEmptyCart
	}

	for _, item := range p.Items {
		if err := ValidateQuantity(item.Quantity); err != nil {
			return err
		}
	}

	if err := p.Customer.Validate(); err != nil {
		return err
	}

	sum := 0
	for _, item := range p.Items {
		sum += item.Amount
	}
	if sum != p.TotalAmount {
		return errors.New("order total does not match the sum of its items")
	}

	return p.validateStatus()
}

func (p *PendingOrder) validateStatus() error {
	switch p.Status {
	case CheckoutPending, CheckoutRecorded, CheckoutCancelled, CheckoutFailed:
		return nil
	default:
		return errors.New("invalid checkout status")
	}
}
