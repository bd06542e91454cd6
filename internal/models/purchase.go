package models

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"
)

// PaymentMethod identifies which rail recorded a purchase
type PaymentMethod string

const (
	PaymentMethodCard     PaymentMethod = "card"
	PaymentMethodPaystack PaymentMethod = "paystack"
	PaymentMethodCash     PaymentMethod = "cash"
)

// PaymentStatusCompleted is the only status a recorded purchase carries.
// Purchases are written after verification succeeds, never before.
const PaymentStatusCompleted = "completed"

// TicketPurchase is the authoritative record of one recorded cart line.
// Rows from the same checkout share a payment intent ID. Rows are never
// mutated after creation.
type TicketPurchase struct {
	ID              int           `json:"id" db:"id"`
	FundraiserID    int           `json:"fundraiser_id" db:"fundraiser_id"`
	StudentID       *int          `json:"student_id,omitempty" db:"student_id"` // Referral attribution, nullable
	CustomerName    string        `json:"customer_name" db:"customer_name"`
	CustomerEmail   string        `json:"customer_email" db:"customer_email"`
	CustomerPhone   string        `json:"customer_phone,omitempty" db:"customer_phone"`
	Quantity        int           `json:"quantity" db:"quantity"`
	Amount          int           `json:"amount" db:"amount"` // in cents
	PaymentIntentID string        `json:"payment_intent_id" db:"payment_intent_id"`
	PaymentStatus   string        `json:"payment_status" db:"payment_status"`
	PaymentMethod   PaymentMethod `json:"payment_method" db:"payment_method"`
	StudentEmail    string        `json:"student_email,omitempty" db:"student_email"`
	TicketInfo      string        `json:"ticket_info,omitempty" db:"ticket_info"`
	CreatedAt       time.Time     `json:"created_at" db:"created_at"`
}

// Validate validates the purchase data before insert
func (p *TicketPurchase) Validate() error {
	if p.FundraiserID <= 0 {
		return errors.New("fundraiser id is required")
	}

	if err := ValidateQuantity(p.Quantity); err != nil {
		return err
	}

	if p.Amount < 0 {
		return errors.New("amount cannot be negative")
	}

	if p.PaymentIntentID == "" {
		return errors.New("payment reference is required")
	}

	if strings.TrimSpace(p.CustomerName) == "" || strings.TrimSpace(p.CustomerEmail) == "" {
		return ErrInvalidCustomerInfo
	}

	if !customerEmailRegex.MatchString(p.CustomerEmail) {
		return errors.New("customer email format is invalid")
	}

	return p.validateMethod()
}

func (p *TicketPurchase) validateMethod() error {
	switch p.PaymentMethod {
	case PaymentMethodCard, PaymentMethodPaystack, PaymentMethodCash:
		return nil
	default:
		return errors.New("invalid payment method")
	}
}

// AmountInCurrency returns the amount in the main currency as a float
func (p *TicketPurchase) AmountInCurrency() float64 {
	return float64(p.Amount) / 100.0
}

// GeneratePaymentReference generates a locally-unique payment reference for
// provider-less rails. Format: CASH-YYYYMMDD-XXXXXX.
func GeneratePaymentReference(prefix string) string {
	now := time.Now()
	dateStr := now.Format("20060102")

	max := big.NewInt(1000000)
	randomNum, err := rand.Int(rand.Reader, max)
	if err != nil {
		// Fallback to timestamp-based generation if crypto/rand fails
		return fmt.Sprintf("%s-%s-%06d", prefix, dateStr, now.UnixNano()%1000000)
	}

	return fmt.Sprintf("%s-%s-%06d", prefix, dateStr, randomNum.Int64())
}
