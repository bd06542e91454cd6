package models

import "errors"

// Common errors used throughout the application
var (
	ErrFundraiserNotFound  = errors.New("fundraiser not found")
	ErrFundraiserInactive  = errors.New("fundraiser is not currently selling tickets")
	ErrStudentNotFound     = errors.New("student not found")
	ErrEmptyCart           = errors.New("cart is empty")
	ErrInvalidQuantity     = errors.New("quantity must be between 1 and 10")
	ErrInvalidCustomerInfo = errors.New("customer name and email are required")
	ErrSessionNotFound     = errors.New("checkout session not found")
	ErrSessionNotPending   = errors.New("checkout session is no longer pending")
	ErrAmountMismatch      = errors.New("provider amount does not cover the order total")
	ErrVerificationFailed  = errors.New("payment verification failed")
	ErrUnauthorized        = errors.New("unauthorized access")
	ErrDuplicateEntry      = errors.New("duplicate entry")
)
