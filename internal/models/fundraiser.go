package models

import (
	"errors"
	"strings"
	"time"
)

// FundraiserStatus represents the lifecycle status of a fundraiser
type FundraiserStatus string

const (
	FundraiserDraft  FundraiserStatus = "draft"
	FundraiserActive FundraiserStatus = "active"
	FundraiserEnded  FundraiserStatus = "ended"
)

// Fundraiser represents a school-run ticketed event
type Fundraiser struct {
	ID          int              `json:"id" db:"id"`
	SchoolID    int              `json:"school_id" db:"school_id"`
	Title       string           `json:"title" db:"title"`
	Description string           `json:"description" db:"description"`
	TicketPrice int              `json:"ticket_price" db:"ticket_price"` // Price per ticket in cents
	Status      FundraiserStatus `json:"status" db:"status"`
	EventDate   time.Time        `json:"event_date" db:"event_date"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at" db:"updated_at"`
}

// Validate validates the fundraiser data
func (f *Fundraiser) Validate() error {
	if strings.TrimSpace(f.Title) == "" {
		return errors.New("fundraiser title is required")
	}

	if len(f.Title) > 255 {
		return errors.New("fundraiser title must be less than 255 characters")
	}

	if f.TicketPrice <= 0 {
		return errors.New("ticket price must be positive")
	}

	// Maximum ticket price of $1,000 (100,000 cents)
	if f.TicketPrice > 100000 {
		return errors.New("ticket price cannot exceed $1,000")
	}

	return f.validateStatus()
}

func (f *Fundraiser) validateStatus() error {
	switch f.Status {
	case FundraiserDraft, FundraiserActive, FundraiserEnded:
		return nil
	default:
		return errors.New("invalid fundraiser status")
	}
}

// CanSellTickets returns true if the fundraiser can currently sell tickets
func (f *Fundraiser) CanSellTickets() bool {
	return f.Status == FundraiserActive
}

// TicketPriceInCurrency returns the ticket price in the main currency as a float
func (f *Fundraiser) TicketPriceInCurrency() float64 {
	return float64(f.TicketPrice) / 100.0
}
