package models

import (
	"fmt"
	"time"
)

// ReferralKind describes how a student came to be credited with a sale
type ReferralKind string

const (
	ReferralSelf     ReferralKind = "self"     // Purchaser is the credited student
	ReferralExternal ReferralKind = "external" // Credit came from a shared link
)

// Student represents a student participating in fundraisers
type Student struct {
	ID        int       `json:"id" db:"id"`
	UserID    int       `json:"user_id" db:"user_id"`
	SchoolID  int       `json:"school_id" db:"school_id"`
	FirstName string    `json:"first_name" db:"first_name"`
	LastName  string    `json:"last_name" db:"last_name"`
	Email     string    `json:"email" db:"email"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// FullName returns the student's full name
func (s *Student) FullName() string {
	return fmt.Sprintf("%s %s", s.FirstName, s.LastName)
}
