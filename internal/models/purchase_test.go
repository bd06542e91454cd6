package models

import (
	"regexp"
	"testing"
)

func TestTicketPurchase_Validate(t *testing.T) {
	base := TicketPurchase{
		FundraiserID:    1,
		CustomerName:    "Jo Doe",
		CustomerEmail:   "jo@example.com",
		Quantity:        2,
		Amount:          2000,
		PaymentIntentID: "pi_123",
		PaymentStatus:   PaymentStatusCompleted,
		PaymentMethod:   PaymentMethodCard,
	}

	tests := []struct {
		name    string
		mutate  func(p *TicketPurchase)
		wantErr bool
	}{
		{name: "valid card purchase", mutate: func(p *TicketPurchase) {}, wantErr: false},
		{name: "valid cash purchase", mutate: func(p *TicketPurchase) { p.PaymentMethod = PaymentMethodCash }, wantErr: false},
		{name: "missing fundraiser", mutate: func(p *TicketPurchase) { p.FundraiserID = 0 }, wantErr: true},
		{name: "zero quantity", mutate: func(p *TicketPurchase) { p.Quantity = 0 }, wantErr: true},
		{name: "quantity above bounds", mutate: func(p *TicketPurchase) { p.Quantity = 11 }, wantErr: true},
		{name: "negative amount", mutate: func(p *TicketPurchase) { p.Amount = -1 }, wantErr: true},
		{name: "missing reference", mutate: func(p *TicketPurchase) { p.PaymentIntentID = "" }, wantErr: true},
		{name: "missing customer name", mutate: func(p *TicketPurchase) { p.CustomerName = "" }, wantErr: true},
		{name: "bad email", mutate: func(p *TicketPurchase) { p.CustomerEmail = "nope" }, wantErr: true},
		{name: "unknown method", mutate: func(p *TicketPurchase) { p.PaymentMethod = "crypto" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			purchase := base
			tt.mutate(&purchase)
			err := purchase.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGeneratePaymentReference(t *testing.T) {
	refFormat := regexp.MustCompile(`^CASH-\d{8}-\d{6}$`)

	ref := GeneratePaymentReference("CASH")
	if !refFormat.MatchString(ref) {
		t.Errorf("reference %q does not match CASH-YYYYMMDD-XXXXXX", ref)
	}

	// References should be unique across calls in practice
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		seen[GeneratePaymentReference("CASH")] = true
	}
	if len(seen) < 2 {
		t.Error("expected generated references to vary")
	}
}
