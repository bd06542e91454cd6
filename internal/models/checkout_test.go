package models

import "testing"

func TestCustomerInfo_Validate(t *testing.T) {
	tests := []struct {
		name     string
		customer CustomerInfo
		wantErr  bool
	}{
		{
			name:     "valid customer",
			customer: CustomerInfo{Name: "Jo Doe", Email: "jo@example.com"},
			wantErr:  false,
		},
		{
			name:     "valid with optional fields",
			customer: CustomerInfo{Name: "Jo Doe", Email: "jo@example.com", Phone: "555-0100", StudentEmail: "kid@school.edu"},
			wantErr:  false,
		},
		{
			name:     "missing name",
			customer: CustomerInfo{Email: "jo@example.com"},
			wantErr:  true,
		},
		{
			name:     "missing email",
			customer: CustomerInfo{Name: "Jo Doe"},
			wantErr:  true,
		},
		{
			name:     "whitespace name",
			customer: CustomerInfo{Name: "   ", Email: "jo@example.com"},
			wantErr:  true,
		},
		{
			name:     "invalid email format",
			customer: CustomerInfo{Name: "Jo Doe", Email: "not-an-email"},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.customer.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPendingOrder_Validate(t *testing.T) {
	validItems := []OrderItem{
		{FundraiserID: 1, Quantity: 2, UnitAmount: 1000, Amount: 2000},
		{FundraiserID: 2, Quantity: 1, UnitAmount: 1000, Amount: 1000},
	}
	validCustomer := CustomerInfo{Name: "Jo", Email: "jo@x.com"}

	tests := []struct {
		name    string
		order   PendingOrder
		wantErr bool
	}{
		{
			name: "valid pending order",
			order: PendingOrder{
				SessionID:     "sess-1",
				Items:         validItems,
				TotalAmount:   3000,
				Customer:      validCustomer,
				PaymentMethod: PaymentMethodCard,
				Status:        CheckoutPending,
			},
			wantErr: false,
		},
		{
			name: "missing session id",
			order: PendingOrder{
				Items:       validItems,
				TotalAmount: 3000,
				Customer:    validCustomer,
				Status:      CheckoutPending,
			},
			wantErr: true,
		},
		{
			name: "empty items",
			order: PendingOrder{
				SessionID:   "sess-1",
				TotalAmount: 0,
				Customer:    validCustomer,
				Status:      CheckoutPending,
			},
			wantErr: true,
		},
		{
			name: "total mismatch",
			order: PendingOrder{
				SessionID:   "sess-1",
				Items:       validItems,
				TotalAmount: 9999,
				Customer:    validCustomer,
				Status:      CheckoutPending,
			},
			wantErr: true,
		},
		{
			name: "item quantity out of bounds",
			order: PendingOrder{
				SessionID:   "sess-1",
				Items:       []OrderItem{{FundraiserID: 1, Quantity: 11, UnitAmount: 100, Amount: 1100}},
				TotalAmount: 1100,
				Customer:    validCustomer,
				Status:      CheckoutPending,
			},
			wantErr: true,
		},
		{
			name: "invalid status",
			order: PendingOrder{
				SessionID:   "sess-1",
				Items:       validItems,
				TotalAmount: 3000,
				Customer:    validCustomer,
				Status:      "paid",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.order.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPendingOrder_StatusHelpers(t *testing.T) {
	order := &PendingOrder{Status: CheckoutPending}
	if !order.IsPending() || !order.CanBeCancelled() {
		t.Error("pending order should be pending and cancellable")
	}

	order.Status = CheckoutRecorded
	if order.IsPending() || order.CanBeCancelled() {
		t.Error("recorded order is terminal")
	}
}
