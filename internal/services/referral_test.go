package services

import (
	"testing"

	"school-fundraiser-platform/internal/models"
)

func intPtr(i int) *int { return &i }

func TestResolveReferral(t *testing.T) {
	tests := []struct {
		name          string
		itemReferring *int
		purchaser     *int
		expected      *int
	}{
		{
			name:          "explicit item referral wins",
			itemReferring: intPtr(7),
			purchaser:     intPtr(3),
			expected:      intPtr(7),
		},
		{
			name:          "purchaser self-referral when item has none",
			itemReferring: nil,
			purchaser:     intPtr(3),
			expected:      intPtr(3),
		},
		{
			name:          "no attribution for anonymous buyer",
			itemReferring: nil,
			purchaser:     nil,
			expected:      nil,
		},
		{
			name:          "item referral without purchaser",
			itemReferring: intPtr(12),
			purchaser:     nil,
			expected:      intPtr(12),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveReferral(tt.itemReferring, tt.purchaser)

			if tt.expected == nil {
				if got != nil {
					t.Errorf("expected nil referral, got %d", *got)
				}
				return
			}

			if got == nil {
				t.Fatalf("expected referral %d, got nil", *tt.expected)
			}
			if *got != *tt.expected {
				t.Errorf("expected referral %d, got %d", *tt.expected, *got)
			}
		})
	}
}

func TestResolveReferralCopiesValue(t *testing.T) {
	source := 7
	got := ResolveReferral(&source, nil)

	if got == &source {
		t.Error("expected a copied pointer, got the original")
	}

	source = 99
	if *got != 7 {
		t.Errorf("resolved referral changed with its source: got %d", *got)
	}
}

func TestReferralKindFor(t *testing.T) {
	tests := []struct {
		name          string
		itemReferring *int
		purchaser     *int
		expected      models.ReferralKind
	}{
		{"external link referral", intPtr(7), intPtr(3), models.ReferralExternal},
		{"item referral matching purchaser", intPtr(3), intPtr(3), models.ReferralSelf},
		{"purchaser self-referral", nil, intPtr(3), models.ReferralSelf},
		{"anonymous", nil, nil, models.ReferralKind("")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ReferralKindFor(tt.itemReferring, tt.purchaser); got != tt.expected {
				t.Errorf("expected kind %q, got %q", tt.expected, got)
			}
		})
	}
}
