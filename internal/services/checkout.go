package services

import (
	"fmt"

	"school-fundraiser-platform/internal/models"

	"github.com/google/uuid"
)

// CheckoutService prices carts and opens checkout sessions
type CheckoutService struct {
	fundraiserRepo FundraiserRepository
	pendingOrders  PendingOrderRepository
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(fundraiserRepo FundraiserRepository, pendingOrders PendingOrderRepository) *CheckoutService {
	return &CheckoutService{
		fundraiserRepo: fundraiserRepo,
		pendingOrders:  pendingOrders,
	}
}

// BuildOrder prices a cart into a ComputedOrder. The fundraiser's current
// ticket price is authoritative; client-supplied unit prices are ignored.
// Validation and fundraiser state are checked before any pricing so no
// provider call ever happens for an unsellable cart.
func (s *CheckoutService) BuildOrder(items []models.CartItem, customer models.CustomerInfo) (*models.ComputedOrder, error) {
	if len(items) == 0 {
		return nil, models.ErrEmptyCart
	}

	for _, item := range items {
		if err := models.ValidateQuantity(item.Quantity); err != nil {
			return nil, err
		}
	}

	if err := customer.Validate(); err != nil {
		return nil, err
	}

	// Recorded purchases are keyed on (reference, fundraiser), so each
	// fundraiser must end up as exactly one order line. The merged quantity
	// is still bound-checked so merging never sneaks past the limit.
	merged := mergeByFundraiser(items)
	for _, item := range merged {
		if err := models.ValidateQuantity(item.Quantity); err != nil {
			return nil, err
		}
	}

	order := &models.ComputedOrder{Customer: customer}
	for _, item := range merged {
		fundraiser, err := s.fundraiserRepo.GetByID(item.FundraiserID)
		if err != nil {
			return nil, err
		}

		if !fundraiser.CanSellTickets() {
			return nil, fmt.Errorf("%w: %s", models.ErrFundraiserInactive, fundraiser.Title)
		}

		amount := fundraiser.TicketPrice * item.Quantity
		order.Items = append(order.Items, models.OrderItem{
			FundraiserID:       fundraiser.ID,
			FundraiserName:     fundraiser.Title,
			Quantity:           item.Quantity,
			UnitAmount:         fundraiser.TicketPrice,
			Amount:             amount,
			ReferringStudentID: item.ReferringStudentID,
		})
		order.TotalAmount += amount
	}

	return order, nil
}

// mergeByFundraiser collapses cart lines that share a fundraiser into one
// line. Quantities add up; the first explicit referral for a fundraiser
// keeps the attribution.
func mergeByFundraiser(items []models.CartItem) []models.CartItem {
	merged := make([]models.CartItem, 0, len(items))
	index := make(map[int]int)

	for _, item := range items {
		if i, exists := index[item.FundraiserID]; exists {
			merged[i].Quantity += item.Quantity
			if merged[i].ReferringStudentID == nil {
				merged[i].ReferringStudentID = item.ReferringStudentID
			}
			continue
		}
		index[item.FundraiserID] = len(merged)
		merged = append(merged, item)
	}

	return merged
}

// CreateSession persists a computed order as a pending checkout session.
// The returned session ID is the only value handed to payment providers.
// The purchaser is known here, so each stored item gets its attribution
// kind stamped alongside the referral it will record under.
func (s *CheckoutService) CreateSession(order *models.ComputedOrder, method models.PaymentMethod, purchaserStudentID *int) (*models.PendingOrder, error) {
	items := make([]models.OrderItem, len(order.Items))
	for i, item := range order.Items {
		item.ReferralKind = ReferralKindFor(item.ReferringStudentID, purchaserStudentID)
		items[i] = item
	}

	pending := &models.PendingOrder{
		SessionID:          uuid.NewString(),
		Items:              items,
		TotalAmount:        order.TotalAmount,
		Customer:           order.Customer,
		PaymentMethod:      method,
		PurchaserStudentID: purchaserStudentID,
		Status:             models.CheckoutPending,
	}

	created, err := s.pendingOrders.Create(pending)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	return created, nil
}
