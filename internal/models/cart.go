package models

// Quantity bounds for a single cart line
const (
	MinQuantity = 1
	MaxQuantity = 10
)

// Cart represents a shopping cart held in the buyer's session
type Cart struct {
	Items []CartItem `json:"items"`
}

// CartItem represents one fundraiser + quantity entry in the cart
type CartItem struct {
	LineID             string       `json:"line_id"`
	FundraiserID       int          `json:"fundraiser_id"`
	FundraiserName     string       `json:"fundraiser_name"`
	UnitPrice          int          `json:"unit_price"` // in cents
	Quantity           int          `json:"quantity"`
	ReferringStudentID *int         `json:"referring_student_id,omitempty"`
	ReferralKind       ReferralKind `json:"referral_kind,omitempty"`
}

// Subtotal returns the line total in cents
func (i *CartItem) Subtotal() int {
	return i.UnitPrice * i.Quantity
}

// ValidateQuantity checks a ticket quantity against the per-line bounds
func ValidateQuantity(quantity int) error {
	if quantity < MinQuantity || quantity > MaxQuantity {
		return ErrInvalidQuantity
	}
	return nil
}

// ClampQuantity forces a quantity into the per-line bounds
func ClampQuantity(quantity int) int {
	if quantity < MinQuantity {
		return MinQuantity
	}
	if quantity > MaxQuantity {
		return MaxQuantity
	}
	return quantity
}

// TotalAmount returns the cart total in cents
func (c *Cart) TotalAmount() int {
	total := 0
	for _, item := range c.Items {
		total += item.Subtotal()
	}
	return total
}

// IsEmpty returns true if the cart has no items
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// FindItem returns the item with the given line ID, or nil
func (c *Cart) FindItem(lineID string) *CartItem {
	for i := range c.Items {
		if c.Items[i].LineID == lineID {
			return &c.Items[i]
		}
	}
	return nil
}

// AddItem appends an item, merging quantity into an existing line when the
// fundraiser and referral match.
func (c *Cart) AddItem(item CartItem) {
	for i := range c.Items {
		existing := &c.Items[i]
		if existing.FundraiserID == item.FundraiserID && referralEqual(existing.ReferringStudentID, item.ReferringStudentID) {
			existing.Quantity = ClampQuantity(existing.Quantity + item.Quantity)
			return
		}
	}

	item.Quantity = ClampQuantity(item.Quantity)
	c.Items = append(c.Items, item)
}

// UpdateQuantity sets the quantity for a line, clamped to bounds
func (c *Cart) UpdateQuantity(lineID string, quantity int) bool {
	item := c.FindItem(lineID)
	if item == nil {
		return false
	}
	item.Quantity = ClampQuantity(quantity)
	return true
}

// RemoveItem removes a line from the cart
func (c *Cart) RemoveItem(lineID string) bool {
	for i := range c.Items {
		if c.Items[i].LineID == lineID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return true
		}
	}
	return false
}

// Clear empties the cart
func (c *Cart) Clear() {
	c.Items = nil
}

func referralEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
