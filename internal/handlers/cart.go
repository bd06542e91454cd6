package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"school-fundraiser-platform/internal/models"
	"school-fundraiser-platform/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

const cartSessionKey = "cart"

// CartHandler handles the session-backed shopping cart
type CartHandler struct {
	fundraisers services.FundraiserRepository
	store       sessions.Store
}

// NewCartHandler creates a new cart handler
func NewCartHandler(fundraisers services.FundraiserRepository, store sessions.Store) *CartHandler {
	return &CartHandler{
		fundraisers: fundraisers,
		store:       store,
	}
}

// addItemRequest is the add-to-cart request body
type addItemRequest struct {
	FundraiserID       int  `json:"fundraiser_id"`
	Quantity           int  `json:"quantity"`
	ReferringStudentID *int `json:"referring_student_id,omitempty"`
}

// updateItemRequest is the cart line update request body
type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

// cartResponse is the cart payload returned by every cart endpoint
type cartResponse struct {
	Items       []models.CartItem `json:"items"`
	TotalAmount int               `json:"total_amount"`
}

// GetCart returns the current session cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	session, err := h.store.Get(r, "session")
	if err != nil {
		h.handleSessionError(w, err)
		return
	}

	cart := getCartFromSession(session)
	writeJSON(w, http.StatusOK, cartResponse{Items: cart.Items, TotalAmount: cart.TotalAmount()})
}

// AddItem adds a fundraiser ticket line to the cart. The quantity is clamped
// to bounds and lines with matching fundraiser and referral are merged.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Quantity <= 0 {
		writeError(w, http.StatusBadRequest, models.ErrInvalidQuantity.Error())
		return
	}

	fundraiser, err := h.fundraisers.GetByID(req.FundraiserID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Fundraiser not found")
		return
	}

	if !fundraiser.CanSellTickets() {
		writeError(w, http.StatusBadRequest, "Fundraiser is not selling tickets")
		return
	}

	session, err := h.store.Get(r, "session")
	if err != nil {
		h.handleSessionError(w, err)
		return
	}

	// A referring student on the request means the line came in through a
	// shared fundraiser link
	var kind models.ReferralKind
	if req.ReferringStudentID != nil {
		kind = models.ReferralExternal
	}

	cart := getCartFromSession(session)
	cart.AddItem(models.CartItem{
		LineID:             uuid.NewString(),
		FundraiserID:       fundraiser.ID,
		FundraiserName:     fundraiser.Title,
		UnitPrice:          fundraiser.TicketPrice,
		Quantity:           req.Quantity,
		ReferringStudentID: req.ReferringStudentID,
		ReferralKind:       kind,
	})

	if err := saveCartToSession(session, cart, r, w); err != nil {
		log.Printf("Failed to save cart to session: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to save cart")
		return
	}

	writeJSON(w, http.StatusOK, cartResponse{Items: cart.Items, TotalAmount: cart.TotalAmount()})
}

// UpdateItem sets the quantity for a cart line, clamped to bounds
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	lineID := chi.URLParam(r, "id")

	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.store.Get(r, "session")
	if err != nil {
		h.handleSessionError(w, err)
		return
	}

	cart := getCartFromSession(session)

	if req.Quantity <= 0 {
		if !cart.RemoveItem(lineID) {
			writeError(w, http.StatusNotFound, "Cart item not found")
			return
		}
	} else if !cart.UpdateQuantity(lineID, req.Quantity) {
		writeError(w, http.StatusNotFound, "Cart item not found")
		return
	}

	if err := saveCartToSession(session, cart, r, w); err != nil {
		log.Printf("Failed to save cart to session: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to save cart")
		return
	}

	writeJSON(w, http.StatusOK, cartResponse{Items: cart.Items, TotalAmount: cart.TotalAmount()})
}

// RemoveItem removes a cart line
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	lineID := chi.URLParam(r, "id")

	session, err := h.store.Get(r, "session")
	if err != nil {
		h.handleSessionError(w, err)
		return
	}

	cart := getCartFromSession(session)
	if !cart.RemoveItem(lineID) {
		writeError(w, http.StatusNotFound, "Cart item not found")
		return
	}

	if err := saveCartToSession(session, cart, r, w); err != nil {
		log.Printf("Failed to save cart to session: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to save cart")
		return
	}

	writeJSON(w, http.StatusOK, cartResponse{Items: cart.Items, TotalAmount: cart.TotalAmount()})
}

func (h *CartHandler) handleSessionError(w http.ResponseWriter, err error) {
	log.Printf("Session error: %v", err)
	writeError(w, http.StatusInternalServerError, "Session error")
}

// getCartFromSession retrieves the cart from the session, or an empty cart
func getCartFromSession(session *sessions.Session) *models.Cart {
	if cartValue, exists := session.Values[cartSessionKey]; exists {
		if cart, ok := cartValue.(*models.Cart); ok {
			return cart
		}
	}
	return &models.Cart{}
}

// saveCartToSession stores the cart back into the session
func saveCartToSession(session *sessions.Session, cart *models.Cart, r *http.Request, w http.ResponseWriter) error {
	session.Values[cartSessionKey] = cart
	return session.Save(r, w)
}

// clearCartInSession removes the cart after a completed checkout
func clearCartInSession(session *sessions.Session, r *http.Request, w http.ResponseWriter) {
	delete(session.Values, cartSessionKey)
	if err := session.Save(r, w); err != nil {
		log.Printf("Failed to clear cart from session: %v", err)
	}
}
