package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"school-fundraiser-platform/internal/middleware"
	"school-fundraiser-platform/internal/models"
	"school-fundraiser-platform/internal/services"

	"github.com/gorilla/sessions"
)

// maxWebhookBody caps webhook payload reads
const maxWebhookBody = 64 * 1024

// StripeClient is the card-provider surface the payment handler needs
type StripeClient interface {
	CreateIntent(amountCents int, sessionID string) (*services.PaymentIntent, error)
	ConstructWebhookEvent(payload []byte, sigHeader string) (*services.StripeWebhookEvent, error)
}

// PaystackClient is the alternate-gateway surface the payment handler needs
type PaystackClient interface {
	InitializeTransaction(req *services.TransactionRequest) (*services.TransactionResponse, error)
}

// PaymentHandler handles checkout and payment verification requests
type PaymentHandler struct {
	checkoutService services.CheckoutServiceInterface
	paymentService  services.PaymentServiceInterface
	stripe          StripeClient
	paystack        PaystackClient
	store           sessions.Store
	currency        string
	callbackURL     string
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(
	checkoutService services.CheckoutServiceInterface,
	paymentService services.PaymentServiceInterface,
	stripe StripeClient,
	paystack PaystackClient,
	store sessions.Store,
	currency string,
	callbackURL string,
) *PaymentHandler {
	return &PaymentHandler{
		checkoutService: checkoutService,
		paymentService:  paymentService,
		stripe:          stripe,
		paystack:        paystack,
		store:           store,
		currency:        currency,
		callbackURL:     callbackURL,
	}
}

// checkoutRequest is the request body shared by all checkout endpoints.
// When items is empty the session cart is used instead.
type checkoutRequest struct {
	Items    []checkoutItem      `json:"items,omitempty"`
	Customer models.CustomerInfo `json:"customer"`
}

type checkoutItem struct {
	FundraiserID       int  `json:"fundraiser_id"`
	Quantity           int  `json:"quantity"`
	ReferringStudentID *int `json:"referring_student_id,omitempty"`
}

// referenceRequest carries a provider transaction reference
type referenceRequest struct {
	Reference string `json:"reference"`
}

// purchasesResponse is returned once a checkout is recorded
type purchasesResponse struct {
	Purchases []*models.TicketPurchase `json:"purchases"`
}

// CreateIntent builds the order, opens a checkout session, and creates a
// card payment intent for it.
func (h *PaymentHandler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	order, pending, ok := h.openSession(w, r, models.PaymentMethodCard)
	if !ok {
		return
	}

	intent, err := h.stripe.CreateIntent(order.TotalAmount, pending.SessionID)
	if err != nil {
		log.Printf("Failed to create payment intent for session %s: %v", pending.SessionID, err)
		writeError(w, http.StatusBadGateway, "Failed to create payment intent")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"client_secret": intent.ClientSecret,
		"session_id":    pending.SessionID,
		"amount":        order.TotalAmount,
	})
}

// StripeWebhook records checkouts behind signature-verified provider events
func (h *PaymentHandler) StripeWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read webhook payload")
		return
	}

	event, err := h.stripe.ConstructWebhookEvent(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		log.Printf("Webhook signature verification failed: %v", err)
		writeError(w, http.StatusBadRequest, "Invalid webhook signature")
		return
	}

	if event.Type != services.EventPaymentSucceeded {
		// Acknowledge event types we do not act on
		w.WriteHeader(http.StatusOK)
		return
	}

	if _, err := h.paymentService.ConfirmCardPayment(&event.Data.Object); err != nil {
		log.Printf("Failed to record card payment %s: %v", event.Data.Object.ID, err)
		h.writePaymentError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// PaystackInitialize builds the order, opens a checkout session, and
// initializes a gateway transaction referencing it.
func (h *PaymentHandler) PaystackInitialize(w http.ResponseWriter, r *http.Request) {
	order, pending, ok := h.openSession(w, r, models.PaymentMethodPaystack)
	if !ok {
		return
	}

	resp, err := h.paystack.InitializeTransaction(&services.TransactionRequest{
		Email:       order.Customer.Email,
		Amount:      order.TotalAmount,
		Currency:    h.currency,
		Reference:   pending.SessionID,
		CallbackURL: h.callbackURL,
		Metadata:    map[string]string{services.MetadataSessionKey: pending.SessionID},
		Channels:    []string{"card", "bank", "mobile_money"},
	})
	if err != nil {
		log.Printf("Failed to initialize transaction for session %s: %v", pending.SessionID, err)
		writeError(w, http.StatusBadGateway, "Failed to initialize payment")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"authorization_url": resp.Data.AuthorizationURL,
		"access_code":       resp.Data.AccessCode,
		"reference":         resp.Data.Reference,
		"amount":            order.TotalAmount,
	})
}

// PaystackVerify verifies a transaction server-side and records the checkout
func (h *PaymentHandler) PaystackVerify(w http.ResponseWriter, r *http.Request) {
	var req referenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Reference == "" {
		writeError(w, http.StatusBadRequest, "Transaction reference is required")
		return
	}

	purchases, err := h.paymentService.ConfirmPaystackPayment(req.Reference)
	if err != nil {
		log.Printf("Failed to verify transaction %s: %v", req.Reference, err)
		h.writePaymentError(w, err)
		return
	}

	h.clearCart(w, r)
	writeJSON(w, http.StatusOK, purchasesResponse{Purchases: purchases})
}

// PaystackCancel marks an abandoned checkout session as cancelled
func (h *PaymentHandler) PaystackCancel(w http.ResponseWriter, r *http.Request) {
	var req referenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Reference == "" {
		writeError(w, http.StatusBadRequest, "Transaction reference is required")
		return
	}

	if err := h.paymentService.CancelCheckout(req.Reference); err != nil {
		h.writePaymentError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

// CashCheckout records a cash sale immediately. Requires authentication; the
// recording student becomes the purchaser for referral purposes.
func (h *PaymentHandler) CashCheckout(w http.ResponseWriter, r *http.Request) {
	student := middleware.GetStudentFromContext(r.Context())
	if student == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	_, pending, ok := h.openSession(w, r, models.PaymentMethodCash)
	if !ok {
		return
	}

	purchases, err := h.paymentService.RecordCashCheckout(pending)
	if err != nil {
		log.Printf("Failed to record cash checkout %s: %v", pending.SessionID, err)
		h.writePaymentError(w, err)
		return
	}

	h.clearCart(w, r)
	writeJSON(w, http.StatusOK, purchasesResponse{Purchases: purchases})
}

// openSession decodes the checkout request, prices the order, and persists a
// pending checkout session for the given payment method.
func (h *PaymentHandler) openSession(w http.ResponseWriter, r *http.Request, method models.PaymentMethod) (*models.ComputedOrder, *models.PendingOrder, bool) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return nil, nil, false
	}

	session, err := h.store.Get(r, "session")
	if err != nil {
		log.Printf("Session error: %v", err)
		writeError(w, http.StatusInternalServerError, "Session error")
		return nil, nil, false
	}

	items := h.resolveItems(req, session)

	order, err := h.checkoutService.BuildOrder(items, req.Customer)
	if err != nil {
		h.writePaymentError(w, err)
		return nil, nil, false
	}

	var purchaserStudentID *int
	if student := middleware.GetStudentFromContext(r.Context()); student != nil {
		purchaserStudentID = &student.ID
	}

	pending, err := h.checkoutService.CreateSession(order, method, purchaserStudentID)
	if err != nil {
		log.Printf("Failed to create checkout session: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to create checkout session")
		return nil, nil, false
	}

	return order, pending, true
}

// resolveItems uses explicit request items when present, the session cart
// otherwise.
func (h *PaymentHandler) resolveItems(req checkoutRequest, session *sessions.Session) []models.CartItem {
	if len(req.Items) > 0 {
		items := make([]models.CartItem, 0, len(req.Items))
		for _, item := range req.Items {
			items = append(items, models.CartItem{
				FundraiserID:       item.FundraiserID,
				Quantity:           item.Quantity,
				ReferringStudentID: item.ReferringStudentID,
			})
		}
		return items
	}

	return getCartFromSession(session).Items
}

func (h *PaymentHandler) clearCart(w http.ResponseWriter, r *http.Request) {
	session, err := h.store.Get(r, "session")
	if err != nil {
		return
	}
	clearCartInSession(session, r, w)
}

// writePaymentError maps domain errors onto HTTP statuses
func (h *PaymentHandler) writePaymentError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrEmptyCart),
		errors.Is(err, models.ErrInvalidQuantity),
		errors.Is(err, models.ErrInvalidCustomerInfo),
		errors.Is(err, models.ErrFundraiserInactive):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrFundraiserNotFound),
		errors.Is(err, models.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrSessionNotPending):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, models.ErrAmountMismatch),
		errors.Is(err, models.ErrVerificationFailed):
		writeError(w, http.StatusPaymentRequired, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
