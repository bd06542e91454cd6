package services

import (
	"errors"
	"fmt"
	"log"

	"school-fundraiser-platform/internal/models"
)

// PaymentService reconciles verified payments into ticket purchase records.
// All three rails converge here: the pending checkout session is re-loaded,
// the provider-reported amount is checked against the session total, and one
// purchase row per cart line is written in a single transaction.
type PaymentService struct {
	pendingOrders PendingOrderRepository
	purchases     PurchaseRepository
	students      StudentRepository
	paystack      PaystackVerifier
	notifier      NotificationService
}

// NewPaymentService creates a new payment reconciliation service
func NewPaymentService(
	pendingOrders PendingOrderRepository,
	purchases PurchaseRepository,
	students StudentRepository,
	paystack PaystackVerifier,
	notifier NotificationService,
) *PaymentService {
	return &PaymentService{
		pendingOrders: pendingOrders,
		purchases:     purchases,
		students:      students,
		paystack:      paystack,
		notifier:      notifier,
	}
}

// ConfirmCardPayment records the checkout behind a succeeded payment intent.
// The intent must come from a verified source (a signature-checked webhook or
// a server-side re-fetch), never from a client-reported payload.
func (s *PaymentService) ConfirmCardPayment(intent *PaymentIntent) ([]*models.TicketPurchase, error) {
	sessionID := intent.SessionID()
	if sessionID == "" {
		return nil, fmt.Errorf("payment intent %s carries no checkout session", intent.ID)
	}

	session, err := s.pendingOrders.GetBySessionID(sessionID)
	if err != nil {
		return nil, err
	}

	if intent.Status != "succeeded" {
		return nil, fmt.Errorf("%w: payment intent %s has status %s", models.ErrVerificationFailed, intent.ID, intent.Status)
	}

	return s.record(session, intent.ID, models.PaymentMethodCard, intent.Amount)
}

// ConfirmPaystackPayment verifies a transaction against the Paystack API and
// records the checkout session it references. The reference is the session
// ID, so the session lookup and the provider verification cross-check each
// other.
func (s *PaymentService) ConfirmPaystackPayment(reference string) ([]*models.TicketPurchase, error) {
	session, err := s.pendingOrders.GetBySessionID(reference)
	if err != nil {
		return nil, err
	}

	verification, err := s.paystack.VerifyTransaction(reference)
	if err != nil {
		// The provider definitively not knowing the transaction is a failed
		// verification; a transport or auth error leaves the session
		// pending so a retry can still succeed.
		var apiErr *PaystackError
		if errors.As(err, &apiErr) && apiErr.IsNotFound() {
			s.markFailed(session)
		}
		return nil, fmt.Errorf("%w: %v", models.ErrVerificationFailed, err)
	}

	if verification.Data.Status != "success" {
		s.markFailed(session)
		return nil, fmt.Errorf("%w: transaction %s has status %s", models.ErrVerificationFailed, reference, verification.Data.Status)
	}

	return s.record(session, reference, models.PaymentMethodPaystack, verification.Data.Amount)
}

// RecordCashCheckout records a cash checkout session immediately, with a
// generated reference in place of a provider transaction ID. No provider is
// ever contacted on this rail.
func (s *PaymentService) RecordCashCheckout(order *models.PendingOrder) ([]*models.TicketPurchase, error) {
	reference := models.GeneratePaymentReference("CASH")
	return s.record(order, reference, models.PaymentMethodCash, order.TotalAmount)
}

// CancelCheckout moves a pending session to cancelled. Sessions that already
// reached a terminal state are left untouched.
func (s *PaymentService) CancelCheckout(sessionID string) error {
	session, err := s.pendingOrders.GetBySessionID(sessionID)
	if err != nil {
		return err
	}

	if !session.CanBeCancelled() {
		return models.ErrSessionNotPending
	}

	return s.pendingOrders.UpdateStatus(sessionID, models.CheckoutCancelled)
}

// record turns a pending session into purchase rows. Re-confirmation of an
// already-recorded session returns the existing rows instead of erroring, so
// webhook retries and double-submits are harmless.
func (s *PaymentService) record(session *models.PendingOrder, reference string, method models.PaymentMethod, providerAmount int) ([]*models.TicketPurchase, error) {
	if !session.IsPending() {
		if session.Status == models.CheckoutRecorded {
			return s.purchases.GetByReference(reference)
		}
		return nil, models.ErrSessionNotPending
	}

	if providerAmount < session.TotalAmount {
		s.markFailed(session)
		return nil, fmt.Errorf("%w: provider reported %d, session total is %d", models.ErrAmountMismatch, providerAmount, session.TotalAmount)
	}

	purchases := make([]*models.TicketPurchase, 0, len(session.Items))
	for _, item := range session.Items {
		purchases = append(purchases, &models.TicketPurchase{
			FundraiserID:    item.FundraiserID,
			StudentID:       ResolveReferral(item.ReferringStudentID, session.PurchaserStudentID),
			CustomerName:    session.Customer.Name,
			CustomerEmail:   session.Customer.Email,
			CustomerPhone:   session.Customer.Phone,
			Quantity:        item.Quantity,
			Amount:          item.Amount,
			PaymentIntentID: reference,
			PaymentStatus:   models.PaymentStatusCompleted,
			PaymentMethod:   method,
			StudentEmail:    session.Customer.StudentEmail,
			TicketInfo:      session.Customer.TicketInfo,
		})
	}

	recorded, err := s.purchases.RecordCheckout(session.SessionID, purchases)
	if err != nil {
		return nil, fmt.Errorf("failed to record checkout: %w", err)
	}

	s.sendNotifications(session, recorded)

	return recorded, nil
}

// markFailed moves a session to failed, logging rather than returning any
// status-update error so the verification error stays primary.
func (s *PaymentService) markFailed(session *models.PendingOrder) {
	if !session.IsPending() {
		return
	}
	if err := s.pendingOrders.UpdateStatus(session.SessionID, models.CheckoutFailed); err != nil {
		log.Printf("Failed to mark checkout session %s as failed: %v", session.SessionID, err)
	}
}

// sendNotifications emails the buyer and each credited student. Failures are
// logged and ignored; notifications never affect recording.
func (s *PaymentService) sendNotifications(session *models.PendingOrder, purchases []*models.TicketPurchase) {
	if s.notifier == nil {
		return
	}

	tickets := 0
	for _, purchase := range purchases {
		tickets += purchase.Quantity
	}

	message := fmt.Sprintf("Thank you %s! Your purchase of %d ticket(s) totaling $%.2f has been confirmed.",
		session.Customer.Name, tickets, float64(session.TotalAmount)/100.0)
	if !s.notifier.SendNotificationEmail(session.Customer.Email, "Ticket Purchase Confirmed", message) {
		log.Printf("Failed to send purchase confirmation to %s", session.Customer.Email)
	}

	notified := make(map[int]bool)
	for _, purchase := range purchases {
		if purchase.StudentID == nil || notified[*purchase.StudentID] {
			continue
		}
		notified[*purchase.StudentID] = true

		student, err := s.students.GetByID(*purchase.StudentID)
		if err != nil {
			log.Printf("Failed to load student %d for sale notification: %v", *purchase.StudentID, err)
			continue
		}

		saleMsg := fmt.Sprintf("Great news %s! A ticket sale for %s has been credited to you.",
			student.FirstName, purchase.CustomerName)
		if !s.notifier.SendNotificationEmail(student.Email, "New Ticket Sale", saleMsg) {
			log.Printf("Failed to send sale notification to student %d", student.ID)
		}
	}
}
