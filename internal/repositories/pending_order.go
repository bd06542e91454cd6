package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"school-fundraiser-platform/internal/models"
)

// PendingOrderRepository handles checkout session persistence
type PendingOrderRepository struct {
	db *sql.DB
}

// NewPendingOrderRepository creates a new pending order repository
func NewPendingOrderRepository(db *sql.DB) *PendingOrderRepository {
	return &PendingOrderRepository{db: db}
}

// Create persists a new checkout session in the pending state
func (r *PendingOrderRepository) Create(order *models.PendingOrder) (*models.PendingOrder, error) {
	if err := order.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	itemsJSON, err := json.Marshal(order.Items)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order items: %w", err)
	}

	customerJSON, err := json.Marshal(order.Customer)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal customer info: %w", err)
	}

	query := `
		INSERT INTO pending_orders (session_id, items, total_amount, customer, payment_method, purchaser_student_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`

	now := time.Now()
	created := *order
	err = r.db.QueryRow(
		query,
		order.SessionID,
		itemsJSON,
		order.TotalAmount,
		customerJSON,
		order.PaymentMethod,
		order.PurchaserStudentID,
		order.Status,
		now,
		now,
	).Scan(&created.ID, &created.CreatedAt, &created.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to create pending order: %w", err)
	}

	return &created, nil
}

// GetBySessionID retrieves a checkout session by its session ID
func (r *PendingOrderRepository) GetBySessionID(sessionID string) (*models.PendingOrder, error) {
	query := `
		SELECT id, session_id, items, total_amount, customer, payment_method, purchaser_student_id, status, created_at, updated_at
		FROM pending_orders
		WHERE session_id = $1`

	order := &models.PendingOrder{}
	var itemsJSON, customerJSON []byte

	err := r.db.QueryRow(query, sessionID).Scan(
		&order.ID,
		&order.SessionID,
		&itemsJSON,
		&order.TotalAmount,
		&customerJSON,
		&order.PaymentMethod,
		&order.PurchaserStudentID,
		&order.Status,
		&order.CreatedAt,
		&order.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get pending order: %w", err)
	}

	if err := json.Unmarshal(itemsJSON, &order.Items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal order items: %w", err)
	}

	if err := json.Unmarshal(customerJSON, &order.Customer); err != nil {
		return nil, fmt.Errorf("failed to unmarshal customer info: %w", err)
	}

	return order, nil
}

// UpdateStatus moves a pending session to a terminal state. Only sessions
// still in the pending state can transition.
func (r *PendingOrderRepository) UpdateStatus(sessionID string, status models.CheckoutStatus) error {
	query := `
		UPDATE pending_orders
		SET status = $2, updated_at = $3
		WHERE session_id = $1 AND status = $4`

	result, err := r.db.Exec(query, sessionID, status, time.Now(), models.CheckoutPending)
	if err != nil {
		return fmt.Errorf("failed to update pending order status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return models.ErrSessionNotPending
	}

	return nil
}
