package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"school-fundraiser-platform/internal/models"

	"github.com/lib/pq"
)

// PurchaseRepository handles ticket purchase data operations
type PurchaseRepository struct {
	db *sql.DB
}

// NewPurchaseRepository creates a new purchase repository
func NewPurchaseRepository(db *sql.DB) *PurchaseRepository {
	return &PurchaseRepository{db: db}
}

const purchaseColumns = `id, fundraiser_id, student_id, customer_name, customer_email, customer_phone, quantity, amount, payment_intent_id, payment_status, payment_method, student_email, ticket_info, created_at`

// uniqueViolation is the Postgres error code raised by the
// (payment_intent_id, fundraiser_id) index on a duplicate insert.
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	if pqErr, ok := err.(*pq.Error); ok {
		return pqErr.Code == uniqueViolation
	}
	return false
}

// RecordCheckout inserts one purchase row per cart line and marks the
// checkout session recorded, all in a single transaction. Re-recording a
// reference that already has rows returns the existing rows unchanged.
func (r *PurchaseRepository) RecordCheckout(sessionID string, purchases []*models.TicketPurchase) ([]*models.TicketPurchase, error) {
	if len(purchases) == 0 {
		return nil, models.ErrEmptyCart
	}

	for _, purchase := range purchases {
		if err := purchase.Validate(); err != nil {
			return nil, fmt.Errorf("validation failed: %w", err)
		}
	}

	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO ticket_purchases (fundraiser_id, student_id, customer_name, customer_email, customer_phone, quantity, amount, payment_intent_id, payment_status, payment_method, student_email, ticket_info, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at`

	now := time.Now()
	recorded := make([]*models.TicketPurchase, 0, len(purchases))
	for _, purchase := range purchases {
		row := *purchase
		err = tx.QueryRow(
			query,
			row.FundraiserID,
			row.StudentID,
			row.CustomerName,
			row.CustomerEmail,
			nullableString(row.CustomerPhone),
			row.Quantity,
			row.Amount,
			row.PaymentIntentID,
			row.PaymentStatus,
			row.PaymentMethod,
			nullableString(row.StudentEmail),
			nullableString(row.TicketInfo),
			now,
		).Scan(&row.ID, &row.CreatedAt)

		if err != nil {
			if isUniqueViolation(err) {
				// Either an earlier verification of the same reference
				// already committed these rows, or this checkout carries
				// two lines for one fundraiser. Only the first case may
				// report success.
				tx.Rollback()
				existing, getErr := r.GetByReference(purchases[0].PaymentIntentID)
				if getErr != nil {
					return nil, getErr
				}
				if len(existing) > 0 {
					return existing, nil
				}
				return nil, fmt.Errorf("%w: fundraiser %d appears more than once in checkout %s",
					models.ErrDuplicateEntry, row.FundraiserID, row.PaymentIntentID)
			}
			return nil, fmt.Errorf("failed to record ticket purchase: %w", err)
		}

		recorded = append(recorded, &row)
	}

	if sessionID != "" {
		_, err = tx.Exec(`
			UPDATE pending_orders
			SET status = $2, updated_at = $3
			WHERE session_id = $1 AND status = $4`,
			sessionID, models.CheckoutRecorded, now, models.CheckoutPending)
		if err != nil {
			return nil, fmt.Errorf("failed to mark checkout session recorded: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit purchase recording: %w", err)
	}

	return recorded, nil
}

// GetByReference retrieves all purchase rows sharing a payment reference
func (r *PurchaseRepository) GetByReference(paymentIntentID string) ([]*models.TicketPurchase, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM ticket_purchases
		WHERE payment_intent_id = $1
		ORDER BY id ASC`, purchaseColumns)

	rows, err := r.db.Query(query, paymentIntentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get purchases by reference: %w", err)
	}
	defer rows.Close()

	return scanPurchases(rows)
}

// ListByFundraiser retrieves purchases for a fundraiser with pagination
func (r *PurchaseRepository) ListByFundraiser(fundraiserID int, limit, offset int) ([]*models.TicketPurchase, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var total int
	err := r.db.QueryRow("SELECT COUNT(*) FROM ticket_purchases WHERE fundraiser_id = $1", fundraiserID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count purchases: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM ticket_purchases
		WHERE fundraiser_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, purchaseColumns)

	rows, err := r.db.Query(query, fundraiserID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list purchases by fundraiser: %w", err)
	}
	defer rows.Close()

	purchases, err := scanPurchases(rows)
	if err != nil {
		return nil, 0, err
	}

	return purchases, total, nil
}

// StudentSalesTotals aggregates a student's credited sales for leaderboards
type StudentSalesTotals struct {
	StudentID     int `json:"student_id" db:"student_id"`
	PurchaseCount int `json:"purchase_count" db:"purchase_count"`
	TicketCount   int `json:"ticket_count" db:"ticket_count"`
	AmountTotal   int `json:"amount_total" db:"amount_total"`
}

// ListByStudent retrieves purchases credited to a student
func (r *PurchaseRepository) ListByStudent(studentID int, limit, offset int) ([]*models.TicketPurchase, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var total int
	err := r.db.QueryRow("SELECT COUNT(*) FROM ticket_purchases WHERE student_id = $1", studentID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count purchases: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM ticket_purchases
		WHERE student_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, purchaseColumns)

	rows, err := r.db.Query(query, studentID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list purchases by student: %w", err)
	}
	defer rows.Close()

	purchases, err := scanPurchases(rows)
	if err != nil {
		return nil, 0, err
	}

	return purchases, total, nil
}

// GetStudentSalesTotals aggregates a student's credited sales
func (r *PurchaseRepository) GetStudentSalesTotals(studentID int) (*StudentSalesTotals, error) {
	query := `
		SELECT
			COUNT(*) AS purchase_count,
			COALESCE(SUM(quantity), 0) AS ticket_count,
			COALESCE(SUM(amount), 0) AS amount_total
		FROM ticket_purchases
		WHERE student_id = $1`

	totals := &StudentSalesTotals{StudentID: studentID}
	err := r.db.QueryRow(query, studentID).Scan(
		&totals.PurchaseCount,
		&totals.TicketCount,
		&totals.AmountTotal,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get student sales totals: %w", err)
	}

	return totals, nil
}

func scanPurchases(rows *sql.Rows) ([]*models.TicketPurchase, error) {
	var purchases []*models.TicketPurchase
	for rows.Next() {
		purchase := &models.TicketPurchase{}
		var phone, studentEmail, ticketInfo sql.NullString

		err := rows.Scan(
			&purchase.ID,
			&purchase.FundraiserID,
			&purchase.StudentID,
			&purchase.CustomerName,
			&purchase.CustomerEmail,
			&phone,
			&purchase.Quantity,
			&purchase.Amount,
			&purchase.PaymentIntentID,
			&purchase.PaymentStatus,
			&purchase.PaymentMethod,
			&studentEmail,
			&ticketInfo,
			&purchase.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket purchase: %w", err)
		}

		purchase.CustomerPhone = phone.String
		purchase.StudentEmail = studentEmail.String
		purchase.TicketInfo = ticketInfo.String
		purchases = append(purchases, purchase)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ticket purchases: %w", err)
	}

	return purchases, nil
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
