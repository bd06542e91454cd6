package repositories

import (
	"testing"
	"time"

	"school-fundraiser-platform/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func purchaseFixture(fundraiserID int, studentID *int, quantity, amount int) *models.TicketPurchase {
	return &models.TicketPurchase{
		FundraiserID:    fundraiserID,
		StudentID:       studentID,
		CustomerName:    "Jo Doe",
		CustomerEmail:   "jo@example.com",
		Quantity:        quantity,
		Amount:          amount,
		PaymentIntentID: "pi_test_123",
		PaymentStatus:   models.PaymentStatusCompleted,
		PaymentMethod:   models.PaymentMethodCard,
	}
}

func TestPurchaseRepository_RecordCheckout(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPurchaseRepository(db)
	studentID := 7

	purchases := []*models.TicketPurchase{
		purchaseFixture(1, nil, 2, 2000),
		purchaseFixture(2, &studentID, 1, 1000),
	}

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO ticket_purchases").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(10, now))
	mock.ExpectQuery("INSERT INTO ticket_purchases").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(11, now))
	mock.ExpectExec("UPDATE pending_orders").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	recorded, err := repo.RecordCheckout("sess-1", purchases)
	require.NoError(t, err)
	require.Len(t, recorded, 2)

	assert.Equal(t, 10, recorded[0].ID)
	assert.Equal(t, 11, recorded[1].ID)
	assert.Equal(t, 1, recorded[0].FundraiserID)
	assert.Nil(t, recorded[0].StudentID)
	require.NotNil(t, recorded[1].StudentID)
	assert.Equal(t, 7, *recorded[1].StudentID)
	assert.Equal(t, "pi_test_123", recorded[0].PaymentIntentID)
	assert.Equal(t, "pi_test_123", recorded[1].PaymentIntentID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPurchaseRepository_RecordCheckout_DuplicateReturnsExisting(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPurchaseRepository(db)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO ticket_purchases").
		WillReturnError(&pq.Error{Code: uniqueViolation})
	mock.ExpectRollback()

	// Repository falls back to returning the already-recorded rows
	existing := sqlmock.NewRows([]string{
		"id", "fundraiser_id", "student_id", "customer_name", "customer_email",
		"customer_phone", "quantity", "amount", "payment_intent_id",
		"payment_status", "payment_method", "student_email", "ticket_info", "created_at",
	}).AddRow(10, 1, nil, "Jo Doe", "jo@example.com", nil, 2, 2000, "pi_test_123", "completed", "card", nil, nil, now)
	mock.ExpectQuery("SELECT (.+) FROM ticket_purchases").
		WithArgs("pi_test_123").
		WillReturnRows(existing)

	recorded, err := repo.RecordCheckout("sess-1", []*models.TicketPurchase{purchaseFixture(1, nil, 2, 2000)})
	require.NoError(t, err)
	require.Len(t, recorded, 1)
	assert.Equal(t, 10, recorded[0].ID)
	assert.Equal(t, 2, recorded[0].Quantity)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPurchaseRepository_RecordCheckout_DuplicateFundraiserIsHardError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPurchaseRepository(db)
	studentID := 7

	// Two lines for the same fundraiser conflict on the
	// (payment_intent_id, fundraiser_id) index within this transaction.
	// Nothing was ever committed, so success must not be reported.
	purchases := []*models.TicketPurchase{
		purchaseFixture(1, nil, 2, 2000),
		purchaseFixture(1, &studentID, 1, 1000),
	}

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO ticket_purchases").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(10, time.Now()))
	mock.ExpectQuery("INSERT INTO ticket_purchases").
		WillReturnError(&pq.Error{Code: uniqueViolation})
	mock.ExpectRollback()

	empty := sqlmock.NewRows([]string{
		"id", "fundraiser_id", "student_id", "customer_name", "customer_email",
		"customer_phone", "quantity", "amount", "payment_intent_id",
		"payment_status", "payment_method", "student_email", "ticket_info", "created_at",
	})
	mock.ExpectQuery("SELECT (.+) FROM ticket_purchases").
		WithArgs("pi_test_123").
		WillReturnRows(empty)

	recorded, err := repo.RecordCheckout("sess-1", purchases)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrDuplicateEntry)
	assert.Empty(t, recorded)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPurchaseRepository_RecordCheckout_ValidatesBeforeWrite(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPurchaseRepository(db)

	bad := purchaseFixture(1, nil, 0, 0) // zero quantity
	_, err = repo.RecordCheckout("sess-1", []*models.TicketPurchase{bad})
	assert.Error(t, err)

	_, err = repo.RecordCheckout("sess-1", nil)
	assert.ErrorIs(t, err, models.ErrEmptyCart)

	// No SQL should have been issued
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPurchaseRepository_GetStudentSalesTotals(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPurchaseRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM ticket_purchases").
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"purchase_count", "ticket_count", "amount_total"}).AddRow(3, 5, 5000))

	totals, err := repo.GetStudentSalesTotals(7)
	require.NoError(t, err)
	assert.Equal(t, 7, totals.StudentID)
	assert.Equal(t, 3, totals.PurchaseCount)
	assert.Equal(t, 5, totals.TicketCount)
	assert.Equal(t, 5000, totals.AmountTotal)

	assert.NoError(t, mock.ExpectationsWereMet())
}
