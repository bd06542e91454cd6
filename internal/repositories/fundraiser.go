package repositories

import (
	"database/sql"
	"fmt"

	"school-fundraiser-platform/internal/models"
)

// FundraiserRepository handles fundraiser data operations
type FundraiserRepository struct {
	db *sql.DB
}

// NewFundraiserRepository creates a new fundraiser repository
func NewFundraiserRepository(db *sql.DB) *FundraiserRepository {
	return &FundraiserRepository{db: db}
}

const fundraiserColumns = `id, school_id, title, description, ticket_price, status, event_date, created_at, updated_at`

func scanFundraiser(row *sql.Row) (*models.Fundraiser, error) {
	fundraiser := &models.Fundraiser{}
	err := row.Scan(
		&fundraiser.ID,
		&fundraiser.SchoolID,
		&fundraiser.Title,
		&fundraiser.Description,
		&fundraiser.TicketPrice,
		&fundraiser.Status,
		&fundraiser.EventDate,
		&fundraiser.CreatedAt,
		&fundraiser.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return fundraiser, nil
}

// GetByID retrieves a fundraiser by ID
func (r *FundraiserRepository) GetByID(id int) (*models.Fundraiser, error) {
	query := fmt.Sprintf(`SELECT %s FROM fundraisers WHERE id = $1`, fundraiserColumns)

	fundraiser, err := scanFundraiser(r.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrFundraiserNotFound
		}
		return nil, fmt.Errorf("failed to get fundraiser: %w", err)
	}

	return fundraiser, nil
}

// ListActive retrieves fundraisers currently selling tickets
func (r *FundraiserRepository) ListActive(limit, offset int) ([]*models.Fundraiser, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM fundraisers
		WHERE status = $1
		ORDER BY event_date ASC
		LIMIT $2 OFFSET $3`, fundraiserColumns)

	rows, err := r.db.Query(query, models.FundraiserActive, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list active fundraisers: %w", err)
	}
	defer rows.Close()

	var fundraisers []*models.Fundraiser
	for rows.Next() {
		fundraiser := &models.Fundraiser{}
		err := rows.Scan(
			&fundraiser.ID,
			&fundraiser.SchoolID,
			&fundraiser.Title,
			&fundraiser.Description,
			&fundraiser.TicketPrice,
			&fundraiser.Status,
			&fundraiser.EventDate,
			&fundraiser.CreatedAt,
			&fundraiser.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fundraiser: %w", err)
		}
		fundraisers = append(fundraisers, fundraiser)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fundraisers: %w", err)
	}

	return fundraisers, nil
}
