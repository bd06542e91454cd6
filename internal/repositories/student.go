package repositories

import (
	"database/sql"
	"fmt"

	"school-fundraiser-platform/internal/models"
)

// StudentRepository handles student data operations
type StudentRepository struct {
	db *sql.DB
}

// NewStudentRepository creates a new student repository
func NewStudentRepository(db *sql.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

const studentColumns = `id, user_id, school_id, first_name, last_name, email, created_at, updated_at`

func scanStudent(row *sql.Row) (*models.Student, error) {
	student := &models.Student{}
	err := row.Scan(
		&student.ID,
		&student.UserID,
		&student.SchoolID,
		&student.FirstName,
		&student.LastName,
		&student.Email,
		&student.CreatedAt,
		&student.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return student, nil
}

// GetByID retrieves a student by ID
func (r *StudentRepository) GetByID(id int) (*models.Student, error) {
	query := fmt.Sprintf(`SELECT %s FROM students WHERE id = $1`, studentColumns)

	student, err := scanStudent(r.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrStudentNotFound
		}
		return nil, fmt.Errorf("failed to get student: %w", err)
	}

	return student, nil
}

// GetByUserID retrieves the student linked to an authenticated user
func (r *StudentRepository) GetByUserID(userID int) (*models.Student, error) {
	query := fmt.Sprintf(`SELECT %s FROM students WHERE user_id = $1`, studentColumns)

	student, err := scanStudent(r.db.QueryRow(query, userID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrStudentNotFound
		}
		return nil, fmt.Errorf("failed to get student by user: %w", err)
	}

	return student, nil
}
