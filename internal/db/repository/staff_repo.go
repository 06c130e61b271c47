package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jaujye/ranbow-restaurant-order-app-sub001/internal/models"
	"github.com/jmoiron/sqlx"
)

const staffColumns = `id, username, name, role, department, is_on_duty, password_hash, created_at, updated_at`

// StaffRepository handles staff data access
type StaffRepository struct {
	db *sqlx.DB
}

// NewStaffRepository creates a new staff repository
func NewStaffRepository(db *sqlx.DB) *StaffRepository {
	return &StaffRepository{db: db}
}

// GetByID retrieves a staff member by ID
func (r *StaffRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Staff, error) {
	query := `SELECT ` + staffColumns + ` FROM staff WHERE id = $1`

	var staff models.Staff
	err := r.db.GetContext(ctx, &staff, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get staff member: %w", err)
	}

	return &staff, nil
}

// GetByUsername retrieves a staff member by username
func (r *StaffRepository) GetByUsername(ctx context.Context, username string) (*models.Staff, error) {
	query := `SELECT ` + staffColumns + ` FROM staff WHERE username = $1`

	var staff models.Staff
	err := r.db.GetContext(ctx, &staff, query, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get staff member by username: %w", err)
	}

	return &staff, nil
}

// ListOnDuty retrieves all staff currently on duty
func (r *StaffRepository) ListOnDuty(ctx context.Context) ([]models.Staff, error) {
	query := `SELECT ` + staffColumns + ` FROM staff WHERE is_on_duty = true ORDER BY name ASC`

	var staff []models.Staff
	err := r.db.SelectContext(ctx, &staff, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list on-duty staff: %w", err)
	}

	return staff, nil
}

// ListOnDutyByDepartment retrieves on-duty staff in one department
func (r *StaffRepository) ListOnDutyByDepartment(ctx context.Context, dept models.Department) ([]models.Staff, error) {
	query := `
		SELECT ` + staffColumns + `
		FROM staff
		WHERE is_on_duty = true AND department = $1
		ORDER BY name ASC
	`

	var staff []models.Staff
	err := r.db.SelectContext(ctx, &staff, query, dept)
	if err != nil {
		return nil, fmt.Errorf("failed to list on-duty staff by department: %w", err)
	}

	return staff, nil
}

// SetOnDuty updates a staff member's duty flag
func (r *StaffRepository) SetOnDuty(ctx context.Context, id uuid.UUID, onDuty bool) error {
	result, err := r.db.ExecContext(
		ctx,
		`UPDATE staff SET is_on_duty = $1, updated_at = $2 WHERE id = $3`,
		onDuty,
		time.Now(),
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to update duty status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("staff %s: %w", id, ErrNoRows)
	}

	return nil
}
