package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jaujye/ranbow-restaurant-order-app-sub001/internal/models"
	"github.com/jmoiron/sqlx"
)

// WorkstationRepository handles workstation data access
type WorkstationRepository struct {
	db *sqlx.DB
}

// NewWorkstationRepository creates a new workstation repository
func NewWorkstationRepository(db *sqlx.DB) *WorkstationRepository {
	return &WorkstationRepository{db: db}
}

// GetByID retrieves a workstation by ID
func (r *WorkstationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Workstation, error) {
	query := `
		SELECT id, name, type, max_capacity, description, is_active, created_at, updated_at
		FROM workstations
		WHERE id = $1
	`

	var station models.Workstation
	err := r.db.GetContext(ctx, &station, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get workstation: %w", err)
	}

	return &station, nil
}

// List retrieves all active workstations
func (r *WorkstationRepository) List(ctx context.Context) ([]models.Workstation, error) {
	query := `
		SELECT id, name, type, max_capacity, description, is_active, created_at, updated_at
		FROM workstations
		WHERE is_active = true
		ORDER BY name ASC
	`

	var stations []models.Workstation
	err := r.db.SelectContext(ctx, &stations, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list workstations: %w", err)
	}

	return stations, nil
}

// Create creates a new workstation
func (r *WorkstationRepository) Create(ctx context.Context, station models.Workstation) (*models.Workstation, error) {
	query := `
		INSERT INTO workstations (name, type, max_capacity, description, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, name, type, max_capacity, description, is_active, created_at, updated_at
	`

	var created models.Workstation
	err := r.db.GetContext(
		ctx,
		&created,
		query,
		station.Name,
		station.Type,
		station.MaxCapacity,
		station.Description,
		station.IsActive,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create workstation: %w", err)
	}

	return &created, nil
}

// Update updates a workstation
func (r *WorkstationRepository) Update(ctx context.Context, station models.Workstation) error {
	query := `
		UPDATE workstations
		SET name = $1, type = $2, max_capacity = $3, description = $4, is_active = $5, updated_at = $6
		WHERE id = $7
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		station.Name,
		station.Type,
		station.MaxCapacity,
		station.Description,
		station.IsActive,
		time.Now(),
		station.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update workstation: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("workstation %s: %w", station.ID, ErrNoRows)
	}

	return nil
}
