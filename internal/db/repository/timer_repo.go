package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jaujye/ranbow-restaurant-order-app-sub001/internal/models"
	"github.com/jmoiron/sqlx"
)

const timerColumns = `id, order_id, staff_id, workstation_id, start_time, pause_time, resume_time,
	       end_time, estimated_end_time, estimated_duration_seconds, actual_duration_seconds,
	       paused_duration_seconds, status, stage, alerts_sent, notes, temperature_target,
	       quality_score, version, created_at, updated_at`

// TimerRepository handles cooking timer data access
type TimerRepository struct {
	db *sqlx.DB
}

// NewTimerRepository creates a new timer repository
func NewTimerRepository(db *sqlx.DB) *TimerRepository {
	return &TimerRepository{db: db}
}

// Create inserts a new cooking timer
func (r *TimerRepository) Create(ctx context.Context, timer models.CookingTimer) (*models.CookingTimer, error) {
	query := `
		INSERT INTO cooking_timers
		(order_id, staff_id, workstation_id, estimated_duration_seconds, status, stage, notes,
		 temperature_target)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + timerColumns

	var created models.CookingTimer
	err := r.db.GetContext(
		ctx,
		&created,
		query,
		timer.OrderID,
		timer.StaffID,
		timer.WorkstationID,
		timer.EstimatedDurationSeconds,
		timer.Status,
		timer.Stage,
		timer.Notes,
		timer.TemperatureTarget,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create cooking timer: %w", err)
	}

	return &created, nil
}

// GetByID retrieves a timer by ID
func (r *TimerRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.CookingTimer, error) {
	query := `SELECT ` + timerColumns + ` FROM cooking_timers WHERE id = $1`

	var timer models.CookingTimer
	err := r.db.GetContext(ctx, &timer, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get cooking timer: %w", err)
	}

	return &timer, nil
}

// GetActiveByOrderID retrieves the one non-terminal timer for an order
func (r *TimerRepository) GetActiveByOrderID(ctx context.Context, orderID uuid.UUID) (*models.CookingTimer, error) {
	query := `
		SELECT ` + timerColumns + `
		FROM cooking_timers
		WHERE order_id = $1 AND status NOT IN ($2, $3)
		ORDER BY created_at DESC
		LIMIT 1
	`

	var timer models.CookingTimer
	err := r.db.GetContext(ctx, &timer, query, orderID, models.CookingStatusCompleted, models.CookingStatusCancelled)
	if err != nil {
		return nil, fmt.Errorf("failed to get active timer for order: %w", err)
	}

	return &timer, nil
}

// UpdateVersioned persists a timer only if the caller holds the latest
// version, bumping the version on success. Returns the number of rows
// affected; 0 means the version was stale or the timer is gone.
func (r *TimerRepository) UpdateVersioned(ctx context.Context, timer models.CookingTimer) (int64, error) {
	query := `
		UPDATE cooking_timers
		SET staff_id = $1, workstation_id = $2, start_time = $3, pause_time = $4, resume_time = $5,
		    end_time = $6, estimated_end_time = $7, estimated_duration_seconds = $8,
		    actual_duration_seconds = $9, paused_duration_seconds = $10, status = $11, stage = $12,
		    alerts_sent = $13, notes = $14, temperature_target = $15, quality_score = $16,
		    version = version + 1, updated_at = $17
		WHERE id = $18 AND version = $19
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		timer.StaffID,
		timer.WorkstationID,
		timer.StartTime,
		timer.PauseTime,
		timer.ResumeTime,
		timer.EndTime,
		timer.EstimatedEndTime,
		timer.EstimatedDurationSeconds,
		timer.ActualDurationSeconds,
		timer.PausedDurationSeconds,
		timer.Status,
		timer.Stage,
		timer.AlertsSent,
		timer.Notes,
		timer.TemperatureTarget,
		timer.QualityScore,
		time.Now(),
		timer.ID,
		timer.Version,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to update cooking timer: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}

// ListByWorkstation retrieves non-terminal timers bound to a workstation
func (r *TimerRepository) ListByWorkstation(ctx context.Context, workstationID uuid.UUID) ([]models.CookingTimer, error) {
	query := `
		SELECT ` + timerColumns + `
		FROM cooking_timers
		WHERE workstation_id = $1 AND status NOT IN ($2, $3)
		ORDER BY created_at ASC
	`

	var timers []models.CookingTimer
	err := r.db.SelectContext(ctx, &timers, query, workstationID, models.CookingStatusCompleted, models.CookingStatusCancelled)
	if err != nil {
		return nil, fmt.Errorf("failed to list workstation timers: %w", err)
	}

	return timers, nil
}

// ListRunning retrieves all timers that are currently running or already
// flagged overdue
func (r *TimerRepository) ListRunning(ctx context.Context) ([]models.CookingTimer, error) {
	query := `
		SELECT ` + timerColumns + `
		FROM cooking_timers
		WHERE status IN ($1, $2)
		ORDER BY estimated_end_time ASC NULLS LAST
	`

	var timers []models.CookingTimer
	err := r.db.SelectContext(ctx, &timers, query, models.CookingStatusRunning, models.CookingStatusOverdue)
	if err != nil {
		return nil, fmt.Errorf("failed to list running timers: %w", err)
	}

	return timers, nil
}
