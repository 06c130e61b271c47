package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jaujye/ranbow-restaurant-order-app-sub001/internal/models"
	"github.com/jmoiron/sqlx"
)

const kitchenOrderColumns = `id, order_id, assigned_staff_id, start_time, estimated_completion_time,
	       actual_completion_time, estimated_cooking_minutes, actual_cooking_minutes, overtime,
	       priority, status, notes, version, created_at, updated_at`

// KitchenOrderRepository handles kitchen order data access
type KitchenOrderRepository struct {
	db *sqlx.DB
}

// NewKitchenOrderRepository creates a new kitchen order repository
func NewKitchenOrderRepository(db *sqlx.DB) *KitchenOrderRepository {
	return &KitchenOrderRepository{db: db}
}

// Create inserts a new kitchen order
func (r *KitchenOrderRepository) Create(ctx context.Context, order models.KitchenOrder) (*models.KitchenOrder, error) {
	query := `
		INSERT INTO kitchen_orders
		(order_id, assigned_staff_id, start_time, estimated_completion_time, estimated_cooking_minutes,
		 priority, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + kitchenOrderColumns

	var created models.KitchenOrder
	err := r.db.GetContext(
		ctx,
		&created,
		query,
		order.OrderID,
		order.AssignedStaffID,
		order.StartTime,
		order.EstimatedCompletionTime,
		order.EstimatedCookingMinutes,
		order.Priority,
		order.Status,
		order.Notes,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kitchen order: %w", err)
	}

	return &created, nil
}

// GetByID retrieves a kitchen order by its own ID
func (r *KitchenOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.KitchenOrder, error) {
	query := `SELECT ` + kitchenOrderColumns + ` FROM kitchen_orders WHERE id = $1`

	var order models.KitchenOrder
	err := r.db.GetContext(ctx, &order, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get kitchen order: %w", err)
	}

	return &order, nil
}

// GetByOrderID retrieves the kitchen order tracking a customer order
func (r *KitchenOrderRepository) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*models.KitchenOrder, error) {
	query := `SELECT ` + kitchenOrderColumns + ` FROM kitchen_orders WHERE order_id = $1`

	var order models.KitchenOrder
	err := r.db.GetContext(ctx, &order, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get kitchen order by order ID: %w", err)
	}

	return &order, nil
}

// UpdateVersioned persists a kitchen order only if the caller holds the
// latest version, bumping the version on success. Returns the number of
// rows affected; 0 means the version was stale or the order is gone.
func (r *KitchenOrderRepository) UpdateVersioned(ctx context.Context, order models.KitchenOrder) (int64, error) {
	query := `
		UPDATE kitchen_orders
		SET assigned_staff_id = $1, start_time = $2, estimated_completion_time = $3,
		    actual_completion_time = $4, estimated_cooking_minutes = $5, actual_cooking_minutes = $6,
		    overtime = $7, priority = $8, status = $9, notes = $10,
		    version = version + 1, updated_at = $11
		WHERE id = $12 AND version = $13
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		order.AssignedStaffID,
		order.StartTime,
		order.EstimatedCompletionTime,
		order.ActualCompletionTime,
		order.EstimatedCookingMinutes,
		order.ActualCookingMinutes,
		order.Overtime,
		order.Priority,
		order.Status,
		order.Notes,
		time.Now(),
		order.ID,
		order.Version,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to update kitchen order: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}

// ListByStatus retrieves kitchen orders in a given status, highest priority first
func (r *KitchenOrderRepository) ListByStatus(ctx context.Context, status models.KitchenStatus) ([]models.KitchenOrder, error) {
	query := `
		SELECT ` + kitchenOrderColumns + `
		FROM kitchen_orders
		WHERE status = $1
		ORDER BY priority DESC, created_at ASC
		LIMIT 200
	`

	var orders []models.KitchenOrder
	err := r.db.SelectContext(ctx, &orders, query, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list kitchen orders by status: %w", err)
	}

	return orders, nil
}

// ListActive retrieves all orders currently being worked
func (r *KitchenOrderRepository) ListActive(ctx context.Context) ([]models.KitchenOrder, error) {
	query := `
		SELECT ` + kitchenOrderColumns + `
		FROM kitchen_orders
		WHERE status IN ($1, $2, $3, $4)
		ORDER BY priority DESC, start_time ASC
		LIMIT 200
	`

	var orders []models.KitchenOrder
	err := r.db.SelectContext(
		ctx,
		&orders,
		query,
		models.KitchenStatusPreparing,
		models.KitchenStatusCooking,
		models.KitchenStatusPlating,
		models.KitchenStatusPaused,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list active kitchen orders: %w", err)
	}

	return orders, nil
}

// ListQueue retrieves queued orders, highest priority first
func (r *KitchenOrderRepository) ListQueue(ctx context.Context) ([]models.KitchenOrder, error) {
	return r.ListByStatus(ctx, models.KitchenStatusQueued)
}

// ListOverdue retrieves non-terminal orders past their estimated completion
func (r *KitchenOrderRepository) ListOverdue(ctx context.Context, now time.Time) ([]models.KitchenOrder, error) {
	query := `
		SELECT ` + kitchenOrderColumns + `
		FROM kitchen_orders
		WHERE status IN ($1, $2, $3, $4)
		  AND estimated_completion_time IS NOT NULL
		  AND estimated_completion_time < $5
		ORDER BY estimated_completion_time ASC
		LIMIT 200
	`

	var orders []models.KitchenOrder
	err := r.db.SelectContext(
		ctx,
		&orders,
		query,
		models.KitchenStatusPreparing,
		models.KitchenStatusCooking,
		models.KitchenStatusPlating,
		models.KitchenStatusPaused,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list overdue kitchen orders: %w", err)
	}

	return orders, nil
}

// CountActive counts orders currently being worked
func (r *KitchenOrderRepository) CountActive(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM kitchen_orders WHERE status IN ($1, $2, $3, $4)`

	var count int
	err := r.db.GetContext(
		ctx,
		&count,
		query,
		models.KitchenStatusPreparing,
		models.KitchenStatusCooking,
		models.KitchenStatusPlating,
		models.KitchenStatusPaused,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to count active kitchen orders: %w", err)
	}

	return count, nil
}

// CountQueued counts orders waiting to be started
func (r *KitchenOrderRepository) CountQueued(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM kitchen_orders WHERE status = $1`

	var count int
	err := r.db.GetContext(ctx, &count, query, models.KitchenStatusQueued)
	if err != nil {
		return 0, fmt.Errorf("failed to count queued kitchen orders: %w", err)
	}

	return count, nil
}
