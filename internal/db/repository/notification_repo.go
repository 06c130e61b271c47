package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jaujye/ranbow-restaurant-order-app-sub001/internal/models"
	"github.com/jmoiron/sqlx"
)

const notificationColumns = `id, recipient_staff_id, sender_staff_id, type, priority, title, message,
	       related_order_id, is_read, sent_at, read_at, expires_at, action_url`

// NotificationRepository handles notification data access
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create inserts a notification for one recipient
func (r *NotificationRepository) Create(ctx context.Context, n models.Notification) (*models.Notification, error) {
	query := `
		INSERT INTO notifications
		(recipient_staff_id, sender_staff_id, type, priority, title, message, related_order_id,
		 sent_at, expires_at, action_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + notificationColumns

	var created models.Notification
	err := r.db.GetContext(
		ctx,
		&created,
		query,
		n.RecipientStaffID,
		n.SenderStaffID,
		n.Type,
		n.Priority,
		n.Title,
		n.Message,
		n.RelatedOrderID,
		n.SentAt,
		n.ExpiresAt,
		n.ActionURL,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	return &created, nil
}

// ListByStaff retrieves a staff member's notifications, newest first
func (r *NotificationRepository) ListByStaff(ctx context.Context, staffID uuid.UUID, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	query := `
		SELECT ` + notificationColumns + `
		FROM notifications
		WHERE recipient_staff_id = $1
		ORDER BY sent_at DESC
		LIMIT $2
	`

	var notifications []models.Notification
	err := r.db.SelectContext(ctx, &notifications, query, staffID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	return notifications, nil
}

// ListUnreadByStaff retrieves unread, unexpired notifications for a staff member
func (r *NotificationRepository) ListUnreadByStaff(ctx context.Context, staffID uuid.UUID, now time.Time) ([]models.Notification, error) {
	query := `
		SELECT ` + notificationColumns + `
		FROM notifications
		WHERE recipient_staff_id = $1
		  AND is_read = false
		  AND (expires_at IS NULL OR expires_at > $2)
		ORDER BY sent_at DESC
	`

	var notifications []models.Notification
	err := r.db.SelectContext(ctx, &notifications, query, staffID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list unread notifications: %w", err)
	}

	return notifications, nil
}

// MarkRead marks one notification read for its recipient
func (r *NotificationRepository) MarkRead(ctx context.Context, id, staffID uuid.UUID, readAt time.Time) error {
	query := `
		UPDATE notifications
		SET is_read = true, read_at = $1
		WHERE id = $2 AND recipient_staff_id = $3 AND is_read = false
	`

	result, err := r.db.ExecContext(ctx, query, readAt, id, staffID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("notification %s: %w", id, ErrNoRows)
	}

	return nil
}

// MarkAllRead marks every unread notification read for a staff member in one
// statement, returning how many were affected
func (r *NotificationRepository) MarkAllRead(ctx context.Context, staffID uuid.UUID, readAt time.Time) (int64, error) {
	query := `
		UPDATE notifications
		SET is_read = true, read_at = $1
		WHERE recipient_staff_id = $2 AND is_read = false
	`

	result, err := r.db.ExecContext(ctx, query, readAt, staffID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark all notifications read: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}

// CountUnread counts unread, unexpired notifications for a staff member
func (r *NotificationRepository) CountUnread(ctx context.Context, staffID uuid.UUID, now time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM notifications
		WHERE recipient_staff_id = $1
		  AND is_read = false
		  AND (expires_at IS NULL OR expires_at > $2)
	`

	var count int
	err := r.db.GetContext(ctx, &count, query, staffID, now)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	return count, nil
}

// DeleteExpired removes notifications past their expiry
func (r *NotificationRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(
		ctx,
		`DELETE FROM notifications WHERE expires_at IS NOT NULL AND expires_at < $1`,
		now,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired notifications: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}

// DeleteOldRead removes read notifications older than the cutoff
func (r *NotificationRepository) DeleteOldRead(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.db.ExecContext(
		ctx,
		`DELETE FROM notifications WHERE is_read = true AND read_at IS NOT NULL AND read_at < $1`,
		before,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old read notifications: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}
