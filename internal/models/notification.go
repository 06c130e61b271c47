package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType identifies the domain event behind a notification.
type NotificationType string

const (
	NotificationNewOrder      NotificationType = "new_order"
	NotificationStatusChange  NotificationType = "order_status_change"
	NotificationOrderOvertime NotificationType = "order_overtime"
	NotificationCapacityAlert NotificationType = "capacity_alert"
	NotificationEmergency     NotificationType = "emergency"
	NotificationSystem        NotificationType = "system"
)

// NotificationPriority orders notifications for display.
type NotificationPriority string

const (
	PriorityLow       NotificationPriority = "low"
	PriorityNormal    NotificationPriority = "normal"
	PriorityHigh      NotificationPriority = "high"
	PriorityEmergency NotificationPriority = "emergency"
)

// ExpiryFor returns how long a notification of the given type stays relevant.
// Emergency notifications never expire.
func ExpiryFor(t NotificationType) (time.Duration, bool) {
	switch t {
	case NotificationNewOrder:
		return 2 * time.Hour, true
	case NotificationStatusChange:
		return 4 * time.Hour, true
	case NotificationOrderOvertime, NotificationCapacityAlert:
		return time.Hour, true
	case NotificationEmergency:
		return 0, false
	default:
		return 24 * time.Hour, true
	}
}

// DefaultPriorityFor returns the priority a notification type carries unless
// the sender overrides it.
func DefaultPriorityFor(t NotificationType) NotificationPriority {
	switch t {
	case NotificationNewOrder, NotificationOrderOvertime, NotificationCapacityAlert:
		return PriorityHigh
	case NotificationEmergency:
		return PriorityEmergency
	default:
		return PriorityNormal
	}
}

// Notification is one message for one recipient. Broadcasts create one row
// per eligible recipient so read state and expiry stay per-recipient.
type Notification struct {
	ID               uuid.UUID            `db:"id" json:"id"`
	RecipientStaffID uuid.UUID            `db:"recipient_staff_id" json:"recipient_staff_id"`
	SenderStaffID    *uuid.UUID           `db:"sender_staff_id" json:"sender_staff_id"`
	Type             NotificationType     `db:"type" json:"type"`
	Priority         NotificationPriority `db:"priority" json:"priority"`
	Title            string               `db:"title" json:"title"`
	Message          string               `db:"message" json:"message"`
	RelatedOrderID   *uuid.UUID           `db:"related_order_id" json:"related_order_id"`
	IsRead           bool                 `db:"is_read" json:"is_read"`
	SentAt           time.Time            `db:"sent_at" json:"sent_at"`
	ReadAt           *time.Time           `db:"read_at" json:"read_at"`
	ExpiresAt        *time.Time           `db:"expires_at" json:"expires_at"`
	ActionURL        *string              `db:"action_url" json:"action_url"`
}

// IsExpired reports whether the notification is past its expiry.
func (n *Notification) IsExpired(now time.Time) bool {
	return n.ExpiresAt != nil && now.After(*n.ExpiresAt)
}
