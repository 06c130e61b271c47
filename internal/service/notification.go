package service

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/jaujye/ranbow-restaurant-order-app-sub001/internal/clock"
	"github.com/jaujye/ranbow-restaurant-order-app-sub001/internal/models"
)

// readRetentionDays is how long read notifications are kept before cleanup.
const readRetentionDays = 30

// Pusher delivers a persisted notification to a connected client.
// Delivery is best-effort; the websocket hub implements it.
type Pusher interface {
	PushNotification(staffID uuid.UUID, n *models.Notification)
}

// NotificationService converts domain events into prioritized, expiring
// messages and fans them out to staff.
type NotificationService struct {
	stores *Stores
	clock  clock.Clock
	pusher Pusher
}

// NewNotificationService creates a new notification service. pusher may be
// nil when no realtime sink is attached.
func NewNotificationService(stores *Stores, clk clock.Clock, pusher Pusher) *NotificationService {
	return &NotificationService{
		stores: stores,
		clock:  clk,
		pusher: pusher,
	}
}

// Event describes one domain event to notify staff about. Priority is
// optional; when empty the type's default priority applies.
type Event struct {
	Type           models.NotificationType
	Priority       models.NotificationPriority
	Title          string
	Message        string
	SenderStaffID  *uuid.UUID
	RelatedOrderID *uuid.UUID
	ActionURL      *string
}

// build stamps an event into a notification for one recipient, applying the
// type's priority and expiry policy. Emergency notifications never expire.
func (s *NotificationService) build(event Event, recipientID uuid.UUID) models.Notification {
	now := s.clock.Now()

	priority := event.Priority
	if priority == "" {
		priority = models.DefaultPriorityFor(event.Type)
	}

	n := models.Notification{
		RecipientStaffID: recipientID,
		SenderStaffID:    event.SenderStaffID,
		Type:             event.Type,
		Priority:         priority,
		Title:            event.Title,
		Message:          event.Message,
		RelatedOrderID:   event.RelatedOrderID,
		SentAt:           now,
		ActionURL:        event.ActionURL,
	}

	if ttl, expires := models.ExpiryFor(event.Type); expires {
		expiresAt := now.Add(ttl)
		n.ExpiresAt = &expiresAt
	}

	return n
}

// Send creates and delivers a notification to a single recipient.
func (s *NotificationService) Send(ctx context.Context, event Event, recipientID uuid.UUID) (*models.Notification, error) {
	created, err := s.stores.Notifications.Create(ctx, s.build(event, recipientID))
	if err != nil {
		return nil, fmt.Errorf("failed to send notification: %w", err)
	}

	s.push(recipientID, created)

	return created, nil
}

// BroadcastToDepartment fans out one notification per on-duty staff member
// in a department. A failed delivery to one recipient never blocks the
// others; all failures are collected and returned together.
func (s *NotificationService) BroadcastToDepartment(ctx context.Context, dept models.Department, event Event) (int, error) {
	recipients, err := s.stores.Staff.ListOnDutyByDepartment(ctx, dept)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve department recipients: %w", err)
	}

	return s.fanOut(ctx, event, recipients)
}

// BroadcastToOnDutyStaff fans out one notification per on-duty staff member.
func (s *NotificationService) BroadcastToOnDutyStaff(ctx context.Context, event Event) (int, error) {
	recipients, err := s.stores.Staff.ListOnDuty(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve on-duty recipients: %w", err)
	}

	return s.fanOut(ctx, event, recipients)
}

func (s *NotificationService) fanOut(ctx context.Context, event Event, recipients []models.Staff) (int, error) {
	var errs *multierror.Error
	delivered := 0

	for _, staff := range recipients {
		created, err := s.stores.Notifications.Create(ctx, s.build(event, staff.ID))
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("recipient %s: %w", staff.ID, err))
			continue
		}
		delivered++
		s.push(staff.ID, created)
	}

	return delivered, errs.ErrorOrNil()
}

func (s *NotificationService) push(staffID uuid.UUID, n *models.Notification) {
	if s.pusher != nil {
		s.pusher.PushNotification(staffID, n)
	}
}

// ListByStaff retrieves a staff member's notifications, newest first.
func (s *NotificationService) ListByStaff(ctx context.Context, staffID uuid.UUID, limit int) ([]models.Notification, error) {
	return s.stores.Notifications.ListByStaff(ctx, staffID, limit)
}

// ListUnread retrieves unread, unexpired notifications for a staff member.
func (s *NotificationService) ListUnread(ctx context.Context, staffID uuid.UUID) ([]models.Notification, error) {
	return s.stores.Notifications.ListUnreadByStaff(ctx, staffID, s.clock.Now())
}

// CountUnread counts unread, unexpired notifications for a staff member.
func (s *NotificationService) CountUnread(ctx context.Context, staffID uuid.UUID) (int, error) {
	return s.stores.Notifications.CountUnread(ctx, staffID, s.clock.Now())
}

// MarkRead marks one notification read for its recipient.
func (s *NotificationService) MarkRead(ctx context.Context, id, staffID uuid.UUID) error {
	err := s.stores.Notifications.MarkRead(ctx, id, staffID, s.clock.Now())
	if err != nil {
		return notFoundOr(err, "notification")
	}
	return nil
}

// MarkAllRead marks every unread notification read for a staff member.
func (s *NotificationService) MarkAllRead(ctx context.Context, staffID uuid.UUID) (int64, error) {
	return s.stores.Notifications.MarkAllRead(ctx, staffID, s.clock.Now())
}

// Cleanup deletes expired notifications and read ones past retention.
// Housekeeping only; failures are reported but nothing depends on it.
func (s *NotificationService) Cleanup(ctx context.Context) (int64, error) {
	now := s.clock.Now()

	expired, err := s.stores.Notifications.DeleteExpired(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up expired notifications: %w", err)
	}

	oldRead, err := s.stores.Notifications.DeleteOldRead(ctx, now.AddDate(0, 0, -readRetentionDays))
	if err != nil {
		return expired, fmt.Errorf("failed to clean up read notifications: %w", err)
	}

	if expired+oldRead > 0 {
		log.Printf("Notification cleanup removed %d expired and %d old read notifications", expired, oldRead)
	}

	return expired + oldRead, nil
}
