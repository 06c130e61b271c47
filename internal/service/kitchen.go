package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jaujye/ranbow-restaurant-order-app-sub001/internal/clock"
	"github.com/jaujye/ranbow-restaurant-order-app-sub001/internal/metrics"
	"github.com/jaujye/ranbow-restaurant-order-app-sub001/internal/models"
)

// highPriorityBroadcastThreshold is the priority at or above which a
// priority change is announced to the whole kitchen.
const highPriorityBroadcastThreshold = 8

// overdueAlertNote marks an order whose overdue alert has already gone out,
// so the periodic sweep does not repeat it.
const overdueAlertNote = "overdue alert sent"

// KitchenService owns the coarse kitchen-order lifecycle
// (queued -> preparing/cooking/plating -> ready/served, or paused/cancelled)
// and keeps the cooking timer in step with it. Notification delivery is
// fire-and-forget: a failed broadcast never rolls back a state change.
type KitchenService struct {
	stores        *Stores
	clock         clock.Clock
	timers        *TimerService
	notifications *NotificationService
	collector     *metrics.Collector
}

// NewKitchenService creates a new kitchen service. collector may be nil when
// metrics are not wired.
func NewKitchenService(stores *Stores, clk clock.Clock, timers *TimerService, notifications *NotificationService, collector *metrics.Collector) *KitchenService {
	return &KitchenService{
		stores:        stores,
		clock:         clk,
		timers:        timers,
		notifications: notifications,
		collector:     collector,
	}
}

// AcceptOrder enqueues an accepted order for kitchen processing and
// announces it to the kitchen department.
func (s *KitchenService) AcceptOrder(ctx context.Context, req models.KitchenOrderRequest) (*models.KitchenOrder, error) {
	order := models.KitchenOrder{
		OrderID:                 req.OrderID,
		EstimatedCookingMinutes: models.EstimateCookingMinutes(req.ItemCount),
		Priority:                models.ClampPriority(req.Priority),
		Status:                  models.KitchenStatusQueued,
	}

	created, err := s.stores.KitchenOrders.Create(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("failed to accept order into kitchen: %w", err)
	}

	s.notifyKitchen(ctx, Event{
		Type:           models.NotificationNewOrder,
		Title:          "New order",
		Message:        fmt.Sprintf("Order %s entered the kitchen queue (est. %d min)", req.OrderID, created.EstimatedCookingMinutes),
		RelatedOrderID: &created.OrderID,
	})

	return created, nil
}

// StartPreparing begins cooking a queued order. If no kitchen record exists
// yet one is created on the spot with an estimate derived from the item
// count. The linked timer is created and started alongside.
func (s *KitchenService) StartPreparing(ctx context.Context, orderID, staffID uuid.UUID, itemCount int) (*models.KitchenOrder, error) {
	if _, err := s.stores.KitchenOrders.GetByOrderID(ctx, orderID); err != nil {
		if !isNoRows(err) {
			return nil, err
		}
		_, err = s.stores.KitchenOrders.Create(ctx, models.KitchenOrder{
			OrderID:                 orderID,
			EstimatedCookingMinutes: models.EstimateCookingMinutes(itemCount),
			Priority:                models.MinPriority,
			Status:                  models.KitchenStatusQueued,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create kitchen order: %w", err)
		}
	}

	order, err := s.mutate(ctx, orderID, "start preparing", func(o *models.KitchenOrder, now time.Time) error {
		if o.Status != models.KitchenStatusQueued {
			return s.invalidTransition(o, "start preparing")
		}

		estimatedCompletion := now.Add(time.Duration(o.EstimatedCookingMinutes) * time.Minute)
		o.Status = models.KitchenStatusPreparing
		o.AssignedStaffID = &staffID
		o.StartTime = &now
		o.EstimatedCompletionTime = &estimatedCompletion
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.startTimer(ctx, order, staffID)

	s.notifyKitchen(ctx, Event{
		Type:           models.NotificationStatusChange,
		Title:          "Order started",
		Message:        fmt.Sprintf("Order %s is being prepared", order.OrderID),
		SenderStaffID:  &staffID,
		RelatedOrderID: &order.OrderID,
	})

	return order, nil
}

// startTimer creates and starts the fine-grained timer for an order.
// Timer trouble is logged and swallowed; the order transition stands.
func (s *KitchenService) startTimer(ctx context.Context, order *models.KitchenOrder, staffID uuid.UUID) {
	_, err := s.timers.CreateTimer(ctx, models.TimerRequest{
		OrderID:                  order.OrderID,
		StaffID:                  &staffID,
		EstimatedDurationSeconds: int64(order.EstimatedCookingMinutes) * 60,
		Stage:                    models.StagePrep,
	})
	if err != nil {
		log.Printf("Failed to create timer for order %s: %v", order.OrderID, err)
		return
	}

	if _, err := s.timers.StartTimer(ctx, order.OrderID); err != nil {
		log.Printf("Failed to start timer for order %s: %v", order.OrderID, err)
	}
}

// Complete finishes cooking: the order becomes READY, the actual cooking
// time is fixed, and the overtime flag is set when the estimate plus buffer
// was blown.
func (s *KitchenService) Complete(ctx context.Context, orderID, staffID uuid.UUID) (*models.KitchenOrder, error) {
	order, err := s.mutate(ctx, orderID, "complete", func(o *models.KitchenOrder, now time.Time) error {
		switch o.Status {
		case models.KitchenStatusPreparing, models.KitchenStatusCooking, models.KitchenStatusPlating, models.KitchenStatusPaused:
		default:
			return s.invalidTransition(o, "complete")
		}

		actualMinutes := o.ElapsedMinutes(now)
		o.Status = models.KitchenStatusReady
		o.ActualCompletionTime = &now
		o.ActualCookingMinutes = &actualMinutes
		o.Overtime = models.IsOvertime(actualMinutes, o.EstimatedCookingMinutes)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.timers.CompleteTimer(ctx, orderID); err != nil && !isDomainError(err) {
		log.Printf("Failed to complete timer for order %s: %v", orderID, err)
	}

	s.notifyKitchen(ctx, Event{
		Type:           models.NotificationStatusChange,
		Title:          "Order ready",
		Message:        fmt.Sprintf("Order %s is ready for pickup", order.OrderID),
		SenderStaffID:  &staffID,
		RelatedOrderID: &order.OrderID,
	})

	if order.Overtime {
		s.notifyKitchen(ctx, Event{
			Type:           models.NotificationOrderOvertime,
			Title:          "Order completed late",
			Message:        fmt.Sprintf("Order %s took %d min against an estimate of %d min", order.OrderID, *order.ActualCookingMinutes, order.EstimatedCookingMinutes),
			RelatedOrderID: &order.OrderID,
		})
	}

	return order, nil
}

// Pause suspends cooking. Time accounting happens in the timer layer.
func (s *KitchenService) Pause(ctx context.Context, orderID, staffID uuid.UUID, reason string) (*models.KitchenOrder, error) {
	order, err := s.mutate(ctx, orderID, "pause", func(o *models.KitchenOrder, now time.Time) error {
		switch o.Status {
		case models.KitchenStatusPreparing, models.KitchenStatusCooking, models.KitchenStatusPlating:
		default:
			return s.invalidTransition(o, "pause")
		}

		o.Status = models.KitchenStatusPaused
		if reason != "" {
			o.Notes = o.Notes.Append(now, &staffID, "paused: "+reason)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.timers.PauseTimer(ctx, orderID, &staffID, reason); err != nil && !isDomainError(err) {
		log.Printf("Failed to pause timer for order %s: %v", orderID, err)
	}

	return order, nil
}

// Resume puts a paused order back on the fire.
func (s *KitchenService) Resume(ctx context.Context, orderID uuid.UUID) (*models.KitchenOrder, error) {
	order, err := s.mutate(ctx, orderID, "resume", func(o *models.KitchenOrder, now time.Time) error {
		if o.Status != models.KitchenStatusPaused {
			return s.invalidTransition(o, "resume")
		}

		o.Status = models.KitchenStatusCooking
		return nil
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.timers.ResumeTimer(ctx, orderID); err != nil && !isDomainError(err) {
		log.Printf("Failed to resume timer for order %s: %v", orderID, err)
	}

	return order, nil
}

// Cancel aborts any non-terminal order and raises an emergency broadcast to
// the kitchen so the line knows to stop.
func (s *KitchenService) Cancel(ctx context.Context, orderID, staffID uuid.UUID, reason string) (*models.KitchenOrder, error) {
	order, err := s.mutate(ctx, orderID, "cancel", func(o *models.KitchenOrder, now time.Time) error {
		if o.Status.IsTerminal() {
			return s.invalidTransition(o, "cancel")
		}

		o.Status = models.KitchenStatusCancelled
		if reason != "" {
			o.Notes = o.Notes.Append(now, &staffID, "cancelled: "+reason)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.timers.CancelTimer(ctx, orderID, &staffID, reason); err != nil && !isDomainError(err) {
		log.Printf("Failed to cancel timer for order %s: %v", orderID, err)
	}

	s.notifyKitchen(ctx, Event{
		Type:           models.NotificationEmergency,
		Title:          "Order cancelled",
		Message:        fmt.Sprintf("Order %s was cancelled: %s", order.OrderID, reason),
		SenderStaffID:  &staffID,
		RelatedOrderID: &order.OrderID,
	})

	return order, nil
}

// MarkServed closes the lifecycle once a ready order leaves the pass.
func (s *KitchenService) MarkServed(ctx context.Context, orderID uuid.UUID) (*models.KitchenOrder, error) {
	return s.mutate(ctx, orderID, "serve", func(o *models.KitchenOrder, now time.Time) error {
		if o.Status != models.KitchenStatusReady {
			return s.invalidTransition(o, "serve")
		}

		o.Status = models.KitchenStatusServed
		return nil
	})
}

// UpdatePriority sets an order's priority, clamped to the valid range.
// High priorities are announced to the whole kitchen.
func (s *KitchenService) UpdatePriority(ctx context.Context, orderID uuid.UUID, priority int) (*models.KitchenOrder, error) {
	order, err := s.mutate(ctx, orderID, "update priority", func(o *models.KitchenOrder, now time.Time) error {
		if o.Status.IsTerminal() {
			return s.invalidTransition(o, "update priority")
		}

		o.Priority = models.ClampPriority(priority)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if order.Priority >= highPriorityBroadcastThreshold {
		s.notifyKitchen(ctx, Event{
			Type:           models.NotificationStatusChange,
			Priority:       models.PriorityHigh,
			Title:          "Priority raised",
			Message:        fmt.Sprintf("Order %s is now priority %d", order.OrderID, order.Priority),
			RelatedOrderID: &order.OrderID,
		})
	}

	return order, nil
}

// GetOrder retrieves the kitchen record tracking a customer order, with its
// active timer attached when one exists.
func (s *KitchenService) GetOrder(ctx context.Context, orderID uuid.UUID) (*models.KitchenOrder, error) {
	order, err := s.stores.KitchenOrders.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, notFoundOr(err, "kitchen order")
	}

	if timer, err := s.timers.GetTimer(ctx, orderID); err == nil {
		order.Timer = timer
	}

	return order, nil
}

// Queue lists queued orders, highest priority first.
func (s *KitchenService) Queue(ctx context.Context) ([]models.KitchenOrder, error) {
	return s.stores.KitchenOrders.ListQueue(ctx)
}

// Active lists orders currently being worked.
func (s *KitchenService) Active(ctx context.Context) ([]models.KitchenOrder, error) {
	return s.stores.KitchenOrders.ListActive(ctx)
}

// Overdue lists non-terminal orders past their estimated completion.
func (s *KitchenService) Overdue(ctx context.Context) ([]models.KitchenOrder, error) {
	return s.stores.KitchenOrders.ListOverdue(ctx, s.clock.Now())
}

// CheckForOverdueOrders is the periodic sweep: it finds overdue orders and
// raises one overtime alert per order. Returns how many alerts went out.
func (s *KitchenService) CheckForOverdueOrders(ctx context.Context) (int, error) {
	now := s.clock.Now()

	overdue, err := s.stores.KitchenOrders.ListOverdue(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep for overdue orders: %w", err)
	}

	if s.collector != nil {
		s.collector.RecordOverdueCount(len(overdue))
	}

	alerted := 0
	for i := range overdue {
		order := overdue[i]
		if order.Notes.Contains(overdueAlertNote) {
			continue
		}

		s.notifyKitchen(ctx, Event{
			Type:           models.NotificationOrderOvertime,
			Title:          "Order overdue",
			Message:        fmt.Sprintf("Order %s is %d min past its estimate", order.OrderID, order.OverdueMinutes(now)),
			RelatedOrderID: &order.OrderID,
		})

		_, err := s.mutate(ctx, order.OrderID, "mark overdue alert", func(o *models.KitchenOrder, now time.Time) error {
			if !o.Notes.Contains(overdueAlertNote) {
				o.Notes = o.Notes.Append(now, nil, overdueAlertNote)
			}
			return nil
		})
		if err != nil {
			log.Printf("Failed to mark overdue alert for order %s: %v", order.OrderID, err)
			continue
		}

		s.bumpTimerAlerts(ctx, order.OrderID)
		alerted++
	}

	return alerted, nil
}

// bumpTimerAlerts increments the alert counter on the order's active timer.
func (s *KitchenService) bumpTimerAlerts(ctx context.Context, orderID uuid.UUID) {
	timer, err := s.stores.Timers.GetActiveByOrderID(ctx, orderID)
	if err != nil {
		return
	}
	timer.AlertsSent++
	if _, err := s.stores.Timers.UpdateVersioned(ctx, *timer); err != nil {
		log.Printf("Failed to bump alert counter for order %s: %v", orderID, err)
	}
}

// mutate runs a read-check-update cycle on a kitchen order under optimistic
// concurrency, mirroring the timer engine. A stale version triggers a
// bounded re-read and retry; exhausting the retries surfaces
// ErrVersionConflict to the caller.
func (s *KitchenService) mutate(ctx context.Context, orderID uuid.UUID, op string, apply func(*models.KitchenOrder, time.Time) error) (*models.KitchenOrder, error) {
	for attempt := 0; attempt < maxUpdateRetries; attempt++ {
		order, err := s.stores.KitchenOrders.GetByOrderID(ctx, orderID)
		if err != nil {
			return nil, notFoundOr(err, "kitchen order")
		}

		if err := apply(order, s.clock.Now()); err != nil {
			return nil, err
		}

		rows, err := s.stores.KitchenOrders.UpdateVersioned(ctx, *order)
		if err != nil {
			return nil, err
		}
		if rows > 0 {
			order.Version++
			return order, nil
		}
		// Stale version; re-read and retry.
	}

	return nil, fmt.Errorf("failed to %s kitchen order %s: %w", op, orderID, ErrVersionConflict)
}

// notifyKitchen broadcasts an event to the kitchen department. Delivery is
// best-effort and must never fail the state change that triggered it.
func (s *KitchenService) notifyKitchen(ctx context.Context, event Event) {
	if s.notifications == nil {
		return
	}
	if _, err := s.notifications.BroadcastToDepartment(ctx, models.DepartmentKitchen, event); err != nil {
		log.Printf("Failed to broadcast %s notification: %v", event.Type, err)
	}
}

func (s *KitchenService) invalidTransition(o *models.KitchenOrder, op string) error {
	return &InvalidTransitionError{
		Entity: "kitchen order",
		ID:     o.OrderID.String(),
		From:   string(o.Status),
		Op:     op,
	}
}

// isDomainError reports whether err is an expected domain condition (for
// best-effort timer follow-ups driven by order transitions).
func isDomainError(err error) bool {
	return err == nil || IsInvalidTransition(err) || isNoRows(err) ||
		errors.Is(err, ErrNotFound) || errors.Is(err, ErrVersionConflict)
}
