package service

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jaujye/ranbow-restaurant-order-app-sub001/internal/metrics"
	"github.com/jaujye/ranbow-restaurant-order-app-sub001/internal/models"
)

// AlertSeverity grades a capacity threshold alert.
type AlertSeverity string

const (
	AlertWarning  AlertSeverity = "WARNING"
	AlertCritical AlertSeverity = "CRITICAL"
)

// CapacityAlert is the outcome of a threshold check.
type CapacityAlert struct {
	Severity AlertSeverity
	Snapshot models.CapacitySnapshot
	Message  string
}

// CapacityService aggregates kitchen and workstation load. Every value is
// recomputed from current counts on each call; nothing is cached, so a
// snapshot is only ever as stale as the counts it was read from.
type CapacityService struct {
	stores        *Stores
	maxCapacity   int
	notifications *NotificationService
	collector     *metrics.Collector
}

// NewCapacityService creates a new capacity service. collector may be nil
// when metrics are not wired.
func NewCapacityService(stores *Stores, maxCapacity int, notifications *NotificationService, collector *metrics.Collector) *CapacityService {
	if maxCapacity <= 0 {
		maxCapacity = 20
	}
	return &CapacityService{
		stores:        stores,
		maxCapacity:   maxCapacity,
		notifications: notifications,
		collector:     collector,
	}
}

// CurrentCapacity computes the kitchen-wide load snapshot.
func (s *CapacityService) CurrentCapacity(ctx context.Context) (*models.CapacitySnapshot, error) {
	active, err := s.stores.KitchenOrders.CountActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count active orders: %w", err)
	}

	queued, err := s.stores.KitchenOrders.CountQueued(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count queued orders: %w", err)
	}

	pct := models.CapacityPercentage(active, s.maxCapacity)
	snapshot := &models.CapacitySnapshot{
		CapacityPercentage:   pct,
		ActiveOrders:         active,
		QueuedOrders:         queued,
		MaxCapacity:          s.maxCapacity,
		EstimatedWaitMinutes: models.EstimatedWaitMinutes(pct),
		Status:               models.CapacityStatusFor(pct),
	}

	if s.collector != nil {
		s.collector.RecordKitchenLoad(pct, active, queued)
	}

	return snapshot, nil
}

// StationCapacity computes one workstation's load from the timers bound to
// it, against that workstation's own configured capacity.
func (s *CapacityService) StationCapacity(ctx context.Context, workstationID uuid.UUID) (*models.StationCapacity, error) {
	station, err := s.stores.Workstations.GetByID(ctx, workstationID)
	if err != nil {
		return nil, notFoundOr(err, "workstation")
	}

	timers, err := s.stores.Timers.ListByWorkstation(ctx, workstationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list workstation timers: %w", err)
	}

	pct := models.CapacityPercentage(len(timers), station.MaxCapacity)
	capacity := &models.StationCapacity{
		WorkstationID:      station.ID,
		WorkstationName:    station.Name,
		CapacityPercentage: pct,
		ActiveTimers:       len(timers),
		MaxCapacity:        station.MaxCapacity,
		Status:             models.CapacityStatusFor(pct),
	}

	if s.collector != nil {
		s.collector.RecordStationLoad(station.Name, pct)
	}

	return capacity, nil
}

// CanAcceptNewOrder reports whether the kitchen is below the critical
// threshold. Advisory only; it is not a reservation.
func (s *CapacityService) CanAcceptNewOrder(ctx context.Context) (bool, error) {
	snapshot, err := s.CurrentCapacity(ctx)
	if err != nil {
		return false, err
	}
	return snapshot.CapacityPercentage < models.CapacityCriticalThreshold, nil
}

// CheckThresholds evaluates the alert bands: at or above 90% a CRITICAL
// alert goes out, at or above 70% a HIGH alert, otherwise none. The alert,
// if any, is broadcast to on-duty staff; broadcast trouble is logged and
// does not fail the check.
func (s *CapacityService) CheckThresholds(ctx context.Context) (*CapacityAlert, error) {
	snapshot, err := s.CurrentCapacity(ctx)
	if err != nil {
		return nil, err
	}

	var alert *CapacityAlert
	switch {
	case snapshot.CapacityPercentage >= models.CapacityCriticalThreshold:
		alert = &CapacityAlert{
			Severity: AlertCritical,
			Snapshot: *snapshot,
			Message: fmt.Sprintf("Kitchen at %.1f%% capacity (%d/%d orders) - not accepting new orders",
				snapshot.CapacityPercentage, snapshot.ActiveOrders, snapshot.MaxCapacity),
		}
	case snapshot.CapacityPercentage >= models.CapacityWarningThreshold:
		alert = &CapacityAlert{
			Severity: AlertWarning,
			Snapshot: *snapshot,
			Message: fmt.Sprintf("Kitchen at %.1f%% capacity (%d/%d orders)",
				snapshot.CapacityPercentage, snapshot.ActiveOrders, snapshot.MaxCapacity),
		}
	default:
		return nil, nil
	}

	if s.collector != nil {
		s.collector.RecordAlert(string(alert.Severity))
	}

	if s.notifications != nil {
		event := Event{
			Type:    models.NotificationCapacityAlert,
			Title:   "Kitchen capacity alert",
			Message: alert.Message,
		}
		if _, err := s.notifications.BroadcastToOnDutyStaff(ctx, event); err != nil {
			log.Printf("Failed to broadcast capacity alert: %v", err)
		}
	}

	return alert, nil
}
