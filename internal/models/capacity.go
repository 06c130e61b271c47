package models

import (
	"github.com/google/uuid"
)

// CapacityStatus labels how loaded the kitchen is.
type CapacityStatus string

const (
	CapacityStatusNormal   CapacityStatus = "NORMAL"
	CapacityStatusBusy     CapacityStatus = "BUSY"
	CapacityStatusCritical CapacityStatus = "CRITICAL"
	CapacityStatusFull     CapacityStatus = "FULL"
)

// Capacity band boundaries, in percent.
const (
	CapacityBusyThreshold     = 50.0
	CapacityWarningThreshold  = 70.0
	CapacityCriticalThreshold = 90.0
)

// CapacitySnapshot is a derived, never-persisted view of kitchen load at one
// instant. Values are recomputed on every read.
type CapacitySnapshot struct {
	CapacityPercentage   float64        `json:"capacity_percentage"`
	ActiveOrders         int            `json:"active_orders"`
	QueuedOrders         int            `json:"queued_orders"`
	MaxCapacity          int            `json:"max_capacity"`
	EstimatedWaitMinutes int            `json:"estimated_wait_minutes"`
	Status               CapacityStatus `json:"status"`
}

// StationCapacity is the per-workstation load view.
type StationCapacity struct {
	WorkstationID      uuid.UUID      `json:"workstation_id"`
	WorkstationName    string         `json:"workstation_name"`
	CapacityPercentage float64        `json:"capacity_percentage"`
	ActiveTimers       int            `json:"active_timers"`
	MaxCapacity        int            `json:"max_capacity"`
	Status             CapacityStatus `json:"status"`
}

// CapacityPercentage computes load as a percentage of capacity.
func CapacityPercentage(active, max int) float64 {
	if max <= 0 {
		return 0
	}
	return float64(active) / float64(max) * 100
}

// CapacityStatusFor maps a load percentage to its band.
func CapacityStatusFor(pct float64) CapacityStatus {
	switch {
	case pct < CapacityBusyThreshold:
		return CapacityStatusNormal
	case pct < CapacityWarningThreshold:
		return CapacityStatusBusy
	case pct < CapacityCriticalThreshold:
		return CapacityStatusCritical
	default:
		return CapacityStatusFull
	}
}

// EstimatedWaitMinutes maps a load percentage to an expected wait.
func EstimatedWaitMinutes(pct float64) int {
	switch {
	case pct < CapacityBusyThreshold:
		return 10
	case pct < CapacityWarningThreshold:
		return 15
	case pct < CapacityCriticalThreshold:
		return 25
	default:
		return 40
	}
}
