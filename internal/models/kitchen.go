package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// KitchenStatus represents the coarse lifecycle of an order inside the kitchen.
//
// The finer-grained CookingStatus/CookingStage pair on CookingTimer tracks a
// single cooking run; the mapping between the two layers is:
//
//	QUEUED            -> no timer yet (or timer IDLE)
//	PREPARING/COOKING -> timer RUNNING (stage PREP or COOKING)
//	PLATING           -> timer RUNNING (stage PLATING)
//	PAUSED            -> timer PAUSED
//	READY/SERVED      -> timer COMPLETED
//	CANCELLED         -> timer CANCELLED
//
// The 5-minute overtime buffer applies at this layer only; a timer flips to
// OVERDUE exactly at its estimated end.
type KitchenStatus string

const (
	KitchenStatusQueued    KitchenStatus = "queued"
	KitchenStatusPreparing KitchenStatus = "preparing"
	KitchenStatusCooking   KitchenStatus = "cooking"
	KitchenStatusPlating   KitchenStatus = "plating"
	KitchenStatusReady     KitchenStatus = "ready"
	KitchenStatusServed    KitchenStatus = "served"
	KitchenStatusPaused    KitchenStatus = "paused"
	KitchenStatusCancelled KitchenStatus = "cancelled"
)

// IsTerminal reports whether the status permits no further transitions.
func (s KitchenStatus) IsTerminal() bool {
	switch s {
	case KitchenStatusReady, KitchenStatusServed, KitchenStatusCancelled:
		return true
	}
	return false
}

// IsActive reports whether the order counts toward kitchen load.
func (s KitchenStatus) IsActive() bool {
	switch s {
	case KitchenStatusPreparing, KitchenStatusCooking, KitchenStatusPlating, KitchenStatusPaused:
		return true
	}
	return false
}

const (
	// MinPriority and MaxPriority bound kitchen order priority.
	MinPriority = 1
	MaxPriority = 10

	// OvertimeBufferMinutes is the grace period past the estimate before a
	// completed order is flagged as overtime.
	OvertimeBufferMinutes = 5

	// BaseCookingMinutes and PerItemCookingMinutes derive the default
	// estimate when an order enters the kitchen without one.
	BaseCookingMinutes    = 15
	PerItemCookingMinutes = 5
)

// ClampPriority forces p into the valid [MinPriority, MaxPriority] range.
func ClampPriority(p int) int {
	if p < MinPriority {
		return MinPriority
	}
	if p > MaxPriority {
		return MaxPriority
	}
	return p
}

// EstimateCookingMinutes derives a cooking estimate from the item count.
func EstimateCookingMinutes(itemCount int) int {
	if itemCount < 1 {
		itemCount = 1
	}
	return BaseCookingMinutes + PerItemCookingMinutes*itemCount
}

// NoteEntry is a single append-only note on a kitchen order or timer.
type NoteEntry struct {
	At      time.Time  `json:"at"`
	StaffID *uuid.UUID `json:"staff_id,omitempty"`
	Text    string     `json:"text"`
}

// NoteLog is an append-only list of notes stored as a JSON column.
type NoteLog []NoteEntry

// Append returns the log with a new entry added.
func (n NoteLog) Append(at time.Time, staffID *uuid.UUID, text string) NoteLog {
	return append(n, NoteEntry{At: at, StaffID: staffID, Text: text})
}

// Contains reports whether any entry's text matches exactly.
func (n NoteLog) Contains(text string) bool {
	for _, e := range n {
		if e.Text == text {
			return true
		}
	}
	return false
}

// Value implements driver.Valuer so the log can be stored in a jsonb column.
func (n NoteLog) Value() (driver.Value, error) {
	if n == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(n)
}

// Scan implements sql.Scanner.
func (n *NoteLog) Scan(src interface{}) error {
	if src == nil {
		*n = nil
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into NoteLog", src)
	}
	return json.Unmarshal(data, n)
}

// KitchenOrder tracks one accepted order through the kitchen.
type KitchenOrder struct {
	ID                      uuid.UUID     `db:"id" json:"id"`
	OrderID                 uuid.UUID     `db:"order_id" json:"order_id"`
	AssignedStaffID         *uuid.UUID    `db:"assigned_staff_id" json:"assigned_staff_id"`
	StartTime               *time.Time    `db:"start_time" json:"start_time"`
	EstimatedCompletionTime *time.Time    `db:"estimated_completion_time" json:"estimated_completion_time"`
	ActualCompletionTime    *time.Time    `db:"actual_completion_time" json:"actual_completion_time"`
	EstimatedCookingMinutes int           `db:"estimated_cooking_minutes" json:"estimated_cooking_minutes"`
	ActualCookingMinutes    *int          `db:"actual_cooking_minutes" json:"actual_cooking_minutes"`
	Overtime                bool          `db:"overtime" json:"overtime"`
	Priority                int           `db:"priority" json:"priority"`
	Status                  KitchenStatus `db:"status" json:"status"`
	Notes                   NoteLog       `db:"notes" json:"notes"`
	Version                 int64         `db:"version" json:"version"`
	CreatedAt               time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt               time.Time     `db:"updated_at" json:"updated_at"`

	// Not stored directly in the database
	Timer *CookingTimer `db:"-" json:"timer,omitempty"`
}

// IsOverdue reports whether the order has blown past its estimate.
// Terminal orders are never overdue.
func (o *KitchenOrder) IsOverdue(now time.Time) bool {
	if o.Status.IsTerminal() || o.EstimatedCompletionTime == nil {
		return false
	}
	return now.After(*o.EstimatedCompletionTime)
}

// OverdueMinutes returns whole minutes past the estimate, or 0.
func (o *KitchenOrder) OverdueMinutes(now time.Time) int {
	if !o.IsOverdue(now) {
		return 0
	}
	return int(now.Sub(*o.EstimatedCompletionTime) / time.Minute)
}

// RemainingMinutes returns whole minutes until the estimate, or 0 once the
// estimate has passed or the order is terminal.
func (o *KitchenOrder) RemainingMinutes(now time.Time) int {
	if o.Status.IsTerminal() || o.EstimatedCompletionTime == nil {
		return 0
	}
	remaining := o.EstimatedCompletionTime.Sub(now)
	if remaining < 0 {
		return 0
	}
	return int(remaining / time.Minute)
}

// ElapsedMinutes returns whole minutes since cooking started.
func (o *KitchenOrder) ElapsedMinutes(now time.Time) int {
	if o.StartTime == nil {
		return 0
	}
	ref := now
	if o.ActualCompletionTime != nil {
		ref = *o.ActualCompletionTime
	}
	elapsed := ref.Sub(*o.StartTime)
	if elapsed < 0 {
		return 0
	}
	return int(elapsed / time.Minute)
}

// IsOvertime reports whether a completed duration exceeds the estimate plus
// the fixed buffer.
func IsOvertime(actualMinutes, estimatedMinutes int) bool {
	return actualMinutes > estimatedMinutes+OvertimeBufferMinutes
}

// KitchenOrderRequest is used when an accepted order enters the kitchen.
type KitchenOrderRequest struct {
	OrderID   uuid.UUID `json:"order_id" validate:"required"`
	ItemCount int       `json:"item_count" validate:"min=1"`
	Priority  int       `json:"priority"`
}
