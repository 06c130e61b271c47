package models

import (
	"time"

	"github.com/google/uuid"
)

// CookingStatus represents the state of a cooking timer.
type CookingStatus string

const (
	CookingStatusIdle      CookingStatus = "idle"
	CookingStatusRunning   CookingStatus = "running"
	CookingStatusPaused    CookingStatus = "paused"
	CookingStatusCompleted CookingStatus = "completed"
	CookingStatusCancelled CookingStatus = "cancelled"
	CookingStatusOverdue   CookingStatus = "overdue"
)

// IsTerminal reports whether the timer permits no further transitions.
func (s CookingStatus) IsTerminal() bool {
	return s == CookingStatusCompleted || s == CookingStatusCancelled
}

// CookingStage represents the phase of work a timer is tracking.
type CookingStage string

const (
	StagePrep    CookingStage = "prep"
	StageCooking CookingStage = "cooking"
	StagePlating CookingStage = "plating"
	StageReady   CookingStage = "ready"
)

// Next returns the following stage; READY is the last one.
func (s CookingStage) Next() CookingStage {
	switch s {
	case StagePrep:
		return StageCooking
	case StageCooking:
		return StagePlating
	case StagePlating:
		return StageReady
	}
	return StageReady
}

// CookingTimer is the fine-grained timer for one cooking run. One active
// timer exists per order. All time-derived values are pure functions of a
// caller-supplied "now" so they stay deterministic under a fake clock.
type CookingTimer struct {
	ID                       uuid.UUID     `db:"id" json:"id"`
	OrderID                  uuid.UUID     `db:"order_id" json:"order_id"`
	StaffID                  *uuid.UUID    `db:"staff_id" json:"staff_id"`
	WorkstationID            *uuid.UUID    `db:"workstation_id" json:"workstation_id"`
	StartTime                *time.Time    `db:"start_time" json:"start_time"`
	PauseTime                *time.Time    `db:"pause_time" json:"pause_time"`
	ResumeTime               *time.Time    `db:"resume_time" json:"resume_time"`
	EndTime                  *time.Time    `db:"end_time" json:"end_time"`
	EstimatedEndTime         *time.Time    `db:"estimated_end_time" json:"estimated_end_time"`
	EstimatedDurationSeconds int64         `db:"estimated_duration_seconds" json:"estimated_duration_seconds"`
	ActualDurationSeconds    *int64        `db:"actual_duration_seconds" json:"actual_duration_seconds"`
	PausedDurationSeconds    int64         `db:"paused_duration_seconds" json:"paused_duration_seconds"`
	Status                   CookingStatus `db:"status" json:"status"`
	Stage                    CookingStage  `db:"stage" json:"stage"`
	AlertsSent               int           `db:"alerts_sent" json:"alerts_sent"`
	Notes                    NoteLog       `db:"notes" json:"notes"`
	TemperatureTarget        *float64      `db:"temperature_target" json:"temperature_target"`
	QualityScore             *int          `db:"quality_score" json:"quality_score"`
	Version                  int64         `db:"version" json:"version"`
	CreatedAt                time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt                time.Time     `db:"updated_at" json:"updated_at"`
}

// referenceTime picks the instant elapsed time is measured against: the pause
// instant while paused, the end instant once terminal, otherwise now.
func (t *CookingTimer) referenceTime(now time.Time) time.Time {
	if t.Status == CookingStatusPaused && t.PauseTime != nil {
		return *t.PauseTime
	}
	if t.Status.IsTerminal() && t.EndTime != nil {
		return *t.EndTime
	}
	return now
}

// ElapsedSeconds returns running time excluding all paused intervals.
func (t *CookingTimer) ElapsedSeconds(now time.Time) int64 {
	if t.StartTime == nil {
		return 0
	}
	elapsed := int64(t.referenceTime(now).Sub(*t.StartTime)/time.Second) - t.PausedDurationSeconds
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

// RemainingSeconds returns seconds until the estimate; negative once past it.
func (t *CookingTimer) RemainingSeconds(now time.Time) int64 {
	return t.EstimatedDurationSeconds - t.ElapsedSeconds(now)
}

// ProgressPercentage returns completion progress clamped to [0, 100].
func (t *CookingTimer) ProgressPercentage(now time.Time) float64 {
	if t.EstimatedDurationSeconds <= 0 {
		return 0
	}
	pct := float64(t.ElapsedSeconds(now)) / float64(t.EstimatedDurationSeconds) * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// IsOverdue reports whether the timer has run past its estimated end while
// not yet completed or cancelled.
func (t *CookingTimer) IsOverdue(now time.Time) bool {
	if t.Status.IsTerminal() || t.EstimatedEndTime == nil {
		return false
	}
	return now.After(*t.EstimatedEndTime)
}

// OverdueSeconds returns seconds past the estimated end, or 0.
func (t *CookingTimer) OverdueSeconds(now time.Time) int64 {
	if !t.IsOverdue(now) {
		return 0
	}
	return int64(now.Sub(*t.EstimatedEndTime) / time.Second)
}

// TimerRequest is used for timer creation.
type TimerRequest struct {
	OrderID                  uuid.UUID    `json:"order_id" validate:"required"`
	StaffID                  *uuid.UUID   `json:"staff_id"`
	WorkstationID            *uuid.UUID   `json:"workstation_id"`
	EstimatedDurationSeconds int64        `json:"estimated_duration_seconds" validate:"min=1"`
	Stage                    CookingStage `json:"stage"`
	TemperatureTarget        *float64     `json:"temperature_target"`
}
