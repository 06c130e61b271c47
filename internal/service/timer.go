package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jaujye/ranbow-restaurant-order-app-sub001/internal/clock"
	"github.com/jaujye/ranbow-restaurant-order-app-sub001/internal/models"
)

// maxUpdateRetries bounds optimistic-concurrency retries before the caller
// is asked to re-read and try again.
const maxUpdateRetries = 3

// TimerService owns per-order cooking timers: start, pause, resume,
// complete, cancel, stage advancement and estimate updates. Every mutation
// is a version-checked compare-and-swap so concurrent pause+complete on the
// same timer cannot both win.
type TimerService struct {
	stores *Stores
	clock  clock.Clock
}

// NewTimerService creates a new timer service
func NewTimerService(stores *Stores, clk clock.Clock) *TimerService {
	return &TimerService{
		stores: stores,
		clock:  clk,
	}
}

// CreateTimer creates an idle timer for an order.
func (s *TimerService) CreateTimer(ctx context.Context, req models.TimerRequest) (*models.CookingTimer, error) {
	if req.EstimatedDurationSeconds <= 0 {
		return nil, fmt.Errorf("estimated duration must be positive")
	}

	stage := req.Stage
	if stage == "" {
		stage = models.StagePrep
	}

	timer := models.CookingTimer{
		OrderID:                  req.OrderID,
		StaffID:                  req.StaffID,
		WorkstationID:            req.WorkstationID,
		EstimatedDurationSeconds: req.EstimatedDurationSeconds,
		Status:                   models.CookingStatusIdle,
		Stage:                    stage,
		TemperatureTarget:        req.TemperatureTarget,
	}

	return s.stores.Timers.Create(ctx, timer)
}

// GetTimer retrieves the active timer for an order. A running timer past its
// estimated end is reclassified OVERDUE; the reclassification is persisted
// best-effort and never fails the read.
func (s *TimerService) GetTimer(ctx context.Context, orderID uuid.UUID) (*models.CookingTimer, error) {
	timer, err := s.stores.Timers.GetActiveByOrderID(ctx, orderID)
	if err != nil {
		return nil, notFoundOr(err, "cooking timer")
	}

	if timer.Status == models.CookingStatusRunning && timer.IsOverdue(s.clock.Now()) {
		timer.Status = models.CookingStatusOverdue
		if _, err := s.stores.Timers.UpdateVersioned(ctx, *timer); err == nil {
			timer.Version++
		}
	}

	return timer, nil
}

// StartTimer moves an idle timer to running and projects its estimated end.
func (s *TimerService) StartTimer(ctx context.Context, orderID uuid.UUID) (*models.CookingTimer, error) {
	return s.mutate(ctx, orderID, "start", func(t *models.CookingTimer, now time.Time) error {
		if t.Status != models.CookingStatusIdle {
			return s.invalidTransition(t, "start")
		}

		estimatedEnd := now.Add(time.Duration(t.EstimatedDurationSeconds) * time.Second)
		t.Status = models.CookingStatusRunning
		t.StartTime = &now
		t.EstimatedEndTime = &estimatedEnd
		return nil
	})
}

// PauseTimer pauses a running timer, recording the pause instant and reason.
func (s *TimerService) PauseTimer(ctx context.Context, orderID uuid.UUID, staffID *uuid.UUID, reason string) (*models.CookingTimer, error) {
	return s.mutate(ctx, orderID, "pause", func(t *models.CookingTimer, now time.Time) error {
		if t.Status != models.CookingStatusRunning && t.Status != models.CookingStatusOverdue {
			return s.invalidTransition(t, "pause")
		}

		t.Status = models.CookingStatusPaused
		t.PauseTime = &now
		if reason != "" {
			t.Notes = t.Notes.Append(now, staffID, "paused: "+reason)
		}
		return nil
	})
}

// ResumeTimer resumes a paused timer. The paused interval is added to the
// cumulative paused duration and the estimated end shifts by the same
// amount, so elapsed time keeps excluding pauses.
func (s *TimerService) ResumeTimer(ctx context.Context, orderID uuid.UUID) (*models.CookingTimer, error) {
	return s.mutate(ctx, orderID, "resume", func(t *models.CookingTimer, now time.Time) error {
		if t.Status != models.CookingStatusPaused || t.PauseTime == nil {
			return s.invalidTransition(t, "resume")
		}

		pausedInterval := now.Sub(*t.PauseTime)
		if pausedInterval < 0 {
			pausedInterval = 0
		}

		t.PausedDurationSeconds += int64(pausedInterval / time.Second)
		if t.EstimatedEndTime != nil {
			shifted := t.EstimatedEndTime.Add(pausedInterval)
			t.EstimatedEndTime = &shifted
		}
		t.Status = models.CookingStatusRunning
		t.ResumeTime = &now
		t.PauseTime = nil
		return nil
	})
}

// CompleteTimer finishes a running or paused timer and fixes the actual
// duration, excluding all paused time.
func (s *TimerService) CompleteTimer(ctx context.Context, orderID uuid.UUID) (*models.CookingTimer, error) {
	return s.mutate(ctx, orderID, "complete", func(t *models.CookingTimer, now time.Time) error {
		switch t.Status {
		case models.CookingStatusRunning, models.CookingStatusOverdue, models.CookingStatusPaused:
		default:
			return s.invalidTransition(t, "complete")
		}

		s.settle(t, now)
		t.Status = models.CookingStatusCompleted
		t.Stage = models.StageReady
		return nil
	})
}

// CancelTimer cancels any non-terminal timer with the same duration
// accounting as completion; the reason is appended to the notes.
func (s *TimerService) CancelTimer(ctx context.Context, orderID uuid.UUID, staffID *uuid.UUID, reason string) (*models.CookingTimer, error) {
	return s.mutate(ctx, orderID, "cancel", func(t *models.CookingTimer, now time.Time) error {
		if t.Status.IsTerminal() {
			return s.invalidTransition(t, "cancel")
		}

		s.settle(t, now)
		t.Status = models.CookingStatusCancelled
		if reason != "" {
			t.Notes = t.Notes.Append(now, staffID, "cancelled: "+reason)
		}
		return nil
	})
}

// settle accrues any open pause and fixes end time and actual duration.
func (s *TimerService) settle(t *models.CookingTimer, now time.Time) {
	if t.Status == models.CookingStatusPaused && t.PauseTime != nil {
		t.PausedDurationSeconds += int64(now.Sub(*t.PauseTime) / time.Second)
		t.PauseTime = nil
	}

	t.EndTime = &now
	if t.StartTime != nil {
		actual := int64(now.Sub(*t.StartTime)/time.Second) - t.PausedDurationSeconds
		if actual < 0 {
			actual = 0
		}
		t.ActualDurationSeconds = &actual
	}
}

// AdvanceStage moves the timer one stage forward; a timer already at READY
// stays there.
func (s *TimerService) AdvanceStage(ctx context.Context, orderID uuid.UUID) (*models.CookingTimer, error) {
	return s.mutate(ctx, orderID, "advance stage", func(t *models.CookingTimer, now time.Time) error {
		if t.Status.IsTerminal() {
			return s.invalidTransition(t, "advance stage")
		}
		t.Stage = t.Stage.Next()
		return nil
	})
}

// UpdateEstimate re-projects the estimated end from the minutes a cook says
// remain, keeping elapsed time untouched.
func (s *TimerService) UpdateEstimate(ctx context.Context, orderID uuid.UUID, minutesRemaining int, note string) (*models.CookingTimer, error) {
	if minutesRemaining < 0 {
		return nil, fmt.Errorf("minutes remaining cannot be negative")
	}

	return s.mutate(ctx, orderID, "update estimate", func(t *models.CookingTimer, now time.Time) error {
		switch t.Status {
		case models.CookingStatusRunning, models.CookingStatusOverdue, models.CookingStatusPaused:
		default:
			return s.invalidTransition(t, "update estimate")
		}

		estimatedEnd := now.Add(time.Duration(minutesRemaining) * time.Minute)
		t.EstimatedEndTime = &estimatedEnd
		t.EstimatedDurationSeconds = t.ElapsedSeconds(now) + int64(minutesRemaining)*60
		if t.Status == models.CookingStatusOverdue {
			t.Status = models.CookingStatusRunning
		}
		if note != "" {
			t.Notes = t.Notes.Append(now, nil, note)
		}
		return nil
	})
}

// RecordQuality attaches a quality score to a completed timer.
func (s *TimerService) RecordQuality(ctx context.Context, timerID uuid.UUID, score int) error {
	if score < 1 || score > 10 {
		return fmt.Errorf("quality score must be between 1 and 10")
	}

	timer, err := s.stores.Timers.GetByID(ctx, timerID)
	if err != nil {
		return notFoundOr(err, "cooking timer")
	}

	if timer.Status != models.CookingStatusCompleted {
		return s.invalidTransition(timer, "record quality")
	}

	timer.QualityScore = &score
	rows, err := s.stores.Timers.UpdateVersioned(ctx, *timer)
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("cooking timer %s: %w", timerID, ErrVersionConflict)
	}

	return nil
}

// WorkstationTimers lists the non-terminal timers bound to a workstation.
func (s *TimerService) WorkstationTimers(ctx context.Context, workstationID uuid.UUID) ([]models.CookingTimer, error) {
	return s.stores.Timers.ListByWorkstation(ctx, workstationID)
}

// mutate runs a read-check-update cycle under optimistic concurrency.
// A stale version triggers a bounded re-read and retry; exhausting the
// retries surfaces ErrVersionConflict to the caller.
func (s *TimerService) mutate(ctx context.Context, orderID uuid.UUID, op string, apply func(*models.CookingTimer, time.Time) error) (*models.CookingTimer, error) {
	for attempt := 0; attempt < maxUpdateRetries; attempt++ {
		timer, err := s.stores.Timers.GetActiveByOrderID(ctx, orderID)
		if err != nil {
			return nil, notFoundOr(err, "cooking timer")
		}

		if err := apply(timer, s.clock.Now()); err != nil {
			return nil, err
		}

		rows, err := s.stores.Timers.UpdateVersioned(ctx, *timer)
		if err != nil {
			return nil, err
		}
		if rows > 0 {
			timer.Version++
			return timer, nil
		}
		// Stale version; re-read and retry.
	}

	return nil, fmt.Errorf("failed to %s timer for order %s: %w", op, orderID, ErrVersionConflict)
}

func (s *TimerService) invalidTransition(t *models.CookingTimer, op string) error {
	return &InvalidTransitionError{
		Entity: "cooking timer",
		ID:     t.ID.String(),
		From:   string(t.Status),
		Op:     op,
	}
}
