package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jaujye/ranbow-restaurant-order-app-sub001/internal/clock"
	"github.com/jaujye/ranbow-restaurant-order-app-sub001/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTimerFixture(t *testing.T) (*TimerService, *testStores, *clock.Fixed, uuid.UUID) {
	t.Helper()

	stores, fakes := newTestStores()
	clk := clock.NewFixed(time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC))
	svc := NewTimerService(stores, clk)

	orderID := uuid.New()
	_, err := svc.CreateTimer(context.Background(), models.TimerRequest{
		OrderID:                  orderID,
		EstimatedDurationSeconds: 1200,
	})
	require.NoError(t, err)

	return svc, fakes, clk, orderID
}

func TestCreateTimerRejectsNonPositiveEstimate(t *testing.T) {
	stores, _ := newTestStores()
	svc := NewTimerService(stores, clock.NewFixed(time.Now()))

	_, err := svc.CreateTimer(context.Background(), models.TimerRequest{
		OrderID:                  uuid.New(),
		EstimatedDurationSeconds: 0,
	})
	assert.Error(t, err)
}

func TestStartTimer(t *testing.T) {
	svc, _, clk, orderID := newTimerFixture(t)

	timer, err := svc.StartTimer(context.Background(), orderID)
	require.NoError(t, err)

	assert.Equal(t, models.CookingStatusRunning, timer.Status)
	require.NotNil(t, timer.StartTime)
	assert.True(t, timer.StartTime.Equal(clk.Now()))
	require.NotNil(t, timer.EstimatedEndTime)
	assert.True(t, timer.EstimatedEndTime.Equal(clk.Now().Add(1200*time.Second)))

	// Starting twice is rejected.
	_, err = svc.StartTimer(context.Background(), orderID)
	assert.True(t, IsInvalidTransition(err))
}

func TestPauseResumeAccounting(t *testing.T) {
	svc, _, clk, orderID := newTimerFixture(t)
	ctx := context.Background()

	started, err := svc.StartTimer(ctx, orderID)
	require.NoError(t, err)
	originalEnd := *started.EstimatedEndTime

	clk.Advance(600 * time.Second)
	paused, err := svc.PauseTimer(ctx, orderID, nil, "waiting on grill")
	require.NoError(t, err)
	assert.Equal(t, models.CookingStatusPaused, paused.Status)
	require.NotNil(t, paused.PauseTime)
	assert.True(t, paused.Notes.Contains("paused: waiting on grill"))

	clk.Advance(60 * time.Second)
	resumed, err := svc.ResumeTimer(ctx, orderID)
	require.NoError(t, err)

	assert.Equal(t, models.CookingStatusRunning, resumed.Status)
	assert.Nil(t, resumed.PauseTime)
	assert.Equal(t, int64(60), resumed.PausedDurationSeconds)
	// The estimate shifts by exactly the paused interval.
	assert.True(t, resumed.EstimatedEndTime.Equal(originalEnd.Add(60*time.Second)))
	// Elapsed excludes the pause.
	assert.Equal(t, int64(600), resumed.ElapsedSeconds(clk.Now()))
}

func TestResumeRequiresPaused(t *testing.T) {
	svc, _, _, orderID := newTimerFixture(t)

	_, err := svc.StartTimer(context.Background(), orderID)
	require.NoError(t, err)

	_, err = svc.ResumeTimer(context.Background(), orderID)
	assert.True(t, IsInvalidTransition(err))
}

func TestCompleteTimerSettlesDuration(t *testing.T) {
	svc, _, clk, orderID := newTimerFixture(t)
	ctx := context.Background()

	_, err := svc.StartTimer(ctx, orderID)
	require.NoError(t, err)

	clk.Advance(600 * time.Second)
	_, err = svc.PauseTimer(ctx, orderID, nil, "")
	require.NoError(t, err)

	clk.Advance(120 * time.Second)
	done, err := svc.CompleteTimer(ctx, orderID)
	require.NoError(t, err)

	assert.Equal(t, models.CookingStatusCompleted, done.Status)
	assert.Equal(t, models.StageReady, done.Stage)
	require.NotNil(t, done.EndTime)
	require.NotNil(t, done.ActualDurationSeconds)
	// Completing a paused timer closes the open pause first.
	assert.Equal(t, int64(120), done.PausedDurationSeconds)
	assert.Equal(t, int64(600), *done.ActualDurationSeconds)
}

func TestCancelTimerRecordsReason(t *testing.T) {
	svc, _, clk, orderID := newTimerFixture(t)
	ctx := context.Background()

	_, err := svc.StartTimer(ctx, orderID)
	require.NoError(t, err)

	clk.Advance(300 * time.Second)
	cancelled, err := svc.CancelTimer(ctx, orderID, nil, "ingredient shortage")
	require.NoError(t, err)

	assert.Equal(t, models.CookingStatusCancelled, cancelled.Status)
	assert.True(t, cancelled.Notes.Contains("cancelled: ingredient shortage"))
	require.NotNil(t, cancelled.ActualDurationSeconds)
	assert.Equal(t, int64(300), *cancelled.ActualDurationSeconds)
}

func TestGetTimerReclassifiesOverdue(t *testing.T) {
	svc, _, clk, orderID := newTimerFixture(t)
	ctx := context.Background()

	_, err := svc.StartTimer(ctx, orderID)
	require.NoError(t, err)

	clk.Advance(1300 * time.Second)
	timer, err := svc.GetTimer(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, models.CookingStatusOverdue, timer.Status)

	// The reclassification sticks.
	again, err := svc.GetTimer(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, models.CookingStatusOverdue, again.Status)
}

func TestUpdateEstimateReprojectsEnd(t *testing.T) {
	svc, _, clk, orderID := newTimerFixture(t)
	ctx := context.Background()

	_, err := svc.StartTimer(ctx, orderID)
	require.NoError(t, err)

	clk.Advance(1300 * time.Second)
	_, err = svc.GetTimer(ctx, orderID) // flips to overdue
	require.NoError(t, err)

	updated, err := svc.UpdateEstimate(ctx, orderID, 10, "sauce reduction running long")
	require.NoError(t, err)

	// An overdue timer goes back to running once new time is granted.
	assert.Equal(t, models.CookingStatusRunning, updated.Status)
	assert.True(t, updated.EstimatedEndTime.Equal(clk.Now().Add(10*time.Minute)))
	assert.Equal(t, int64(1300+600), updated.EstimatedDurationSeconds)
	assert.True(t, updated.Notes.Contains("sauce reduction running long"))
}

func TestUpdateEstimateRejectsNegative(t *testing.T) {
	svc, _, _, orderID := newTimerFixture(t)

	_, err := svc.UpdateEstimate(context.Background(), orderID, -5, "")
	assert.Error(t, err)
}

func TestAdvanceStage(t *testing.T) {
	svc, _, _, orderID := newTimerFixture(t)
	ctx := context.Background()

	_, err := svc.StartTimer(ctx, orderID)
	require.NoError(t, err)

	timer, err := svc.AdvanceStage(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, models.StageCooking, timer.Stage)

	timer, err = svc.AdvanceStage(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, models.StagePlating, timer.Stage)
}

func TestMutateRetriesOnStaleVersion(t *testing.T) {
	svc, fakes, _, orderID := newTimerFixture(t)

	// Two lost races, then success on the third attempt.
	fakes.timers.conflicts = 2
	timer, err := svc.StartTimer(context.Background(), orderID)
	require.NoError(t, err)
	assert.Equal(t, models.CookingStatusRunning, timer.Status)
}

func TestMutateExhaustsRetries(t *testing.T) {
	svc, fakes, _, orderID := newTimerFixture(t)

	fakes.timers.conflicts = maxUpdateRetries
	_, err := svc.StartTimer(context.Background(), orderID)
	assert.True(t, errors.Is(err, ErrVersionConflict))
}

func TestTimerNotFound(t *testing.T) {
	stores, _ := newTestStores()
	svc := NewTimerService(stores, clock.NewFixed(time.Now()))

	_, err := svc.GetTimer(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = svc.StartTimer(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestRecordQuality(t *testing.T) {
	svc, fakes, _, orderID := newTimerFixture(t)
	ctx := context.Background()

	_, err := svc.StartTimer(ctx, orderID)
	require.NoError(t, err)
	done, err := svc.CompleteTimer(ctx, orderID)
	require.NoError(t, err)

	require.NoError(t, svc.RecordQuality(ctx, done.ID, 8))
	stored, err := fakes.timers.GetByID(ctx, done.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.QualityScore)
	assert.Equal(t, 8, *stored.QualityScore)

	assert.Error(t, svc.RecordQuality(ctx, done.ID, 11))
	assert.Error(t, svc.RecordQuality(ctx, done.ID, 0))
}

func TestRecordQualityRequiresCompleted(t *testing.T) {
	svc, fakes, _, orderID := newTimerFixture(t)
	ctx := context.Background()

	timer, err := svc.StartTimer(ctx, orderID)
	require.NoError(t, err)

	err = svc.RecordQuality(ctx, timer.ID, 7)
	assert.True(t, IsInvalidTransition(err))

	_, err = fakes.timers.GetByID(ctx, timer.ID)
	require.NoError(t, err)
}
