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

func newKitchenFixture(t *testing.T) (*KitchenService, *testStores, *clock.Fixed) {
	t.Helper()

	stores, fakes := newTestStores()
	fakes.staff.staff = []models.Staff{
		onDutyCook(models.DepartmentKitchen),
		onDutyCook(models.DepartmentKitchen),
	}

	clk := clock.NewFixed(time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC))
	timers := NewTimerService(stores, clk)
	notifications := NewNotificationService(stores, clk, nil)
	kitchen := NewKitchenService(stores, clk, timers, notifications, nil)

	return kitchen, fakes, clk
}

func TestAcceptOrder(t *testing.T) {
	kitchen, fakes, _ := newKitchenFixture(t)

	orderID := uuid.New()
	order, err := kitchen.AcceptOrder(context.Background(), models.KitchenOrderRequest{
		OrderID:   orderID,
		ItemCount: 3,
		Priority:  15,
	})
	require.NoError(t, err)

	assert.Equal(t, models.KitchenStatusQueued, order.Status)
	assert.Equal(t, 30, order.EstimatedCookingMinutes)
	assert.Equal(t, models.MaxPriority, order.Priority)

	// Both on-duty kitchen staff got a new-order notification.
	assert.Len(t, fakes.notifications.notifications, 2)
	assert.Equal(t, models.NotificationNewOrder, fakes.notifications.notifications[0].Type)
}

func TestStartPreparing(t *testing.T) {
	kitchen, fakes, clk := newKitchenFixture(t)
	ctx := context.Background()

	orderID := uuid.New()
	staffID := uuid.New()
	_, err := kitchen.AcceptOrder(ctx, models.KitchenOrderRequest{OrderID: orderID, ItemCount: 1})
	require.NoError(t, err)

	order, err := kitchen.StartPreparing(ctx, orderID, staffID, 1)
	require.NoError(t, err)

	assert.Equal(t, models.KitchenStatusPreparing, order.Status)
	require.NotNil(t, order.StartTime)
	assert.True(t, order.StartTime.Equal(clk.Now()))
	require.NotNil(t, order.EstimatedCompletionTime)
	assert.True(t, order.EstimatedCompletionTime.Equal(clk.Now().Add(20*time.Minute)))
	require.NotNil(t, order.AssignedStaffID)
	assert.Equal(t, staffID, *order.AssignedStaffID)

	// A running timer was created alongside.
	timer, err := fakes.timers.GetActiveByOrderID(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, models.CookingStatusRunning, timer.Status)
	assert.Equal(t, int64(20*60), timer.EstimatedDurationSeconds)
}

func TestStartPreparingCreatesRecordOnDemand(t *testing.T) {
	kitchen, _, _ := newKitchenFixture(t)

	// No AcceptOrder first; the record appears with a derived estimate.
	order, err := kitchen.StartPreparing(context.Background(), uuid.New(), uuid.New(), 4)
	require.NoError(t, err)
	assert.Equal(t, models.KitchenStatusPreparing, order.Status)
	assert.Equal(t, 35, order.EstimatedCookingMinutes)
}

func TestStartPreparingRequiresQueued(t *testing.T) {
	kitchen, _, _ := newKitchenFixture(t)
	ctx := context.Background()

	orderID := uuid.New()
	staffID := uuid.New()
	_, err := kitchen.StartPreparing(ctx, orderID, staffID, 1)
	require.NoError(t, err)

	_, err = kitchen.StartPreparing(ctx, orderID, staffID, 1)
	assert.True(t, IsInvalidTransition(err))
}

func TestCompleteWithinEstimate(t *testing.T) {
	kitchen, _, clk := newKitchenFixture(t)
	ctx := context.Background()

	orderID := uuid.New()
	_, err := kitchen.StartPreparing(ctx, orderID, uuid.New(), 1)
	require.NoError(t, err)

	clk.Advance(18 * time.Minute)
	order, err := kitchen.Complete(ctx, orderID, uuid.New())
	require.NoError(t, err)

	assert.Equal(t, models.KitchenStatusReady, order.Status)
	require.NotNil(t, order.ActualCookingMinutes)
	assert.Equal(t, 18, *order.ActualCookingMinutes)
	assert.False(t, order.Overtime)
}

func TestCompletePastBufferFlagsOvertime(t *testing.T) {
	kitchen, fakes, clk := newKitchenFixture(t)
	ctx := context.Background()

	orderID := uuid.New()
	_, err := kitchen.StartPreparing(ctx, orderID, uuid.New(), 1) // 20 min estimate
	require.NoError(t, err)
	before := len(fakes.notifications.notifications)

	clk.Advance(26 * time.Minute)
	order, err := kitchen.Complete(ctx, orderID, uuid.New())
	require.NoError(t, err)

	assert.True(t, order.Overtime)

	// Ready plus overtime notifications, one each per recipient.
	sent := fakes.notifications.notifications[before:]
	var overtime int
	for _, n := range sent {
		if n.Type == models.NotificationOrderOvertime {
			overtime++
		}
	}
	assert.Equal(t, 2, overtime)
}

func TestCompleteAtBufferBoundaryIsNotOvertime(t *testing.T) {
	kitchen, _, clk := newKitchenFixture(t)
	ctx := context.Background()

	orderID := uuid.New()
	_, err := kitchen.StartPreparing(ctx, orderID, uuid.New(), 1) // 20 min estimate
	require.NoError(t, err)

	clk.Advance(25 * time.Minute)
	order, err := kitchen.Complete(ctx, orderID, uuid.New())
	require.NoError(t, err)
	assert.False(t, order.Overtime)
}

func TestCompleteRequiresActiveStatus(t *testing.T) {
	kitchen, _, _ := newKitchenFixture(t)
	ctx := context.Background()

	orderID := uuid.New()
	_, err := kitchen.AcceptOrder(ctx, models.KitchenOrderRequest{OrderID: orderID, ItemCount: 1})
	require.NoError(t, err)

	_, err = kitchen.Complete(ctx, orderID, uuid.New())
	assert.True(t, IsInvalidTransition(err))
}

func TestPauseAndResume(t *testing.T) {
	kitchen, fakes, clk := newKitchenFixture(t)
	ctx := context.Background()

	orderID := uuid.New()
	staffID := uuid.New()
	_, err := kitchen.StartPreparing(ctx, orderID, staffID, 1)
	require.NoError(t, err)

	paused, err := kitchen.Pause(ctx, orderID, staffID, "waiting on delivery")
	require.NoError(t, err)
	assert.Equal(t, models.KitchenStatusPaused, paused.Status)
	assert.True(t, paused.Notes.Contains("paused: waiting on delivery"))

	// The timer paused with the order.
	timer, err := fakes.timers.GetActiveByOrderID(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, models.CookingStatusPaused, timer.Status)

	clk.Advance(5 * time.Minute)
	resumed, err := kitchen.Resume(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, models.KitchenStatusCooking, resumed.Status)

	timer, err = fakes.timers.GetActiveByOrderID(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, models.CookingStatusRunning, timer.Status)
	assert.Equal(t, int64(300), timer.PausedDurationSeconds)
}

func TestPauseRequiresActive(t *testing.T) {
	kitchen, _, _ := newKitchenFixture(t)
	ctx := context.Background()

	orderID := uuid.New()
	_, err := kitchen.AcceptOrder(ctx, models.KitchenOrderRequest{OrderID: orderID, ItemCount: 1})
	require.NoError(t, err)

	_, err = kitchen.Pause(ctx, orderID, uuid.New(), "")
	assert.True(t, IsInvalidTransition(err))
}

func TestResumeRequiresPausedOrder(t *testing.T) {
	kitchen, _, _ := newKitchenFixture(t)
	ctx := context.Background()

	orderID := uuid.New()
	_, err := kitchen.StartPreparing(ctx, orderID, uuid.New(), 1)
	require.NoError(t, err)

	_, err = kitchen.Resume(ctx, orderID)
	assert.True(t, IsInvalidTransition(err))
}

func TestCancelRecordsReasonAndAlerts(t *testing.T) {
	kitchen, fakes, _ := newKitchenFixture(t)
	ctx := context.Background()

	orderID := uuid.New()
	staffID := uuid.New()
	_, err := kitchen.StartPreparing(ctx, orderID, staffID, 1)
	require.NoError(t, err)
	before := len(fakes.notifications.notifications)

	order, err := kitchen.Cancel(ctx, orderID, staffID, "customer left")
	require.NoError(t, err)

	assert.Equal(t, models.KitchenStatusCancelled, order.Status)
	assert.True(t, order.Notes.Contains("cancelled: customer left"))

	// Cancellation goes out as an emergency broadcast.
	sent := fakes.notifications.notifications[before:]
	require.NotEmpty(t, sent)
	assert.Equal(t, models.NotificationEmergency, sent[0].Type)
	assert.Nil(t, sent[0].ExpiresAt)

	// The timer was cancelled with the order.
	_, err = fakes.timers.GetActiveByOrderID(ctx, orderID)
	assert.Error(t, err)
}

func TestCancelTerminalOrderFails(t *testing.T) {
	kitchen, _, _ := newKitchenFixture(t)
	ctx := context.Background()

	orderID := uuid.New()
	_, err := kitchen.StartPreparing(ctx, orderID, uuid.New(), 1)
	require.NoError(t, err)
	_, err = kitchen.Complete(ctx, orderID, uuid.New())
	require.NoError(t, err)

	_, err = kitchen.Cancel(ctx, orderID, uuid.New(), "too late")
	assert.True(t, IsInvalidTransition(err))
}

func TestMarkServed(t *testing.T) {
	kitchen, _, _ := newKitchenFixture(t)
	ctx := context.Background()

	orderID := uuid.New()
	_, err := kitchen.StartPreparing(ctx, orderID, uuid.New(), 1)
	require.NoError(t, err)

	// Not ready yet.
	_, err = kitchen.MarkServed(ctx, orderID)
	assert.True(t, IsInvalidTransition(err))

	_, err = kitchen.Complete(ctx, orderID, uuid.New())
	require.NoError(t, err)

	order, err := kitchen.MarkServed(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, models.KitchenStatusServed, order.Status)
}

func TestUpdatePriorityClampsAndBroadcasts(t *testing.T) {
	kitchen, fakes, _ := newKitchenFixture(t)
	ctx := context.Background()

	orderID := uuid.New()
	_, err := kitchen.AcceptOrder(ctx, models.KitchenOrderRequest{OrderID: orderID, ItemCount: 1})
	require.NoError(t, err)
	before := len(fakes.notifications.notifications)

	// Below the broadcast threshold: silent.
	order, err := kitchen.UpdatePriority(ctx, orderID, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, order.Priority)
	assert.Len(t, fakes.notifications.notifications, before)

	// Out-of-range input clamps high and announces at high priority.
	order, err = kitchen.UpdatePriority(ctx, orderID, 99)
	require.NoError(t, err)
	assert.Equal(t, models.MaxPriority, order.Priority)
	require.Greater(t, len(fakes.notifications.notifications), before)
	for _, n := range fakes.notifications.notifications[before:] {
		assert.Equal(t, models.NotificationStatusChange, n.Type)
		assert.Equal(t, models.PriorityHigh, n.Priority)
	}
}

func TestOrderMutationRetriesOnStaleVersion(t *testing.T) {
	kitchen, fakes, _ := newKitchenFixture(t)
	ctx := context.Background()

	orderID := uuid.New()
	_, err := kitchen.AcceptOrder(ctx, models.KitchenOrderRequest{OrderID: orderID, ItemCount: 1})
	require.NoError(t, err)

	// Two lost races, then success on the third attempt.
	fakes.orders.conflicts = 2
	order, err := kitchen.StartPreparing(ctx, orderID, uuid.New(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.KitchenStatusPreparing, order.Status)
}

func TestOrderMutationExhaustsRetries(t *testing.T) {
	kitchen, fakes, _ := newKitchenFixture(t)
	ctx := context.Background()

	orderID := uuid.New()
	_, err := kitchen.AcceptOrder(ctx, models.KitchenOrderRequest{OrderID: orderID, ItemCount: 1})
	require.NoError(t, err)

	fakes.orders.conflicts = maxUpdateRetries
	_, err = kitchen.StartPreparing(ctx, orderID, uuid.New(), 1)
	assert.True(t, errors.Is(err, ErrVersionConflict))
}

func TestGetOrderAttachesActiveTimer(t *testing.T) {
	kitchen, _, _ := newKitchenFixture(t)
	ctx := context.Background()

	orderID := uuid.New()
	_, err := kitchen.StartPreparing(ctx, orderID, uuid.New(), 1)
	require.NoError(t, err)

	order, err := kitchen.GetOrder(ctx, orderID)
	require.NoError(t, err)
	require.NotNil(t, order.Timer)
	assert.Equal(t, models.CookingStatusRunning, order.Timer.Status)
}

func TestGetOrderNotFound(t *testing.T) {
	kitchen, _, _ := newKitchenFixture(t)

	_, err := kitchen.GetOrder(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestCheckForOverdueOrdersAlertsOnce(t *testing.T) {
	kitchen, fakes, clk := newKitchenFixture(t)
	ctx := context.Background()

	orderID := uuid.New()
	_, err := kitchen.StartPreparing(ctx, orderID, uuid.New(), 1) // 20 min estimate
	require.NoError(t, err)

	// Not overdue yet.
	alerted, err := kitchen.CheckForOverdueOrders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, alerted)

	clk.Advance(25 * time.Minute)
	alerted, err = kitchen.CheckForOverdueOrders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, alerted)

	// The sweep never repeats an alert for the same order.
	alerted, err = kitchen.CheckForOverdueOrders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, alerted)

	// The timer's alert counter was bumped once.
	timer, err := fakes.timers.GetActiveByOrderID(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, 1, timer.AlertsSent)
}

func TestOverdueListingExcludesTerminal(t *testing.T) {
	kitchen, _, clk := newKitchenFixture(t)
	ctx := context.Background()

	lateID := uuid.New()
	doneID := uuid.New()
	_, err := kitchen.StartPreparing(ctx, lateID, uuid.New(), 1)
	require.NoError(t, err)
	_, err = kitchen.StartPreparing(ctx, doneID, uuid.New(), 1)
	require.NoError(t, err)

	clk.Advance(10 * time.Minute)
	_, err = kitchen.Complete(ctx, doneID, uuid.New())
	require.NoError(t, err)

	clk.Advance(15 * time.Minute)
	overdue, err := kitchen.Overdue(ctx)
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, lateID, overdue[0].OrderID)
}
