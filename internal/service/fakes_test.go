package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jaujye/ranbow-restaurant-order-app-sub001/internal/models"
)

// In-memory store fakes backing the service tests.

type fakeOrderStore struct {
	orders map[uuid.UUID]*models.KitchenOrder // keyed by record ID

	// conflicts makes the next N UpdateVersioned calls lose the race by
	// bumping the stored version underneath the caller.
	conflicts int
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{orders: make(map[uuid.UUID]*models.KitchenOrder)}
}

func (f *fakeOrderStore) Create(ctx context.Context, order models.KitchenOrder) (*models.KitchenOrder, error) {
	order.ID = uuid.New()
	order.Version = 0
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	f.orders[order.ID] = &order
	copied := order
	return &copied, nil
}

func (f *fakeOrderStore) GetByID(ctx context.Context, id uuid.UUID) (*models.KitchenOrder, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *order
	return &copied, nil
}

func (f *fakeOrderStore) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*models.KitchenOrder, error) {
	for _, order := range f.orders {
		if order.OrderID == orderID {
			copied := *order
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeOrderStore) UpdateVersioned(ctx context.Context, order models.KitchenOrder) (int64, error) {
	stored, ok := f.orders[order.ID]
	if !ok {
		return 0, nil
	}
	if f.conflicts > 0 {
		f.conflicts--
		stored.Version++
		return 0, nil
	}
	if stored.Version != order.Version {
		return 0, nil
	}
	order.Version++
	order.UpdatedAt = time.Now()
	copied := order
	f.orders[order.ID] = &copied
	return 1, nil
}

func (f *fakeOrderStore) ListByStatus(ctx context.Context, status models.KitchenStatus) ([]models.KitchenOrder, error) {
	var out []models.KitchenOrder
	for _, order := range f.orders {
		if order.Status == status {
			out = append(out, *order)
		}
	}
	return out, nil
}

func (f *fakeOrderStore) ListActive(ctx context.Context) ([]models.KitchenOrder, error) {
	var out []models.KitchenOrder
	for _, order := range f.orders {
		if order.Status.IsActive() {
			out = append(out, *order)
		}
	}
	return out, nil
}

func (f *fakeOrderStore) ListQueue(ctx context.Context) ([]models.KitchenOrder, error) {
	out, _ := f.ListByStatus(ctx, models.KitchenStatusQueued)
	sort.Slice(out, func(i, j int) bool { return out[i].Priority > out[j].Priority })
	return out, nil
}

func (f *fakeOrderStore) ListOverdue(ctx context.Context, now time.Time) ([]models.KitchenOrder, error) {
	var out []models.KitchenOrder
	for _, order := range f.orders {
		if order.IsOverdue(now) {
			out = append(out, *order)
		}
	}
	return out, nil
}

func (f *fakeOrderStore) CountActive(ctx context.Context) (int, error) {
	orders, _ := f.ListActive(ctx)
	return len(orders), nil
}

func (f *fakeOrderStore) CountQueued(ctx context.Context) (int, error) {
	orders, _ := f.ListByStatus(ctx, models.KitchenStatusQueued)
	return len(orders), nil
}

type fakeTimerStore struct {
	timers map[uuid.UUID]*models.CookingTimer

	// conflicts makes the next N UpdateVersioned calls lose the race by
	// bumping the stored version underneath the caller.
	conflicts int
}

func newFakeTimerStore() *fakeTimerStore {
	return &fakeTimerStore{timers: make(map[uuid.UUID]*models.CookingTimer)}
}

func (f *fakeTimerStore) Create(ctx context.Context, timer models.CookingTimer) (*models.CookingTimer, error) {
	timer.ID = uuid.New()
	timer.Version = 0
	timer.CreatedAt = time.Now()
	timer.UpdatedAt = timer.CreatedAt
	f.timers[timer.ID] = &timer
	copied := timer
	return &copied, nil
}

func (f *fakeTimerStore) GetByID(ctx context.Context, id uuid.UUID) (*models.CookingTimer, error) {
	timer, ok := f.timers[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *timer
	return &copied, nil
}

func (f *fakeTimerStore) GetActiveByOrderID(ctx context.Context, orderID uuid.UUID) (*models.CookingTimer, error) {
	var latest *models.CookingTimer
	for _, timer := range f.timers {
		if timer.OrderID != orderID || timer.Status.IsTerminal() {
			continue
		}
		if latest == nil || timer.CreatedAt.After(latest.CreatedAt) {
			latest = timer
		}
	}
	if latest == nil {
		return nil, sql.ErrNoRows
	}
	copied := *latest
	return &copied, nil
}

func (f *fakeTimerStore) UpdateVersioned(ctx context.Context, timer models.CookingTimer) (int64, error) {
	stored, ok := f.timers[timer.ID]
	if !ok {
		return 0, nil
	}
	if f.conflicts > 0 {
		f.conflicts--
		stored.Version++
		return 0, nil
	}
	if stored.Version != timer.Version {
		return 0, nil
	}
	timer.Version++
	timer.UpdatedAt = time.Now()
	copied := timer
	f.timers[timer.ID] = &copied
	return 1, nil
}

func (f *fakeTimerStore) ListByWorkstation(ctx context.Context, workstationID uuid.UUID) ([]models.CookingTimer, error) {
	var out []models.CookingTimer
	for _, timer := range f.timers {
		if timer.WorkstationID != nil && *timer.WorkstationID == workstationID && !timer.Status.IsTerminal() {
			out = append(out, *timer)
		}
	}
	return out, nil
}

func (f *fakeTimerStore) ListRunning(ctx context.Context) ([]models.CookingTimer, error) {
	var out []models.CookingTimer
	for _, timer := range f.timers {
		if timer.Status == models.CookingStatusRunning || timer.Status == models.CookingStatusOverdue {
			out = append(out, *timer)
		}
	}
	return out, nil
}

type fakeWorkstationStore struct {
	stations map[uuid.UUID]*models.Workstation
}

func newFakeWorkstationStore() *fakeWorkstationStore {
	return &fakeWorkstationStore{stations: make(map[uuid.UUID]*models.Workstation)}
}

func (f *fakeWorkstationStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Workstation, error) {
	station, ok := f.stations[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *station
	return &copied, nil
}

func (f *fakeWorkstationStore) List(ctx context.Context) ([]models.Workstation, error) {
	var out []models.Workstation
	for _, station := range f.stations {
		out = append(out, *station)
	}
	return out, nil
}

type fakeNotificationStore struct {
	notifications []models.Notification

	// failFor makes Create fail for specific recipients.
	failFor map[uuid.UUID]bool
}

func newFakeNotificationStore() *fakeNotificationStore {
	return &fakeNotificationStore{failFor: make(map[uuid.UUID]bool)}
}

func (f *fakeNotificationStore) Create(ctx context.Context, n models.Notification) (*models.Notification, error) {
	if f.failFor[n.RecipientStaffID] {
		return nil, fmt.Errorf("insert failed")
	}
	n.ID = uuid.New()
	f.notifications = append(f.notifications, n)
	copied := n
	return &copied, nil
}

func (f *fakeNotificationStore) ListByStaff(ctx context.Context, staffID uuid.UUID, limit int) ([]models.Notification, error) {
	var out []models.Notification
	for _, n := range f.notifications {
		if n.RecipientStaffID == staffID {
			out = append(out, n)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeNotificationStore) ListUnreadByStaff(ctx context.Context, staffID uuid.UUID, now time.Time) ([]models.Notification, error) {
	var out []models.Notification
	for _, n := range f.notifications {
		if n.RecipientStaffID == staffID && !n.IsRead && !n.IsExpired(now) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotificationStore) MarkRead(ctx context.Context, id, staffID uuid.UUID, readAt time.Time) error {
	for i := range f.notifications {
		n := &f.notifications[i]
		if n.ID == id && n.RecipientStaffID == staffID && !n.IsRead {
			n.IsRead = true
			n.ReadAt = &readAt
			return nil
		}
	}
	return fmt.Errorf("notification %s: %w", id, sql.ErrNoRows)
}

func (f *fakeNotificationStore) MarkAllRead(ctx context.Context, staffID uuid.UUID, readAt time.Time) (int64, error) {
	var count int64
	for i := range f.notifications {
		n := &f.notifications[i]
		if n.RecipientStaffID == staffID && !n.IsRead {
			n.IsRead = true
			n.ReadAt = &readAt
			count++
		}
	}
	return count, nil
}

func (f *fakeNotificationStore) CountUnread(ctx context.Context, staffID uuid.UUID, now time.Time) (int, error) {
	unread, _ := f.ListUnreadByStaff(ctx, staffID, now)
	return len(unread), nil
}

func (f *fakeNotificationStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	var kept []models.Notification
	var deleted int64
	for _, n := range f.notifications {
		if n.IsExpired(now) {
			deleted++
			continue
		}
		kept = append(kept, n)
	}
	f.notifications = kept
	return deleted, nil
}

func (f *fakeNotificationStore) DeleteOldRead(ctx context.Context, before time.Time) (int64, error) {
	var kept []models.Notification
	var deleted int64
	for _, n := range f.notifications {
		if n.IsRead && n.ReadAt != nil && n.ReadAt.Before(before) {
			deleted++
			continue
		}
		kept = append(kept, n)
	}
	f.notifications = kept
	return deleted, nil
}

type fakeStaffStore struct {
	staff []models.Staff
}

func (f *fakeStaffStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Staff, error) {
	for _, s := range f.staff {
		if s.ID == id {
			copied := s
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeStaffStore) GetByUsername(ctx context.Context, username string) (*models.Staff, error) {
	for _, s := range f.staff {
		if s.Username == username {
			copied := s
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeStaffStore) ListOnDuty(ctx context.Context) ([]models.Staff, error) {
	var out []models.Staff
	for _, s := range f.staff {
		if s.IsOnDuty {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStaffStore) ListOnDutyByDepartment(ctx context.Context, dept models.Department) ([]models.Staff, error) {
	var out []models.Staff
	for _, s := range f.staff {
		if s.IsOnDuty && s.Department == dept {
			out = append(out, s)
		}
	}
	return out, nil
}

// testStores bundles fresh fakes for one test.
type testStores struct {
	orders        *fakeOrderStore
	timers        *fakeTimerStore
	workstations  *fakeWorkstationStore
	notifications *fakeNotificationStore
	staff         *fakeStaffStore
}

func newTestStores() (*Stores, *testStores) {
	fakes := &testStores{
		orders:        newFakeOrderStore(),
		timers:        newFakeTimerStore(),
		workstations:  newFakeWorkstationStore(),
		notifications: newFakeNotificationStore(),
		staff:         &fakeStaffStore{},
	}
	stores := &Stores{
		KitchenOrders: fakes.orders,
		Timers:        fakes.timers,
		Workstations:  fakes.workstations,
		Notifications: fakes.notifications,
		Staff:         fakes.staff,
	}
	return stores, fakes
}

func onDutyCook(dept models.Department) models.Staff {
	return models.Staff{
		ID:         uuid.New(),
		Username:   "cook-" + uuid.NewString()[:8],
		Name:       "Cook",
		Role:       models.RoleCook,
		Department: dept,
		IsOnDuty:   true,
	}
}
