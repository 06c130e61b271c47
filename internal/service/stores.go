package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jaujye/ranbow-restaurant-order-app-sub001/internal/db/repository"
	"github.com/jaujye/ranbow-restaurant-order-app-sub001/internal/models"
)

// The services consume persistence through these narrow store interfaces so
// tests can run against in-memory fakes. The sqlx repositories satisfy them.

// KitchenOrderStore is the persistence contract for kitchen orders.
// UpdateVersioned returns the affected-row count; zero rows means a stale
// version or a missing order.
type KitchenOrderStore interface {
	Create(ctx context.Context, order models.KitchenOrder) (*models.KitchenOrder, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.KitchenOrder, error)
	GetByOrderID(ctx context.Context, orderID uuid.UUID) (*models.KitchenOrder, error)
	UpdateVersioned(ctx context.Context, order models.KitchenOrder) (int64, error)
	ListByStatus(ctx context.Context, status models.KitchenStatus) ([]models.KitchenOrder, error)
	ListActive(ctx context.Context) ([]models.KitchenOrder, error)
	ListQueue(ctx context.Context) ([]models.KitchenOrder, error)
	ListOverdue(ctx context.Context, now time.Time) ([]models.KitchenOrder, error)
	CountActive(ctx context.Context) (int, error)
	CountQueued(ctx context.Context) (int, error)
}

// TimerStore is the persistence contract for cooking timers. UpdateVersioned
// returns the affected-row count; zero rows means a stale version or a
// missing timer.
type TimerStore interface {
	Create(ctx context.Context, timer models.CookingTimer) (*models.CookingTimer, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.CookingTimer, error)
	GetActiveByOrderID(ctx context.Context, orderID uuid.UUID) (*models.CookingTimer, error)
	UpdateVersioned(ctx context.Context, timer models.CookingTimer) (int64, error)
	ListByWorkstation(ctx context.Context, workstationID uuid.UUID) ([]models.CookingTimer, error)
	ListRunning(ctx context.Context) ([]models.CookingTimer, error)
}

// WorkstationStore is the persistence contract for workstations.
type WorkstationStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Workstation, error)
	List(ctx context.Context) ([]models.Workstation, error)
}

// NotificationStore is the persistence contract for notifications.
type NotificationStore interface {
	Create(ctx context.Context, n models.Notification) (*models.Notification, error)
	ListByStaff(ctx context.Context, staffID uuid.UUID, limit int) ([]models.Notification, error)
	ListUnreadByStaff(ctx context.Context, staffID uuid.UUID, now time.Time) ([]models.Notification, error)
	MarkRead(ctx context.Context, id, staffID uuid.UUID, readAt time.Time) error
	MarkAllRead(ctx context.Context, staffID uuid.UUID, readAt time.Time) (int64, error)
	CountUnread(ctx context.Context, staffID uuid.UUID, now time.Time) (int, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
	DeleteOldRead(ctx context.Context, before time.Time) (int64, error)
}

// StaffStore is the persistence contract for staff lookups.
type StaffStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Staff, error)
	GetByUsername(ctx context.Context, username string) (*models.Staff, error)
	ListOnDuty(ctx context.Context) ([]models.Staff, error)
	ListOnDutyByDepartment(ctx context.Context, dept models.Department) ([]models.Staff, error)
}

// Stores bundles the persistence ports the services consume.
type Stores struct {
	KitchenOrders KitchenOrderStore
	Timers        TimerStore
	Workstations  WorkstationStore
	Notifications NotificationStore
	Staff         StaffStore
}

// NewStores adapts the sqlx repositories to the store ports.
func NewStores(repos *repository.Repositories) *Stores {
	return &Stores{
		KitchenOrders: repos.KitchenOrder,
		Timers:        repos.Timer,
		Workstations:  repos.Workstation,
		Notifications: repos.Notification,
		Staff:         repos.Staff,
	}
}
