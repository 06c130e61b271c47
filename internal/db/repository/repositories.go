package repository

import (
	"database/sql"

	"github.com/jaujye/ranbow-restaurant-order-app-sub001/internal/db"
)

// ErrNoRows marks lookups and updates that matched nothing. It aliases
// sql.ErrNoRows so callers can use a single errors.Is check for both reads
// and zero-row writes.
var ErrNoRows = sql.ErrNoRows

// Repositories provides access to all repository instances
type Repositories struct {
	KitchenOrder *KitchenOrderRepository
	Timer        *TimerRepository
	Workstation  *WorkstationRepository
	Notification *NotificationRepository
	Staff        *StaffRepository
}

// NewRepositories creates a new repositories container
func NewRepositories(database *db.Postgres) *Repositories {
	return &Repositories{
		KitchenOrder: NewKitchenOrderRepository(database.DB),
		Timer:        NewTimerRepository(database.DB),
		Workstation:  NewWorkstationRepository(database.DB),
		Notification: NewNotificationRepository(database.DB),
		Staff:        NewStaffRepository(database.DB),
	}
}
