package models

import (
	"time"

	"github.com/google/uuid"
)

// StaffRole represents a staff member's role
type StaffRole string

const (
	RoleChef    StaffRole = "chef"
	RoleCook    StaffRole = "cook"
	RoleServer  StaffRole = "server"
	RoleManager StaffRole = "manager"
)

// Department groups staff for broadcasts
type Department string

const (
	DepartmentKitchen Department = "kitchen"
	DepartmentService Department = "service"
	DepartmentAdmin   Department = "admin"
)

// Staff represents a staff member
type Staff struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	Username     string     `db:"username" json:"username"`
	Name         string     `db:"name" json:"name"`
	Role         StaffRole  `db:"role" json:"role"`
	Department   Department `db:"department" json:"department"`
	IsOnDuty     bool       `db:"is_on_duty" json:"is_on_duty"`
	PasswordHash string     `db:"password_hash" json:"-"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}
