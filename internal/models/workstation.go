package models

import (
	"time"

	"github.com/google/uuid"
)

// WorkstationType represents a workstation type
type WorkstationType string

const (
	WorkstationTypeGrill   WorkstationType = "grill"
	WorkstationTypeWok     WorkstationType = "wok"
	WorkstationTypeFryer   WorkstationType = "fryer"
	WorkstationTypePrep    WorkstationType = "prep"
	WorkstationTypePlating WorkstationType = "plating"
	WorkstationTypeOther   WorkstationType = "other"
)

// Workstation represents a named kitchen station with a bounded
// concurrent-order capacity.
type Workstation struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	Name        string          `db:"name" json:"name"`
	Type        WorkstationType `db:"type" json:"type"`
	MaxCapacity int             `db:"max_capacity" json:"max_capacity"`
	Description *string         `db:"description" json:"description"`
	IsActive    bool            `db:"is_active" json:"is_active"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

// WorkstationRequest is used for workstation creation/update
type WorkstationRequest struct {
	Name        string          `json:"name" validate:"required,min=1,max=100"`
	Type        WorkstationType `json:"type" validate:"required"`
	MaxCapacity int             `json:"max_capacity" validate:"min=1"`
	Description *string         `json:"description"`
	IsActive    bool            `json:"is_active"`
}
