package model

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// ApplicationStatus is the workflow state owned by the backend
type ApplicationStatus string

const (
	ApplicationStatusPending      ApplicationStatus = "pending"
	ApplicationStatusApproved     ApplicationStatus = "approved"
	ApplicationStatusRejected     ApplicationStatus = "rejected"
	ApplicationStatusRoomAssigned ApplicationStatus = "room_assigned"
	ApplicationStatusLeaseCreated ApplicationStatus = "lease_created"
	ApplicationStatusLeaseSigned  ApplicationStatus = "lease_signed"
	ApplicationStatusMovedIn      ApplicationStatus = "moved_in"
	ApplicationStatusActive       ApplicationStatus = "active"
	ApplicationStatusWithdrawn    ApplicationStatus = "withdrawn"
	ApplicationStatusExpired      ApplicationStatus = "expired"
)

// Application represents a tenant's request to rent a room in a property
type Application struct {
	ID                int64             `json:"id" db:"id"`
	TenantName        string            `json:"tenant_name" db:"tenant_name"`
	TenantEmail       string            `json:"tenant_email" db:"tenant_email"`
	TenantPhone       *string           `json:"tenant_phone,omitempty" db:"tenant_phone"`
	PropertyID        int64             `json:"property_ref" db:"property_id"`
	PropertyName      *string           `json:"property_name,omitempty" db:"property_name"`
	RoomID            *int64            `json:"room_ref,omitempty" db:"room_id"` // tenant's original preference
	DesiredMoveInDate *time.Time        `json:"desired_move_in_date,omitempty" db:"desired_move_in_date"`
	RentBudget        *decimal.Decimal  `json:"rent_budget,omitempty" db:"rent_budget"`
	PriorityScore     float64           `json:"priority_score" db:"priority_score"`
	Status            ApplicationStatus `json:"status" db:"status"`
	CreatedAt         time.Time         `json:"created_at" db:"created_at"`
}

// EffectivePriority returns the priority score with invalid values mapped to 0
func (a Application) EffectivePriority() float64 {
	p := a.PriorityScore
	if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 {
		return 0
	}
	return p
}

// IsPending reports whether the application still awaits a decision
func (a Application) IsPending() bool {
	return a.Status == ApplicationStatusPending || a.Status == ""
}

// Property is referenced by id, name and address only
type Property struct {
	ID      int64  `json:"id" db:"id"`
	Name    string `json:"name" db:"name"`
	Address string `json:"address" db:"address"`
}
