package tenant

import (
	"time"
)

// Tenant is an isolated customer organization (an SMMM practice). All
// business data is partitioned by tenant id.
type Tenant struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Plan      string    `json:"plan"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Status constants
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Plan constants. The plan determines quota limits; see the quota
// package for the metrics it bounds.
const (
	PlanStarter      = "starter"
	PlanProfessional = "professional"
)
