// Copyright 2026 The Mizan Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package membership

import (
	"time"

	"github.com/mizanhq/mizan/internal/rbac"
)

// Status is the lifecycle state of a membership. Memberships are never
// physically deleted; revoking access is a transition to suspended so
// the audit trail stays reconstructable.
type Status string

const (
	StatusActive    Status = "active"
	StatusInvited   Status = "invited"
	StatusSuspended Status = "suspended"
)

// Valid reports whether s is a defined status.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInvited, StatusSuspended:
		return true
	}
	return false
}

// Membership binds (user, tenant) to a role and a lifecycle status.
// A user holds at most one membership per tenant.
type Membership struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	UserID    string    `json:"user_id"`
	Role      rbac.Role `json:"role"`
	Status    Status    `json:"status"`
	InvitedBy string    `json:"invited_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsActive reports whether the membership currently grants access.
func (m *Membership) IsActive() bool {
	return m.Status == StatusActive
}

// CanTransition reports whether a status change from the current state
// to next is legal: invited→active (invite accepted), active→suspended,
// suspended→active (reinstated). Everything else, including no-op
// transitions, is rejected.
func (m *Membership) CanTransition(next Status) bool {
	switch m.Status {
	case StatusInvited:
		return next == StatusActive
	case StatusActive:
		return next == StatusSuspended
	case StatusSuspended:
		return next == StatusActive
	}
	return false
}
