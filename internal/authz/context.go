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

package authz

import (
	"github.com/mizanhq/mizan/internal/membership"
	"github.com/mizanhq/mizan/internal/rbac"
)

// Principal is the verified identity produced by upstream
// authentication, before any tenant resolution.
type Principal struct {
	// UserID is the authenticated user. Empty means unauthenticated.
	UserID string

	// PlatformOperator marks support staff allowed to impersonate.
	PlatformOperator bool

	// ImpersonateUserID, when set by a platform operator, is the user
	// the request should act as. Ignored for everyone else.
	ImpersonateUserID string
}

// Context is the per-request authorization snapshot. It is built once by
// the Resolver, passed by value and never mutated; downstream handlers
// trust it instead of re-deriving authorization.
//
// Invariant: Membership, when present, always belongs to TenantID. The
// resolver discards any row violating that, so a context can never carry
// another tenant's membership.
type Context struct {
	// UserID is the effective principal: the impersonated user when
	// impersonation is active, otherwise the authenticated user.
	UserID string

	// TenantID is the tenant the request is scoped to. Empty for
	// tenant-optional routes such as first-tenant creation.
	TenantID string

	// Membership is the principal's membership in TenantID, or nil when
	// none exists or it is not active.
	Membership *membership.Membership

	// ImpersonatorID is the platform operator behind an impersonated
	// request. Empty for normal sessions. Permission evaluation never
	// uses the impersonator's own memberships.
	ImpersonatorID string
}

// Authenticated reports whether a verified principal is present.
func (c Context) Authenticated() bool {
	return c.UserID != ""
}

// HasMembership reports whether an active membership for the context
// tenant is attached.
func (c Context) HasMembership() bool {
	return c.Membership != nil
}

// Role returns the membership role, or the empty role when no
// membership is attached. The empty role evaluates to deny everywhere.
func (c Context) Role() rbac.Role {
	if c.Membership == nil {
		return ""
	}
	return c.Membership.Role
}

// Impersonated reports whether the request runs under impersonation.
func (c Context) Impersonated() bool {
	return c.ImpersonatorID != ""
}
