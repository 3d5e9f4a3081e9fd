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
	"testing"

	"github.com/mizanhq/mizan/internal/membership"
	"github.com/mizanhq/mizan/internal/rbac"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activeContext(role rbac.Role) Context {
	return Context{
		UserID:   "user-1",
		TenantID: "tenant-1",
		Membership: &membership.Membership{
			ID:       "m-1",
			TenantID: "tenant-1",
			UserID:   "user-1",
			Role:     role,
			Status:   membership.StatusActive,
		},
	}
}

func newGate(t *testing.T) *Gate {
	t.Helper()
	catalog, err := rbac.NewCatalog()
	require.NoError(t, err)
	return NewGate(catalog)
}

// A request lacking both authentication and permissions must fail on
// authentication: the first failure in the fixed order wins, and the
// error kind tells the boundary 401 vs 403.
func TestGate_OrderingAuthBeforeEverything(t *testing.T) {
	gate := newGate(t)

	chain := NewChain(WithAllPermissions(rbac.CapInvoicesDelete))
	err := gate.Evaluate(Context{}, chain)

	require.Error(t, err)
	assert.True(t, ErrUnauthenticated(err), "expected AuthenticationError, got %T", err)
	assert.False(t, ErrForbidden(err))
}

func TestGate_TenantRequired(t *testing.T) {
	gate := newGate(t)

	// Authenticated, but no membership in the requested tenant.
	reqCtx := Context{UserID: "user-1", TenantID: "tenant-b"}
	err := gate.Evaluate(reqCtx, NewChain(WithAllPermissions(rbac.CapInvoicesRead)))

	require.Error(t, err)
	assert.True(t, ErrForbidden(err))
	assert.Contains(t, err.Error(), "tenant membership required")
}

func TestGate_TenantOptionalSkipsMembershipCheck(t *testing.T) {
	gate := newGate(t)

	reqCtx := Context{UserID: "user-1"}
	assert.NoError(t, gate.Evaluate(reqCtx, NewChain(TenantOptional())))
}

func TestGate_RoleAllowList(t *testing.T) {
	gate := newGate(t)
	chain := NewChain(WithRoles(rbac.RoleOwner, rbac.RoleAccountant))

	assert.NoError(t, gate.Evaluate(activeContext(rbac.RoleOwner), chain))
	assert.NoError(t, gate.Evaluate(activeContext(rbac.RoleAccountant), chain))

	err := gate.Evaluate(activeContext(rbac.RoleStaff), chain)
	require.Error(t, err)
	assert.True(t, ErrForbidden(err))
	// The message may enumerate acceptable roles; the caller knows
	// their own role already.
	assert.Contains(t, err.Error(), "owner")
}

func TestGate_PermissionModes(t *testing.T) {
	gate := newGate(t)

	tests := []struct {
		name    string
		role    rbac.Role
		chain   Chain
		allowed bool
	}{
		{
			name:    "staff reads invoices",
			role:    rbac.RoleStaff,
			chain:   NewChain(WithAllPermissions(rbac.CapInvoicesRead)),
			allowed: true,
		},
		{
			name:    "staff cannot delete invoices",
			role:    rbac.RoleStaff,
			chain:   NewChain(WithAllPermissions(rbac.CapInvoicesDelete)),
			allowed: false,
		},
		{
			name:    "all-mode denies on one missing capability",
			role:    rbac.RoleAccountant,
			chain:   NewChain(WithAllPermissions(rbac.CapInvoicesRead, rbac.CapSettingsBilling)),
			allowed: false,
		},
		{
			name:    "any-mode passes on one granted capability",
			role:    rbac.RoleReadOnly,
			chain:   NewChain(WithAnyPermission(rbac.CapSettingsBilling, rbac.CapReportsRead)),
			allowed: true,
		},
		{
			name:    "any-mode denies when nothing granted",
			role:    rbac.RoleReadOnly,
			chain:   NewChain(WithAnyPermission(rbac.CapSettingsBilling, rbac.CapMembersManage)),
			allowed: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := gate.Evaluate(activeContext(tt.role), tt.chain)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.True(t, ErrForbidden(err))
			}
		})
	}
}

// An empty capability list denies even the owner: a vacuous requirement
// must never trivially pass.
func TestGate_EmptyPermissionListDenies(t *testing.T) {
	gate := newGate(t)

	err := gate.Evaluate(activeContext(rbac.RoleOwner), NewChain(WithAllPermissions()))
	require.Error(t, err)
	assert.True(t, ErrForbidden(err))

	err = gate.Evaluate(activeContext(rbac.RoleOwner), NewChain(WithAnyPermission()))
	require.Error(t, err)
	assert.True(t, ErrForbidden(err))
}

func TestGate_UnknownRoleDenies(t *testing.T) {
	gate := newGate(t)

	reqCtx := activeContext(rbac.Role("superadmin"))
	err := gate.Evaluate(reqCtx, NewChain(WithAllPermissions(rbac.CapInvoicesRead)))
	require.Error(t, err)
	assert.True(t, ErrForbidden(err))
}

// NewChain fixes the evaluation order no matter how options are given.
func TestNewChain_FixedOrder(t *testing.T) {
	chain := NewChain(
		WithAllPermissions(rbac.CapInvoicesRead),
		WithRoles(rbac.RoleOwner),
	)

	require.Len(t, chain, 4)
	assert.IsType(t, RequireAuth{}, chain[0])
	assert.IsType(t, RequireTenant{}, chain[1])
	assert.IsType(t, RequireRole{}, chain[2])
	assert.IsType(t, RequirePermission{}, chain[3])
}

type panickingRequirement struct{}

func (panickingRequirement) check(*rbac.Catalog, Context) error {
	panic("malformed role data")
}

// A predicate fault must surface as a deny, never as a panic a generic
// recovery layer could turn into a 500 or, worse, an allow.
func TestGate_PanicConvertsToDeny(t *testing.T) {
	gate := newGate(t)

	var err error
	assert.NotPanics(t, func() {
		err = gate.Evaluate(activeContext(rbac.RoleOwner), Chain{panickingRequirement{}})
	})
	require.Error(t, err)
	assert.True(t, ErrForbidden(err))
}

// Evaluating the same context twice yields the same decision.
func TestGate_Deterministic(t *testing.T) {
	gate := newGate(t)
	chain := NewChain(WithAllPermissions(rbac.CapInvoicesDelete))
	reqCtx := activeContext(rbac.RoleStaff)

	first := gate.Evaluate(reqCtx, chain)
	second := gate.Evaluate(reqCtx, chain)

	require.Error(t, first)
	require.Error(t, second)
	assert.Equal(t, first.Error(), second.Error())
}
