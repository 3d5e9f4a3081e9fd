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
	"context"
	"errors"
	"testing"

	"github.com/mizanhq/mizan/internal/audit"
	"github.com/mizanhq/mizan/internal/membership"
	"github.com/mizanhq/mizan/internal/rbac"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockLookup implements MembershipLookup for testing
type mockLookup struct {
	mock.Mock
}

func (m *mockLookup) Lookup(ctx context.Context, userID, tenantID string) (*membership.Membership, error) {
	args := m.Called(ctx, userID, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*membership.Membership), args.Error(1)
}

// capturingAuditLogger records events for assertions
type capturingAuditLogger struct {
	events []audit.Event
}

func (l *capturingAuditLogger) Log(_ context.Context, event audit.Event) {
	l.events = append(l.events, event)
}

func activeMembership(userID, tenantID string, role rbac.Role) *membership.Membership {
	return &membership.Membership{
		ID:       "m-" + userID + "-" + tenantID,
		TenantID: tenantID,
		UserID:   userID,
		Role:     role,
		Status:   membership.StatusActive,
	}
}

func TestResolver_NoPrincipal(t *testing.T) {
	resolver := NewResolver(&mockLookup{}, &capturingAuditLogger{})

	_, err := resolver.Resolve(context.Background(), Principal{}, "tenant-1")

	require.Error(t, err)
	assert.True(t, ErrUnauthenticated(err))
}

func TestResolver_NoTenantSkipsLookup(t *testing.T) {
	lookup := &mockLookup{}
	resolver := NewResolver(lookup, &capturingAuditLogger{})

	reqCtx, err := resolver.Resolve(context.Background(), Principal{UserID: "user-1"}, "")

	require.NoError(t, err)
	assert.Equal(t, "user-1", reqCtx.UserID)
	assert.Empty(t, reqCtx.TenantID)
	assert.False(t, reqCtx.HasMembership())
	lookup.AssertNotCalled(t, "Lookup", mock.Anything, mock.Anything, mock.Anything)
}

func TestResolver_ActiveMembershipAttached(t *testing.T) {
	lookup := &mockLookup{}
	lookup.On("Lookup", mock.Anything, "user-1", "tenant-1").
		Return(activeMembership("user-1", "tenant-1", rbac.RoleAccountant), nil)
	resolver := NewResolver(lookup, &capturingAuditLogger{})

	reqCtx, err := resolver.Resolve(context.Background(), Principal{UserID: "user-1"}, "tenant-1")

	require.NoError(t, err)
	require.True(t, reqCtx.HasMembership())
	assert.Equal(t, rbac.RoleAccountant, reqCtx.Role())
	assert.Equal(t, "tenant-1", reqCtx.Membership.TenantID)
}

func TestResolver_MissingMembershipIsNotAnError(t *testing.T) {
	lookup := &mockLookup{}
	lookup.On("Lookup", mock.Anything, "user-1", "tenant-1").
		Return(nil, membership.ErrMembershipNotFound)
	resolver := NewResolver(lookup, &capturingAuditLogger{})

	reqCtx, err := resolver.Resolve(context.Background(), Principal{UserID: "user-1"}, "tenant-1")

	// The resolver does not reject; routes like first-tenant creation
	// are valid without a membership. Rejection is the gate's call.
	require.NoError(t, err)
	assert.False(t, reqCtx.HasMembership())
	assert.Equal(t, "tenant-1", reqCtx.TenantID)
}

func TestResolver_NonActiveStatusesResolveAbsent(t *testing.T) {
	for _, status := range []membership.Status{membership.StatusInvited, membership.StatusSuspended} {
		t.Run(string(status), func(t *testing.T) {
			m := activeMembership("user-1", "tenant-1", rbac.RoleStaff)
			m.Status = status

			lookup := &mockLookup{}
			lookup.On("Lookup", mock.Anything, "user-1", "tenant-1").Return(m, nil)
			resolver := NewResolver(lookup, &capturingAuditLogger{})

			reqCtx, err := resolver.Resolve(context.Background(), Principal{UserID: "user-1"}, "tenant-1")

			require.NoError(t, err)
			assert.False(t, reqCtx.HasMembership())
		})
	}
}

// The gate path fails closed: a broken membership store denies instead
// of letting the request through or surfacing a 500.
func TestResolver_LookupFailureDenies(t *testing.T) {
	lookup := &mockLookup{}
	lookup.On("Lookup", mock.Anything, "user-1", "tenant-1").
		Return(nil, errors.New("connection refused"))
	resolver := NewResolver(lookup, &capturingAuditLogger{})

	_, err := resolver.Resolve(context.Background(), Principal{UserID: "user-1"}, "tenant-1")

	require.Error(t, err)
	assert.True(t, ErrForbidden(err))
	assert.NotContains(t, err.Error(), "connection refused", "store internals must not leak")
}

// Core tenant-isolation invariant: a user with memberships in tenants A
// and B, requesting tenant B, must only ever see B's membership — and a
// store bug returning the wrong tenant's row is discarded.
func TestResolver_ContextIsolation(t *testing.T) {
	memberA := activeMembership("user-1", "tenant-a", rbac.RoleOwner)
	memberB := activeMembership("user-1", "tenant-b", rbac.RoleReadOnly)

	lookup := &mockLookup{}
	lookup.On("Lookup", mock.Anything, "user-1", "tenant-a").Return(memberA, nil)
	lookup.On("Lookup", mock.Anything, "user-1", "tenant-b").Return(memberB, nil)
	resolver := NewResolver(lookup, &capturingAuditLogger{})

	ctxA, err := resolver.Resolve(context.Background(), Principal{UserID: "user-1"}, "tenant-a")
	require.NoError(t, err)
	ctxB, err := resolver.Resolve(context.Background(), Principal{UserID: "user-1"}, "tenant-b")
	require.NoError(t, err)

	assert.Equal(t, "tenant-a", ctxA.Membership.TenantID)
	assert.Equal(t, rbac.RoleOwner, ctxA.Role())
	assert.Equal(t, "tenant-b", ctxB.Membership.TenantID)
	assert.Equal(t, rbac.RoleReadOnly, ctxB.Role())
}

func TestResolver_MismatchedTenantRowDiscarded(t *testing.T) {
	// Store misbehaves: asked for tenant-b, returns tenant-a's row.
	lookup := &mockLookup{}
	lookup.On("Lookup", mock.Anything, "user-1", "tenant-b").
		Return(activeMembership("user-1", "tenant-a", rbac.RoleOwner), nil)
	resolver := NewResolver(lookup, &capturingAuditLogger{})

	reqCtx, err := resolver.Resolve(context.Background(), Principal{UserID: "user-1"}, "tenant-b")

	require.NoError(t, err)
	assert.False(t, reqCtx.HasMembership(),
		"a membership from another tenant must never be attached")
}

func TestResolver_ImpersonationUsesTargetMembership(t *testing.T) {
	lookup := &mockLookup{}
	lookup.On("Lookup", mock.Anything, "target-user", "tenant-1").
		Return(activeMembership("target-user", "tenant-1", rbac.RoleStaff), nil)
	auditLog := &capturingAuditLogger{}
	resolver := NewResolver(lookup, auditLog)

	principal := Principal{
		UserID:            "operator-1",
		PlatformOperator:  true,
		ImpersonateUserID: "target-user",
	}
	reqCtx, err := resolver.Resolve(context.Background(), principal, "tenant-1")

	require.NoError(t, err)
	assert.Equal(t, "target-user", reqCtx.UserID)
	assert.Equal(t, "operator-1", reqCtx.ImpersonatorID)
	assert.True(t, reqCtx.Impersonated())
	assert.Equal(t, rbac.RoleStaff, reqCtx.Role(),
		"evaluation must use the impersonated user's membership")

	// The operator's own membership is never consulted.
	lookup.AssertNotCalled(t, "Lookup", mock.Anything, "operator-1", "tenant-1")

	// Both identities land in the audit trail.
	require.Len(t, auditLog.events, 1)
	assert.Equal(t, audit.TypeImpersonationActive, auditLog.events[0].Type)
	assert.Equal(t, "operator-1", auditLog.events[0].Metadata[audit.AttrImpersonatorID])
	assert.Equal(t, "target-user", auditLog.events[0].Metadata[audit.AttrUserID])
}

func TestResolver_ImpersonationIgnoredForNonOperators(t *testing.T) {
	lookup := &mockLookup{}
	lookup.On("Lookup", mock.Anything, "user-1", "tenant-1").
		Return(activeMembership("user-1", "tenant-1", rbac.RoleStaff), nil)
	resolver := NewResolver(lookup, &capturingAuditLogger{})

	principal := Principal{
		UserID:            "user-1",
		ImpersonateUserID: "victim-user",
	}
	reqCtx, err := resolver.Resolve(context.Background(), principal, "tenant-1")

	require.NoError(t, err)
	assert.Equal(t, "user-1", reqCtx.UserID)
	assert.False(t, reqCtx.Impersonated())
	lookup.AssertNotCalled(t, "Lookup", mock.Anything, "victim-user", "tenant-1")
}
