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

// Package system provides integration tests that run against a real PostgreSQL database.
//
// Test Execution:
//
//	INTEGRATION_TEST=true go test -v ./tests/system/...
//
// Prerequisites:
//
//	docker compose up -d postgres
//
// Test Categories:
//   - TEN-*: Tenant isolation tests
//   - MEM-*: Membership lifecycle tests
//   - QTA-*: Quota tests
package system

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/mizanhq/mizan/internal/audit"
	"github.com/mizanhq/mizan/internal/authz"
	"github.com/mizanhq/mizan/internal/id"
	"github.com/mizanhq/mizan/internal/invoice"
	"github.com/mizanhq/mizan/internal/membership"
	"github.com/mizanhq/mizan/internal/quota"
	"github.com/mizanhq/mizan/internal/rbac"
	"github.com/mizanhq/mizan/internal/store/postgres"
	"github.com/mizanhq/mizan/internal/tenant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testDB is the shared database connection for integration tests
var testDB *postgres.DB

// TestMain sets up and tears down the test database connection
func TestMain(m *testing.M) {
	// Skip if not integration test
	if os.Getenv("INTEGRATION_TEST") != "true" {
		os.Exit(0)
	}

	ctx := context.Background()
	db, err := postgres.New(ctx, postgres.Config{
		Host:         getEnvOrDefault("DB_HOST", "localhost"),
		Port:         getEnvOrDefault("DB_PORT", "5432"),
		User:         getEnvOrDefault("DB_USER", "mizan"),
		Password:     getEnvOrDefault("DB_PASSWORD", "mizan_dev_password"),
		Database:     getEnvOrDefault("DB_NAME", "mizan"),
		SSLMode:      "disable",
		MaxOpenConns: 5,
		MaxIdleConns: 2,
	})
	if err != nil {
		panic("failed to connect to test database: " + err.Error())
	}
	testDB = db

	// Apply migrations
	if err := db.Migrate(ctx, postgres.InitialSchema); err != nil {
		// Ignore errors for already existing tables
		_ = err
	}

	code := m.Run()

	testDB.Close()
	os.Exit(code)
}

func getEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func newServices(t *testing.T) (*tenant.Service, *membership.Service, *authz.Resolver) {
	t.Helper()
	auditLogger := audit.NewSlogLogger()
	hasher := membership.NewTokenHasher(8*1024, 1, 1, 16, 32)
	memberSvc := membership.NewService(
		postgres.NewMembershipRepository(testDB),
		postgres.NewInviteRepository(testDB),
		hasher,
		auditLogger,
	)
	tenantSvc := tenant.NewService(postgres.NewTenantRepository(testDB), memberSvc, auditLogger)
	return tenantSvc, memberSvc, authz.NewResolver(memberSvc, auditLogger)
}

// uniqueName avoids collisions with rows left over from earlier runs.
func uniqueName(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

// =============================================================================
// TENANT ISOLATION TESTS
// =============================================================================

// TestPurpose: Validates cross-tenant isolation: a membership in tenant A
// grants nothing in tenant B, even for an owner.
// Scope: Integration Test
// Security: Multi-tenancy boundary enforcement (prevents cross-tenant access)
// Expected: Resolution against tenant B yields no membership; the gate denies.
// Test Case ID: TEN-01
func TestTenant_Isolation_OwnerOfTenantAHasNothingInTenantB(t *testing.T) {
	if testDB == nil {
		t.Skip("Integration test requires database (set INTEGRATION_TEST=true)")
	}

	ctx := context.Background()
	tenantSvc, _, resolver := newServices(t)

	founderA := id.NewUUIDv7()
	founderB := id.NewUUIDv7()

	tenantA, err := tenantSvc.CreateTenant(ctx, uniqueName("practice-a"), tenant.PlanStarter, founderA)
	require.NoError(t, err)
	tenantB, err := tenantSvc.CreateTenant(ctx, uniqueName("practice-b"), tenant.PlanStarter, founderB)
	require.NoError(t, err)

	// Founder A resolved against their own tenant: active owner.
	reqCtx, err := resolver.Resolve(ctx, authz.Principal{UserID: founderA}, tenantA.ID)
	require.NoError(t, err)
	require.True(t, reqCtx.HasMembership())
	assert.Equal(t, rbac.RoleOwner, reqCtx.Role())

	// Founder A resolved against tenant B: no membership at all.
	reqCtx, err = resolver.Resolve(ctx, authz.Principal{UserID: founderA}, tenantB.ID)
	require.NoError(t, err)
	assert.False(t, reqCtx.HasMembership())

	gate := authz.NewGate(rbac.MustNewCatalog())
	err = gate.Evaluate(reqCtx, authz.NewChain(authz.WithAllPermissions(rbac.CapInvoicesRead)))
	assert.True(t, authz.ErrForbidden(err))
}

// TestPurpose: Validates that invoices are partitioned by tenant at the
// store level: tenant B cannot read or delete tenant A's invoice by ID.
// Scope: Integration Test
// Security: Row-level tenant partitioning
// Expected: Lookups from the wrong tenant return ErrInvoiceNotFound.
// Test Case ID: TEN-02
func TestTenant_Isolation_InvoiceRowsArePartitioned(t *testing.T) {
	if testDB == nil {
		t.Skip("Integration test requires database (set INTEGRATION_TEST=true)")
	}

	ctx := context.Background()
	tenantSvc, _, _ := newServices(t)
	invoiceSvc := invoice.NewService(postgres.NewInvoiceRepository(testDB))

	tenantA, err := tenantSvc.CreateTenant(ctx, uniqueName("inv-a"), tenant.PlanStarter, id.NewUUIDv7())
	require.NoError(t, err)
	tenantB, err := tenantSvc.CreateTenant(ctx, uniqueName("inv-b"), tenant.PlanStarter, id.NewUUIDv7())
	require.NoError(t, err)

	inv, err := invoiceSvc.Create(ctx, tenantA.ID, id.NewUUIDv7(), uniqueName("INV"), "Acme Ltd", "TRY", 125000, time.Now())
	require.NoError(t, err)

	_, err = invoiceSvc.Get(ctx, tenantB.ID, inv.ID)
	assert.ErrorIs(t, err, invoice.ErrInvoiceNotFound)

	err = invoiceSvc.Delete(ctx, tenantB.ID, inv.ID)
	assert.ErrorIs(t, err, invoice.ErrInvoiceNotFound)

	// The owning tenant still sees it.
	got, err := invoiceSvc.Get(ctx, tenantA.ID, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, inv.Number, got.Number)
}

// =============================================================================
// MEMBERSHIP LIFECYCLE TESTS
// =============================================================================

// TestPurpose: Validates the invite lifecycle end to end against postgres:
// invited memberships grant no access until the token is accepted.
// Scope: Integration Test
// Security: Invitation token verification, status gating
// Expected: Resolution attaches no membership while invited; after
// acceptance the membership is active with the invited role.
// Test Case ID: MEM-01
func TestMembership_InviteAcceptLifecycle(t *testing.T) {
	if testDB == nil {
		t.Skip("Integration test requires database (set INTEGRATION_TEST=true)")
	}

	ctx := context.Background()
	tenantSvc, memberSvc, resolver := newServices(t)

	founder := id.NewUUIDv7()
	invitee := id.NewUUIDv7()

	ten, err := tenantSvc.CreateTenant(ctx, uniqueName("invite"), tenant.PlanStarter, founder)
	require.NoError(t, err)

	_, token, err := memberSvc.Invite(ctx, ten.ID, invitee, rbac.RoleStaff, founder)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	reqCtx, err := resolver.Resolve(ctx, authz.Principal{UserID: invitee}, ten.ID)
	require.NoError(t, err)
	assert.False(t, reqCtx.HasMembership(), "invited membership must not grant access")

	_, err = memberSvc.AcceptInvite(ctx, invitee, ten.ID, "wrong-token")
	assert.ErrorIs(t, err, membership.ErrInvalidToken)

	m, err := memberSvc.AcceptInvite(ctx, invitee, ten.ID, token)
	require.NoError(t, err)
	assert.Equal(t, membership.StatusActive, m.Status)

	reqCtx, err = resolver.Resolve(ctx, authz.Principal{UserID: invitee}, ten.ID)
	require.NoError(t, err)
	require.True(t, reqCtx.HasMembership())
	assert.Equal(t, rbac.RoleStaff, reqCtx.Role())

	// The token is one-time use.
	_, err = memberSvc.AcceptInvite(ctx, invitee, ten.ID, token)
	assert.Error(t, err)
}

// TestPurpose: Validates that suspension removes access without deleting
// the membership row.
// Scope: Integration Test
// Security: Access revocation with audit trail preservation
// Expected: Suspended member resolves to no membership; the row survives
// and reinstating restores access.
// Test Case ID: MEM-02
func TestMembership_SuspendKeepsRowRevokesAccess(t *testing.T) {
	if testDB == nil {
		t.Skip("Integration test requires database (set INTEGRATION_TEST=true)")
	}

	ctx := context.Background()
	tenantSvc, memberSvc, resolver := newServices(t)

	founder := id.NewUUIDv7()
	ten, err := tenantSvc.CreateTenant(ctx, uniqueName("suspend"), tenant.PlanStarter, founder)
	require.NoError(t, err)

	_, err = memberSvc.Suspend(ctx, ten.ID, founder, founder)
	require.NoError(t, err)

	reqCtx, err := resolver.Resolve(ctx, authz.Principal{UserID: founder}, ten.ID)
	require.NoError(t, err)
	assert.False(t, reqCtx.HasMembership())

	// The row is still there, just suspended.
	m, err := memberSvc.Lookup(ctx, founder, ten.ID)
	require.NoError(t, err)
	assert.Equal(t, membership.StatusSuspended, m.Status)

	_, err = memberSvc.Reinstate(ctx, ten.ID, founder, founder)
	require.NoError(t, err)

	reqCtx, err = resolver.Resolve(ctx, authz.Principal{UserID: founder}, ten.ID)
	require.NoError(t, err)
	assert.True(t, reqCtx.HasMembership())
}

// =============================================================================
// QUOTA TESTS
// =============================================================================

// TestPurpose: Validates plan limit lookup and usage counting against the
// seeded plan_limits table.
// Scope: Integration Test
// Expected: A starter tenant starts within its invoice limit; recording
// usage moves the counter; an unknown metric is unmetered.
// Test Case ID: QTA-01
func TestQuota_PlanLimitsAndUsageCounters(t *testing.T) {
	if testDB == nil {
		t.Skip("Integration test requires database (set INTEGRATION_TEST=true)")
	}

	ctx := context.Background()
	tenantSvc, _, _ := newServices(t)
	quotaRepo := postgres.NewQuotaRepository(testDB)

	ten, err := tenantSvc.CreateTenant(ctx, uniqueName("quota"), tenant.PlanStarter, id.NewUUIDv7())
	require.NoError(t, err)

	result, err := quotaRepo.Check(ctx, ten.ID, quota.MetricInvoices)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.Equal(t, 100, result.Limit)
	assert.Equal(t, 0, result.Used)

	require.NoError(t, quotaRepo.Record(ctx, ten.ID, quota.MetricInvoices))
	require.NoError(t, quotaRepo.Record(ctx, ten.ID, quota.MetricInvoices))

	result, err = quotaRepo.Check(ctx, ten.ID, quota.MetricInvoices)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Used)

	// Metrics without a plan limit row are unmetered.
	result, err = quotaRepo.Check(ctx, ten.ID, "unmetered-metric")
	require.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.Equal(t, 0, result.Limit)
}
