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

package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// HasPermission must agree with the catalog for every (role, capability)
// pair, granted or not.
func TestHasPermission_MatchesCatalog(t *testing.T) {
	catalog := MustNewCatalog()

	for _, role := range AllRoles {
		granted := make(map[Capability]bool)
		for _, capability := range catalog.Grants(role) {
			granted[capability] = true
		}
		for _, capability := range AllCapabilities {
			assert.Equal(t, granted[capability], catalog.HasPermission(role, capability),
				"role=%s capability=%s", role, capability)
		}
	}
}

func TestHasPermission_UnknownInputsDeny(t *testing.T) {
	catalog := MustNewCatalog()

	tests := []struct {
		name       string
		role       Role
		capability Capability
	}{
		{"empty role", Role(""), CapInvoicesRead},
		{"unknown role", Role("superadmin"), CapInvoicesRead},
		{"sql-ish role", Role("owner' OR '1'='1"), CapInvoicesRead},
		{"unknown capability", RoleOwner, Capability("invoices:explode")},
		{"empty capability", RoleOwner, Capability("")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.False(t, catalog.HasPermission(tt.role, tt.capability))
			})
		})
	}
}

// An empty requirement list must deny for every role. A vacuously-true
// "all of nothing" would turn a forgotten capability list on a route
// into an open door.
func TestEvaluator_EmptyListDenies(t *testing.T) {
	catalog := MustNewCatalog()

	for _, role := range AllRoles {
		assert.False(t, catalog.HasAnyPermission(role), "HasAnyPermission(%s) with no capabilities", role)
		assert.False(t, catalog.HasAllPermissions(role), "HasAllPermissions(%s) with no capabilities", role)
	}
}

func TestHasAnyPermission(t *testing.T) {
	catalog := MustNewCatalog()

	assert.True(t, catalog.HasAnyPermission(RoleStaff, CapInvoicesDelete, CapInvoicesRead),
		"one granted capability is enough")
	assert.False(t, catalog.HasAnyPermission(RoleReadOnly, CapInvoicesDelete, CapSettingsBilling))
	assert.False(t, catalog.HasAnyPermission(Role("unknown"), CapInvoicesRead))
}

func TestHasAllPermissions(t *testing.T) {
	catalog := MustNewCatalog()

	assert.True(t, catalog.HasAllPermissions(RoleAccountant, CapInvoicesRead, CapInvoicesDelete))
	assert.False(t, catalog.HasAllPermissions(RoleStaff, CapInvoicesRead, CapInvoicesDelete),
		"a single missing capability denies")
	assert.False(t, catalog.HasAllPermissions(Role("unknown"), CapInvoicesRead))
}
