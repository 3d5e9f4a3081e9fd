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

import "fmt"

// Catalog is the read-only role → capability-set table. It is built once
// at process start and never mutated afterwards, so it is safe for
// unsynchronized concurrent reads. A capability absent from a role's set
// is denied; an unknown role grants nothing.
type Catalog struct {
	grants map[Role]map[Capability]struct{}
}

// grantTable is the single place where role capability sets are defined.
// The sets nest: readonly ⊂ staff ⊂ accountant ⊂ owner. Adding a
// capability to a role means editing exactly this table; an extra entry
// here silently over-grants, so catalog_test.go enumerates every role's
// exact expected set.
var grantTable = map[Role][]Capability{
	RoleReadOnly: {
		CapInvoicesRead,
		CapLedgerRead,
		CapDocumentsRead,
		CapReportsRead,
		CapRiskRead,
	},
	RoleStaff: {
		CapInvoicesRead, CapInvoicesCreate, CapInvoicesUpdate,
		CapLedgerRead, CapLedgerWrite,
		CapDocumentsRead, CapDocumentsUpload,
		CapReportsRead,
		CapRiskRead,
	},
	RoleAccountant: {
		CapInvoicesRead, CapInvoicesCreate, CapInvoicesUpdate, CapInvoicesDelete,
		CapLedgerRead, CapLedgerWrite,
		CapDocumentsRead, CapDocumentsUpload, CapDocumentsDelete,
		CapReportsRead, CapReportsGenerate,
		CapRiskRead,
		CapMembersRead, CapMembersInvite,
	},
	RoleOwner: {
		CapInvoicesRead, CapInvoicesCreate, CapInvoicesUpdate, CapInvoicesDelete,
		CapLedgerRead, CapLedgerWrite,
		CapDocumentsRead, CapDocumentsUpload, CapDocumentsDelete,
		CapReportsRead, CapReportsGenerate,
		CapRiskRead,
		CapMembersRead, CapMembersInvite, CapMembersManage,
		CapSettingsManage, CapSettingsBilling,
	},
}

// NewCatalog builds the catalog from the grant table and validates it:
// every role must be covered with a non-empty set, and every granted
// capability must be a declared constant. Validation failures abort
// startup rather than run with a miswired security table.
func NewCatalog() (*Catalog, error) {
	declared := make(map[Capability]struct{}, len(AllCapabilities))
	for _, c := range AllCapabilities {
		declared[c] = struct{}{}
	}

	grants := make(map[Role]map[Capability]struct{}, len(grantTable))
	for role, caps := range grantTable {
		if !role.Valid() {
			return nil, fmt.Errorf("grant table references unknown role %q", role)
		}
		if len(caps) == 0 {
			return nil, fmt.Errorf("role %q has an empty capability set", role)
		}
		set := make(map[Capability]struct{}, len(caps))
		for _, c := range caps {
			if _, ok := declared[c]; !ok {
				return nil, fmt.Errorf("role %q grants undeclared capability %q", role, c)
			}
			set[c] = struct{}{}
		}
		grants[role] = set
	}

	for _, role := range AllRoles {
		if _, ok := grants[role]; !ok {
			return nil, fmt.Errorf("role %q missing from grant table", role)
		}
	}

	return &Catalog{grants: grants}, nil
}

// MustNewCatalog is NewCatalog for wiring paths where a broken grant
// table should stop the process immediately.
func MustNewCatalog() *Catalog {
	c, err := NewCatalog()
	if err != nil {
		panic(err)
	}
	return c
}

// Grants returns a copy of the capability set for role. Unknown roles
// return an empty set.
func (c *Catalog) Grants(role Role) []Capability {
	set, ok := c.grants[role]
	if !ok {
		return nil
	}
	out := make([]Capability, 0, len(set))
	for capability := range set {
		out = append(out, capability)
	}
	return out
}
