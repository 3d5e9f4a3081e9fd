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

// Role identifies a principal's position within one tenant. Roles are
// always tenant-scoped; a user may hold a different role per tenant.
type Role string

const (
	// RoleOwner is the founding role of a tenant. Full access, including
	// billing and member management.
	RoleOwner Role = "owner"

	// RoleAccountant is the working SMMM role: full bookkeeping access,
	// report generation, member invitations. No billing settings.
	RoleAccountant Role = "accountant"

	// RoleStaff covers office personnel: day-to-day data entry, no
	// destructive operations and no member management.
	RoleStaff Role = "staff"

	// RoleReadOnly is for auditors and client representatives.
	RoleReadOnly Role = "readonly"
)

// AllRoles lists every defined role. Kept in privilege order for
// readability; the catalog is the authority on what each role grants.
var AllRoles = []Role{RoleOwner, RoleAccountant, RoleStaff, RoleReadOnly}

// Valid reports whether r is one of the defined roles. Role values
// cross serialization boundaries as plain strings, so every consumer
// that receives a role from outside the process must treat an invalid
// value as "no role" rather than an error.
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleAccountant, RoleStaff, RoleReadOnly:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}
