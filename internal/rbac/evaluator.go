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

// Evaluation functions. All of these are pure, total and never panic:
// role values arrive from serialization boundaries and may be arbitrary
// attacker-influenced strings, which must evaluate to a deny, not an
// error.

// HasPermission reports whether role is granted capability. Unknown or
// empty roles and unknown capabilities evaluate to false.
func (c *Catalog) HasPermission(role Role, capability Capability) bool {
	set, ok := c.grants[role]
	if !ok {
		return false
	}
	_, ok = set[capability]
	return ok
}

// HasAnyPermission reports whether role is granted at least one of
// capabilities. An empty capability list denies: a vacuous requirement
// must never pass a security check.
func (c *Catalog) HasAnyPermission(role Role, capabilities ...Capability) bool {
	for _, capability := range capabilities {
		if c.HasPermission(role, capability) {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether role is granted every one of
// capabilities. An empty capability list denies, same as HasAnyPermission.
func (c *Catalog) HasAllPermissions(role Role, capabilities ...Capability) bool {
	if len(capabilities) == 0 {
		return false
	}
	for _, capability := range capabilities {
		if !c.HasPermission(role, capability) {
			return false
		}
	}
	return true
}
