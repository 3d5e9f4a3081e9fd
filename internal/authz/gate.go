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
	"fmt"
	"strings"

	"github.com/mizanhq/mizan/internal/rbac"
)

// PermissionMode selects how a capability list is combined.
type PermissionMode string

const (
	// ModeAll requires every listed capability.
	ModeAll PermissionMode = "all"
	// ModeAny requires at least one listed capability.
	ModeAny PermissionMode = "any"
)

// Requirement is one predicate in a gate chain. Requirements are plain
// data so a route's full authorization policy is a visible, testable
// value instead of call-order buried in nested middleware.
type Requirement interface {
	check(catalog *rbac.Catalog, reqCtx Context) error
}

// RequireAuth demands a verified principal.
type RequireAuth struct{}

func (RequireAuth) check(_ *rbac.Catalog, reqCtx Context) error {
	if !reqCtx.Authenticated() {
		return &AuthenticationError{}
	}
	return nil
}

// RequireTenant demands an active membership in the context tenant.
type RequireTenant struct{}

func (RequireTenant) check(_ *rbac.Catalog, reqCtx Context) error {
	if !reqCtx.HasMembership() {
		return &AuthorizationError{Message: "tenant membership required"}
	}
	return nil
}

// RequireRole demands that the membership role is in an explicit
// allow-list.
type RequireRole struct {
	Roles []rbac.Role
}

func (r RequireRole) check(_ *rbac.Catalog, reqCtx Context) error {
	role := reqCtx.Role()
	for _, allowed := range r.Roles {
		if role == allowed {
			return nil
		}
	}
	names := make([]string, len(r.Roles))
	for i, allowed := range r.Roles {
		names[i] = allowed.String()
	}
	return &AuthorizationError{
		Message: fmt.Sprintf("requires one of roles: %s", strings.Join(names, ", ")),
	}
}

// RequirePermission demands capabilities per the catalog: all of them in
// ModeAll, at least one in ModeAny. An empty capability list always
// denies.
type RequirePermission struct {
	Capabilities []rbac.Capability
	Mode         PermissionMode
}

func (r RequirePermission) check(catalog *rbac.Catalog, reqCtx Context) error {
	role := reqCtx.Role()
	granted := false
	if r.Mode == ModeAny {
		granted = catalog.HasAnyPermission(role, r.Capabilities...)
	} else {
		granted = catalog.HasAllPermissions(role, r.Capabilities...)
	}
	if granted {
		return nil
	}
	names := make([]string, len(r.Capabilities))
	for i, c := range r.Capabilities {
		names[i] = c.String()
	}
	return &AuthorizationError{
		Message: fmt.Sprintf("insufficient permission (requires %s of: %s)", r.Mode, strings.Join(names, ", ")),
	}
}

// Chain is an ordered requirement list. NewChain fixes the evaluation
// order at authentication → tenant → role → permission regardless of
// the order options are given in.
type Chain []Requirement

// ChainOption configures NewChain.
type ChainOption func(*chainSpec)

type chainSpec struct {
	tenantOptional bool
	roles          []rbac.Role
	perms          *RequirePermission
}

// TenantOptional marks a route valid without an active membership, e.g.
// first-tenant creation.
func TenantOptional() ChainOption {
	return func(s *chainSpec) { s.tenantOptional = true }
}

// WithRoles guards the route with an explicit role allow-list.
func WithRoles(roles ...rbac.Role) ChainOption {
	return func(s *chainSpec) { s.roles = roles }
}

// WithAllPermissions requires every listed capability.
func WithAllPermissions(capabilities ...rbac.Capability) ChainOption {
	return func(s *chainSpec) {
		s.perms = &RequirePermission{Capabilities: capabilities, Mode: ModeAll}
	}
}

// WithAnyPermission requires at least one listed capability.
func WithAnyPermission(capabilities ...rbac.Capability) ChainOption {
	return func(s *chainSpec) {
		s.perms = &RequirePermission{Capabilities: capabilities, Mode: ModeAny}
	}
}

// NewChain builds the gate chain for a route.
func NewChain(opts ...ChainOption) Chain {
	var spec chainSpec
	for _, opt := range opts {
		opt(&spec)
	}

	chain := Chain{RequireAuth{}}
	if !spec.tenantOptional {
		chain = append(chain, RequireTenant{})
	}
	if len(spec.roles) > 0 {
		chain = append(chain, RequireRole{Roles: spec.roles})
	}
	if spec.perms != nil {
		chain = append(chain, *spec.perms)
	}
	return chain
}

// Gate evaluates requirement chains against request contexts. It is
// stateless apart from the read-only catalog, so evaluation is
// idempotent and side-effect-free: the same context snapshot always
// yields the same decision.
type Gate struct {
	catalog *rbac.Catalog
}

// NewGate creates a gate over the given catalog.
func NewGate(catalog *rbac.Catalog) *Gate {
	return &Gate{catalog: catalog}
}

// Evaluate walks the chain in order and returns the first failure, or
// nil when every requirement passes. Later requirements never run after
// a failure. A panicking predicate converts to a deny rather than
// escaping as a 500: a generic recovery layer must never get the chance
// to mis-map an evaluator fault to an allow.
func (g *Gate) Evaluate(reqCtx Context, chain Chain) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &AuthorizationError{Message: "authorization check failed"}
		}
	}()

	for _, req := range chain {
		if err := req.check(g.catalog, reqCtx); err != nil {
			return err
		}
	}
	return nil
}
