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
	"log/slog"

	"github.com/mizanhq/mizan/internal/audit"
	"github.com/mizanhq/mizan/internal/membership"
	"github.com/mizanhq/mizan/internal/observability/logger"
)

// MembershipLookup is the persistence collaborator the resolver depends
// on: given (userID, tenantID) return the membership or
// membership.ErrMembershipNotFound.
type MembershipLookup interface {
	Lookup(ctx context.Context, userID, tenantID string) (*membership.Membership, error)
}

// Resolver turns "an authenticated principal made a request that
// mentions tenant X" into a trustworthy Context.
type Resolver struct {
	lookup      MembershipLookup
	auditLogger audit.Logger
}

// NewResolver creates a resolver backed by the given membership lookup.
func NewResolver(lookup MembershipLookup, auditLogger audit.Logger) *Resolver {
	return &Resolver{lookup: lookup, auditLogger: auditLogger}
}

// Resolve assembles the per-request Context.
//
// A missing or non-active membership does NOT fail the request: some
// routes (first-tenant creation, invite acceptance) are valid without
// one, and rejecting is the gate's decision. A failing lookup, by
// contrast, resolves to an AuthorizationError: the gate path fails
// closed.
func (r *Resolver) Resolve(ctx context.Context, principal Principal, tenantID string) (Context, error) {
	if principal.UserID == "" {
		return Context{}, &AuthenticationError{}
	}

	reqCtx := Context{
		UserID:   principal.UserID,
		TenantID: tenantID,
	}

	// Impersonation is only honored for platform operators; for anyone
	// else the marker is ignored outright. Evaluation always uses the
	// impersonated user's membership, never the operator's, and both
	// identities are recorded for the audit trail.
	if principal.ImpersonateUserID != "" && principal.PlatformOperator {
		reqCtx.UserID = principal.ImpersonateUserID
		reqCtx.ImpersonatorID = principal.UserID
		r.auditLogger.Log(ctx, audit.Event{
			Type:     audit.TypeImpersonationActive,
			TenantID: tenantID,
			ActorID:  principal.UserID,
			Resource: principal.ImpersonateUserID,
			Metadata: map[string]any{
				audit.AttrImpersonatorID: principal.UserID,
				audit.AttrUserID:         principal.ImpersonateUserID,
			},
		})
	}

	if tenantID == "" {
		return reqCtx, nil
	}

	m, err := r.lookup.Lookup(ctx, reqCtx.UserID, tenantID)
	switch {
	case errors.Is(err, membership.ErrMembershipNotFound):
		return reqCtx, nil
	case err != nil:
		slog.ErrorContext(ctx, "membership lookup failed", logger.Error(err),
			logger.UserID(reqCtx.UserID), logger.TenantID(tenantID))
		return Context{}, &AuthorizationError{Message: "unable to verify tenant membership"}
	}

	// Tenant-isolation invariant: never attach a membership from a
	// different tenant than the one being accessed, whatever the store
	// returned.
	if m == nil || m.TenantID != tenantID {
		return reqCtx, nil
	}
	if !m.IsActive() {
		return reqCtx, nil
	}

	reqCtx.Membership = m
	return reqCtx, nil
}
