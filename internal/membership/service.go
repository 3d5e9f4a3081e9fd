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

package membership

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mizanhq/mizan/internal/audit"
	"github.com/mizanhq/mizan/internal/id"
	"github.com/mizanhq/mizan/internal/rbac"
)

var (
	ErrInvalidRole       = errors.New("invalid role")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidToken      = errors.New("invalid invite token")
)

// Service provides membership lifecycle business logic. All mutations
// are audited; authorization for calling them belongs to the transport
// gate, not this service.
type Service struct {
	repo        Repository
	inviteRepo  InviteRepository
	hasher      *TokenHasher
	auditLogger audit.Logger
}

// NewService creates a new membership service
func NewService(repo Repository, inviteRepo InviteRepository, hasher *TokenHasher, auditLogger audit.Logger) *Service {
	return &Service{
		repo:        repo,
		inviteRepo:  inviteRepo,
		hasher:      hasher,
		auditLogger: auditLogger,
	}
}

// Lookup returns the membership for (userID, tenantID), or
// ErrMembershipNotFound. This is the collaborator the request context
// resolver consumes.
func (s *Service) Lookup(ctx context.Context, userID, tenantID string) (*Membership, error) {
	return s.repo.GetByUserAndTenant(ctx, userID, tenantID)
}

// CreateFounder creates the active owner membership for a freshly
// created tenant.
func (s *Service) CreateFounder(ctx context.Context, tenantID, userID string) (*Membership, error) {
	now := time.Now()
	m := &Membership{
		ID:        id.NewUUIDv7(),
		TenantID:  tenantID,
		UserID:    userID,
		Role:      rbac.RoleOwner,
		Status:    StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to create founder membership: %w", err)
	}
	return m, nil
}

// Invite creates an invited membership for userID and returns the
// membership together with the one-time invite token. Only the token's
// argon2id hash is stored.
func (s *Service) Invite(ctx context.Context, tenantID, userID string, role rbac.Role, invitedBy string) (*Membership, string, error) {
	if !role.Valid() {
		return nil, "", ErrInvalidRole
	}

	if existing, err := s.repo.GetByUserAndTenant(ctx, userID, tenantID); err == nil && existing != nil {
		return nil, "", ErrMembershipExists
	}

	token, err := NewToken()
	if err != nil {
		return nil, "", err
	}
	tokenHash, err := s.hasher.Hash(token)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash invite token: %w", err)
	}

	now := time.Now()
	m := &Membership{
		ID:        id.NewUUIDv7(),
		TenantID:  tenantID,
		UserID:    userID,
		Role:      role,
		Status:    StatusInvited,
		InvitedBy: invitedBy,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, "", fmt.Errorf("failed to create membership: %w", err)
	}
	if err := s.inviteRepo.Create(ctx, &Invite{MembershipID: m.ID, TokenHash: tokenHash}); err != nil {
		return nil, "", fmt.Errorf("failed to store invite: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeMemberInvited,
		TenantID: tenantID,
		ActorID:  invitedBy,
		Resource: m.ID,
		Metadata: map[string]any{audit.AttrUserID: userID, audit.AttrRole: role.String()},
	})

	return m, token, nil
}

// AcceptInvite activates an invited membership when the presented token
// matches the stored hash.
func (s *Service) AcceptInvite(ctx context.Context, userID, tenantID, token string) (*Membership, error) {
	m, err := s.repo.GetByUserAndTenant(ctx, userID, tenantID)
	if err != nil {
		return nil, err
	}
	if m.Status != StatusInvited {
		return nil, ErrInvalidTransition
	}

	inv, err := s.inviteRepo.GetByMembership(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	ok, err := s.hasher.Verify(token, inv.TokenHash)
	if err != nil || !ok {
		return nil, ErrInvalidToken
	}

	m.Status = StatusActive
	m.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to activate membership: %w", err)
	}
	// Invite token is one-time use.
	if err := s.inviteRepo.Delete(ctx, m.ID); err != nil {
		return nil, fmt.Errorf("failed to consume invite: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeInviteAccepted,
		TenantID: tenantID,
		ActorID:  userID,
		Resource: m.ID,
	})

	return m, nil
}

// ChangeRole updates the role of an existing membership.
func (s *Service) ChangeRole(ctx context.Context, tenantID, userID string, role rbac.Role, changedBy string) (*Membership, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	m, err := s.repo.GetByUserAndTenant(ctx, userID, tenantID)
	if err != nil {
		return nil, err
	}

	previous := m.Role
	m.Role = role
	m.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to change role: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeRoleChanged,
		TenantID: tenantID,
		ActorID:  changedBy,
		Resource: m.ID,
		Metadata: map[string]any{
			audit.AttrUserID: userID,
			audit.AttrRole:   role.String(),
			"previous_role":  previous.String(),
		},
	})

	return m, nil
}

// Suspend transitions an active membership to suspended. The row stays
// in place for audit history.
func (s *Service) Suspend(ctx context.Context, tenantID, userID, suspendedBy string) (*Membership, error) {
	return s.transition(ctx, tenantID, userID, StatusSuspended, suspendedBy, audit.TypeMemberSuspended)
}

// Reinstate transitions a suspended membership back to active.
func (s *Service) Reinstate(ctx context.Context, tenantID, userID, reinstatedBy string) (*Membership, error) {
	return s.transition(ctx, tenantID, userID, StatusActive, reinstatedBy, audit.TypeMemberReinstated)
}

func (s *Service) transition(ctx context.Context, tenantID, userID string, next Status, actorID, auditType string) (*Membership, error) {
	m, err := s.repo.GetByUserAndTenant(ctx, userID, tenantID)
	if err != nil {
		return nil, err
	}
	if !m.CanTransition(next) {
		return nil, ErrInvalidTransition
	}

	m.Status = next
	m.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to update membership status: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     auditType,
		TenantID: tenantID,
		ActorID:  actorID,
		Resource: m.ID,
		Metadata: map[string]any{audit.AttrUserID: userID},
	})

	return m, nil
}

// ListMembers lists all memberships in a tenant, any status.
func (s *Service) ListMembers(ctx context.Context, tenantID string) ([]*Membership, error) {
	return s.repo.ListByTenant(ctx, tenantID)
}
