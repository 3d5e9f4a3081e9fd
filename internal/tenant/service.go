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

package tenant

import (
	"context"
	"fmt"
	"time"

	"github.com/mizanhq/mizan/internal/audit"
	"github.com/mizanhq/mizan/internal/id"
	"github.com/mizanhq/mizan/internal/membership"
)

// Service provides tenant management business logic
type Service struct {
	repo        Repository
	memberships *membership.Service
	auditLogger audit.Logger
}

// NewService creates a new tenant service
func NewService(repo Repository, memberships *membership.Service, auditLogger audit.Logger) *Service {
	return &Service{
		repo:        repo,
		memberships: memberships,
		auditLogger: auditLogger,
	}
}

// CreateTenant creates a new tenant with founderID as its active owner.
// This is the one tenant-optional operation: the founder has no
// membership anywhere yet.
func (s *Service) CreateTenant(ctx context.Context, name, plan, founderID string) (*Tenant, error) {
	if name == "" {
		return nil, fmt.Errorf("tenant name is required")
	}
	if founderID == "" {
		return nil, fmt.Errorf("founder user id is required")
	}
	if plan == "" {
		plan = PlanStarter
	}

	if _, err := s.repo.GetByName(ctx, name); err == nil {
		return nil, ErrTenantAlreadyExists
	}

	now := time.Now()
	t := &Tenant{
		ID:        id.NewUUIDv7(),
		Name:      name,
		Plan:      plan,
		Status:    StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to create tenant: %w", err)
	}

	if _, err := s.memberships.CreateFounder(ctx, t.ID, founderID); err != nil {
		return nil, fmt.Errorf("failed to create founder membership: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeTenantCreated,
		TenantID: t.ID,
		ActorID:  founderID,
		Resource: t.Name,
	})

	return t, nil
}

// GetTenant retrieves a tenant by ID
func (s *Service) GetTenant(ctx context.Context, id string) (*Tenant, error) {
	return s.repo.GetByID(ctx, id)
}

// GetTenantByName retrieves a tenant by name
func (s *Service) GetTenantByName(ctx context.Context, name string) (*Tenant, error) {
	return s.repo.GetByName(ctx, name)
}

// ListTenants lists tenants with pagination
func (s *Service) ListTenants(ctx context.Context, limit, offset int) ([]*Tenant, error) {
	return s.repo.List(ctx, limit, offset)
}
