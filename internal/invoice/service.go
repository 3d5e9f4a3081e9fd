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

package invoice

import (
	"context"
	"fmt"
	"time"

	"github.com/mizanhq/mizan/internal/id"
)

// Service provides invoice business logic. Authorization happens
// upstream in the gate; the service trusts that the caller was allowed
// to act on tenantID and only enforces tenant partitioning of data.
type Service struct {
	repo Repository
}

// NewService creates a new invoice service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create records a new invoice for the tenant.
func (s *Service) Create(ctx context.Context, tenantID, createdBy, number, counterparty, currency string, amountKurus int64, issuedAt time.Time) (*Invoice, error) {
	if number == "" {
		return nil, fmt.Errorf("invoice number is required")
	}
	if currency == "" {
		currency = "TRY"
	}

	inv := &Invoice{
		ID:           id.NewUUIDv7(),
		TenantID:     tenantID,
		Number:       number,
		Counterparty: counterparty,
		AmountKurus:  amountKurus,
		Currency:     currency,
		IssuedAt:     issuedAt,
		CreatedBy:    createdBy,
		CreatedAt:    time.Now(),
	}
	if err := s.repo.Create(ctx, inv); err != nil {
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}
	return inv, nil
}

// List returns the tenant's invoices with pagination.
func (s *Service) List(ctx context.Context, tenantID string, limit, offset int) ([]*Invoice, error) {
	return s.repo.ListByTenant(ctx, tenantID, limit, offset)
}

// Get returns one invoice scoped to the tenant.
func (s *Service) Get(ctx context.Context, tenantID, invoiceID string) (*Invoice, error) {
	return s.repo.GetByID(ctx, tenantID, invoiceID)
}

// Delete removes an invoice scoped to the tenant.
func (s *Service) Delete(ctx context.Context, tenantID, invoiceID string) error {
	return s.repo.Delete(ctx, tenantID, invoiceID)
}
