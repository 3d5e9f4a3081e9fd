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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) Create(ctx context.Context, inv *Invoice) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *mockRepo) GetByID(ctx context.Context, tenantID, id string) (*Invoice, error) {
	args := m.Called(ctx, tenantID, id)
	if inv := args.Get(0); inv != nil {
		return inv.(*Invoice), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepo) ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*Invoice, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	if invs := args.Get(0); invs != nil {
		return invs.([]*Invoice), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepo) Delete(ctx context.Context, tenantID, id string) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func TestCreateFillsDefaults(t *testing.T) {
	repo := new(mockRepo)
	svc := NewService(repo)

	var stored *Invoice
	repo.On("Create", mock.Anything, mock.AnythingOfType("*invoice.Invoice")).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*Invoice) }).
		Return(nil)

	issued := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	inv, err := svc.Create(context.Background(), "tenant-1", "user-1", "INV-42", "Acme Ltd", "", 125000, issued)
	require.NoError(t, err)

	assert.NotEmpty(t, inv.ID)
	assert.Equal(t, "tenant-1", inv.TenantID)
	assert.Equal(t, "user-1", inv.CreatedBy)
	assert.Equal(t, "TRY", inv.Currency, "currency defaults to TRY")
	assert.Equal(t, issued, inv.IssuedAt)
	assert.Same(t, inv, stored)
}

func TestCreateRequiresNumber(t *testing.T) {
	repo := new(mockRepo)
	svc := NewService(repo)

	_, err := svc.Create(context.Background(), "tenant-1", "user-1", "", "", "TRY", 100, time.Now())
	require.Error(t, err)
	repo.AssertNotCalled(t, "Create")
}

func TestOperationsAreTenantScoped(t *testing.T) {
	repo := new(mockRepo)
	svc := NewService(repo)

	repo.On("GetByID", mock.Anything, "tenant-1", "inv-1").Return(nil, ErrInvoiceNotFound)
	repo.On("Delete", mock.Anything, "tenant-1", "inv-1").Return(ErrInvoiceNotFound)

	_, err := svc.Get(context.Background(), "tenant-1", "inv-1")
	assert.ErrorIs(t, err, ErrInvoiceNotFound)

	err = svc.Delete(context.Background(), "tenant-1", "inv-1")
	assert.ErrorIs(t, err, ErrInvoiceNotFound)

	repo.AssertExpectations(t)
}
