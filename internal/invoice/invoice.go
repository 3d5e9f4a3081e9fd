package invoice

import (
	"context"
	"errors"
	"time"
)

var ErrInvoiceNotFound = errors.New("invoice not found")

// Invoice is the minimal back-office invoice record. Every row is
// partitioned by tenant id; repositories must never return rows from
// another tenant.
type Invoice struct {
	ID           string    `json:"id"`
	TenantID     string    `json:"tenant_id"`
	Number       string    `json:"number"`
	Counterparty string    `json:"counterparty"`
	AmountKurus  int64     `json:"amount_kurus"`
	Currency     string    `json:"currency"`
	IssuedAt     time.Time `json:"issued_at"`
	CreatedBy    string    `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
}

// Repository defines the interface for invoice storage
type Repository interface {
	Create(ctx context.Context, inv *Invoice) error
	GetByID(ctx context.Context, tenantID, id string) (*Invoice, error)
	ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*Invoice, error)
	Delete(ctx context.Context, tenantID, id string) error
}
