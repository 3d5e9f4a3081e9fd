package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/mizanhq/mizan/internal/invoice"
)

// InvoiceRepository implements invoice.Repository. Every query carries
// a tenant_id predicate; there is deliberately no way to address an
// invoice without naming its tenant.
type InvoiceRepository struct {
	db *DB
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

// Create inserts a new invoice
func (r *InvoiceRepository) Create(ctx context.Context, inv *invoice.Invoice) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO invoices (id, tenant_id, number, counterparty, amount_kurus, currency, issued_at, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, inv.ID, inv.TenantID, inv.Number, inv.Counterparty, inv.AmountKurus, inv.Currency, inv.IssuedAt, inv.CreatedBy, inv.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create invoice: %w", err)
	}
	return nil
}

// GetByID retrieves one invoice scoped to a tenant
func (r *InvoiceRepository) GetByID(ctx context.Context, tenantID, id string) (*invoice.Invoice, error) {
	var inv invoice.Invoice
	err := r.db.pool.QueryRow(ctx, `
		SELECT id, tenant_id, number, counterparty, amount_kurus, currency, issued_at, created_by, created_at
		FROM invoices
		WHERE tenant_id = $1 AND id = $2
	`, tenantID, id).Scan(&inv.ID, &inv.TenantID, &inv.Number, &inv.Counterparty,
		&inv.AmountKurus, &inv.Currency, &inv.IssuedAt, &inv.CreatedBy, &inv.CreatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, invoice.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	return &inv, nil
}

// ListByTenant retrieves a tenant's invoices with pagination
func (r *InvoiceRepository) ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*invoice.Invoice, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT id, tenant_id, number, counterparty, amount_kurus, currency, issued_at, created_by, created_at
		FROM invoices
		WHERE tenant_id = $1
		ORDER BY issued_at DESC
		LIMIT $2 OFFSET $3
	`, tenantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	var invoices []*invoice.Invoice
	for rows.Next() {
		var inv invoice.Invoice
		if err := rows.Scan(&inv.ID, &inv.TenantID, &inv.Number, &inv.Counterparty,
			&inv.AmountKurus, &inv.Currency, &inv.IssuedAt, &inv.CreatedBy, &inv.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, &inv)
	}
	return invoices, rows.Err()
}

// Delete removes an invoice scoped to a tenant
func (r *InvoiceRepository) Delete(ctx context.Context, tenantID, id string) error {
	result, err := r.db.pool.Exec(ctx, `
		DELETE FROM invoices WHERE tenant_id = $1 AND id = $2
	`, tenantID, id)

	if err != nil {
		return fmt.Errorf("failed to delete invoice: %w", err)
	}
	if result.RowsAffected() == 0 {
		return invoice.ErrInvoiceNotFound
	}
	return nil
}
