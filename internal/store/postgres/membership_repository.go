package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/mizanhq/mizan/internal/membership"
	"github.com/mizanhq/mizan/internal/rbac"
)

// MembershipRepository implements membership.Repository
type MembershipRepository struct {
	db *DB
}

// NewMembershipRepository creates a new membership repository
func NewMembershipRepository(db *DB) *MembershipRepository {
	return &MembershipRepository{db: db}
}

// Create inserts a new membership
func (r *MembershipRepository) Create(ctx context.Context, m *membership.Membership) error {
	var invitedBy sql.NullString
	if m.InvitedBy != "" {
		invitedBy = sql.NullString{String: m.InvitedBy, Valid: true}
	}

	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO memberships (id, tenant_id, user_id, role, status, invited_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, m.ID, m.TenantID, m.UserID, string(m.Role), string(m.Status), invitedBy, m.CreatedAt, m.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create membership: %w", err)
	}
	return nil
}

// GetByUserAndTenant returns the membership for (userID, tenantID).
// The tenant_id predicate in the query is the persistence half of the
// tenant-isolation invariant; the resolver re-checks it defensively.
func (r *MembershipRepository) GetByUserAndTenant(ctx context.Context, userID, tenantID string) (*membership.Membership, error) {
	row := r.db.pool.QueryRow(ctx, `
		SELECT id, tenant_id, user_id, role, status, invited_by, created_at, updated_at
		FROM memberships
		WHERE user_id = $1 AND tenant_id = $2
	`, userID, tenantID)

	m, err := scanMembership(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, membership.ErrMembershipNotFound
		}
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	return m, nil
}

// Update persists role and status changes
func (r *MembershipRepository) Update(ctx context.Context, m *membership.Membership) error {
	result, err := r.db.pool.Exec(ctx, `
		UPDATE memberships
		SET role = $1, status = $2, updated_at = $3
		WHERE id = $4
	`, string(m.Role), string(m.Status), m.UpdatedAt, m.ID)

	if err != nil {
		return fmt.Errorf("failed to update membership: %w", err)
	}
	if result.RowsAffected() == 0 {
		return membership.ErrMembershipNotFound
	}
	return nil
}

// ListByTenant retrieves all memberships in a tenant
func (r *MembershipRepository) ListByTenant(ctx context.Context, tenantID string) ([]*membership.Membership, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT id, tenant_id, user_id, role, status, invited_by, created_at, updated_at
		FROM memberships
		WHERE tenant_id = $1
		ORDER BY created_at
	`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenant memberships: %w", err)
	}
	defer rows.Close()

	return collectMemberships(rows)
}

// ListByUser retrieves all memberships a user holds across tenants
func (r *MembershipRepository) ListByUser(ctx context.Context, userID string) ([]*membership.Membership, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT id, tenant_id, user_id, role, status, invited_by, created_at, updated_at
		FROM memberships
		WHERE user_id = $1
		ORDER BY created_at
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user memberships: %w", err)
	}
	defer rows.Close()

	return collectMemberships(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMembership(row rowScanner) (*membership.Membership, error) {
	var m membership.Membership
	var role, status string
	var invitedBy sql.NullString
	if err := row.Scan(&m.ID, &m.TenantID, &m.UserID, &role, &status, &invitedBy, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	m.Role = rbac.Role(role)
	m.Status = membership.Status(status)
	if invitedBy.Valid {
		m.InvitedBy = invitedBy.String
	}
	return &m, nil
}

func collectMemberships(rows pgx.Rows) ([]*membership.Membership, error) {
	var members []*membership.Membership
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}
