package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/mizanhq/mizan/internal/membership"
)

// InviteRepository implements membership.InviteRepository
type InviteRepository struct {
	db *DB
}

// NewInviteRepository creates a new invite repository
func NewInviteRepository(db *DB) *InviteRepository {
	return &InviteRepository{db: db}
}

// Create stores an invite token hash
func (r *InviteRepository) Create(ctx context.Context, inv *membership.Invite) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO membership_invites (membership_id, token_hash)
		VALUES ($1, $2)
	`, inv.MembershipID, inv.TokenHash)

	if err != nil {
		return fmt.Errorf("failed to create invite: %w", err)
	}
	return nil
}

// GetByMembership retrieves the pending invite for a membership
func (r *InviteRepository) GetByMembership(ctx context.Context, membershipID string) (*membership.Invite, error) {
	var inv membership.Invite
	err := r.db.pool.QueryRow(ctx, `
		SELECT membership_id, token_hash
		FROM membership_invites
		WHERE membership_id = $1
	`, membershipID).Scan(&inv.MembershipID, &inv.TokenHash)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, membership.ErrInviteNotFound
		}
		return nil, fmt.Errorf("failed to get invite: %w", err)
	}
	return &inv, nil
}

// Delete consumes an invite
func (r *InviteRepository) Delete(ctx context.Context, membershipID string) error {
	result, err := r.db.pool.Exec(ctx, `
		DELETE FROM membership_invites WHERE membership_id = $1
	`, membershipID)

	if err != nil {
		return fmt.Errorf("failed to delete invite: %w", err)
	}
	if result.RowsAffected() == 0 {
		return membership.ErrInviteNotFound
	}
	return nil
}
