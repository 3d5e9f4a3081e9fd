package membership

import (
	"context"
	"errors"
)

var (
	ErrMembershipNotFound = errors.New("membership not found")
	ErrMembershipExists   = errors.New("membership already exists")
	ErrInviteNotFound     = errors.New("invite not found")
)

// Repository defines the interface for membership storage.
type Repository interface {
	Create(ctx context.Context, m *Membership) error

	// GetByUserAndTenant returns the membership binding (userID, tenantID),
	// or ErrMembershipNotFound. This is the single lookup the request
	// context resolver depends on; it must return a consistent
	// (role, status) snapshot.
	GetByUserAndTenant(ctx context.Context, userID, tenantID string) (*Membership, error)

	// Update persists role or status changes. Memberships are never
	// deleted, so there is no Delete.
	Update(ctx context.Context, m *Membership) error

	ListByTenant(ctx context.Context, tenantID string) ([]*Membership, error)
	ListByUser(ctx context.Context, userID string) ([]*Membership, error)
}

// Invite is the pending half of an invited membership: the secret token
// is stored only as an argon2id hash.
type Invite struct {
	MembershipID string
	TokenHash    string
}

// InviteRepository stores invite token hashes keyed by membership.
type InviteRepository interface {
	Create(ctx context.Context, inv *Invite) error
	GetByMembership(ctx context.Context, membershipID string) (*Invite, error)
	Delete(ctx context.Context, membershipID string) error
}
