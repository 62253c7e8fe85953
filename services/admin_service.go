package services

import (
	"context"
	"errors"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"homePulseAPI/internal/admin"
)

// MembershipStore looks up admin_users rows. GetMembership returns
// (nil, nil) when no row exists for the user.
type MembershipStore interface {
	GetMembership(ctx context.Context, userID string) (*admin.Membership, error)
}

// AdminService resolves whether a caller holds admin privilege. The
// decision runs an ordered chain of grant strategies; the first one
// that grants wins. Absence of privilege is a nil result, never an
// error, and the caller is never told why access was denied.
type AdminService struct {
	store MembershipStore
	cfg   admin.BootstrapConfig
	db    *pgxpool.Pool
}

func NewAdminService(db *pgxpool.Pool, cfg admin.BootstrapConfig) *AdminService {
	return &AdminService{store: &pgxMembershipStore{db: db}, cfg: cfg, db: db}
}

// NewAdminServiceWithStore is for tests; ListMemberships is not
// usable on instances built this way.
func NewAdminServiceWithStore(store MembershipStore, cfg admin.BootstrapConfig) *AdminService {
	return &AdminService{store: store, cfg: cfg}
}

type grantStrategy func(ctx context.Context, userID, email string) *admin.Context

// Resolve returns the caller's admin context, or nil for non-admins.
func (s *AdminService) Resolve(ctx context.Context, userID, email string) *admin.Context {
	if userID == "" {
		return nil
	}

	for _, strategy := range []grantStrategy{s.membershipGrant, s.bootstrapGrant} {
		if grant := strategy(ctx, userID, email); grant != nil {
			return grant
		}
	}

	return nil
}

// membershipGrant grants from an active admin_users row. An inactive
// or missing row does not grant here, which lets the bootstrap
// strategy below have its say. Lookup failures deny like any other
// non-grant.
func (s *AdminService) membershipGrant(ctx context.Context, userID, email string) *admin.Context {
	m, err := s.store.GetMembership(ctx, userID)
	if err != nil {
		log.Printf("AdminService: membership lookup failed for %s: %v", userID, err)
		return nil
	}
	if m == nil || !m.IsActive {
		return nil
	}

	role := m.Role
	if role == "" {
		role = admin.RoleAdmin
	}

	return &admin.Context{
		UserID:    userID,
		Email:     email,
		Role:      role,
		Bootstrap: false,
	}
}

// bootstrapGrant is the allowlist fallback for initial setup, gated
// on the process-wide flag.
func (s *AdminService) bootstrapGrant(_ context.Context, userID, email string) *admin.Context {
	if !s.cfg.Enabled || !s.cfg.Allows(email) {
		return nil
	}

	return &admin.Context{
		UserID:    userID,
		Email:     email,
		Role:      admin.RoleSuperAdmin,
		Bootstrap: true,
	}
}

// ListMemberships returns every admin_users row for the admin panel.
func (s *AdminService) ListMemberships(ctx context.Context) ([]admin.Membership, error) {
	rows, err := s.db.Query(ctx, `SELECT user_id, COALESCE(role, ''), is_active FROM admin_users ORDER BY user_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	memberships := []admin.Membership{}
	for rows.Next() {
		var m admin.Membership
		if err := rows.Scan(&m.UserID, &m.Role, &m.IsActive); err != nil {
			return nil, err
		}
		memberships = append(memberships, m)
	}

	return memberships, rows.Err()
}

type pgxMembershipStore struct {
	db *pgxpool.Pool
}

func (s *pgxMembershipStore) GetMembership(ctx context.Context, userID string) (*admin.Membership, error) {
	m := &admin.Membership{}
	err := s.db.QueryRow(ctx, `
	SELECT user_id, COALESCE(role, ''), is_active
	FROM admin_users
	WHERE user_id = $1
	`, userID).Scan(&m.UserID, &m.Role, &m.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return m, nil
}
