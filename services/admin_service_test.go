package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homePulseAPI/internal/admin"
)

type fakeMembershipStore struct {
	membership *admin.Membership
	err        error
}

func (s *fakeMembershipStore) GetMembership(ctx context.Context, userID string) (*admin.Membership, error) {
	return s.membership, s.err
}

func bootstrapCfg(enabled bool, emails string) admin.BootstrapConfig {
	cfg := admin.NewBootstrapConfig("false", emails)
	cfg.Enabled = enabled
	return cfg
}

func TestResolve_ActiveMembership(t *testing.T) {
	store := &fakeMembershipStore{membership: &admin.Membership{UserID: "user_1", Role: admin.RoleAdmin, IsActive: true}}
	// Bootstrap enabled and allowlisted on purpose: the membership
	// row must win regardless.
	svc := NewAdminServiceWithStore(store, bootstrapCfg(true, "u@x.com"))

	got := svc.Resolve(context.Background(), "user_1", "u@x.com")

	require.NotNil(t, got)
	assert.Equal(t, admin.RoleAdmin, got.Role)
	assert.False(t, got.Bootstrap)
	assert.Equal(t, "user_1", got.UserID)
}

func TestResolve_MembershipEmptyRoleDefaultsToAdmin(t *testing.T) {
	store := &fakeMembershipStore{membership: &admin.Membership{UserID: "user_1", Role: "", IsActive: true}}
	svc := NewAdminServiceWithStore(store, bootstrapCfg(false, ""))

	got := svc.Resolve(context.Background(), "user_1", "u@x.com")

	require.NotNil(t, got)
	assert.Equal(t, admin.RoleAdmin, got.Role)
}

func TestResolve_InactiveMembership_BootstrapDisabled(t *testing.T) {
	store := &fakeMembershipStore{membership: &admin.Membership{UserID: "user_1", Role: admin.RoleAdmin, IsActive: false}}
	svc := NewAdminServiceWithStore(store, bootstrapCfg(false, "u@x.com"))

	assert.Nil(t, svc.Resolve(context.Background(), "user_1", "u@x.com"))
}

func TestResolve_InactiveMembership_BootstrapFallthrough(t *testing.T) {
	// An inactive row does not grant, but it does not block the
	// allowlist fallback either.
	store := &fakeMembershipStore{membership: &admin.Membership{UserID: "user_1", Role: admin.RoleAdmin, IsActive: false}}
	svc := NewAdminServiceWithStore(store, bootstrapCfg(true, "u@x.com"))

	got := svc.Resolve(context.Background(), "user_1", "u@x.com")

	require.NotNil(t, got)
	assert.Equal(t, admin.RoleSuperAdmin, got.Role)
	assert.True(t, got.Bootstrap)
}

func TestResolve_NoMembership_AllowlistGrant(t *testing.T) {
	store := &fakeMembershipStore{}
	svc := NewAdminServiceWithStore(store, bootstrapCfg(true, "ops@firm.com"))

	got := svc.Resolve(context.Background(), "user_9", "ops@firm.com")

	require.NotNil(t, got)
	assert.Equal(t, admin.RoleSuperAdmin, got.Role)
	assert.True(t, got.Bootstrap)
	assert.Equal(t, "ops@firm.com", got.Email)
}

func TestResolve_AllowlistCaseInsensitive(t *testing.T) {
	store := &fakeMembershipStore{}
	svc := NewAdminServiceWithStore(store, bootstrapCfg(true, "Admin@Example.com"))

	got := svc.Resolve(context.Background(), "user_9", "admin@example.com")

	require.NotNil(t, got)
	assert.True(t, got.Bootstrap)
}

func TestResolve_NoIdentity(t *testing.T) {
	store := &fakeMembershipStore{membership: &admin.Membership{UserID: "", Role: admin.RoleAdmin, IsActive: true}}
	svc := NewAdminServiceWithStore(store, bootstrapCfg(true, "u@x.com"))

	assert.Nil(t, svc.Resolve(context.Background(), "", "u@x.com"))
}

func TestResolve_StoreErrorDenies(t *testing.T) {
	// A failed lookup is indistinguishable from a non-admin result.
	store := &fakeMembershipStore{err: errors.New("connection refused")}
	svc := NewAdminServiceWithStore(store, bootstrapCfg(false, ""))

	assert.Nil(t, svc.Resolve(context.Background(), "user_1", "u@x.com"))
}

func TestResolve_NotOnAllowlist(t *testing.T) {
	store := &fakeMembershipStore{}
	svc := NewAdminServiceWithStore(store, bootstrapCfg(true, "ops@firm.com"))

	assert.Nil(t, svc.Resolve(context.Background(), "user_9", "dev@firm.com"))
}
