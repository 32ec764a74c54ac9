package tenants

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/zulal-hq/identity-backend/pkg/db/models"
	dbtypes "github.com/zulal-hq/identity-backend/pkg/db/types"
	"github.com/zulal-hq/identity-backend/pkg/enums"
)

func setupTenantsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	users := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  name TEXT,
  locale TEXT NOT NULL DEFAULT 'en',
  preferred_locales TEXT,
  metadata TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  cio_id TEXT,
  created_at DATETIME
);`
	tenants := `
CREATE TABLE IF NOT EXISTS tenants (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  slug TEXT NOT NULL UNIQUE,
  settings TEXT,
  features TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_by TEXT NOT NULL,
  updated_by TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	userTenants := `
CREATE TABLE IF NOT EXISTS user_tenants (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  tenant_id TEXT NOT NULL,
  role TEXT NOT NULL,
  is_primary INTEGER NOT NULL DEFAULT 0,
  joined_at DATETIME,
  created_by TEXT NOT NULL,
  updated_by TEXT NOT NULL,
  updated_at DATETIME
);
CREATE UNIQUE INDEX IF NOT EXISTS user_tenants_primary_key
  ON user_tenants (user_id) WHERE is_primary;`
	require.NoError(t, db.Exec(users).Error)
	require.NoError(t, db.Exec(tenants).Error)
	require.NoError(t, db.Exec(userTenants).Error)
	return db
}

func newUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	user := &models.User{
		ID:        uuid.New(),
		Email:     email,
		Locale:    "en",
		Metadata:  dbtypes.JSONMap{},
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestCreateTenantWithPrimaryMembership(t *testing.T) {
	db := setupTenantsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	user := newUser(t, db, "alice@example.com")

	tenant, membership, err := repo.CreateTenantWithPrimaryMembership(ctx, CreateTenantDTO{
		Name:      "alice's Organization",
		Slug:      "alice-org",
		Role:      enums.TenantRoleRetailer,
		CreatorID: user.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, "alice-org", tenant.Slug)
	assert.True(t, tenant.IsActive)
	assert.Equal(t, user.ID, tenant.CreatedBy)
	assert.Equal(t, tenant.ID, membership.TenantID)
	assert.Equal(t, user.ID, membership.UserID)
	assert.Equal(t, enums.TenantRoleRetailer, membership.Role)
	assert.True(t, membership.IsPrimary)

	found, err := repo.FindPrimaryMembership(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, membership.ID, found.ID)
}

func TestCreateTenantWithPrimaryMembershipRejectsInvalidRole(t *testing.T) {
	db := setupTenantsTestDB(t)
	repo := NewRepository(db)

	_, _, err := repo.CreateTenantWithPrimaryMembership(context.Background(), CreateTenantDTO{
		Name:      "bad",
		Slug:      "bad-org",
		Role:      enums.TenantRole("superuser"),
		CreatorID: uuid.New(),
	})
	require.Error(t, err)
}

func TestCreateTenantRollsBackOnMembershipConflict(t *testing.T) {
	db := setupTenantsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	user := newUser(t, db, "bob@example.com")

	_, _, err := repo.CreateTenantWithPrimaryMembership(ctx, CreateTenantDTO{
		Name:      "bob's Organization",
		Slug:      "bob-org",
		Role:      enums.TenantRoleRetailer,
		CreatorID: user.ID,
	})
	require.NoError(t, err)

	// A second primary membership for the same user violates the partial
	// unique index, and the tenant insert must roll back with it.
	_, _, err = repo.CreateTenantWithPrimaryMembership(ctx, CreateTenantDTO{
		Name:      "bob again",
		Slug:      "bob-org-2",
		Role:      enums.TenantRoleRetailer,
		CreatorID: user.ID,
	})
	require.Error(t, err)

	var count int64
	require.NoError(t, db.Model(&models.Tenant{}).Where("slug = ?", "bob-org-2").Count(&count).Error)
	assert.Zero(t, count)
}

func TestFindActiveTenantSkipsInactive(t *testing.T) {
	db := setupTenantsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	user := newUser(t, db, "carol@example.com")
	tenant, _, err := repo.CreateTenantWithPrimaryMembership(ctx, CreateTenantDTO{
		Name:      "carol's Organization",
		Slug:      "carol-org",
		Role:      enums.TenantRoleRetailer,
		CreatorID: user.ID,
	})
	require.NoError(t, err)

	found, err := repo.FindActiveTenant(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, tenant.Slug, found.Slug)

	require.NoError(t, db.Model(&models.Tenant{}).Where("id = ?", tenant.ID).Update("is_active", false).Error)

	_, err = repo.FindActiveTenant(ctx, tenant.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestGetPrimaryTenantInfo(t *testing.T) {
	db := setupTenantsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	user := newUser(t, db, "dave@example.com")
	tenant, membership, err := repo.CreateTenantWithPrimaryMembership(ctx, CreateTenantDTO{
		Name:      "dave's Organization",
		Slug:      "dave-org",
		Role:      enums.TenantRoleBrand,
		CreatorID: user.ID,
	})
	require.NoError(t, err)

	info, err := repo.GetPrimaryTenantInfo(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, tenant.ID, info.Tenant.ID)
	assert.Equal(t, "dave-org", info.Tenant.Slug)
	assert.Equal(t, membership.ID, info.UserTenant.ID)
	assert.Equal(t, enums.TenantRoleBrand, info.UserTenant.Role)
	assert.True(t, info.UserTenant.IsPrimary)
}

func TestGetPrimaryTenantInfoRequiresActiveTenant(t *testing.T) {
	db := setupTenantsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	user := newUser(t, db, "erin@example.com")
	tenant, _, err := repo.CreateTenantWithPrimaryMembership(ctx, CreateTenantDTO{
		Name:      "erin's Organization",
		Slug:      "erin-org",
		Role:      enums.TenantRoleRetailer,
		CreatorID: user.ID,
	})
	require.NoError(t, err)

	require.NoError(t, db.Model(&models.Tenant{}).Where("id = ?", tenant.ID).Update("is_active", false).Error)

	_, err = repo.GetPrimaryTenantInfo(ctx, user.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestGetPrimaryTenantInfoNoMembership(t *testing.T) {
	db := setupTenantsTestDB(t)
	repo := NewRepository(db)

	_, err := repo.GetPrimaryTenantInfo(context.Background(), uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
