package tenants

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/zulal-hq/identity-backend/pkg/db/models"
	dbtypes "github.com/zulal-hq/identity-backend/pkg/db/types"
	"github.com/zulal-hq/identity-backend/pkg/enums"
)

// Repository exposes tenant and membership persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindPrimaryMembership returns the user's primary membership row.
func (r *Repository) FindPrimaryMembership(ctx context.Context, userID uuid.UUID) (*models.UserTenant, error) {
	var membership models.UserTenant
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_primary = ?", userID, true).
		First(&membership).Error
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

// FindActiveTenant loads a tenant by id, requiring it to still be active.
func (r *Repository) FindActiveTenant(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	var tenant models.Tenant
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", id, true).
		First(&tenant).Error
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

// CreateTenantDTO carries the fields for a tenant + primary membership pair.
type CreateTenantDTO struct {
	Name      string
	Slug      string
	Role      enums.TenantRole
	CreatorID uuid.UUID
	Now       time.Time
}

// CreateTenantWithPrimaryMembership inserts the tenant and its primary
// membership in one transaction. The creating user is recorded as
// created_by/updated_by on both rows.
func (r *Repository) CreateTenantWithPrimaryMembership(ctx context.Context, dto CreateTenantDTO) (*models.Tenant, *models.UserTenant, error) {
	if !dto.Role.IsValid() {
		return nil, nil, fmt.Errorf("invalid tenant role %q", dto.Role)
	}
	now := dto.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	tenant := &models.Tenant{
		ID:        uuid.New(),
		Name:      dto.Name,
		Slug:      dto.Slug,
		Settings:  dbtypes.JSONMap{},
		Features:  dbtypes.JSONMap{},
		IsActive:  true,
		CreatedBy: dto.CreatorID,
		UpdatedBy: dto.CreatorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	membership := &models.UserTenant{
		ID:        uuid.New(),
		UserID:    dto.CreatorID,
		TenantID:  tenant.ID,
		Role:      dto.Role,
		IsPrimary: true,
		JoinedAt:  now,
		CreatedBy: dto.CreatorID,
		UpdatedBy: dto.CreatorID,
		UpdatedAt: now,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(tenant).Error; err != nil {
			return err
		}
		return tx.Create(membership).Error
	})
	if err != nil {
		return nil, nil, err
	}
	return tenant, membership, nil
}

type primaryTenantRow struct {
	UTID         uuid.UUID        `gorm:"column:ut_id"`
	UserID       uuid.UUID        `gorm:"column:user_id"`
	Role         enums.TenantRole `gorm:"column:role"`
	IsPrimary    bool             `gorm:"column:is_primary"`
	JoinedAt     time.Time        `gorm:"column:joined_at"`
	TenantID     uuid.UUID        `gorm:"column:tenant_id"`
	TenantName   string           `gorm:"column:tenant_name"`
	TenantSlug   string           `gorm:"column:tenant_slug"`
	TenantActive bool             `gorm:"column:tenant_is_active"`
}

// GetPrimaryTenantInfo joins the primary membership with its tenant,
// requiring the tenant to be active. Returns gorm.ErrRecordNotFound when no
// matching active primary membership exists.
func (r *Repository) GetPrimaryTenantInfo(ctx context.Context, userID uuid.UUID) (*TenantInfo, error) {
	var row primaryTenantRow
	err := r.db.WithContext(ctx).
		Model(&models.UserTenant{}).
		Select(`user_tenants.id AS ut_id,
			user_tenants.user_id,
			user_tenants.role,
			user_tenants.is_primary,
			user_tenants.joined_at,
			tenants.id AS tenant_id,
			tenants.name AS tenant_name,
			tenants.slug AS tenant_slug,
			tenants.is_active AS tenant_is_active`).
		Joins("JOIN tenants ON tenants.id = user_tenants.tenant_id").
		Where("user_tenants.user_id = ? AND user_tenants.is_primary = ? AND tenants.is_active = ?", userID, true, true).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.UTID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}

	var tenant models.Tenant
	if err := r.db.WithContext(ctx).First(&tenant, "id = ?", row.TenantID).Error; err != nil {
		return nil, err
	}

	info := tenantInfoFromRow(row, tenant)
	return &info, nil
}
