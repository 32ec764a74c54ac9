package tenants

import (
	"time"

	"github.com/google/uuid"

	"github.com/zulal-hq/identity-backend/pkg/db/models"
	dbtypes "github.com/zulal-hq/identity-backend/pkg/db/types"
	"github.com/zulal-hq/identity-backend/pkg/enums"
)

// TenantDTO is the API representation of a tenant.
type TenantDTO struct {
	ID       uuid.UUID       `json:"id"`
	Name     string          `json:"name"`
	Slug     string          `json:"slug"`
	Settings dbtypes.JSONMap `json:"settings"`
	Features dbtypes.JSONMap `json:"features"`
	IsActive bool            `json:"is_active"`
}

// MembershipDTO is the API representation of a user's tenant membership.
type MembershipDTO struct {
	ID        uuid.UUID        `json:"id"`
	UserID    uuid.UUID        `json:"user_id"`
	TenantID  uuid.UUID        `json:"tenant_id"`
	Role      enums.TenantRole `json:"role"`
	IsPrimary bool             `json:"is_primary"`
	JoinedAt  time.Time        `json:"joined_at"`
}

// TenantInfo pairs a tenant with the caller's membership in it.
type TenantInfo struct {
	Tenant     TenantDTO     `json:"tenant"`
	UserTenant MembershipDTO `json:"userTenant"`
}

// FromModels converts persistence rows into the API shape.
func FromModels(tenant models.Tenant, membership models.UserTenant) TenantInfo {
	return TenantInfo{
		Tenant: TenantDTO{
			ID:       tenant.ID,
			Name:     tenant.Name,
			Slug:     tenant.Slug,
			Settings: tenant.Settings,
			Features: tenant.Features,
			IsActive: tenant.IsActive,
		},
		UserTenant: MembershipDTO{
			ID:        membership.ID,
			UserID:    membership.UserID,
			TenantID:  membership.TenantID,
			Role:      membership.Role,
			IsPrimary: membership.IsPrimary,
			JoinedAt:  membership.JoinedAt,
		},
	}
}

func tenantInfoFromRow(row primaryTenantRow, tenant models.Tenant) TenantInfo {
	return TenantInfo{
		Tenant: TenantDTO{
			ID:       tenant.ID,
			Name:     tenant.Name,
			Slug:     tenant.Slug,
			Settings: tenant.Settings,
			Features: tenant.Features,
			IsActive: tenant.IsActive,
		},
		UserTenant: MembershipDTO{
			ID:        row.UTID,
			UserID:    row.UserID,
			TenantID:  row.TenantID,
			Role:      row.Role,
			IsPrimary: row.IsPrimary,
			JoinedAt:  row.JoinedAt,
		},
	}
}
