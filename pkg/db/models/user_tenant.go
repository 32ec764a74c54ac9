package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/zulal-hq/identity-backend/pkg/enums"
)

// UserTenant binds a user to a tenant with a role. A partial unique index on
// (user_id) WHERE is_primary guarantees at most one primary membership per
// user; the primary membership drives the role surfaced in session claims.
type UserTenant struct {
	ID        uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	UserID    uuid.UUID        `gorm:"column:user_id;type:uuid;not null"`
	TenantID  uuid.UUID        `gorm:"column:tenant_id;type:uuid;not null"`
	Role      enums.TenantRole `gorm:"column:role;type:text;not null"`
	IsPrimary bool             `gorm:"column:is_primary;not null;default:false"`
	JoinedAt  time.Time        `gorm:"column:joined_at;not null"`
	CreatedBy uuid.UUID        `gorm:"column:created_by;type:uuid;not null"`
	UpdatedBy uuid.UUID        `gorm:"column:updated_by;type:uuid;not null"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (UserTenant) TableName() string {
	return "user_tenants"
}
