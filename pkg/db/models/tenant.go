package models

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/zulal-hq/identity-backend/pkg/db/types"
)

// Tenant represents an isolated organizational namespace. The slug is unique
// among tenants and derived from the owning user's email local part.
type Tenant struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Name      string          `gorm:"column:name;not null"`
	Slug      string          `gorm:"column:slug;type:text;not null;uniqueIndex"`
	Settings  dbtypes.JSONMap `gorm:"column:settings;type:jsonb"`
	Features  dbtypes.JSONMap `gorm:"column:features;type:jsonb"`
	IsActive  bool            `gorm:"column:is_active;not null;default:true"`
	CreatedBy uuid.UUID       `gorm:"column:created_by;type:uuid;not null"`
	UpdatedBy uuid.UUID       `gorm:"column:updated_by;type:uuid;not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (Tenant) TableName() string {
	return "tenants"
}
