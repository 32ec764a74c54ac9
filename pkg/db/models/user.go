package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	dbtypes "github.com/zulal-hq/identity-backend/pkg/db/types"
)

// User represents the canonical identity entity, keyed by email. Rows are
// never deleted in this service; deactivation flips is_active.
type User struct {
	ID               uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Email            string          `gorm:"column:email;type:text;not null;uniqueIndex"`
	Name             *string         `gorm:"column:name"`
	Locale           string          `gorm:"column:locale;not null;default:'en'"`
	PreferredLocales pq.StringArray  `gorm:"column:preferred_locales;type:text[]"`
	Metadata         dbtypes.JSONMap `gorm:"column:metadata;type:jsonb"`
	IsActive         bool            `gorm:"column:is_active;not null;default:true"`
	CIOID            *string         `gorm:"column:cio_id"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (User) TableName() string {
	return "users"
}
