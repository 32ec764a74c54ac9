package models

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/zulal-hq/identity-backend/pkg/db/types"
)

// LoginEvent is an append-only audit row. Rows are never updated; a failed
// write is logged by the recorder and dropped.
type LoginEvent struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	UserID     uuid.UUID       `gorm:"column:user_id;type:uuid;not null"`
	TenantID   *uuid.UUID      `gorm:"column:tenant_id;type:uuid"`
	LoginAt    time.Time       `gorm:"column:login_at;not null"`
	LoginIP    *string         `gorm:"column:login_ip"`
	UserAgent  *string         `gorm:"column:user_agent"`
	DeviceInfo dbtypes.JSONMap `gorm:"column:device_info;type:jsonb"`
	Location   dbtypes.JSONMap `gorm:"column:location;type:jsonb"`
	Success    bool            `gorm:"column:success;not null;default:true"`
	SessionID  uuid.UUID       `gorm:"column:session_id;type:uuid;not null"`
}

func (LoginEvent) TableName() string {
	return "user_logins"
}
