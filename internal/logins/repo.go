package logins

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/zulal-hq/identity-backend/pkg/db/models"
	dbtypes "github.com/zulal-hq/identity-backend/pkg/db/types"
)

// Repository appends login events.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Entry captures a single sign-in occurrence before persistence.
type Entry struct {
	UserID    uuid.UUID
	TenantID  *uuid.UUID
	SessionID uuid.UUID
	LoginAt   time.Time
	IP        *string
	UserAgent *string
	Device    DeviceInfo
	Success   bool
}

// ToModel builds the append-only event row.
func (e Entry) ToModel() *models.LoginEvent {
	at := e.LoginAt
	if at.IsZero() {
		at = time.Now().UTC()
	}
	return &models.LoginEvent{
		ID:         uuid.New(),
		UserID:     e.UserID,
		TenantID:   e.TenantID,
		LoginAt:    at,
		LoginIP:    e.IP,
		UserAgent:  e.UserAgent,
		DeviceInfo: e.Device.ToMap(),
		Location:   dbtypes.JSONMap{},
		Success:    e.Success,
		SessionID:  e.SessionID,
	}
}

// Create persists one login event.
func (r *Repository) Create(ctx context.Context, entry Entry) error {
	return r.db.WithContext(ctx).Create(entry.ToModel()).Error
}
