package users

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/zulal-hq/identity-backend/pkg/db/models"
	dbtypes "github.com/zulal-hq/identity-backend/pkg/db/types"
)

// Repository exposes user-related persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new user and returns the persisted model.
func (r *Repository) Create(ctx context.Context, dto CreateUserDTO) (*models.User, error) {
	user := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// FindActiveByEmail retrieves the active user matching the provided email.
func (r *Repository) FindActiveByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("email = ? AND is_active = ?", email, true).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID loads a user by their UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUserDTO carries the fields required to provision a user record.
type CreateUserDTO struct {
	Email  string
	Name   *string
	Locale string
	Now    time.Time
}

// ToModel builds the persisted user with first-sign-in defaults.
func (dto CreateUserDTO) ToModel() *models.User {
	locale := dto.Locale
	if locale == "" {
		locale = "en"
	}
	now := dto.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	return &models.User{
		ID:               uuid.New(),
		Email:            dto.Email,
		Name:             dto.Name,
		Locale:           locale,
		PreferredLocales: pq.StringArray{locale},
		Metadata:         dbtypes.JSONMap{},
		IsActive:         true,
		CreatedAt:        now,
	}
}
