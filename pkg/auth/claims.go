package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/zulal-hq/identity-backend/pkg/config"
	"github.com/zulal-hq/identity-backend/pkg/db/models"
	"github.com/zulal-hq/identity-backend/pkg/enums"
)

// SessionPayload captures the data available when minting a session token.
type SessionPayload struct {
	UserID     uuid.UUID
	TenantID   uuid.UUID
	Role       enums.TenantRole
	TenantSlug string
	IsAdmin    bool
	Email      string
	Name       string
	Image      string
	JTI        string
}

// SessionClaims is the typed JWT embedded in the signed session token. It is
// a read-only projection of the user's primary membership: decoding it on a
// request never touches the database.
type SessionClaims struct {
	UserID     uuid.UUID        `json:"user_id"`
	TenantID   uuid.UUID        `json:"tenant_id"`
	Role       enums.TenantRole `json:"role"`
	TenantSlug string           `json:"tenant_slug"`
	IsAdmin    bool             `json:"is_admin"`
	Email      string           `json:"email,omitempty"`
	Name       string           `json:"name,omitempty"`
	Image      string           `json:"picture,omitempty"`
	jwt.RegisteredClaims
}

// BuildClaims projects a resolved user/tenant/membership triple into a
// session payload. The admin flag is derived from the configured admin
// identity, not from the stored role, so a tampered role row cannot grant it.
func BuildClaims(user *models.User, tenant *models.Tenant, membership *models.UserTenant, admin config.AdminConfig) SessionPayload {
	payload := SessionPayload{
		UserID:     user.ID,
		TenantID:   tenant.ID,
		Role:       membership.Role,
		TenantSlug: tenant.Slug,
		IsAdmin:    admin.IsAdminEmail(user.Email),
		Email:      user.Email,
	}
	if user.Name != nil {
		payload.Name = *user.Name
	}
	return payload
}
