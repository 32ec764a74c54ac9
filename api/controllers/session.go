package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/zulal-hq/identity-backend/api/middleware"
	"github.com/zulal-hq/identity-backend/api/responses"
	pkgauth "github.com/zulal-hq/identity-backend/pkg/auth"
	pkgerrors "github.com/zulal-hq/identity-backend/pkg/errors"
	"github.com/zulal-hq/identity-backend/pkg/logger"
)

// SessionUser is the token-derived identity exposed to clients.
type SessionUser struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name,omitempty"`
	Email      string    `json:"email"`
	Image      string    `json:"image,omitempty"`
	TenantID   uuid.UUID `json:"tenantId"`
	Role       string    `json:"role"`
	TenantSlug string    `json:"tenantSlug"`
	IsAdmin    bool      `json:"isAdmin"`
}

type sessionResponse struct {
	User SessionUser `json:"user"`
}

func sessionUserFromClaims(claims *pkgauth.SessionClaims) SessionUser {
	return SessionUser{
		ID:         claims.UserID,
		Name:       claims.Name,
		Email:      claims.Email,
		Image:      claims.Image,
		TenantID:   claims.TenantID,
		Role:       string(claims.Role),
		TenantSlug: claims.TenantSlug,
		IsAdmin:    claims.IsAdmin,
	}
}

// Session rehydrates the session view from the verified token claims. No
// database read happens here.
func Session(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := middleware.ClaimsFromContext(r.Context())
		if claims == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session"))
			return
		}
		responses.WriteSuccess(w, sessionResponse{User: sessionUserFromClaims(claims)})
	}
}
