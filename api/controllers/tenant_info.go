package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/zulal-hq/identity-backend/api/middleware"
	"github.com/zulal-hq/identity-backend/api/responses"
	"github.com/zulal-hq/identity-backend/internal/tenants"
	pkgerrors "github.com/zulal-hq/identity-backend/pkg/errors"
	"github.com/zulal-hq/identity-backend/pkg/logger"
)

type tenantInfoFetcher interface {
	FetchTenantInfo(ctx context.Context, userID uuid.UUID) (*tenants.TenantInfo, error)
}

// UserTenantInfo returns the caller's primary tenant and membership, read
// live from storage so deactivations are visible before the token expires.
func UserTenantInfo(svc tenantInfoFetcher, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := middleware.ClaimsFromContext(r.Context())
		if claims == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session"))
			return
		}

		info, err := svc.FetchTenantInfo(r.Context(), claims.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, info)
	}
}
