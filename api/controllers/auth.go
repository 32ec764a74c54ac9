package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/zulal-hq/identity-backend/api/middleware"
	"github.com/zulal-hq/identity-backend/api/responses"
	"github.com/zulal-hq/identity-backend/api/validators"
	"github.com/zulal-hq/identity-backend/internal/logins"
	"github.com/zulal-hq/identity-backend/internal/provisioning"
	pkgauth "github.com/zulal-hq/identity-backend/pkg/auth"
	"github.com/zulal-hq/identity-backend/pkg/auth/session"
	"github.com/zulal-hq/identity-backend/pkg/config"
	pkgerrors "github.com/zulal-hq/identity-backend/pkg/errors"
	"github.com/zulal-hq/identity-backend/pkg/logger"
)

const trustedProvider = "google"

type sessionRegistrar interface {
	Register(ctx context.Context, sessionID string) error
	Revoke(ctx context.Context, sessionID string) error
}

type loginRecorder interface {
	Record(ctx context.Context, entry logins.Entry) bool
}

type sessionContextSetter interface {
	SetSessionContext(ctx context.Context, tenantID, userID uuid.UUID) error
}

type callbackRequest struct {
	Provider string  `json:"provider" validate:"required"`
	Email    string  `json:"email" validate:"required,email"`
	Name     *string `json:"name"`
	Image    string  `json:"image"`
}

type callbackResponse struct {
	Token string      `json:"token"`
	User  SessionUser `json:"user"`
}

// CallbackParams bundles the sign-in handshake dependencies.
type CallbackParams struct {
	Provisioner provisioning.Service
	Sessions    sessionRegistrar
	Recorder    loginRecorder
	RLS         sessionContextSetter
	JWT         config.JWTConfig
	Admin       config.AdminConfig
	Logger      *logger.Logger
}

// AuthCallback completes the provider handshake: it resolves (or creates)
// the user and their primary tenant, mints a session token, registers the
// session, and records the login off the request path. Provisioning failure
// denies the sign-in.
func AuthCallback(p CallbackParams) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body callbackRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), p.Logger, w, err)
			return
		}

		if body.Provider != trustedProvider {
			responses.WriteError(r.Context(), p.Logger, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "untrusted provider"))
			return
		}

		user, tenant, membership, err := p.Provisioner.Provision(r.Context(), provisioning.Identity{
			Email: body.Email,
			Name:  body.Name,
		})
		if err != nil {
			responses.WriteError(r.Context(), p.Logger, w, err)
			return
		}

		sessionID := session.NewSessionID()
		payload := pkgauth.BuildClaims(user, tenant, membership, p.Admin)
		payload.Image = body.Image
		payload.JTI = sessionID

		token, err := pkgauth.MintSessionToken(p.JWT, time.Now().UTC(), payload)
		if err != nil {
			responses.WriteError(r.Context(), p.Logger, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint session token"))
			return
		}

		if err := p.Sessions.Register(r.Context(), sessionID); err != nil {
			responses.WriteError(r.Context(), p.Logger, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "register session"))
			return
		}

		if p.RLS != nil {
			if err := p.RLS.SetSessionContext(r.Context(), tenant.ID, user.ID); err != nil && p.Logger != nil {
				p.Logger.Warn(r.Context(), "failed to set row-level session context")
			}
		}

		if p.Recorder != nil {
			ua := r.UserAgent()
			tenantID := tenant.ID
			p.Recorder.Record(r.Context(), logins.Entry{
				UserID:    user.ID,
				TenantID:  &tenantID,
				SessionID: parseSessionID(sessionID),
				IP:        logins.ExtractClientIP(r),
				UserAgent: &ua,
				Device:    logins.ParseDeviceInfo(ua),
				Success:   true,
			})
		}

		claims, err := pkgauth.ParseSessionToken(p.JWT, token)
		if err != nil {
			responses.WriteError(r.Context(), p.Logger, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify minted token"))
			return
		}

		responses.WriteSuccess(w, callbackResponse{
			Token: token,
			User:  sessionUserFromClaims(claims),
		})
	}
}

// AuthLogout revokes the session registered under the token's jti. The token
// may already be expired; the jti is still honored so stale sessions can be
// cleaned up.
func AuthLogout(sessions sessionRegistrar, jwtCfg config.JWTConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := middleware.BearerToken(r)
		if token == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		claims, err := pkgauth.ParseSessionTokenAllowExpired(jwtCfg, token)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
			return
		}
		if claims.ID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id"))
			return
		}

		if err := sessions.Revoke(r.Context(), claims.ID); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "revoke session"))
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "logged_out"})
	}
}

// AuthTrackLogin enqueues a login event for the authenticated session and
// returns immediately; the write happens on the recorder's worker.
func AuthTrackLogin(recorder loginRecorder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := middleware.ClaimsFromContext(r.Context())
		if claims == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session"))
			return
		}

		if recorder != nil {
			ua := r.UserAgent()
			tenantID := claims.TenantID
			recorder.Record(r.Context(), logins.Entry{
				UserID:    claims.UserID,
				TenantID:  &tenantID,
				SessionID: parseSessionID(claims.ID),
				IP:        logins.ExtractClientIP(r),
				UserAgent: &ua,
				Device:    logins.ParseDeviceInfo(ua),
				Success:   true,
			})
		}

		responses.WriteSuccess(w, map[string]bool{"success": true})
	}
}

func parseSessionID(raw string) uuid.UUID {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil
	}
	return id
}
