package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/zulal-hq/identity-backend/internal/logins"
	"github.com/zulal-hq/identity-backend/internal/provisioning"
	"github.com/zulal-hq/identity-backend/internal/tenants"
	pkgauth "github.com/zulal-hq/identity-backend/pkg/auth"
	"github.com/zulal-hq/identity-backend/pkg/config"
	"github.com/zulal-hq/identity-backend/pkg/db/models"
	"github.com/zulal-hq/identity-backend/pkg/enums"
	"github.com/zulal-hq/identity-backend/pkg/types"
)

type stubProvisioner struct {
	user       *models.User
	tenant     *models.Tenant
	membership *models.UserTenant
	info       *tenants.TenantInfo
	err        error
}

func (s stubProvisioner) ResolveUser(ctx context.Context, identity provisioning.Identity) (*models.User, error) {
	return s.user, s.err
}

func (s stubProvisioner) ResolveTenantForUser(ctx context.Context, user *models.User) (*models.Tenant, *models.UserTenant, error) {
	return s.tenant, s.membership, s.err
}

func (s stubProvisioner) Provision(ctx context.Context, identity provisioning.Identity) (*models.User, *models.Tenant, *models.UserTenant, error) {
	return s.user, s.tenant, s.membership, s.err
}

func (s stubProvisioner) FetchTenantInfo(ctx context.Context, userID uuid.UUID) (*tenants.TenantInfo, error) {
	return s.info, s.err
}

type stubSessions struct {
	registered []string
	revoked    []string
	err        error
}

func (s *stubSessions) Register(ctx context.Context, sessionID string) error {
	if s.err != nil {
		return s.err
	}
	s.registered = append(s.registered, sessionID)
	return nil
}

func (s *stubSessions) Revoke(ctx context.Context, sessionID string) error {
	if s.err != nil {
		return s.err
	}
	s.revoked = append(s.revoked, sessionID)
	return nil
}

type stubRecorder struct {
	entries []logins.Entry
}

func (s *stubRecorder) Record(ctx context.Context, entry logins.Entry) bool {
	s.entries = append(s.entries, entry)
	return true
}

func jwtConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 60}
}

func adminConfig() config.AdminConfig {
	return config.AdminConfig{Email: "ops@zulal.io", TenantName: "Zulal Admin", TenantSlug: "zulal-admin"}
}

func provisionedFixtures() (*models.User, *models.Tenant, *models.UserTenant) {
	name := "Jane Doe"
	user := &models.User{ID: uuid.New(), Email: "jane@example.com", Name: &name, IsActive: true}
	tenant := &models.Tenant{ID: uuid.New(), Name: "jane's Organization", Slug: "jane-org", IsActive: true}
	membership := &models.UserTenant{
		ID:        uuid.New(),
		UserID:    user.ID,
		TenantID:  tenant.ID,
		Role:      enums.TenantRoleRetailer,
		IsPrimary: true,
	}
	return user, tenant, membership
}

func TestAuthCallbackMintsSessionAndRecordsLogin(t *testing.T) {
	user, tenant, membership := provisionedFixtures()
	sessions := &stubSessions{}
	recorder := &stubRecorder{}

	handler := AuthCallback(CallbackParams{
		Provisioner: stubProvisioner{user: user, tenant: tenant, membership: membership},
		Sessions:    sessions,
		Recorder:    recorder,
		JWT:         jwtConfig(),
		Admin:       adminConfig(),
	})

	body := `{"provider":"google","email":"jane@example.com","name":"Jane Doe","image":"https://img.example/j.png"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/callback", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) Chrome/126.0 Safari/537.36")
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}

	var envelope types.SuccessEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	data := envelope.Data.(map[string]any)
	token, _ := data["token"].(string)
	if token == "" {
		t.Fatal("expected a session token in the response")
	}

	claims, err := pkgauth.ParseSessionToken(jwtConfig(), token)
	if err != nil {
		t.Fatalf("minted token does not parse: %v", err)
	}
	if claims.UserID != user.ID || claims.TenantID != tenant.ID {
		t.Fatal("claims do not match the provisioned identities")
	}
	if claims.TenantSlug != "jane-org" || claims.Role != enums.TenantRoleRetailer {
		t.Fatalf("unexpected claims %v %v", claims.TenantSlug, claims.Role)
	}
	if claims.IsAdmin {
		t.Fatal("non-admin email must not yield admin claims")
	}

	if len(sessions.registered) != 1 || sessions.registered[0] != claims.ID {
		t.Fatalf("expected the jti to be registered, got %v", sessions.registered)
	}

	if len(recorder.entries) != 1 {
		t.Fatalf("expected 1 login entry, got %d", len(recorder.entries))
	}
	entry := recorder.entries[0]
	if entry.UserID != user.ID {
		t.Fatal("login entry user mismatch")
	}
	if entry.IP == nil || *entry.IP != "203.0.113.7" {
		t.Fatalf("unexpected login ip %v", entry.IP)
	}
	if entry.Device.Browser != "Chrome" {
		t.Fatalf("unexpected browser %s", entry.Device.Browser)
	}

	userView := data["user"].(map[string]any)
	if userView["email"] != "jane@example.com" {
		t.Fatalf("unexpected session user %v", userView)
	}
	if userView["isAdmin"] != false {
		t.Fatal("expected isAdmin false")
	}
}

func TestAuthCallbackDerivesAdminFromEmail(t *testing.T) {
	user, tenant, membership := provisionedFixtures()
	user.Email = "ops@zulal.io"
	// Role stays retailer on purpose: admin is derived from identity, not
	// from the stored role.
	handler := AuthCallback(CallbackParams{
		Provisioner: stubProvisioner{user: user, tenant: tenant, membership: membership},
		Sessions:    &stubSessions{},
		JWT:         jwtConfig(),
		Admin:       adminConfig(),
	})

	body := `{"provider":"google","email":"ops@zulal.io"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/callback", bytes.NewReader([]byte(body)))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope types.SuccessEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	token := envelope.Data.(map[string]any)["token"].(string)
	claims, err := pkgauth.ParseSessionToken(jwtConfig(), token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if !claims.IsAdmin {
		t.Fatal("admin email must yield admin claims")
	}
	if claims.Role != enums.TenantRoleRetailer {
		t.Fatal("stored role must pass through unchanged")
	}
}

func TestAuthCallbackRejectsUntrustedProvider(t *testing.T) {
	handler := AuthCallback(CallbackParams{
		Provisioner: stubProvisioner{},
		Sessions:    &stubSessions{},
		JWT:         jwtConfig(),
		Admin:       adminConfig(),
	})

	body := `{"provider":"github","email":"jane@example.com"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/callback", bytes.NewReader([]byte(body)))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthCallbackRejectsMissingEmail(t *testing.T) {
	handler := AuthCallback(CallbackParams{
		Provisioner: stubProvisioner{},
		Sessions:    &stubSessions{},
		JWT:         jwtConfig(),
		Admin:       adminConfig(),
	})

	body := `{"provider":"google"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/callback", bytes.NewReader([]byte(body)))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAuthCallbackFailsClosedOnProvisioningError(t *testing.T) {
	handler := AuthCallback(CallbackParams{
		Provisioner: stubProvisioner{err: context.DeadlineExceeded},
		Sessions:    &stubSessions{},
		JWT:         jwtConfig(),
		Admin:       adminConfig(),
	})

	body := `{"provider":"google","email":"jane@example.com"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/callback", bytes.NewReader([]byte(body)))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}
}

func TestAuthLogoutRevokesSession(t *testing.T) {
	sessions := &stubSessions{}
	cfg := jwtConfig()
	handler := AuthLogout(sessions, cfg, nil)

	jti := uuid.NewString()
	token, err := pkgauth.MintSessionToken(cfg, time.Now().UTC(), pkgauth.SessionPayload{
		UserID:   uuid.New(),
		TenantID: uuid.New(),
		Role:     enums.TenantRoleRetailer,
		JTI:      jti,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if len(sessions.revoked) != 1 || sessions.revoked[0] != jti {
		t.Fatalf("expected jti %s revoked, got %v", jti, sessions.revoked)
	}
}

func TestAuthLogoutAcceptsExpiredToken(t *testing.T) {
	sessions := &stubSessions{}
	cfg := jwtConfig()
	handler := AuthLogout(sessions, cfg, nil)

	token, err := pkgauth.MintSessionToken(cfg, time.Now().UTC().Add(-48*time.Hour), pkgauth.SessionPayload{
		UserID:   uuid.New(),
		TenantID: uuid.New(),
		Role:     enums.TenantRoleRetailer,
		JTI:      uuid.NewString(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if len(sessions.revoked) != 1 {
		t.Fatal("expected the expired token's jti to be revoked")
	}
}

func TestAuthLogoutRequiresToken(t *testing.T) {
	handler := AuthLogout(&stubSessions{}, jwtConfig(), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}
