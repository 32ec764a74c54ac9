package provisioning

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/zulal-hq/identity-backend/internal/tenants"
	"github.com/zulal-hq/identity-backend/internal/users"
	"github.com/zulal-hq/identity-backend/pkg/config"
	"github.com/zulal-hq/identity-backend/pkg/db"
	"github.com/zulal-hq/identity-backend/pkg/db/models"
	"github.com/zulal-hq/identity-backend/pkg/enums"
	pkgerrors "github.com/zulal-hq/identity-backend/pkg/errors"
	"github.com/zulal-hq/identity-backend/pkg/metrics"
)

// Identity is the externally-asserted identity arriving from the sign-in
// provider.
type Identity struct {
	Email string
	Name  *string
}

// Service resolves users and tenants during the sign-in handshake.
type Service interface {
	ResolveUser(ctx context.Context, identity Identity) (*models.User, error)
	ResolveTenantForUser(ctx context.Context, user *models.User) (*models.Tenant, *models.UserTenant, error)
	Provision(ctx context.Context, identity Identity) (*models.User, *models.Tenant, *models.UserTenant, error)
	FetchTenantInfo(ctx context.Context, userID uuid.UUID) (*tenants.TenantInfo, error)
}

type userStore interface {
	FindActiveByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
}

type tenantStore interface {
	FindPrimaryMembership(ctx context.Context, userID uuid.UUID) (*models.UserTenant, error)
	FindActiveTenant(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	CreateTenantWithPrimaryMembership(ctx context.Context, dto tenants.CreateTenantDTO) (*models.Tenant, *models.UserTenant, error)
	GetPrimaryTenantInfo(ctx context.Context, userID uuid.UUID) (*tenants.TenantInfo, error)
}

type service struct {
	users   userStore
	tenants tenantStore
	admin   config.AdminConfig
	metrics *metrics.IdentityMetrics
}

// ServiceParams bundles the dependencies required to build the resolver.
type ServiceParams struct {
	UserRepo   userStore
	TenantRepo tenantStore
	Admin      config.AdminConfig
	Metrics    *metrics.IdentityMetrics
}

// NewService constructs the provisioning resolver.
func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.TenantRepo == nil {
		return nil, fmt.Errorf("tenant repository is required")
	}
	return &service{
		users:   params.UserRepo,
		tenants: params.TenantRepo,
		admin:   params.Admin,
		metrics: params.Metrics,
	}, nil
}

// ResolveUser finds the active user for the identity's email, creating one
// with first-sign-in defaults when absent. Concurrent first sign-ins converge
// on a single row: an insert that loses the race re-reads the winner.
func (s *service) ResolveUser(ctx context.Context, identity Identity) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(identity.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}

	user, err := s.users.FindActiveByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find user")
	}

	user, err = s.users.Create(ctx, users.CreateUserDTO{
		Email: email,
		Name:  identity.Name,
	})
	if err == nil {
		s.metrics.IncUserProvisioned()
		return user, nil
	}
	if !db.IsUniqueViolation(err, "") {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
	}

	s.metrics.IncProvisionConflict()
	user, err = s.users.FindActiveByEmail(ctx, email)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload user after conflict")
	}
	return user, nil
}

// ResolveTenantForUser returns the user's primary tenant, creating the tenant
// and primary membership on first sign-in.
func (s *service) ResolveTenantForUser(ctx context.Context, user *models.User) (*models.Tenant, *models.UserTenant, error) {
	if user == nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "user is required")
	}

	membership, err := s.tenants.FindPrimaryMembership(ctx, user.ID)
	if err == nil {
		return s.loadActiveTenant(ctx, membership)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find membership")
	}

	dto := s.newTenantDTO(user)
	tenant, membership, err := s.tenants.CreateTenantWithPrimaryMembership(ctx, dto)
	if err == nil {
		s.metrics.IncTenantProvisioned()
		return tenant, membership, nil
	}
	if !db.IsUniqueViolation(err, "") {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create tenant")
	}

	// Either another request won the primary-membership race, or the slug is
	// taken. A compensating membership read settles which.
	s.metrics.IncProvisionConflict()
	membership, readErr := s.tenants.FindPrimaryMembership(ctx, user.ID)
	if readErr == nil {
		return s.loadActiveTenant(ctx, membership)
	}
	if !errors.Is(readErr, gorm.ErrRecordNotFound) {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, readErr, "reload membership after conflict")
	}

	dto.Slug = disambiguateSlug(dto.Slug, user.ID)
	tenant, membership, err = s.tenants.CreateTenantWithPrimaryMembership(ctx, dto)
	if err == nil {
		s.metrics.IncTenantProvisioned()
		return tenant, membership, nil
	}
	if db.IsUniqueViolation(err, "") {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "tenant slug unavailable")
	}
	return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create tenant")
}

// Provision runs the full sign-in resolution: user, then primary tenant.
func (s *service) Provision(ctx context.Context, identity Identity) (*models.User, *models.Tenant, *models.UserTenant, error) {
	user, err := s.ResolveUser(ctx, identity)
	if err != nil {
		return nil, nil, nil, err
	}
	tenant, membership, err := s.ResolveTenantForUser(ctx, user)
	if err != nil {
		return nil, nil, nil, err
	}
	return user, tenant, membership, nil
}

// FetchTenantInfo returns the caller's primary membership joined with its
// tenant, requiring the tenant to still be active.
func (s *service) FetchTenantInfo(ctx context.Context, userID uuid.UUID) (*tenants.TenantInfo, error) {
	info, err := s.tenants.GetPrimaryTenantInfo(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no active tenant membership")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load tenant info")
	}
	return info, nil
}

func (s *service) loadActiveTenant(ctx context.Context, membership *models.UserTenant) (*models.Tenant, *models.UserTenant, error) {
	tenant, err := s.tenants.FindActiveTenant(ctx, membership.TenantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "tenant is deactivated")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load tenant")
	}
	return tenant, membership, nil
}

func (s *service) newTenantDTO(user *models.User) tenants.CreateTenantDTO {
	if s.admin.IsAdminEmail(user.Email) {
		return tenants.CreateTenantDTO{
			Name:      s.admin.TenantName,
			Slug:      s.admin.TenantSlug,
			Role:      enums.TenantRoleAdmin,
			CreatorID: user.ID,
		}
	}
	local := emailLocalPart(user.Email)
	return tenants.CreateTenantDTO{
		Name:      local + "'s Organization",
		Slug:      Slugify(local) + "-org",
		Role:      enums.TenantRoleRetailer,
		CreatorID: user.ID,
	}
}
