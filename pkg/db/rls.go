package db

import (
	"context"

	"github.com/google/uuid"
)

// SetSessionContext installs the tenant/user pair for the current database
// session so row-level-security policies scope subsequent queries.
func (c *Client) SetSessionContext(ctx context.Context, tenantID, userID uuid.UUID) error {
	return c.Exec(ctx, "SELECT set_session_context(?, ?)", tenantID, userID).Error
}

// CurrentTenantID reads back the tenant installed by SetSessionContext.
// Returns uuid.Nil when no context is set or the lookup fails.
func (c *Client) CurrentTenantID(ctx context.Context) uuid.UUID {
	var id *uuid.UUID
	if err := c.Raw(ctx, "SELECT current_tenant_id()").Scan(&id).Error; err != nil || id == nil {
		return uuid.Nil
	}
	return *id
}

// CurrentUserID reads back the user installed by SetSessionContext.
func (c *Client) CurrentUserID(ctx context.Context) uuid.UUID {
	var id *uuid.UUID
	if err := c.Raw(ctx, "SELECT current_user_id()").Scan(&id).Error; err != nil || id == nil {
		return uuid.Nil
	}
	return *id
}
