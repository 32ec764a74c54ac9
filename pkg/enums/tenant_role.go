package enums

import "fmt"

// TenantRole represents a user's role inside a tenant.
type TenantRole string

const (
	TenantRoleRetailer TenantRole = "retailer"
	TenantRoleBrand    TenantRole = "brand"
	TenantRoleAdmin    TenantRole = "admin"
	TenantRolePlatform TenantRole = "platform"
)

var validTenantRoles = []TenantRole{
	TenantRoleRetailer,
	TenantRoleBrand,
	TenantRoleAdmin,
	TenantRolePlatform,
}

// String implements fmt.Stringer.
func (r TenantRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known TenantRole.
func (r TenantRole) IsValid() bool {
	for _, candidate := range validTenantRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseTenantRole converts raw input into a TenantRole.
func ParseTenantRole(value string) (TenantRole, error) {
	for _, candidate := range validTenantRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid tenant role %q", value)
}
