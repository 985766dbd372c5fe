package models

// Role names recognised by the import service
const (
	RoleAdmin      = "ADMIN"
	RoleSuperAdmin = "SUPER_ADMIN"
	RoleUser       = "USER"
)

// Caller identifies the authenticated principal of a request
type Caller struct {
	UserID   string
	Role     string
	TenantID string
}

// Privileged reports whether the caller holds an administrator role
func (c Caller) Privileged() bool {
	return c.Role == RoleAdmin || c.Role == RoleSuperAdmin
}
