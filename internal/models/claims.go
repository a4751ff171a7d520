package models

import "github.com/golang-jwt/jwt/v5"

// Caller roles, issued by the external auth service.
const (
	RoleStudent = "student"
	RoleVendor  = "vendor"
	RoleAdmin   = "admin"
)

// UserClaims is the authenticated caller identity carried in bearer
// tokens. Tokens are issued by the auth collaborator; this service only
// verifies and reads them.
type UserClaims struct {
	jwt.RegisteredClaims
	AccountID string `json:"account_id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}

// IsAdmin reports whether the caller holds the admin role.
func (c *UserClaims) IsAdmin() bool {
	return c.Role == RoleAdmin
}
