package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims represents the access token payload issued by the identity provider.
type JWTClaims struct {
	UserID   string   `json:"user_id"`
	Role     UserRole `json:"role"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	jwt.RegisteredClaims
}

// IsCoordinator reports whether the caller may take verification decisions.
func (c *JWTClaims) IsCoordinator() bool {
	return c != nil && (c.Role == RoleCoordinator || c.Role == RoleAdmin)
}
