package models

import "time"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleAdmin       UserRole = "ADMIN"
	RoleCoordinator UserRole = "COORDINATOR"
	RoleAssessor    UserRole = "ASSESSOR"
	RoleResponder   UserRole = "RESPONDER"
	RoleDonor       UserRole = "DONOR"
)

// User is the local projection of an identity-provider account.
type User struct {
	ID              string     `db:"id" json:"id"`
	Email           string     `db:"email" json:"email"`
	FullName        string     `db:"full_name" json:"fullName"`
	Role            UserRole   `db:"role" json:"role"`
	Organization    *string    `db:"organization" json:"organization,omitempty"`
	ReputationScore *float64   `db:"reputation_score" json:"reputationScore,omitempty"`
	Active          bool       `db:"active" json:"active"`
	LastSeenAt      *time.Time `db:"last_seen_at" json:"lastSeenAt,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updatedAt"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalCount int `json:"totalCount"`
}
