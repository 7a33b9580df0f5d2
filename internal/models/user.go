package models

import (
	"github.com/google/uuid"
)

// Role represents user role in the platform.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// User is the directory view of an account: just enough to target an
// invite. Accounts are owned by the wider product; the pulse engine
// only reads them.
type User struct {
	ID       uuid.UUID `json:"id"`
	TenantID uuid.UUID `json:"tenant_id"`
	Email    string    `json:"email"`
	TeamID   uuid.UUID `json:"team_id"`
	Active   bool      `json:"active"`
}
