package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CohortMember pins one user to one cohort within a tenant. Membership is
// assigned once by deterministic hashing and persisted; it never changes
// when the cohort count changes (rebalancing is an explicit admin action,
// outside this engine).
type CohortMember struct {
	TenantID  uuid.UUID `json:"tenant_id"`
	UserID    uuid.UUID `json:"user_id"`
	Cohort    int       `json:"cohort"`
	CreatedAt time.Time `json:"created_at"`
}

// CohortName returns the display name recorded on invites, e.g. "weekday-2".
func CohortName(idx int) string {
	return fmt.Sprintf("weekday-%d", idx)
}
