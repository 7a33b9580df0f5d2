package models

import (
	"time"

	"github.com/google/uuid"
)

// PulseDispatch records that a tenant was dispatched for a cycle. The
// (tenant_id, cycle_date) primary key is the idempotency claim: the
// scheduler inserts it before issuing any invite, and a conflict means
// the cycle already ran.
type PulseDispatch struct {
	TenantID    uuid.UUID `json:"tenant_id"`
	CycleDate   time.Time `json:"cycle_date"`
	Cohort      int       `json:"cohort"`
	QuestionID  uuid.UUID `json:"question_id"`
	InviteCount int       `json:"invite_count"`
	CreatedAt   time.Time `json:"created_at"`
}
