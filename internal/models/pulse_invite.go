package models

import (
	"time"

	"github.com/google/uuid"
)

// PulseInvite is one user's single-use invitation to answer one question
// in one cycle. The token is the only credential needed to respond; the
// row is never deleted so it doubles as the dedup trail.
type PulseInvite struct {
	ID          uuid.UUID  `json:"id"`
	Token       uuid.UUID  `json:"token"`
	TenantID    uuid.UUID  `json:"tenant_id"`
	UserID      uuid.UUID  `json:"user_id"`
	QuestionID  uuid.UUID  `json:"question_id"`
	Cohort      string     `json:"cohort"`
	TeamID      uuid.UUID  `json:"team_id"` // primary team at issue time, never recomputed
	SentAt      time.Time  `json:"sent_at"`
	ExpiresAt   time.Time  `json:"expires_at"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`
}

// Expired reports whether the invite can no longer be answered at now.
func (i *PulseInvite) Expired(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}
