package models

import (
	"time"

	"github.com/google/uuid"
)

// PulseResponse is one accepted anonymous answer.
//
// This struct must never grow a user identifier, IP, user agent, or any
// free-text field. InviteID exists only so the single-use check has a
// lineage row to point at; aggregate output never exposes it.
type PulseResponse struct {
	ID          uuid.UUID `json:"id"`
	InviteID    uuid.UUID `json:"-"`
	QuestionID  uuid.UUID `json:"question_id"`
	TeamID      uuid.UUID `json:"team_id"`
	TenantID    uuid.UUID `json:"tenant_id"`
	Score       int       `json:"score"`
	RespondedAt time.Time `json:"responded_at"`
}
