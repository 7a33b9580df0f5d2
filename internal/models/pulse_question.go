package models

import (
	"time"

	"github.com/google/uuid"
)

// Scale identifies the response scale of a pulse question.
type Scale string

const (
	// ScaleLikert5 is a 5-point agreement scale (1-5).
	ScaleLikert5 Scale = "likert5"
	// ScaleNPS11 is an 11-point NPS scale (0-10).
	ScaleNPS11 Scale = "nps11"
)

// Bounds returns the inclusive score range for the scale.
func (s Scale) Bounds() (min, max int) {
	switch s {
	case ScaleNPS11:
		return 0, 10
	default:
		return 1, 5
	}
}

// Valid reports whether the scale is a known kind.
func (s Scale) Valid() bool {
	return s == ScaleLikert5 || s == ScaleNPS11
}

// InRange reports whether score is within the scale bounds.
func (s Scale) InRange(score int) bool {
	min, max := s.Bounds()
	return score >= min && score <= max
}

// PulseQuestion is a sentiment prompt sent out on a rotation.
// Questions with responses are never deleted, only deactivated, so
// historical trends stay intact.
type PulseQuestion struct {
	ID        uuid.UUID `json:"id"`
	TenantID  uuid.UUID `json:"tenant_id"`
	Prompt    string    `json:"prompt"`
	Scale     Scale     `json:"scale"`
	Category  string    `json:"category"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
