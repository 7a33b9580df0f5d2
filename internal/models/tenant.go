package models

import (
	"github.com/google/uuid"
)

// Tenant is the directory view of a customer account. AnonymityThreshold
// is the k below which aggregates are suppressed; it is configured per
// tenant by administration, never per request.
type Tenant struct {
	ID                 uuid.UUID `json:"id"`
	Name               string    `json:"name"`
	AnonymityThreshold int       `json:"anonymity_threshold"`
}
