package models

import (
	"time"

	"github.com/google/uuid"
)

// Cadence is how often a tenant's pulse goes out.
type Cadence string

const (
	CadenceWeekly   Cadence = "weekly"
	CadenceBiweekly Cadence = "biweekly"
	CadenceMonthly  Cadence = "monthly"
)

// Valid reports whether the cadence is a known kind.
func (c Cadence) Valid() bool {
	return c == CadenceWeekly || c == CadenceBiweekly || c == CadenceMonthly
}

// PulseSchedule is a tenant's send configuration. At most one row per
// tenant (tenant_id is the primary key).
type PulseSchedule struct {
	TenantID       uuid.UUID `json:"tenant_id"`
	Enabled        bool      `json:"enabled"`
	Cadence        Cadence   `json:"cadence"`
	SendHour       int       `json:"send_hour"`
	SendMinute     int       `json:"send_minute"`
	Timezone       string    `json:"timezone"`
	CohortRotation bool      `json:"cohort_rotation"`
	CohortCount    int       `json:"cohort_count"`
	UpdatedAt      time.Time `json:"updated_at"`
}
