package schedules

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aura-pulse/backend/internal/models"
)

// Repository handles pulse schedule persistence. The tenant_id primary
// key guarantees at most one schedule per tenant.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a schedules repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Get returns the tenant's schedule.
func (r *Repository) Get(ctx context.Context, tenantID uuid.UUID) (*models.PulseSchedule, error) {
	const q = `SELECT tenant_id, enabled, cadence, send_hour, send_minute, timezone, cohort_rotation, cohort_count, updated_at
		FROM pulse_schedules WHERE tenant_id = $1`
	var s models.PulseSchedule
	err := r.pool.QueryRow(ctx, q, tenantID).Scan(
		&s.TenantID, &s.Enabled, &s.Cadence, &s.SendHour, &s.SendMinute,
		&s.Timezone, &s.CohortRotation, &s.CohortCount, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Upsert creates or replaces the tenant's schedule.
func (r *Repository) Upsert(ctx context.Context, s *models.PulseSchedule) error {
	const q = `INSERT INTO pulse_schedules (tenant_id, enabled, cadence, send_hour, send_minute, timezone, cohort_rotation, cohort_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (tenant_id) DO UPDATE SET
			enabled = EXCLUDED.enabled,
			cadence = EXCLUDED.cadence,
			send_hour = EXCLUDED.send_hour,
			send_minute = EXCLUDED.send_minute,
			timezone = EXCLUDED.timezone,
			cohort_rotation = EXCLUDED.cohort_rotation,
			cohort_count = EXCLUDED.cohort_count,
			updated_at = NOW()
		RETURNING updated_at`
	return r.pool.QueryRow(ctx, q,
		s.TenantID, s.Enabled, s.Cadence, s.SendHour, s.SendMinute,
		s.Timezone, s.CohortRotation, s.CohortCount).Scan(&s.UpdatedAt)
}

// ListEnabled returns every enabled schedule, for the scheduler tick.
func (r *Repository) ListEnabled(ctx context.Context) ([]models.PulseSchedule, error) {
	const q = `SELECT tenant_id, enabled, cadence, send_hour, send_minute, timezone, cohort_rotation, cohort_count, updated_at
		FROM pulse_schedules WHERE enabled ORDER BY tenant_id`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.PulseSchedule
	for rows.Next() {
		var s models.PulseSchedule
		if err := rows.Scan(&s.TenantID, &s.Enabled, &s.Cadence, &s.SendHour, &s.SendMinute,
			&s.Timezone, &s.CohortRotation, &s.CohortCount, &s.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}
