package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aura-pulse/backend/internal/models"
)

// Repository persists dispatch records. The (tenant_id, cycle_date)
// primary key doubles as the idempotency claim for a cycle.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a scheduler repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Claim tries to record the dispatch for a tenant's cycle. It returns
// true when this caller won the claim and should issue invites; false
// means the cycle was already dispatched (here or on another replica).
func (r *Repository) Claim(ctx context.Context, tenantID uuid.UUID, cycleDate time.Time, cohort int, questionID uuid.UUID) (bool, error) {
	const q = `INSERT INTO pulse_dispatches (tenant_id, cycle_date, cohort, question_id, invite_count)
		VALUES ($1, $2, $3, $4, 0)
		ON CONFLICT (tenant_id, cycle_date) DO NOTHING`
	tag, err := r.pool.Exec(ctx, q, tenantID, cycleDate, cohort, questionID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// SetInviteCount records how many invites the dispatch produced.
func (r *Repository) SetInviteCount(ctx context.Context, tenantID uuid.UUID, cycleDate time.Time, count int) error {
	const q = `UPDATE pulse_dispatches SET invite_count = $3
		WHERE tenant_id = $1 AND cycle_date = $2`
	_, err := r.pool.Exec(ctx, q, tenantID, cycleDate, count)
	return err
}

// ListByTenant returns the tenant's dispatch history, newest first.
func (r *Repository) ListByTenant(ctx context.Context, tenantID uuid.UUID, limit int) ([]models.PulseDispatch, error) {
	const q = `SELECT tenant_id, cycle_date, cohort, question_id, invite_count, created_at
		FROM pulse_dispatches WHERE tenant_id = $1
		ORDER BY cycle_date DESC LIMIT $2`
	rows, err := r.pool.Query(ctx, q, tenantID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.PulseDispatch
	for rows.Next() {
		var d models.PulseDispatch
		if err := rows.Scan(&d.TenantID, &d.CycleDate, &d.Cohort, &d.QuestionID, &d.InviteCount, &d.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, d)
	}
	return list, rows.Err()
}
