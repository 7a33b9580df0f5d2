package cohorts

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aura-pulse/backend/internal/models"
)

// Repository handles cohort membership persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a cohorts repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// EnsureMembers assigns any of the given users not yet in a cohort and
// returns the full membership map for the tenant. Existing rows are left
// untouched (ON CONFLICT DO NOTHING), so a later change of n never moves
// anyone.
func (r *Repository) EnsureMembers(ctx context.Context, tenantID uuid.UUID, users []models.User, n int) (map[uuid.UUID]int, error) {
	const ins = `INSERT INTO pulse_cohorts (tenant_id, user_id, cohort)
		VALUES ($1, $2, $3)
		ON CONFLICT (tenant_id, user_id) DO NOTHING`
	for _, u := range users {
		if _, err := r.pool.Exec(ctx, ins, tenantID, u.ID, Assign(u.ID, n)); err != nil {
			return nil, err
		}
	}
	return r.Members(ctx, tenantID)
}

// Members returns the tenant's persisted cohort membership.
func (r *Repository) Members(ctx context.Context, tenantID uuid.UUID) (map[uuid.UUID]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT user_id, cohort FROM pulse_cohorts WHERE tenant_id = $1`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	members := make(map[uuid.UUID]int)
	for rows.Next() {
		var userID uuid.UUID
		var cohort int
		if err := rows.Scan(&userID, &cohort); err != nil {
			return nil, err
		}
		members[userID] = cohort
	}
	return members, rows.Err()
}
