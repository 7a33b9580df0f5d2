package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aura-pulse/backend/internal/models"
)

// Repository reads response and invite data for aggregation.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an analytics repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ResponseRows returns the anonymous responses in the window. The query
// never selects from users: there is no join path back to a person.
func (r *Repository) ResponseRows(ctx context.Context, tenantID uuid.UUID, teamID *uuid.UUID, from, to time.Time) ([]ResponseRow, error) {
	const q = `SELECT p.question_id, q.prompt, q.category, q.scale, p.score, p.responded_at
		FROM pulse_responses p
		INNER JOIN pulse_questions q ON q.id = p.question_id
		WHERE p.tenant_id = $1
		  AND ($2::uuid IS NULL OR p.team_id = $2)
		  AND p.responded_at >= $3 AND p.responded_at < $4
		ORDER BY p.responded_at`
	rows, err := r.pool.Query(ctx, q, tenantID, teamID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []ResponseRow
	for rows.Next() {
		var row ResponseRow
		var scale models.Scale
		if err := rows.Scan(&row.QuestionID, &row.Prompt, &row.Category, &scale, &row.Score, &row.RespondedAt); err != nil {
			return nil, err
		}
		row.Scale = scale
		list = append(list, row)
	}
	return list, rows.Err()
}

// InviteCount returns how many invites were sent in the window, for the
// participation rate denominator.
func (r *Repository) InviteCount(ctx context.Context, tenantID uuid.UUID, teamID *uuid.UUID, from, to time.Time) (int, error) {
	const q = `SELECT COUNT(*) FROM pulse_invites
		WHERE tenant_id = $1
		  AND ($2::uuid IS NULL OR team_id = $2)
		  AND sent_at >= $3 AND sent_at < $4`
	var n int
	err := r.pool.QueryRow(ctx, q, tenantID, teamID, from, to).Scan(&n)
	return n, err
}
