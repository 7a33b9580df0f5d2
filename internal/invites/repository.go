package invites

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aura-pulse/backend/internal/models"
)

// Repository handles invite persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an invites repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new invite.
func (r *Repository) Create(ctx context.Context, inv *models.PulseInvite) error {
	const q = `INSERT INTO pulse_invites (id, token, tenant_id, user_id, question_id, cohort, team_id, sent_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.pool.Exec(ctx, q,
		inv.ID, inv.Token, inv.TenantID, inv.UserID, inv.QuestionID, inv.Cohort, inv.TeamID, inv.SentAt, inv.ExpiresAt)
	return err
}

// PendingInvite is a dashboard view of an unanswered, unexpired invite.
type PendingInvite struct {
	Token     uuid.UUID    `json:"token"`
	Prompt    string       `json:"prompt"`
	Scale     models.Scale `json:"scale"`
	SentAt    time.Time    `json:"sent_at"`
	ExpiresAt time.Time    `json:"expires_at"`
}

// ListPendingByUser returns the user's pending invites, newest first.
func (r *Repository) ListPendingByUser(ctx context.Context, userID uuid.UUID, now time.Time) ([]PendingInvite, error) {
	const q = `SELECT i.token, q.prompt, q.scale, i.sent_at, i.expires_at
		FROM pulse_invites i
		INNER JOIN pulse_questions q ON q.id = i.question_id
		WHERE i.user_id = $1 AND i.responded_at IS NULL AND i.expires_at > $2
		ORDER BY i.sent_at DESC`
	rows, err := r.pool.Query(ctx, q, userID, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []PendingInvite
	for rows.Next() {
		var p PendingInvite
		if err := rows.Scan(&p.Token, &p.Prompt, &p.Scale, &p.SentAt, &p.ExpiresAt); err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}
