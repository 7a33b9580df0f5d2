package responses

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aura-pulse/backend/internal/models"
)

// Repository is the Postgres-backed ledger store.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a responses repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// InviteByToken resolves a token to its invite plus the question scale.
func (r *Repository) InviteByToken(ctx context.Context, token uuid.UUID) (*models.PulseInvite, models.Scale, error) {
	const q = `SELECT i.id, i.token, i.tenant_id, i.user_id, i.question_id, i.cohort, i.team_id,
			i.sent_at, i.expires_at, i.responded_at, q.scale
		FROM pulse_invites i
		INNER JOIN pulse_questions q ON q.id = i.question_id
		WHERE i.token = $1`
	var inv models.PulseInvite
	var scale models.Scale
	err := r.pool.QueryRow(ctx, q, token).Scan(
		&inv.ID, &inv.Token, &inv.TenantID, &inv.UserID, &inv.QuestionID, &inv.Cohort, &inv.TeamID,
		&inv.SentAt, &inv.ExpiresAt, &inv.RespondedAt, &scale)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", ErrInvalidToken
		}
		return nil, "", err
	}
	return &inv, scale, nil
}

// RecordResponse claims the invite and inserts the anonymous response in
// one transaction. The conditional update is the single-winner gate: of
// two racing submissions only one sees a row updated, and the loser's
// insert never runs.
func (r *Repository) RecordResponse(ctx context.Context, inv *models.PulseInvite, score int, now time.Time) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE pulse_invites SET responded_at = $2 WHERE id = $1 AND responded_at IS NULL`,
		inv.ID, now)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	// no user_id on this insert: the row must stay unjoinable to a person
	_, err = tx.Exec(ctx,
		`INSERT INTO pulse_responses (id, invite_id, question_id, team_id, tenant_id, score, responded_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uuid.New(), inv.ID, inv.QuestionID, inv.TeamID, inv.TenantID, score, now)
	if err != nil {
		return false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}
