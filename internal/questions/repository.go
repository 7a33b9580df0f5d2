package questions

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aura-pulse/backend/internal/models"
)

// Repository handles pulse question persistence. Questions are never
// deleted, only deactivated, so history stays aggregatable.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a questions repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new question (active by default).
func (r *Repository) Create(ctx context.Context, q *models.PulseQuestion) error {
	const query = `INSERT INTO pulse_questions (id, tenant_id, prompt, scale, category, active)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, TRUE)
		RETURNING id, active, created_at, updated_at`
	return r.pool.QueryRow(ctx, query, q.TenantID, q.Prompt, q.Scale, q.Category).
		Scan(&q.ID, &q.Active, &q.CreatedAt, &q.UpdatedAt)
}

// GetByID returns a question by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.PulseQuestion, error) {
	const query = `SELECT id, tenant_id, prompt, scale, category, active, created_at, updated_at
		FROM pulse_questions WHERE id = $1`
	var q models.PulseQuestion
	err := r.pool.QueryRow(ctx, query, id).
		Scan(&q.ID, &q.TenantID, &q.Prompt, &q.Scale, &q.Category, &q.Active, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// ListByTenant returns the tenant's questions, oldest first so the
// rotation order is stable.
func (r *Repository) ListByTenant(ctx context.Context, tenantID uuid.UUID, activeOnly bool) ([]models.PulseQuestion, error) {
	const query = `SELECT id, tenant_id, prompt, scale, category, active, created_at, updated_at
		FROM pulse_questions
		WHERE tenant_id = $1 AND ($2 = FALSE OR active)
		ORDER BY created_at, id`
	rows, err := r.pool.Query(ctx, query, tenantID, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.PulseQuestion
	for rows.Next() {
		var q models.PulseQuestion
		if err := rows.Scan(&q.ID, &q.TenantID, &q.Prompt, &q.Scale, &q.Category, &q.Active, &q.CreatedAt, &q.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, q)
	}
	return list, rows.Err()
}

// ListActive returns the tenant's active questions in rotation order.
func (r *Repository) ListActive(ctx context.Context, tenantID uuid.UUID) ([]models.PulseQuestion, error) {
	return r.ListByTenant(ctx, tenantID, true)
}

// SetActive toggles a question's active flag.
func (r *Repository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	const query = `UPDATE pulse_questions SET active = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id, active)
	return err
}
