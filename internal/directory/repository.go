// Package directory is the engine's read-only view of the product's
// tenant/user/team data: eligible users, their primary team, and each
// tenant's anonymity threshold. The rows are owned elsewhere.
package directory

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aura-pulse/backend/internal/models"
)

// Repository reads the directory tables.
type Repository struct {
	pool             *pgxpool.Pool
	defaultThreshold int
}

// NewRepository creates a directory repository. defaultThreshold is used
// for tenants without a configured anonymity threshold.
func NewRepository(pool *pgxpool.Pool, defaultThreshold int) *Repository {
	return &Repository{pool: pool, defaultThreshold: defaultThreshold}
}

// ListEligibleUsers returns the tenant's active users.
func (r *Repository) ListEligibleUsers(ctx context.Context, tenantID uuid.UUID) ([]models.User, error) {
	const q = `SELECT id, tenant_id, email, team_id, active FROM users
		WHERE tenant_id = $1 AND active ORDER BY id`
	rows, err := r.pool.Query(ctx, q, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.TenantID, &u.Email, &u.TeamID, &u.Active); err != nil {
			return nil, err
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

// GetTenant returns a tenant with its anonymity threshold, falling back
// to the configured default when the tenant has none set.
func (r *Repository) GetTenant(ctx context.Context, tenantID uuid.UUID) (*models.Tenant, error) {
	const q = `SELECT id, name, COALESCE(anonymity_threshold, 0) FROM tenants WHERE id = $1`
	var t models.Tenant
	if err := r.pool.QueryRow(ctx, q, tenantID).Scan(&t.ID, &t.Name, &t.AnonymityThreshold); err != nil {
		return nil, err
	}
	if t.AnonymityThreshold <= 0 {
		t.AnonymityThreshold = r.defaultThreshold
	}
	return &t, nil
}
