package cohorts

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/aura-pulse/backend/internal/directory"
	"github.com/aura-pulse/backend/internal/middleware"
	"github.com/aura-pulse/backend/internal/schedules"
	"github.com/aura-pulse/backend/pkg/response"
)

// Handler exposes the admin cohort endpoints.
type Handler struct {
	repo         *Repository
	dir          *directory.Repository
	schedules    *schedules.Repository
	defaultCount int
	logger       *zap.Logger
}

// NewHandler creates a cohorts handler.
func NewHandler(repo *Repository, dir *directory.Repository, scheduleRepo *schedules.Repository, defaultCount int, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, dir: dir, schedules: scheduleRepo, defaultCount: defaultCount, logger: logger}
}

// Seed handles POST /pulse/cohorts/seed: assigns every eligible user not
// yet in a cohort. Safe to call repeatedly; existing members never move.
func (h *Handler) Seed(c *gin.Context) {
	tenantID := c.MustGet(middleware.ContextTenantID).(uuid.UUID)
	ctx := c.Request.Context()

	n := h.defaultCount
	if s, err := h.schedules.Get(ctx, tenantID); err == nil && s.CohortCount > 0 {
		n = s.CohortCount
	} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		h.logger.Error("load schedule for seed", zap.Error(err))
		response.Internal(c, "failed to load schedule")
		return
	}

	users, err := h.dir.ListEligibleUsers(ctx, tenantID)
	if err != nil {
		h.logger.Error("list eligible users", zap.Error(err))
		response.Internal(c, "failed to load users")
		return
	}

	members, err := h.repo.EnsureMembers(ctx, tenantID, users, n)
	if err != nil {
		h.logger.Error("seed cohorts", zap.Error(err))
		response.Internal(c, "failed to seed cohorts")
		return
	}

	sizes := make(map[int]int)
	for _, cohort := range members {
		sizes[cohort]++
	}
	response.OK(c, gin.H{"cohort_count": n, "members": len(members), "sizes": sizes})
}
