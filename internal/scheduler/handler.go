package scheduler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aura-pulse/backend/internal/middleware"
	"github.com/aura-pulse/backend/internal/models"
	"github.com/aura-pulse/backend/pkg/response"
)

// Handler exposes dispatch history to admins.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates a scheduler handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

// ListDispatches handles GET /pulse/dispatches.
func (h *Handler) ListDispatches(c *gin.Context) {
	tenantID := c.MustGet(middleware.ContextTenantID).(uuid.UUID)

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 500 {
			response.BadRequest(c, "limit must be 1-500")
			return
		}
		limit = n
	}

	list, err := h.repo.ListByTenant(c.Request.Context(), tenantID, limit)
	if err != nil {
		h.logger.Error("list dispatches", zap.Error(err))
		response.Internal(c, "failed to load dispatches")
		return
	}
	if list == nil {
		list = []models.PulseDispatch{}
	}
	response.OK(c, list)
}
