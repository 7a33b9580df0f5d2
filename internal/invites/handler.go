package invites

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/aura-pulse/backend/internal/middleware"
	"github.com/aura-pulse/backend/pkg/response"
)

// Handler handles invite HTTP endpoints.
type Handler struct {
	repo *Repository
}

// NewHandler creates an invites handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// ListPending handles GET /pulse/invites/pending. Returns the caller's
// unanswered, unexpired invites ("you have N pending pulses").
func (h *Handler) ListPending(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	list, err := h.repo.ListPendingByUser(c.Request.Context(), userID, time.Now())
	if err != nil {
		response.Internal(c, "failed to load pending invites")
		return
	}
	if list == nil {
		list = []PendingInvite{}
	}
	response.OK(c, list)
}
