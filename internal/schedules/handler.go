package schedules

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/aura-pulse/backend/internal/middleware"
	"github.com/aura-pulse/backend/internal/models"
	"github.com/aura-pulse/backend/pkg/response"
)

// Handler exposes the admin schedule endpoints.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates a schedules handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

// Get handles GET /pulse/schedule.
func (h *Handler) Get(c *gin.Context) {
	tenantID := c.MustGet(middleware.ContextTenantID).(uuid.UUID)

	s, err := h.repo.Get(c.Request.Context(), tenantID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.NotFound(c, "no schedule configured")
			return
		}
		h.logger.Error("get schedule", zap.Error(err))
		response.Internal(c, "failed to load schedule")
		return
	}
	response.OK(c, s)
}

// UpsertRequest is the PUT /pulse/schedule body.
type UpsertRequest struct {
	Enabled        bool   `json:"enabled"`
	Cadence        string `json:"cadence" binding:"required,oneof=weekly biweekly monthly"`
	SendHour       int    `json:"send_hour" binding:"min=0,max=23"`
	SendMinute     int    `json:"send_minute" binding:"min=0,max=59"`
	Timezone       string `json:"timezone" binding:"required"`
	CohortRotation *bool  `json:"cohort_rotation"`
	CohortCount    int    `json:"cohort_count" binding:"min=1,max=7"`
}

// Upsert handles PUT /pulse/schedule.
func (h *Handler) Upsert(c *gin.Context) {
	tenantID := c.MustGet(middleware.ContextTenantID).(uuid.UUID)

	var req UpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if _, err := time.LoadLocation(req.Timezone); err != nil {
		response.BadRequest(c, "unknown timezone")
		return
	}

	rotation := true
	if req.CohortRotation != nil {
		rotation = *req.CohortRotation
	}
	s := &models.PulseSchedule{
		TenantID:       tenantID,
		Enabled:        req.Enabled,
		Cadence:        models.Cadence(req.Cadence),
		SendHour:       req.SendHour,
		SendMinute:     req.SendMinute,
		Timezone:       req.Timezone,
		CohortRotation: rotation,
		CohortCount:    req.CohortCount,
	}
	if err := h.repo.Upsert(c.Request.Context(), s); err != nil {
		h.logger.Error("upsert schedule", zap.Error(err))
		response.Internal(c, "failed to save schedule")
		return
	}
	response.OK(c, s)
}
