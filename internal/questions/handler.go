package questions

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/aura-pulse/backend/internal/middleware"
	"github.com/aura-pulse/backend/internal/models"
	"github.com/aura-pulse/backend/pkg/response"
)

// CreateRequest is the body for POST /pulse/questions.
type CreateRequest struct {
	Prompt   string `json:"prompt" binding:"required"`
	Scale    string `json:"scale" binding:"required,oneof=likert5 nps11"`
	Category string `json:"category"`
}

// Handler handles pulse question admin endpoints.
type Handler struct {
	repo *Repository
}

// NewHandler creates a questions handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// Create handles POST /pulse/questions (admin).
func (h *Handler) Create(c *gin.Context) {
	tenantID := c.MustGet(middleware.ContextTenantID).(uuid.UUID)

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	q := &models.PulseQuestion{
		TenantID: tenantID,
		Prompt:   req.Prompt,
		Scale:    models.Scale(req.Scale),
		Category: req.Category,
	}
	if err := h.repo.Create(c.Request.Context(), q); err != nil {
		response.Internal(c, "failed to create question")
		return
	}
	response.Created(c, q)
}

// List handles GET /pulse/questions?active=true (admin).
func (h *Handler) List(c *gin.Context) {
	tenantID := c.MustGet(middleware.ContextTenantID).(uuid.UUID)
	activeOnly := c.Query("active") == "true"

	list, err := h.repo.ListByTenant(c.Request.Context(), tenantID, activeOnly)
	if err != nil {
		response.Internal(c, "failed to load questions")
		return
	}
	if list == nil {
		list = []models.PulseQuestion{}
	}
	response.OK(c, list)
}

// Activate handles PATCH /pulse/questions/:id/activate (admin).
func (h *Handler) Activate(c *gin.Context) {
	h.setActive(c, true)
}

// Deactivate handles PATCH /pulse/questions/:id/deactivate (admin).
// Deactivation is the only way a question leaves the rotation; rows with
// responses are never deleted.
func (h *Handler) Deactivate(c *gin.Context) {
	h.setActive(c, false)
}

func (h *Handler) setActive(c *gin.Context, active bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid question id")
		return
	}
	tenantID := c.MustGet(middleware.ContextTenantID).(uuid.UUID)

	q, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil || q.TenantID != tenantID {
		response.NotFound(c, "question not found")
		return
	}
	if err := h.repo.SetActive(c.Request.Context(), id, active); err != nil {
		response.Internal(c, "failed to update question")
		return
	}
	response.OK(c, gin.H{"id": id, "active": active})
}
