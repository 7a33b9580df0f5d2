package analytics

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/aura-pulse/backend/internal/directory"
	"github.com/aura-pulse/backend/internal/middleware"
	"github.com/aura-pulse/backend/pkg/response"
)

// Handler handles GET /pulse/summary and the CSV export.
type Handler struct {
	svc      *Service
	dir      *directory.Repository
	exporter *Exporter
}

// NewHandler creates an analytics handler. exporter may be nil when S3
// is not configured; the export endpoint then reports unavailable.
func NewHandler(svc *Service, dir *directory.Repository, exporter *Exporter) *Handler {
	return &Handler{svc: svc, dir: dir, exporter: exporter}
}

func parseWindow(c *gin.Context) (from, to time.Time, ok bool) {
	to = time.Now()
	from = to.AddDate(0, -3, 0)
	if v := c.Query("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			response.BadRequest(c, "from must be YYYY-MM-DD")
			return from, to, false
		}
		from = t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			response.BadRequest(c, "to must be YYYY-MM-DD")
			return from, to, false
		}
		// inclusive end date
		to = t.AddDate(0, 0, 1)
	}
	if !from.Before(to) {
		response.BadRequest(c, "from must be before to")
		return from, to, false
	}
	return from, to, true
}

func parseTeamID(c *gin.Context) (*uuid.UUID, bool) {
	v := c.Query("team_id")
	if v == "" {
		return nil, true
	}
	id, err := uuid.Parse(v)
	if err != nil {
		response.BadRequest(c, "invalid team id")
		return nil, false
	}
	return &id, true
}

func (h *Handler) summarize(c *gin.Context) (*Summary, bool) {
	tenantID := c.MustGet(middleware.ContextTenantID).(uuid.UUID)

	teamID, ok := parseTeamID(c)
	if !ok {
		return nil, false
	}
	from, to, ok := parseWindow(c)
	if !ok {
		return nil, false
	}

	// the threshold is tenant configuration, never caller input
	tenant, err := h.dir.GetTenant(c.Request.Context(), tenantID)
	if err != nil {
		response.Internal(c, "failed to load tenant")
		return nil, false
	}

	summary, err := h.svc.Summarize(c.Request.Context(), tenantID, teamID, from, to, tenant.AnonymityThreshold)
	if err != nil {
		response.Internal(c, "failed to summarize responses")
		return nil, false
	}
	return summary, true
}

// GetSummary handles GET /pulse/summary?team_id=&from=&to= (admin).
func (h *Handler) GetSummary(c *gin.Context) {
	summary, ok := h.summarize(c)
	if !ok {
		return
	}
	response.OK(c, summary)
}

// ExportSummary handles POST /pulse/summary/export (admin). Builds a
// CSV of the same summary, uploads it, and returns a presigned URL.
func (h *Handler) ExportSummary(c *gin.Context) {
	if h.exporter == nil {
		response.ServiceUnavailable(c, "exports are not configured")
		return
	}
	summary, ok := h.summarize(c)
	if !ok {
		return
	}
	tenantID := c.MustGet(middleware.ContextTenantID).(uuid.UUID)

	url, err := h.exporter.Export(c.Request.Context(), tenantID, summary)
	if err != nil {
		response.Internal(c, "failed to export summary")
		return
	}
	response.OK(c, gin.H{"download_url": url})
}
