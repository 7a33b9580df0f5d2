package responses

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/aura-pulse/backend/pkg/response"
)

// SubmitRequest is the body for POST /pulse/respond.
type SubmitRequest struct {
	Token string `json:"token" binding:"required"`
	Score *int   `json:"score" binding:"required"`
}

// Handler handles response submission endpoints. Both entry points are
// public: the token is the only credential.
type Handler struct {
	ledger *Ledger
}

// NewHandler creates a responses handler.
func NewHandler(ledger *Ledger) *Handler {
	return &Handler{ledger: ledger}
}

// Submit handles POST /pulse/respond.
func (h *Handler) Submit(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "token and score required")
		return
	}
	h.submit(c, req.Token, *req.Score)
}

// SubmitOneTap handles GET /pulse/respond?token=...&score=N, the link
// embedded in invite emails.
func (h *Handler) SubmitOneTap(c *gin.Context) {
	score, err := strconv.Atoi(c.Query("score"))
	if err != nil {
		response.BadRequest(c, "score must be an integer")
		return
	}
	h.submit(c, c.Query("token"), score)
}

func (h *Handler) submit(c *gin.Context, tokenStr string, score int) {
	token, err := uuid.Parse(tokenStr)
	if err != nil {
		// malformed tokens are indistinguishable from unknown ones
		response.NotFound(c, "invalid token")
		return
	}

	receipt, err := h.ledger.Submit(c.Request.Context(), token, score)
	switch {
	case err == nil:
		response.OK(c, receipt)
	case errors.Is(err, ErrInvalidToken):
		response.NotFound(c, "invalid token")
	case errors.Is(err, ErrAlreadyResponded):
		response.Conflict(c, "already responded")
	case errors.Is(err, ErrExpiredToken):
		response.Gone(c, "token expired")
	case errors.Is(err, ErrInvalidScore):
		response.BadRequest(c, "score out of range for this question")
	default:
		response.Internal(c, "failed to record response")
	}
}
