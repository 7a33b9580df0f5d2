// Package responses accepts single-use token submissions and records
// anonymous response rows. The single-winner claim on the invite's
// responded_at is the only concurrency control the write path needs.
package responses

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aura-pulse/backend/internal/models"
)

// Submission outcomes. These are expected results, not faults: a token
// raced by two clicks loses with ErrAlreadyResponded as a matter of
// course.
var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token expired")
	ErrAlreadyResponded = errors.New("already responded")
	ErrInvalidScore     = errors.New("score out of range")
)

// Store is the persistence the ledger needs. *Repository is the
// production implementation.
type Store interface {
	// InviteByToken resolves a token to its invite and the question's
	// scale. Returns ErrInvalidToken when no invite matches.
	InviteByToken(ctx context.Context, token uuid.UUID) (*models.PulseInvite, models.Scale, error)
	// RecordResponse atomically claims the invite (responded_at null ->
	// now) and inserts the response row. Returns false without error
	// when another submission won the claim first.
	RecordResponse(ctx context.Context, inv *models.PulseInvite, score int, now time.Time) (bool, error)
}

// Receipt confirms an accepted submission. It carries no user identity.
type Receipt struct {
	QuestionID  uuid.UUID `json:"question_id"`
	Score       int       `json:"score"`
	RespondedAt time.Time `json:"responded_at"`
}

// Ledger validates and records submissions exactly once per token.
type Ledger struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time
}

// NewLedger creates a response ledger.
func NewLedger(store Store, logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ledger{store: store, logger: logger, now: time.Now}
}

// Submit validates token and score, then records the response. Checks
// run in a fixed order: unknown token, already responded, expired,
// score out of range. Two concurrent submissions of the same token
// yield exactly one nil error; the rest get ErrAlreadyResponded.
func (l *Ledger) Submit(ctx context.Context, token uuid.UUID, score int) (*Receipt, error) {
	inv, scale, err := l.store.InviteByToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrInvalidToken) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("resolve token: %w", err)
	}

	if inv.RespondedAt != nil {
		return nil, ErrAlreadyResponded
	}
	now := l.now()
	if inv.Expired(now) {
		return nil, ErrExpiredToken
	}
	if !scale.InRange(score) {
		return nil, ErrInvalidScore
	}

	won, err := l.store.RecordResponse(ctx, inv, score, now)
	if err != nil {
		return nil, fmt.Errorf("record response: %w", err)
	}
	if !won {
		// lost the race against a concurrent submission of the same token
		return nil, ErrAlreadyResponded
	}

	l.logger.Debug("response accepted",
		zap.String("question_id", inv.QuestionID.String()),
		zap.String("tenant_id", inv.TenantID.String()))
	return &Receipt{QuestionID: inv.QuestionID, Score: score, RespondedAt: now}, nil
}
