package invites

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aura-pulse/backend/internal/models"
	"github.com/aura-pulse/backend/internal/notify"
	"github.com/aura-pulse/backend/pkg/queue"
)

// Store persists invites. *Repository is the production implementation.
type Store interface {
	Create(ctx context.Context, inv *models.PulseInvite) error
}

// Issuer mints single-use invites and hands send requests to the
// delivery collaborator en route.
type Issuer struct {
	store    Store
	notifier notify.Notifier
	ttl      time.Duration
	baseURL  string
	logger   *zap.Logger
	now      func() time.Time
}

// NewIssuer creates an invite issuer. baseURL is the public prefix for
// one-tap response links; ttl is how long tokens stay answerable.
func NewIssuer(store Store, notifier notify.Notifier, ttl time.Duration, baseURL string, logger *zap.Logger) *Issuer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Issuer{
		store:    store,
		notifier: notifier,
		ttl:      ttl,
		baseURL:  baseURL,
		logger:   logger,
		now:      time.Now,
	}
}

// Issue creates one invite for the user and enqueues the send request.
// The invite row is authoritative: a notifier failure is logged but does
// not undo the invite, and delivery retries belong to the collaborator.
func (i *Issuer) Issue(ctx context.Context, user models.User, q models.PulseQuestion, cohortName string) (*models.PulseInvite, error) {
	now := i.now()
	inv := &models.PulseInvite{
		ID:         uuid.New(),
		Token:      uuid.New(), // v4: 122 bits of entropy, single use
		TenantID:   user.TenantID,
		UserID:     user.ID,
		QuestionID: q.ID,
		Cohort:     cohortName,
		TeamID:     user.TeamID, // captured now, never recomputed
		SentAt:     now,
		ExpiresAt:  now.Add(i.ttl),
	}
	if err := i.store.Create(ctx, inv); err != nil {
		return nil, fmt.Errorf("create invite: %w", err)
	}

	if err := i.notifier.Send(ctx, i.sendRequest(inv, user, q)); err != nil {
		i.logger.Warn("notification hand-off failed, invite stands",
			zap.String("invite_id", inv.ID.String()), zap.Error(err))
	}
	return inv, nil
}

func (i *Issuer) sendRequest(inv *models.PulseInvite, user models.User, q models.PulseQuestion) queue.NotificationPayload {
	min, max := q.Scale.Bounds()
	links := make([]queue.ScoreLink, 0, max-min+1)
	for s := min; s <= max; s++ {
		links = append(links, queue.ScoreLink{
			Score: s,
			URL:   fmt.Sprintf("%s/pulse/respond?token=%s&score=%d", i.baseURL, inv.Token, s),
		})
	}
	return queue.NotificationPayload{
		InviteID:      inv.ID,
		Recipient:     user.Email,
		QuestionText:  q.Prompt,
		ResponseLinks: links,
		ExpiresAt:     inv.ExpiresAt,
	}
}
