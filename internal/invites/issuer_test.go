package invites

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aura-pulse/backend/internal/models"
	"github.com/aura-pulse/backend/pkg/queue"
)

type fakeStore struct {
	created []*models.PulseInvite
	err     error
}

func (s *fakeStore) Create(_ context.Context, inv *models.PulseInvite) error {
	if s.err != nil {
		return s.err
	}
	s.created = append(s.created, inv)
	return nil
}

type fakeNotifier struct {
	sent []queue.NotificationPayload
	err  error
}

func (n *fakeNotifier) Send(_ context.Context, req queue.NotificationPayload) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, req)
	return nil
}

func testUser() models.User {
	return models.User{
		ID:       uuid.New(),
		TenantID: uuid.New(),
		Email:    "dev@example.com",
		TeamID:   uuid.New(),
		Active:   true,
	}
}

func testQuestion(scale models.Scale) models.PulseQuestion {
	return models.PulseQuestion{ID: uuid.New(), Prompt: "How was your week?", Scale: scale, Active: true}
}

func TestIssueCreatesInvite(t *testing.T) {
	store := &fakeStore{}
	notifier := &fakeNotifier{}
	issuer := NewIssuer(store, notifier, 7*24*time.Hour, "https://pulse.example.com", zap.NewNop())
	sent := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	issuer.now = func() time.Time { return sent }

	user := testUser()
	q := testQuestion(models.ScaleLikert5)
	inv, err := issuer.Issue(context.Background(), user, q, "weekday-1")
	require.NoError(t, err)

	require.Len(t, store.created, 1)
	assert.Equal(t, user.ID, inv.UserID)
	assert.Equal(t, user.TeamID, inv.TeamID, "team id captured at issue time")
	assert.Equal(t, q.ID, inv.QuestionID)
	assert.Equal(t, "weekday-1", inv.Cohort)
	assert.Equal(t, sent, inv.SentAt)
	assert.Equal(t, sent.Add(7*24*time.Hour), inv.ExpiresAt)
	assert.NotEqual(t, uuid.Nil, inv.Token)
	assert.Nil(t, inv.RespondedAt)
}

func TestIssueTokensAreUnique(t *testing.T) {
	store := &fakeStore{}
	issuer := NewIssuer(store, &fakeNotifier{}, time.Hour, "http://x", zap.NewNop())

	seen := make(map[uuid.UUID]bool)
	for i := 0; i < 50; i++ {
		inv, err := issuer.Issue(context.Background(), testUser(), testQuestion(models.ScaleLikert5), "weekday-0")
		require.NoError(t, err)
		assert.False(t, seen[inv.Token])
		seen[inv.Token] = true
	}
}

func TestIssueBuildsScoreLinks(t *testing.T) {
	notifier := &fakeNotifier{}
	issuer := NewIssuer(&fakeStore{}, notifier, time.Hour, "https://pulse.example.com", zap.NewNop())

	user := testUser()
	inv, err := issuer.Issue(context.Background(), user, testQuestion(models.ScaleNPS11), "weekday-3")
	require.NoError(t, err)

	require.Len(t, notifier.sent, 1)
	req := notifier.sent[0]
	assert.Equal(t, user.Email, req.Recipient)
	assert.Equal(t, "How was your week?", req.QuestionText)
	require.Len(t, req.ResponseLinks, 11, "nps scale has 11 score links")
	assert.Equal(t, 0, req.ResponseLinks[0].Score)
	assert.Equal(t, 10, req.ResponseLinks[10].Score)
	assert.Contains(t, req.ResponseLinks[4].URL, "token="+inv.Token.String())
	assert.Contains(t, req.ResponseLinks[4].URL, "score=4")
}

func TestIssueSurvivesNotifierFailure(t *testing.T) {
	store := &fakeStore{}
	notifier := &fakeNotifier{err: errors.New("smtp relay down")}
	issuer := NewIssuer(store, notifier, time.Hour, "http://x", zap.NewNop())

	inv, err := issuer.Issue(context.Background(), testUser(), testQuestion(models.ScaleLikert5), "weekday-0")
	require.NoError(t, err, "invite row is authoritative regardless of delivery")
	assert.Len(t, store.created, 1)
	assert.NotNil(t, inv)
}

func TestIssueStoreFailure(t *testing.T) {
	store := &fakeStore{err: errors.New("storage unavailable")}
	notifier := &fakeNotifier{}
	issuer := NewIssuer(store, notifier, time.Hour, "http://x", zap.NewNop())

	_, err := issuer.Issue(context.Background(), testUser(), testQuestion(models.ScaleLikert5), "weekday-0")
	assert.Error(t, err)
	assert.Empty(t, notifier.sent, "no send request without a durable invite")
}
