package responses

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aura-pulse/backend/internal/models"
)

// memStore mimics the storage contract: responded_at claim under a lock,
// at most one response row per invite.
type memStore struct {
	mu        sync.Mutex
	invites   map[uuid.UUID]*models.PulseInvite // by token
	scales    map[uuid.UUID]models.Scale        // by question id
	responses []models.PulseResponse
	storeErr  error
}

func newMemStore() *memStore {
	return &memStore{
		invites: make(map[uuid.UUID]*models.PulseInvite),
		scales:  make(map[uuid.UUID]models.Scale),
	}
}

func (s *memStore) addInvite(scale models.Scale, expiresAt time.Time) *models.PulseInvite {
	inv := &models.PulseInvite{
		ID:         uuid.New(),
		Token:      uuid.New(),
		TenantID:   uuid.New(),
		UserID:     uuid.New(),
		QuestionID: uuid.New(),
		TeamID:     uuid.New(),
		SentAt:     time.Now().Add(-time.Hour),
		ExpiresAt:  expiresAt,
	}
	s.invites[inv.Token] = inv
	s.scales[inv.QuestionID] = scale
	return inv
}

func (s *memStore) InviteByToken(_ context.Context, token uuid.UUID) (*models.PulseInvite, models.Scale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invites[token]
	if !ok {
		return nil, "", ErrInvalidToken
	}
	cp := *inv
	return &cp, s.scales[inv.QuestionID], nil
}

func (s *memStore) RecordResponse(_ context.Context, inv *models.PulseInvite, score int, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.storeErr != nil {
		return false, s.storeErr
	}
	live := s.invites[inv.Token]
	if live.RespondedAt != nil {
		return false, nil
	}
	live.RespondedAt = &now
	s.responses = append(s.responses, models.PulseResponse{
		ID: uuid.New(), InviteID: inv.ID, QuestionID: inv.QuestionID,
		TeamID: inv.TeamID, TenantID: inv.TenantID, Score: score, RespondedAt: now,
	})
	return true, nil
}

func TestSubmitAccepted(t *testing.T) {
	store := newMemStore()
	inv := store.addInvite(models.ScaleLikert5, time.Now().Add(24*time.Hour))
	ledger := NewLedger(store, zap.NewNop())

	receipt, err := ledger.Submit(context.Background(), inv.Token, 4)
	require.NoError(t, err)
	assert.Equal(t, inv.QuestionID, receipt.QuestionID)
	assert.Equal(t, 4, receipt.Score)
	require.Len(t, store.responses, 1)
	assert.Equal(t, inv.TeamID, store.responses[0].TeamID)
}

func TestSubmitUnknownToken(t *testing.T) {
	ledger := NewLedger(newMemStore(), zap.NewNop())
	_, err := ledger.Submit(context.Background(), uuid.New(), 3)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSubmitExpired(t *testing.T) {
	store := newMemStore()
	inv := store.addInvite(models.ScaleLikert5, time.Now().Add(-time.Minute))
	ledger := NewLedger(store, zap.NewNop())

	_, err := ledger.Submit(context.Background(), inv.Token, 3)
	assert.ErrorIs(t, err, ErrExpiredToken, "expired even though never responded")
	assert.Empty(t, store.responses)
}

func TestSubmitScoreOutOfRange(t *testing.T) {
	store := newMemStore()
	likert := store.addInvite(models.ScaleLikert5, time.Now().Add(time.Hour))
	nps := store.addInvite(models.ScaleNPS11, time.Now().Add(time.Hour))
	ledger := NewLedger(store, zap.NewNop())

	_, err := ledger.Submit(context.Background(), likert.Token, 0)
	assert.ErrorIs(t, err, ErrInvalidScore)
	_, err = ledger.Submit(context.Background(), likert.Token, 6)
	assert.ErrorIs(t, err, ErrInvalidScore)
	_, err = ledger.Submit(context.Background(), nps.Token, 11)
	assert.ErrorIs(t, err, ErrInvalidScore)
	_, err = ledger.Submit(context.Background(), nps.Token, 0)
	assert.NoError(t, err, "0 is valid on the nps scale")
}

func TestSubmitResubmissionKeepsFirstScore(t *testing.T) {
	store := newMemStore()
	inv := store.addInvite(models.ScaleLikert5, time.Now().Add(time.Hour))
	ledger := NewLedger(store, zap.NewNop())

	_, err := ledger.Submit(context.Background(), inv.Token, 4)
	require.NoError(t, err)

	_, err = ledger.Submit(context.Background(), inv.Token, 2)
	assert.ErrorIs(t, err, ErrAlreadyResponded)

	require.Len(t, store.responses, 1)
	assert.Equal(t, 4, store.responses[0].Score, "stored response keeps the first score")
}

// Exactly-once under contention: many goroutines race the same token,
// exactly one wins, and only one response row exists afterwards.
func TestSubmitConcurrentSameToken(t *testing.T) {
	store := newMemStore()
	inv := store.addInvite(models.ScaleLikert5, time.Now().Add(time.Hour))
	ledger := NewLedger(store, zap.NewNop())

	const racers = 32
	var wg sync.WaitGroup
	var accepted, rejected int64
	var mu sync.Mutex

	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(score int) {
			defer wg.Done()
			_, err := ledger.Submit(context.Background(), inv.Token, 1+score%5)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				accepted++
			case errors.Is(err, ErrAlreadyResponded):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.EqualValues(t, 1, accepted)
	assert.EqualValues(t, racers-1, rejected)
	assert.Len(t, store.responses, 1, "never more than one response per token")
}

func TestSubmitStorageFailure(t *testing.T) {
	store := newMemStore()
	inv := store.addInvite(models.ScaleLikert5, time.Now().Add(time.Hour))
	store.storeErr = errors.New("connection reset")
	ledger := NewLedger(store, zap.NewNop())

	_, err := ledger.Submit(context.Background(), inv.Token, 3)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrAlreadyResponded)
	assert.NotErrorIs(t, err, ErrInvalidToken)
}
