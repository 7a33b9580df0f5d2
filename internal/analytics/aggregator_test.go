package analytics

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aura-pulse/backend/internal/models"
)

func rowsFor(questionID uuid.UUID, prompt string, scores []int, at time.Time) []ResponseRow {
	rows := make([]ResponseRow, len(scores))
	for i, s := range scores {
		rows[i] = ResponseRow{
			QuestionID:  questionID,
			Prompt:      prompt,
			Scale:       models.ScaleLikert5,
			Score:       s,
			RespondedAt: at,
		}
	}
	return rows
}

func find(stats []QuestionStats, id uuid.UUID) *QuestionStats {
	for i := range stats {
		if stats[i].QuestionID == id {
			return &stats[i]
		}
	}
	return nil
}

// Side-by-side suppression: a group below threshold is marked
// insufficient while a group at threshold shows its mean, in one call.
func TestBuildStatsThresholdSideBySide(t *testing.T) {
	small := uuid.New()
	big := uuid.New()
	at := time.Date(2026, 4, 7, 12, 0, 0, 0, time.UTC)

	rows := append(
		rowsFor(small, "Do you feel heard?", []int{5, 4, 3, 4}, at), // 4 responses
		rowsFor(big, "How was your week?", []int{4, 4, 4, 4, 4}, at)..., // 5 responses
	)
	stats := buildStats(rows, 5)
	require.Len(t, stats, 2)

	s := find(stats, small)
	require.NotNil(t, s)
	assert.Equal(t, 4, s.Count, "count is not secret, only the mean is")
	assert.True(t, s.InsufficientData)
	assert.Nil(t, s.Mean, "suppressed mean must be absent, not zero")

	b := find(stats, big)
	require.NotNil(t, b)
	assert.False(t, b.InsufficientData)
	require.NotNil(t, b.Mean)
	assert.InDelta(t, 4.0, *b.Mean, 1e-9)
}

// A question can clear the overall threshold while individual weeks
// stay suppressed.
func TestBuildStatsWeeklyGateIsIndependent(t *testing.T) {
	q := uuid.New()
	week1 := time.Date(2026, 4, 6, 9, 0, 0, 0, time.UTC)  // ISO week 15
	week2 := time.Date(2026, 4, 13, 9, 0, 0, 0, time.UTC) // ISO week 16

	rows := append(
		rowsFor(q, "Workload is sustainable", []int{5, 4, 5, 4, 3}, week1), // 5 in week 1
		rowsFor(q, "Workload is sustainable", []int{2, 3}, week2)...,       // 2 in week 2
	)
	stats := buildStats(rows, 5)
	require.Len(t, stats, 1)

	s := stats[0]
	assert.Equal(t, 7, s.Count)
	require.NotNil(t, s.Mean, "overall clears the threshold")

	require.Len(t, s.Weeks, 2)
	assert.False(t, s.Weeks[0].InsufficientData)
	require.NotNil(t, s.Weeks[0].Mean)
	assert.InDelta(t, 4.2, *s.Weeks[0].Mean, 1e-9)

	assert.True(t, s.Weeks[1].InsufficientData, "small week suppressed despite big total")
	assert.Nil(t, s.Weeks[1].Mean)
	assert.Equal(t, 2, s.Weeks[1].Count)
}

func TestBuildStatsWeeksSorted(t *testing.T) {
	q := uuid.New()
	rows := append(
		rowsFor(q, "p", []int{3}, time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC)),
		rowsFor(q, "p", []int{3}, time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC))...,
	)
	rows = append(rows, rowsFor(q, "p", []int{3}, time.Date(2025, 12, 29, 0, 0, 0, 0, time.UTC))...)

	stats := buildStats(rows, 1)
	require.Len(t, stats, 1)
	weeks := stats[0].Weeks
	require.Len(t, weeks, 3)
	for i := 1; i < len(weeks); i++ {
		prev, cur := weeks[i-1], weeks[i]
		assert.True(t, prev.ISOYear < cur.ISOYear || (prev.ISOYear == cur.ISOYear && prev.ISOWeek < cur.ISOWeek))
	}
	// 2025-12-29 falls in ISO week 1 of 2026
	assert.Equal(t, 2026, weeks[0].ISOYear)
	assert.Equal(t, 1, weeks[0].ISOWeek)
}

func TestBuildStatsEmpty(t *testing.T) {
	assert.Empty(t, buildStats(nil, 5))
}

type fakeAnalyticsStore struct {
	rows    []ResponseRow
	invites int
}

func (s *fakeAnalyticsStore) ResponseRows(context.Context, uuid.UUID, *uuid.UUID, time.Time, time.Time) ([]ResponseRow, error) {
	return s.rows, nil
}

func (s *fakeAnalyticsStore) InviteCount(context.Context, uuid.UUID, *uuid.UUID, time.Time, time.Time) (int, error) {
	return s.invites, nil
}

// Participation is responses/invites and never threshold-gated.
func TestSummarizeParticipationNotGated(t *testing.T) {
	q := uuid.New()
	store := &fakeAnalyticsStore{
		rows:    rowsFor(q, "p", []int{5, 3}, time.Now()),
		invites: 10,
	}
	svc := NewService(store, zap.NewNop())

	summary, err := svc.Summarize(context.Background(), uuid.New(), nil, time.Now().AddDate(0, -1, 0), time.Now(), 5)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Responses)
	assert.Equal(t, 10, summary.Invites)
	assert.InDelta(t, 0.2, summary.ParticipationRate, 1e-9)
	require.Len(t, summary.Questions, 1)
	assert.True(t, summary.Questions[0].InsufficientData, "mean gated even though participation is shown")
}

func TestSummarizeZeroInvites(t *testing.T) {
	svc := NewService(&fakeAnalyticsStore{}, zap.NewNop())
	summary, err := svc.Summarize(context.Background(), uuid.New(), nil, time.Now().AddDate(0, -1, 0), time.Now(), 5)
	require.NoError(t, err)
	assert.Zero(t, summary.ParticipationRate)
}

func TestWriteCSVSuppressedCells(t *testing.T) {
	q := uuid.New()
	stats := buildStats(rowsFor(q, "Do you feel heard?", []int{4, 4}, time.Now()), 5)
	summary := &Summary{Questions: stats, Invites: 4, Responses: 2, ParticipationRate: 0.5}

	var buf bytes.Buffer
	require.NoError(t, writeCSV(&buf, summary))
	out := buf.String()

	assert.Contains(t, out, "insufficient")
	assert.NotContains(t, out, "0.00", "suppressed mean must not leak as a number")
	assert.True(t, strings.HasPrefix(out, "question,category,scope"))
}
